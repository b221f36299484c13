// Package cmd implements the command-line interface for deferview.
package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/deferview/deferview/color"
	"github.com/deferview/deferview/filesystem"
	"github.com/deferview/deferview/page"
	"github.com/deferview/deferview/style"
	"github.com/deferview/deferview/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// localPages lists the HTML documents stored in the pages directory.
func localPages() []string {
	entries, err := afero.Glob(filesystem.API(), filepath.Join(where.Pages(), "*.html"))
	if err != nil {
		return nil
	}
	return entries
}

// resolvePage maps a user-supplied argument to an existing page document.
// Arguments that do not point at a file are fuzzy-matched against the pages
// directory before giving up.
func resolvePage(arg string) string {
	if exists := lo.Must(filesystem.API().Exists(arg)); exists {
		return arg
	}

	pages := localPages()
	names := lo.Map(pages, func(p string, _ int) string { return filepath.Base(p) })

	matches := fuzzy.RankFindNormalizedFold(arg, names)
	sort.Sort(matches)
	if len(matches) > 0 {
		handleErr(fmt.Errorf(
			"page %s not found, did you mean %s?",
			style.Fg(color.Red)(arg),
			style.Fg(color.Yellow)(matches[0].Target),
		))
	}
	handleErr(fmt.Errorf("page %s not found", style.Fg(color.Red)(arg)))
	return ""
}

// pickPage interactively selects a page from the pages directory.
func pickPage() string {
	pages := localPages()
	if len(pages) == 0 {
		handleErr(errors.New("no pages found, put an .html file under " + where.Pages()))
	}

	names := lo.Map(pages, func(p string, _ int) string { return filepath.Base(p) })

	var chosen string
	prompt := survey.Select{
		Message: "Which page to run?",
		Options: names,
	}
	handleErr(survey.AskOne(&prompt, &chosen))

	return pages[lo.IndexOf(names, chosen)]
}

// simulatedFetch stands in for the network during demo runs. Latency is
// randomized and any source mentioning "broken" fails.
func simulatedFetch() page.FetchFunc {
	return func(src string) error {
		time.Sleep(time.Duration(50+rand.Intn(200)) * time.Millisecond)
		if strings.Contains(src, "broken") {
			return errors.New("simulated fetch failure")
		}
		return nil
	}
}
