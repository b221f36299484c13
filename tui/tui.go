// Package tui provides the interactive page run monitor.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deferview/deferview/media"
	"github.com/deferview/deferview/page"
	"github.com/deferview/deferview/player"
	"github.com/deferview/deferview/portal"
	"github.com/deferview/deferview/sdk"
	"github.com/deferview/deferview/viewport"
)

// Options configure an interactive page run.
type Options struct {
	// PagePath locates the HTML page to drive.
	PagePath string

	// Fetch overrides the asset fetcher. Nil keeps the network default.
	Fetch page.FetchFunc

	// PlaybackRate scales media seconds per wall second for the simulated
	// players. Zero means real time.
	PlaybackRate float64

	// MediaDuration is the simulated media length in seconds. Zero means endless.
	MediaDuration float64
}

// Run drives a page interactively until the user quits.
func Run(options *Options) error {
	var opts []page.Option
	if options.Fetch != nil {
		opts = append(opts, page.WithFetch(options.Fetch))
	}
	doc, err := page.ParseFile(options.PagePath, opts...)
	if err != nil {
		return err
	}

	engine := viewport.NewScrollEngine()
	watcher := viewport.NewWatcher(engine)
	session := page.NewSession()

	loader := media.NewLoader(watcher)
	loader.Init(doc)

	rate := options.PlaybackRate
	if rate <= 0 {
		rate = 1
	}
	factory := player.NewProbeFactory(rate, options.MediaDuration)
	host := sdk.NewHost()
	host.RuntimeArrived()
	bootstrap := sdk.New(sdk.NewScriptInjector(host))

	sup := portal.NewSupervisor(factory, bootstrap, watcher)
	ctrls := sup.Init(doc, session)

	model := newModel(options.PagePath, engine, session, loader, ctrls)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}
