// Package cmd implements the command-line interface for deferview.
package cmd

import (
	"os"
	"sort"

	"github.com/deferview/deferview/color"
	"github.com/deferview/deferview/history"
	"github.com/deferview/deferview/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.SetOut(os.Stdout)
}

// historyCmd lists the persisted outcomes of previous page runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the persisted outcomes of previous page runs",
	Run: func(cmd *cobra.Command, args []string) {
		saved, err := history.Get()
		handleErr(err)

		if len(saved) == 0 {
			cmd.Println(style.Faint("no runs recorded yet"))
			return
		}

		runs := lo.Values(saved)
		sort.Slice(runs, func(i, j int) bool {
			return runs[i].RanAt.After(runs[j].RanAt)
		})

		for _, run := range runs {
			cmd.Printf("%s %s\n", style.Fg(color.Purple)(run.RanAt.Format("2006-01-02 15:04")), run)
		}
	},
}
