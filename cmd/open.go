// Package cmd implements the command-line interface for deferview.
package cmd

import (
	"github.com/deferview/deferview/open"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().StringP("app", "a", "", "Open the page with a specific application")
}

// openCmd opens a page document with the system's default handler.
var openCmd = &cobra.Command{
	Use:   "open [page]",
	Short: "Open a page document with the system handler",
	Long:  "Open a page document in the default browser, or in a specific application with --app.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var pagePath string
		if len(args) == 1 {
			pagePath = resolvePage(args[0])
		} else {
			pagePath = pickPage()
		}

		handleErr(open.StartWith(pagePath, lo.Must(cmd.Flags().GetString("app"))))
	},
}
