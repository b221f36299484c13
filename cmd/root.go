// Package cmd implements the command-line interface for deferview.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/deferview/deferview/color"
	"github.com/deferview/deferview/constant"
	"github.com/deferview/deferview/icon"
	"github.com/deferview/deferview/key"
	"github.com/deferview/deferview/log"
	"github.com/deferview/deferview/style"
	"github.com/deferview/deferview/tui"
	"github.com/deferview/deferview/util"
	"github.com/deferview/deferview/version"
	"github.com/deferview/deferview/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Persist run outcomes to the localized run history")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnRun, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.Flags().BoolP("simulate", "s", false, "Simulate asset fetches instead of hitting the network")
	rootCmd.Flags().Float64P("rate", "r", 1, "Playback speed of the simulated players")
	rootCmd.Flags().Float64P("duration", "d", 0, "Simulated media length in seconds, 0 for endless")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the deferview application.
var rootCmd = &cobra.Command{
	Use:   constant.Deferview + " [page]",
	Short: "A deferred media runtime with an interactive page monitor",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Lazy images and ambient video portals, observable from the terminal"),
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		var pagePath string
		if len(args) == 1 {
			pagePath = resolvePage(args[0])
		} else {
			pagePath = pickPage()
		}

		options := tui.Options{
			PagePath:      pagePath,
			PlaybackRate:  lo.Must(cmd.Flags().GetFloat64("rate")),
			MediaDuration: lo.Must(cmd.Flags().GetFloat64("duration")),
		}
		if lo.Must(cmd.Flags().GetBool("simulate")) {
			options.Fetch = simulatedFetch()
		}
		handleErr(tui.Run(&options))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
