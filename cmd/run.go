// Package cmd implements the command-line interface for deferview.
package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/deferview/deferview/history"
	"github.com/deferview/deferview/icon"
	"github.com/deferview/deferview/key"
	"github.com/deferview/deferview/media"
	"github.com/deferview/deferview/page"
	"github.com/deferview/deferview/player"
	"github.com/deferview/deferview/portal"
	"github.com/deferview/deferview/report"
	"github.com/deferview/deferview/scenario"
	"github.com/deferview/deferview/sdk"
	"github.com/deferview/deferview/util"
	"github.com/deferview/deferview/viewport"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("scenario", "t", "", "Drive the run with a Lua timeline script")
	runCmd.Flags().BoolP("json", "j", false, "Format the run report as a JSON string")
	runCmd.Flags().BoolP("simulate", "s", false, "Simulate asset fetches instead of hitting the network")
	runCmd.Flags().Float64P("rate", "r", 10, "Playback speed of the simulated players")
	runCmd.Flags().Float64P("duration", "d", 0, "Simulated media length in seconds, 0 for endless")
	runCmd.Flags().IntP("wait", "w", 500, "Settle time in milliseconds before the page unloads")

	runCmd.SetOut(os.Stdout)
}

// runCmd executes a page headlessly and reports the terminal state of its media.
var runCmd = &cobra.Command{
	Use:   "run [page]",
	Short: "Run a page headlessly and report its media outcomes",
	Long: `Execute the deferred media runtime over a page without the interactive monitor.
Without a scenario script, everything on the page is scrolled into view and the
run settles before unloading. With one, the script owns the whole timeline.`,
	Args:    cobra.MaximumNArgs(1),
	Example: "  deferview run landing.html --scenario timeline.lua --json",
	Run: func(cmd *cobra.Command, args []string) {
		var pagePath string
		if len(args) == 1 {
			pagePath = resolvePage(args[0])
		} else {
			pagePath = pickPage()
		}

		var opts []page.Option
		if lo.Must(cmd.Flags().GetBool("simulate")) {
			opts = append(opts, page.WithFetch(simulatedFetch()))
		}
		doc, err := page.ParseFile(pagePath, opts...)
		handleErr(err)

		engine := viewport.NewScrollEngine()
		watcher := viewport.NewWatcher(engine)
		session := page.NewSession()

		loader := media.NewLoader(watcher)
		loader.Init(doc)

		factory := player.NewProbeFactory(
			lo.Must(cmd.Flags().GetFloat64("rate")),
			lo.Must(cmd.Flags().GetFloat64("duration")),
		)
		host := sdk.NewHost()
		host.RuntimeArrived()
		bootstrap := sdk.New(sdk.NewScriptInjector(host))

		sup := portal.NewSupervisor(factory, bootstrap, watcher)
		ctrls := sup.Init(doc, session)

		scenarioPath := lo.Must(cmd.Flags().GetString("scenario"))
		if scenarioPath != "" {
			runScenario(scenarioPath, engine, session, factory, ctrls)
		} else {
			for _, r := range loader.Records() {
				engine.SetVisible(r.ID(), true)
			}
			for _, c := range ctrls {
				engine.SetVisible(c.MountID(), true)
			}
		}

		wait := lo.Must(cmd.Flags().GetInt("wait"))
		time.Sleep(time.Duration(wait) * time.Millisecond)
		session.Unload()

		out := report.New(pagePath, loader.Records(), ctrls)
		if viper.GetBool(key.HistorySaveOnRun) {
			handleErr(history.Save(history.NewSavedRun(pagePath, loader.Records(), ctrls)))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(out.Write(cmd.OutOrStdout()))
			return
		}

		cmd.Printf("%s %s\n", icon.Get(icon.Image), util.Quantify(len(out.Images), "deferred image", "deferred images"))
		for _, img := range out.Images {
			cmd.Printf("  %s  %s  %s\n", img.ID, img.Status, img.Target)
		}
		cmd.Printf("%s %s\n", icon.Get(icon.Video), util.Quantify(len(out.Portals), "video portal", "video portals"))
		for _, p := range out.Portals {
			cmd.Printf("  %s  %s  %s\n", p.Mount, p.Status, p.VideoID)
		}
	},
}

// runScenario binds the page hooks and plays the timeline to completion.
func runScenario(path string, engine *viewport.ScrollEngine, session *page.Session, factory *player.ProbeFactory, ctrls []*portal.Controller) {
	byMount := lo.SliceToMap(ctrls, func(c *portal.Controller) (string, *portal.Controller) {
		return c.MountID(), c
	})

	timeline, err := scenario.Load(path, scenario.Hooks{
		SetVisible: engine.SetVisible,
		Start: func(id string) {
			if c, ok := byMount[id]; ok {
				c.ManualStart()
			}
		},
		FailPlayer: func(id, call string) {
			if probe, ok := factory.Created(id); ok {
				probe.FailNext(call, errors.New("scripted fault"))
			}
		},
		Unload: session.Unload,
	})
	handleErr(err)
	defer timeline.Close()

	handleErr(timeline.Run())
}

func init() {
	runCmd.AddCommand(runSchemaCmd)
}

// runSchemaCmd generates the JSON schema for the structured run report.
var runSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for the structured run report",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "image", "portal", "output":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		schema := reflector.Reflect(&report.Output{})
		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
