package main

import (
	"errors"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dpdmap/internal/config"
	"dpdmap/internal/mapview"
	"dpdmap/internal/tiles"
	"dpdmap/internal/tui"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dpdmap [path-or-url]",
	Short: "Dublin population density map in the terminal",
	Long: "Draws Dublin's small areas over an OpenStreetMap basemap, either as plain boundaries " +
		"or as a population density choropleth. Click an area for its population and density.",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cmd.Flags())
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: run,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "config file (default ./config.yaml)")
	f.String("data", "", "GeoJSON path or URL of the small areas")
	f.Bool("no-tiles", false, "draw the overlays without the OpenStreetMap basemap")
	f.String("log-file", "", "log file (default dpdmap.log)")
	f.String("log-level", "", "log level: debug, info, warn, error")
}

func run(cmd *cobra.Command, args []string) error {
	src := cfg.Data.Path
	if len(args) == 1 {
		src = args[0]
	}
	log := zap.L().With(zap.String("source", src))

	view := mapview.New(cmd.Context(), mapview.Options{Base: newBaseLayer(cfg.Tiles), Logger: log})
	defer view.Close()

	m := tui.New(tui.Options{
		View:    view,
		Source:  src,
		Timeout: cfg.Data.Timeout,
		Client:  &http.Client{Timeout: cfg.Data.Timeout},
	})
	log.Info("starting map", zap.Bool("tiles", cfg.Tiles.Enabled))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return eris.Wrap(err, "run ui")
	}
	return nil
}

// newBaseLayer builds the OpenStreetMap layer, or nil when tiles are off.
func newBaseLayer(c config.TilesConfig) *tiles.Layer {
	if !c.Enabled {
		return nil
	}
	f := tiles.NewFetcher(tiles.FetcherOptions{
		Template:          tiles.Template{URL: c.URL, Subdomains: c.Subdomains},
		UserAgent:         c.UserAgent,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
	})
	return tiles.NewLayer(f, tiles.LayerOptions{
		Attribution: c.Attribution,
		CacheSize:   c.CacheSize,
		CacheTTL:    c.CacheTTL,
		Concurrency: c.Concurrency,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
