package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kavach/kavach/internal/config"
	"github.com/kavach/kavach/internal/dashboard"
	"github.com/kavach/kavach/internal/projector"
	"github.com/kavach/kavach/internal/types"
	"github.com/kavach/kavach/internal/version"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	var (
		lat, lng float64
		zoom     int
		layer    string
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a coordinate, or every seeded marker, into screen units",
		Long: `With --lat and --lng, project a single coordinate. Without them, load the
seed data from the config directory and print every marker on --layer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			single := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng")
			if single {
				cfg := config.Default()
				// the frame comes from the config directory only when one exists
				if _, err := os.Stat(configDir); err == nil {
					if cfg, err = config.LoadConfigDir(configDir); err != nil {
						return err
					}
				}

				p, err := projector.Project(types.Position{Latitude: lat, Longitude: lng}, cfg.Dashboard.Frame, zoom)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "x=%.4f y=%.4f\n", p.X, p.Y)
				return nil
			}

			// the projector never clamps, so reject here rather than let SetZoom pin it
			if _, err := projector.Scale(projector.DefaultFrame(), zoom); err != nil {
				return err
			}

			cfg, err := config.LoadConfigDir(configDir)
			if err != nil {
				return err
			}
			logger := newLogger(config.LoggingConfig{Level: "warn", Format: cfg.Dashboard.Logging.Format}, nil)
			session, err := dashboard.NewFromConfig(logger, cfg, time.Now())
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.SetLayer(types.Layer(layer)); err != nil {
				return err
			}
			session.SetZoom(zoom)

			w := cmd.OutOrStdout()
			for _, pm := range session.PlaceMarkers() {
				fmt.Fprintf(w, "%-6s %-7s %-10s x=%9.4f y=%9.4f\n",
					pm.Marker.ID, pm.Marker.Kind, pm.Marker.Label, pm.Point.X, pm.Point.Y)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude in decimal degrees")
	cmd.Flags().IntVar(&zoom, "zoom", config.DefaultZoomPercent, "zoom percent, 10-100")
	cmd.Flags().StringVar(&layer, "layer", string(types.LayerAll), "marker layer: all, troops, threats")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
