package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kavach/kavach/internal/alerter"
	"github.com/kavach/kavach/internal/audit"
	"github.com/kavach/kavach/internal/config"
	"github.com/kavach/kavach/internal/dashboard"
	"github.com/kavach/kavach/internal/metrics"
	"github.com/kavach/kavach/internal/notifier"
	"github.com/kavach/kavach/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		sos         bool
		operator    string
		dumpMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the configuration and seed data and hold the session until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfigDir(configDir)
			if err != nil {
				return err
			}

			logBuffer := audit.NewLogBuffer(cfg.Dashboard.Audit.BufferSize)
			logger := newLogger(cfg.Dashboard.Logging, logBuffer)
			logger.Info().Str("config_dir", configDir).Msg("Starting Kavach")

			session, err := dashboard.NewFromConfig(logger, cfg, time.Now())
			if err != nil {
				return fmt.Errorf("loading seed data: %w", err)
			}
			defer session.Close()

			reg := prometheus.NewRegistry()
			session.SetMetrics(metrics.New(reg))
			session.SetAuditLog(logBuffer)
			session.SetNotifier(notifier.NewNotifier(logger, func(t notifier.Toast) {
				logger.Info().
					Str("variant", string(t.Variant)).
					Str("code", string(t.Code)).
					Str("description", t.Description).
					Msg(t.Title)
			}))

			cancel := session.Subscribe(func(e dashboard.Event) {
				logger.Debug().Str("kind", string(e.Kind)).Uint64("version", e.Version).Msg("Dashboard changed")
			})
			defer cancel()

			if sos {
				if operator == "" {
					operator = cfg.Dashboard.SOS.Operator
				}
				if _, err := session.ActivateSOS(alerter.BeaconRequest{Operator: operator}); err != nil {
					return err
				}
			}

			printSummary(cmd, session.Summary())

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			logger.Info().Msg("Kavach running, press Ctrl+C to stop")
			<-sigChan

			logger.Info().Msg("Shutting down...")
			printSummary(cmd, session.Summary())
			for _, e := range session.RecentActivity(20) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %-14s %s\n",
					e.Timestamp.Format(time.TimeOnly), e.Action, e.Message)
			}

			if dumpMetrics {
				families, err := reg.Gather()
				if err != nil {
					return fmt.Errorf("gathering metrics: %w", err)
				}
				for _, mf := range families {
					if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sos, "sos", false, "activate the emergency beacon on start")
	cmd.Flags().StringVar(&operator, "operator", "", "operator name recorded with the SOS signal")
	cmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "print Prometheus metrics in text format on exit")

	return cmd
}

func newStatusCmd() *cobra.Command {
	var alertID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Validate the configuration and print the seeded dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if alertID != "" {
				a, ok := session.Alert(alertID)
				if !ok {
					return types.NotFound("alert", alertID)
				}
				fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatAlert(a))
				return nil
			}

			printSummary(cmd, session.Summary())
			for _, a := range session.VisibleAlerts() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %-9s %-13s %s\n", a.ID, a.Severity, a.Status, a.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&alertID, "alert", "", "print the full details of one alert instead of the summary")

	return cmd
}

func printSummary(cmd *cobra.Command, s dashboard.Summary) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Kavach Dashboard")
	fmt.Fprintf(w, "  Active alerts:  %d (%d total)\n", s.ActiveAlerts, s.TotalAlerts)
	fmt.Fprintf(w, "  Troops online:  %d of %d\n", s.TroopsOnline, s.Troops)
	fmt.Fprintf(w, "  Troops in SOS:  %d\n", s.TroopsSOS)
	fmt.Fprintf(w, "  Threats:        %d\n", s.Threats)
	fmt.Fprintf(w, "  Elevated feeds: %d\n", s.ElevatedFeeds)
	if s.SOSActive {
		fmt.Fprintln(w, "  SOS:            ACTIVE")
	}
}
