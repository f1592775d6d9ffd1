package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/IliaW/lead-hunter/internal/intake"
	"github.com/IliaW/lead-hunter/internal/notify"
	"github.com/IliaW/lead-hunter/internal/persistence"
	"github.com/IliaW/lead-hunter/internal/scoring"
	"github.com/IliaW/lead-hunter/internal/server"
	"github.com/IliaW/lead-hunter/internal/telemetry"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the application form server",
	Long:  "Serve the application form: score each submission, store it and alert the agency about priority profiles.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.SetupMetrics(ctx, cfg)
	defer metrics.Close()
	policy, err := scoring.FromConfig(cfg.ScoringSettings)
	if err != nil {
		return err
	}
	csvSink := persistence.NewCsvSink(cfg.CsvSettings.Path)
	sinks, closeSinks, err := buildSinkChain(ctx, csvSink)
	if err != nil {
		return err
	}
	defer closeSinks()
	events := setupPublisher()
	defer events.Close()
	notifier := notify.NewNotifier(cfg.MailSettings, cfg.IntakeSettings.AgencyName)

	svc := intake.NewService(cfg.IntakeSettings, policy, sinks, notifier, events, metrics.IntakeMetrics)
	h := server.NewHandler(svc, csvSink, policy.BudgetLabels, cfg.IntakeSettings.DownloadName)
	srv := server.NewServer(cfg, h)
	if cfg.IntakeSettings.AdminKey == "" {
		slog.Warn("intake.admin_key is not set. The admin view is locked.")
	}

	go func() {
		slog.Info("starting application on port "+cfg.Port, slog.String("env", cfg.Env),
			slog.String("policy", policy.Name), slog.Any("sinks", cfg.IntakeSettings.Sinks))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", slog.String("err", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	svc.Wait()
	slog.Info("server stopped.")

	return nil
}

// buildSinkChain follows intake.sinks order. The returned func releases sink connections.
func buildSinkChain(ctx context.Context, csvSink *persistence.CsvSink) (*persistence.SinkChain, func(), error) {
	var (
		sinks   []persistence.Sink
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	for _, name := range cfg.IntakeSettings.Sinks {
		switch name {
		case "sheets":
			s, err := persistence.NewSheetsSink(ctx, cfg.SheetsSettings)
			if err != nil {
				slog.Warn("sheets sink unavailable.", slog.String("err", err.Error()))
			}
			sinks = append(sinks, s)
		case "postgres":
			db, err := setupDatabase()
			if err != nil {
				slog.Warn("postgres sink unavailable.", slog.String("err", err.Error()))
			} else {
				closers = append(closers, func() { closeDatabase(db) })
			}
			sinks = append(sinks, persistence.NewApplicationRepository(db))
		case "csv":
			sinks = append(sinks, csvSink)
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown sink %q in intake.sinks", name)
		}
	}
	if len(sinks) == 0 {
		return nil, nil, errors.New("intake.sinks is empty")
	}

	return persistence.NewSinkChain(sinks...), closeAll, nil
}
