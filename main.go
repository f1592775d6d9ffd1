package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/aws_s3"
	"github.com/IliaW/lead-hunter/internal/broker"
	"github.com/IliaW/lead-hunter/internal/export"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	configDir string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lead-hunter",
	Short: "Recruitment lead pipeline: intake scorer, academy harvester and opportunity hunter",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		cfg = config.MustLoad(configDir)
		setupLogger()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory that holds config.yaml")
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger() *slog.Logger {
	envLogLevel := strings.ToLower(cfg.LogLevel)
	var slogLevel slog.Level
	err := slogLevel.UnmarshalText([]byte(envLogLevel))
	if err != nil {
		log.Printf("encountenred log level: '%s'. The package does not support custom log levels", envLogLevel)
		slogLevel = slog.LevelDebug
	}
	slog.SetLogLoggerLevel(slogLevel)

	replaceAttrs := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			source := a.Value.Any().(*slog.Source)
			source.File = filepath.Base(source.File)
		}
		return a
	}

	var logger *slog.Logger
	if strings.ToLower(cfg.LogType) == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource:   true,
			Level:       slogLevel,
			ReplaceAttr: replaceAttrs}))
	} else {
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			AddSource:   true,
			Level:       slogLevel,
			ReplaceAttr: replaceAttrs,
			NoColor:     cfg.Env != "local"}))
	}

	slog.SetDefault(logger)
	logger.Debug("debug messages are enabled.")

	return logger
}

// setupDatabase gives up after a few attempts. The postgres sink then fails every append
// and the chain falls back to the next sink.
func setupDatabase() (*sql.DB, error) {
	slog.Info("connecting to the database...")
	connStr := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		cfg.DbSettings.User,
		cfg.DbSettings.Password,
		cfg.DbSettings.Host,
		cfg.DbSettings.Port,
		cfg.DbSettings.Name,
	)
	database, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	database.SetConnMaxLifetime(cfg.DbSettings.ConnMaxLifetime)
	database.SetMaxOpenConns(cfg.DbSettings.MaxOpenConns)
	database.SetMaxIdleConns(cfg.DbSettings.MaxIdleConns)

	maxRetry := 3
	for i := 1; i <= maxRetry; i++ {
		slog.Info("ping the database.", slog.String("attempt", fmt.Sprintf("%d/%d", i, maxRetry)))
		pingErr := database.Ping()
		if pingErr == nil {
			slog.Info("connected to the database!")
			return database, nil
		}
		slog.Error("not responding.", slog.String("err", pingErr.Error()))
		if i == maxRetry {
			_ = database.Close()
			return nil, pingErr
		}
		slog.Info(fmt.Sprintf("wait %d seconds", 2*i))
		time.Sleep(time.Duration(2*i) * time.Second)
	}

	return database, nil
}

func closeDatabase(db *sql.DB) {
	if db == nil {
		return
	}
	slog.Info("closing database connection.")
	err := db.Close()
	if err != nil {
		slog.Error("failed to close database connection.", slog.String("err", err.Error()))
	}
}

func getHttpTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        cfg.HttpClientSettings.MaxIdleConnections,
		MaxIdleConnsPerHost: cfg.HttpClientSettings.MaxIdleConnectionsPerHost,
		MaxConnsPerHost:     cfg.HttpClientSettings.MaxConnectionsPerHost,
		IdleConnTimeout:     cfg.HttpClientSettings.IdleConnectionTimeout,
		TLSHandshakeTimeout: cfg.HttpClientSettings.TlsHandshakeTimeout,
		DialContext: (&net.Dialer{
			Timeout:   cfg.HttpClientSettings.DialTimeout,
			KeepAlive: cfg.HttpClientSettings.DialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.HttpClientSettings.TlsInsecureSkipVerify,
		},
	}
}

func setupPublisher() broker.Publisher {
	if !cfg.KafkaSettings.Enabled {
		return broker.NoopPublisher{}
	}
	return broker.NewKafkaPublisher(cfg.KafkaSettings.Producer)
}

func setupBucket() aws_s3.BucketClient {
	if !cfg.ExportSettings.UploadToS3 {
		return nil
	}
	return aws_s3.NewS3BucketClient(cfg)
}

// finishRun publishes the leads of a crawl run and exports the report. An empty report is a
// successful run with no file.
func finishRun(ctx context.Context, report *model.LeadReport) error {
	events := setupPublisher()
	defer events.Close()
	broker.PublishLeads(ctx, events, report)

	exporter := export.NewExporter(cfg.ExportSettings, setupBucket())
	path, err := exporter.Export(ctx, report)
	if err != nil {
		if errors.Is(err, export.ErrEmptyReport) {
			slog.Warn("no results. Nothing exported.", slog.String("kind", string(report.Kind)))
			return nil
		}
		return fmt.Errorf("export %s report: %w", report.Kind, err)
	}
	slog.Info("run finished. Open the file to see your leads.", slog.String("path", path))

	return nil
}
