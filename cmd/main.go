package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"candlescan/internal/bhavcopy"
	"candlescan/internal/config"
	"candlescan/internal/database"
	"candlescan/internal/notify"
	"candlescan/internal/pipeline"
	"candlescan/models"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(database.ConnectionParams{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		DBName:       cfg.DBName,
		SSLMode:      cfg.DBSSLMode,
		MaxOpenConns: cfg.DBMaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var store models.BarStore
	switch cfg.Backend {
	case config.BackendNormalized:
		normalized := database.NewNormalizedStore(db)
		if err := normalized.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create normalized schema")
		}
		store = normalized
	default:
		store = database.NewGateway(db, database.NewSchemaRegistry(db))
	}

	source := bhavcopy.NewClient(bhavcopy.ClientOptions{
		BaseURL:        cfg.BhavcopyBaseURL,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})

	notifier, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn().Err(err).Msg("notifications disabled")
	}

	driver := pipeline.NewDriver(pipeline.New(source, store))

	log.Info().
		Str("backend", cfg.Backend).
		Str("start", cfg.StartDate.Format(models.DateLayoutConfig)).
		Str("end", cfg.EndDate.Format(models.DateLayoutConfig)).
		Msg("starting run")

	report := driver.Run(ctx, cfg.StartDate, cfg.EndDate)

	log.Info().Msg(report.Summary())
	notifier.SendReport(&report)

	if _, _, _, failed := report.Counts(); failed > 0 {
		os.Exit(1)
	}
}
