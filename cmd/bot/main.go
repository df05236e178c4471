package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/artur/tubeprophet/internal/bot"
	"github.com/artur/tubeprophet/internal/config"
	"github.com/artur/tubeprophet/internal/database"
	"github.com/artur/tubeprophet/internal/database/repository"
	"github.com/artur/tubeprophet/internal/handler"
	"github.com/artur/tubeprophet/internal/prophet"
	"github.com/artur/tubeprophet/internal/youtube"
)

func main() {
	settings := config.LoadSettings()

	if settings.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация базы данных
	dbPath := settings.DBPath
	if dbPath == "" {
		dbPath = "/data/tubeprophet.db"
	}

	db, err := database.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	srcCfg := youtube.Config{
		Concurrency:   settings.Concurrency,
		RatePerSecond: settings.RatePerSecond,
		Timeout:       settings.Timeout,
	}

	var src youtube.Source
	if settings.YouTubeAPIKey != "" {
		src, err = youtube.NewAPISource(ctx, settings.YouTubeAPIKey, srcCfg)
		if err != nil {
			log.Fatalf("Failed to create YouTube client: %v", err)
		}
	} else {
		log.Printf("[BOT] YOUTUBE_API_KEY is not set, reading statistics from watch pages")
		src = youtube.NewWatchPageSource(srcCfg)
	}

	// Создаём репозитории
	snapshotRepo := repository.NewSnapshotRepository(db.DB)
	runRepo := repository.NewRunRepository(db.DB)

	service := prophet.NewService(src, prophet.WithStore(snapshotRepo, runRepo))

	b, err := bot.New(settings.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	b.RegisterHandler(handler.NewStartHandler())
	b.RegisterHandler(handler.NewStatsHandler(snapshotRepo, runRepo))
	b.RegisterHandler(handler.NewPredictHandler(service, settings.DefaultDays))

	b.Run(ctx)
}
