package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/artur/tubeprophet/internal/bot"
	"github.com/artur/tubeprophet/internal/config"
	"github.com/artur/tubeprophet/internal/database"
	"github.com/artur/tubeprophet/internal/database/models"
	"github.com/artur/tubeprophet/internal/database/repository"
	"github.com/artur/tubeprophet/internal/prophet"
	"github.com/artur/tubeprophet/internal/report"
	"github.com/artur/tubeprophet/internal/youtube"
	"google.golang.org/api/option"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	sourceAPI    = "api"
	sourceWatch  = "watch"
	usageMessage = "This program tracks and reports for changes in the given videos."
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	settings := config.LoadSettings()

	fs := flag.NewFlagSet("tubeprophet", flag.ContinueOnError)
	fs.SetOutput(stderr)

	jsonPath := fs.String("j", "", "A path to a JSON file.")
	flagKey := fs.String("k", "", "An authentication key from Google. (if not specified in the JSON)")
	days := fs.Int("d", settings.DefaultDays, "Amount of days to scan for changes.")
	source := fs.String("source", sourceAPI, "Statistics source: 'api' (YouTube Data API, needs a key) or 'watch' (keyless)")
	dbPath := fs.String("db", settings.DBPath, "SQLite database for snapshots and run history (empty disables)")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	endpoint := fs.String("api-endpoint", "", "Override the YouTube Data API endpoint")
	notify := fs.Bool("notify", true, "Post the report to Telegram when TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are set")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tubeprophet -j JSON_file [flags]\n\n%s\n\nFlags:\n", usageMessage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *jsonPath == "" {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*jsonPath)
	if errors.Is(err, config.ErrNoVideos) {
		fmt.Fprintln(stderr, "Please provide a list of videos in the JSON file!")
		return exitFailure
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	ids, err := cfg.VideoIDs()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	srcCfg := youtube.Config{
		Concurrency:   settings.Concurrency,
		RatePerSecond: settings.RatePerSecond,
		Timeout:       settings.Timeout,
	}

	var src youtube.Source
	switch *source {
	case sourceAPI:
		key, err := cfg.ResolveKey(*flagKey)
		if err != nil {
			fmt.Fprintln(stderr, "Please specify an Authentication Key!")
			return exitUsage
		}
		var opts []option.ClientOption
		if *endpoint != "" {
			opts = append(opts, option.WithEndpoint(*endpoint))
		}
		api, err := youtube.NewAPISource(ctx, key, srcCfg, opts...)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		src = api
	case sourceWatch:
		src = youtube.NewWatchPageSource(srcCfg)
	default:
		fmt.Fprintf(stderr, "Unknown source %q, expected %q or %q\n", *source, sourceAPI, sourceWatch)
		return exitUsage
	}

	var opts []prophet.Option
	if *dbPath != "" {
		db, err := database.New(*dbPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		opts = append(opts, prophet.WithStore(
			repository.NewSnapshotRepository(db.DB),
			repository.NewRunRepository(db.DB),
		))
	}

	res, err := prophet.NewService(src, opts...).Predict(ctx, prophet.Request{
		IDs:    ids,
		Days:   *days,
		Origin: models.OriginCLI,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	palette := report.Plain
	if f, ok := stdout.(*os.File); ok {
		palette = report.PaletteFor(f, *noColor)
	}
	if err := report.New(stdout, palette).Write(res.Projections, res.Changes); err != nil {
		log.Printf("[CLI] Failed to write report: %v", err)
		return exitFailure
	}

	if *notify && settings.TelegramToken != "" && settings.TelegramChatID != 0 {
		notifyTelegram(settings, report.Plain.Render(res.Projections, res.Changes))
	}

	return exitOK
}

func notifyTelegram(settings config.Settings, text string) {
	n, err := bot.NewNotifierFromToken(settings.TelegramToken, settings.TelegramChatID)
	if err != nil {
		log.Printf("[CLI] Telegram notification disabled: %v", err)
		return
	}
	if err := n.Notify(text); err != nil {
		log.Printf("[CLI] Failed to notify Telegram: %v", err)
	}
}
