package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/caarlos0/env/v11"
	"github.com/myrjola/formcoach/internal/coach"
	"github.com/myrjola/formcoach/internal/errors"
	"github.com/myrjola/formcoach/internal/flightrecorder"
	"github.com/myrjola/formcoach/internal/intervals"
	"github.com/myrjola/formcoach/internal/logging"
	"github.com/myrjola/formcoach/internal/oracle"
	"github.com/myrjola/formcoach/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	coach          *coach.Service
	db             *sqlite.Database
	flightRecorder *flightrecorder.Service
	apiToken       string
	exportDir      string
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FORMCOACH_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FORMCOACH_SQLITE_URL" envDefault:"./formcoach.sqlite3"`
	// APIToken guards the mutating endpoints. Empty leaves them open, which
	// only makes sense on a private network.
	APIToken string `env:"FORMCOACH_API_TOKEN" envDefault:""`
	// OpenAIAPIKey enables the advisory oracle. Empty disables it and the
	// engine runs on its deterministic fallbacks.
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	// IntervalsBaseURL is the athlete data provider's API root.
	IntervalsBaseURL string `env:"FORMCOACH_INTERVALS_URL" envDefault:"https://intervals.icu/api/v1"`
	// IntervalsAPIKey authenticates against the provider.
	IntervalsAPIKey string `env:"FORMCOACH_INTERVALS_API_KEY" envDefault:""`
	// IntervalsAthleteID selects the athlete on the provider.
	IntervalsAthleteID string `env:"FORMCOACH_INTERVALS_ATHLETE_ID" envDefault:"0"`
	// ExportDir is where database backups are written.
	ExportDir string `env:"FORMCOACH_EXPORT_DIR" envDefault:"./backups"`
	// TracesDir is where timeout flight-recorder traces are written.
	TracesDir string `env:"FORMCOACH_TRACES_DIR" envDefault:"./traces"`
}

// configVars lists the environment variables parseConfig reads, so the
// injected lookupEnv stays the single source in tests.
var configVars = []string{
	"FORMCOACH_ADDR",
	"FORMCOACH_SQLITE_URL",
	"FORMCOACH_API_TOKEN",
	"OPENAI_API_KEY",
	"FORMCOACH_INTERVALS_URL",
	"FORMCOACH_INTERVALS_API_KEY",
	"FORMCOACH_INTERVALS_ATHLETE_ID",
	"FORMCOACH_EXPORT_DIR",
	"FORMCOACH_TRACES_DIR",
}

func parseConfig(lookupEnv func(string) (string, bool)) (config, error) {
	environment := make(map[string]string, len(configVars))
	for _, name := range configVars {
		if value, ok := lookupEnv(name); ok {
			environment[name] = value
		}
	}
	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return config{}, errors.Wrap(err, "parse environment")
	}
	return cfg, nil
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	cfg, err := parseConfig(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	recorder, err := flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		TracesDirectory: cfg.TracesDir,
	})
	if err != nil {
		return errors.Wrap(err, "new flight recorder")
	}
	if err = recorder.Start(ctx); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	defer recorder.Stop(ctx)

	provider := intervals.NewClient(cfg.IntervalsBaseURL, cfg.IntervalsAPIKey, cfg.IntervalsAthleteID, logger)
	advisor := oracle.New(cfg.OpenAIAPIKey, logger)

	service, err := coach.NewService(db, logger, provider, advisor)
	if err != nil {
		return errors.Wrap(err, "new coach service")
	}

	app := application{
		logger:         logger,
		coach:          service,
		db:             db,
		flightRecorder: recorder,
		apiToken:       cfg.APIToken,
		exportDir:      cfg.ExportDir,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
