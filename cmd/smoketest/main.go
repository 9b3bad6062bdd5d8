package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/myrjola/formcoach/internal/e2etest"
	"github.com/myrjola/formcoach/internal/logging"
	"github.com/myrjola/formcoach/internal/testhelpers"
)

// testReadSurfaces exercises the read endpoints a deployment must serve.
func testReadSurfaces(client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var fitness struct {
		Form float64 `json:"form"`
	}
	if err := client.GetJSON(ctx, "/api/fitness", &fitness); err != nil {
		return fmt.Errorf("get fitness: %w", err)
	}

	var recommendation struct {
		TypeID string `json:"type_id"`
		Source string `json:"source"`
	}
	if err := client.GetJSON(ctx, "/api/recommendation", &recommendation); err != nil {
		return fmt.Errorf("get recommendation: %w", err)
	}
	if recommendation.TypeID == "" {
		return fmt.Errorf("recommendation has no workout type (source: %s)", recommendation.Source)
	}

	var workouts []struct {
		ID string `json:"id"`
	}
	if err := client.GetJSON(ctx, "/api/workouts", &workouts); err != nil {
		return fmt.Errorf("get workouts: %w", err)
	}
	if len(workouts) == 0 {
		return fmt.Errorf("workout catalog is empty")
	}

	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client := e2etest.NewClient(url, os.Getenv("FORMCOACH_API_TOKEN"))
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err := testReadSurfaces(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing read surfaces", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
