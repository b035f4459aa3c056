package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/2beens/whoopgrid/internal/cli"
	"github.com/2beens/whoopgrid/internal/daily"
	"github.com/2beens/whoopgrid/internal/logging"
	"github.com/2beens/whoopgrid/internal/mockdata"
	"github.com/2beens/whoopgrid/internal/telemetry/metrics"
	"github.com/2beens/whoopgrid/internal/whoop"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// only problems go to stderr, stdout is for the grid
	log.SetOutput(os.Stderr)
	logLevel := os.Getenv("HEATMAP_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}
	log.SetLevel(logging.GetLevel(logLevel))

	metricsManager := metrics.NewManager("whoopgrid", "cli", nil)

	app := &cli.App{
		NewProvider: func(apiURL string) cli.SeriesProvider {
			client := whoop.NewClient(whoop.NewClientParams{
				ApiURL:         apiURL,
				HttpClient:     &http.Client{Timeout: 30 * time.Second},
				MetricsManager: metricsManager,
			})
			return daily.NewService(client, whoop.DefaultPageLimit, metricsManager)
		},
		MockSeries: func(seed int64, days int, now time.Time) daily.Series {
			return mockdata.NewGenerator(seed).Series(days, now)
		},
		IsColorTerminal: func() bool {
			if os.Getenv("NO_COLOR") != "" {
				return false
			}
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
		Now: time.Now,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
