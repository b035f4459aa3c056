package cli

import (
	"context"
	"time"

	"github.com/2beens/whoopgrid/internal/daily"

	"github.com/spf13/cobra"
)

const DefaultApiURL = "https://api.prod.whoop.com/developer"

type SeriesProvider interface {
	DailyMetrics(ctx context.Context, token string, dateRange daily.DateRange) (daily.Series, error)
}

// App holds what the commands need, wired in main.
type App struct {
	// NewProvider builds a live whoop series provider for the given API base URL.
	NewProvider func(apiURL string) SeriesProvider
	// MockSeries generates a series, seed 0 means random.
	MockSeries func(seed int64, days int, now time.Time) daily.Series
	// IsColorTerminal reports whether stdout can show colours.
	IsColorTerminal func() bool
	Now             func() time.Time
}

// NewRootCmd creates the top-level "heatmap" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "heatmap",
		Short:         "WHOOP calendar heatmap in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRenderCmd(app),
		newLegendCmd(),
	)

	return root
}
