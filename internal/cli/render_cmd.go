package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/2beens/whoopgrid/internal/daily"
	"github.com/2beens/whoopgrid/internal/heatmap"
	"github.com/2beens/whoopgrid/internal/termgrid"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const tokenEnvVar = "WHOOP_ACCESS_TOKEN"

var errNoToken = errors.New("no whoop access token: pass --token, set " + tokenEnvVar + " or use --mock")

type renderFlags struct {
	metric  string
	days    int
	mock    bool
	token   string
	apiURL  string
	seed    int64
	noColor bool
}

func newRenderCmd(app *App) *cobra.Command {
	flags := renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a metric as a calendar heatmap",
		Example: "  heatmap render --metric recovery --days 90\n" +
			"  heatmap render --metric strain --mock --seed 7",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, app, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.metric, "metric", "m", string(heatmap.MetricRecovery), "recovery, sleepPerformance or strain")
	cmd.Flags().IntVarP(&flags.days, "days", "d", daily.DefaultRangeDays, fmt.Sprintf("number of days ending today (1..%d)", daily.MaxRangeDays))
	cmd.Flags().BoolVar(&flags.mock, "mock", false, "use generated data instead of the whoop API")
	cmd.Flags().StringVar(&flags.token, "token", os.Getenv(tokenEnvVar), "whoop access token (default from "+tokenEnvVar+")")
	cmd.Flags().StringVar(&flags.apiURL, "api-url", DefaultApiURL, "whoop API base URL")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "mock data seed, 0 means random")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "plain glyphs instead of colours")

	return cmd
}

func runRender(cmd *cobra.Command, app *App, flags renderFlags) error {
	metric, err := heatmap.ParseMetric(flags.metric)
	if err != nil {
		return err
	}
	if flags.days < 1 || flags.days > daily.MaxRangeDays {
		return fmt.Errorf("%w: must be between 1 and %d", daily.ErrInvalidDays, daily.MaxRangeDays)
	}

	now := time.Now()
	if app.Now != nil {
		now = app.Now()
	}

	var series daily.Series
	if flags.mock {
		series = app.MockSeries(flags.seed, flags.days, now)
	} else {
		if flags.token == "" {
			return errNoToken
		}
		provider := app.NewProvider(flags.apiURL)
		series, err = provider.DailyMetrics(cmd.Context(), flags.token, daily.NewDateRange(flags.days, now))
		if err != nil {
			return fmt.Errorf("get daily metrics: %w", err)
		}
	}

	color := !flags.noColor && app.IsColorTerminal != nil && app.IsColorTerminal()
	out := termgrid.Render(heatmap.Layout(series, metric), termgrid.Options{
		Color:    color,
		Renderer: lipgloss.NewRenderer(cmd.OutOrStdout()),
	})

	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
