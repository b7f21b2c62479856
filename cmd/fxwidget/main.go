// fxwidget converts amounts between USD, VES, EUR and COP using once-per-
// business-day exchange rates, either from the command line or over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"fx-widget/internal/config"
	"fx-widget/internal/domain/model"
	"fx-widget/internal/service"
	"fx-widget/pkg/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliState struct {
	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:           "fxwidget",
		Short:         "Multi-currency converter for USD, VES, EUR and COP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(envFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.Log.Level = level
			}

			state.cfg = cfg
			state.log = logger.NewLogger(cfg.Log.Level)
			return nil
		},
	}

	root.PersistentFlags().String("config", ".env", "env file with FXWIDGET_* settings")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(state),
		newConvertCmd(state),
		newRefreshCmd(state),
		newStatusCmd(state),
		newHistoryCmd(state),
		newBaseCmd(state),
		newVersionCmd(),
	)

	return root
}

// withApp wires the components for a one-shot command and restores the
// persisted state before running fn.
func withApp(cmd *cobra.Command, state *cliState, fn func(ctx context.Context, a *app, startup model.RefreshReport) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, state.cfg, state.log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.widget.Init(ctx)
	return fn(ctx, a, report)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// config is not needed to print the version
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fxwidget %s (commit %s)\n", version, commit)
		},
	}
}

func newConvertCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <amount>",
		Short: "Convert an amount from the base currency into the others",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("base")

			return withApp(cmd, state, func(ctx context.Context, a *app, startup model.RefreshReport) error {
				out := cmd.OutOrStdout()
				printNotice(out, startup.Notice)

				quote, err := a.widget.Quote(args[0], model.Currency(strings.ToUpper(base)))
				if err != nil {
					return err
				}
				if len(quote.Results) == 0 {
					fmt.Fprintln(out, "Enter a valid amount")
					return nil
				}

				fmt.Fprintf(out, "%s %s =\n", quote.Amount, quote.Base)
				printCards(out, a.widget.Cards(quote.Results))
				fmt.Fprintf(out, "\nRates as of %s (trend: %s)\n", quote.AsOf.Format(time.RFC1123), quote.TrendSource)
				return nil
			})
		},
	}
	cmd.Flags().String("base", "", "base currency (defaults to the saved preference)")
	return cmd
}

func newRefreshCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch fresh rates now (business days only)",
		Long: `Fetch fresh rates from the provider and store them.
On Saturday and Sunday the market is closed: the request is refused and the
provider is not contacted, even when no rates have been stored yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, state.cfg, state.log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			a.widget.Restore(ctx)
			report, err := a.widget.Refresh(ctx)

			out := cmd.OutOrStdout()
			printNotice(out, report.Notice)
			if err != nil && !errors.Is(err, service.ErrMarketClosed) {
				return err
			}
			if report.Fetched {
				fmt.Fprintf(out, "Rates updated: %s\n", report.State.APITimestamp.Format(time.RFC1123))
			}
			return nil
		},
	}
}

func newStatusCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show rate freshness and the next scheduled update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, state, func(ctx context.Context, a *app, startup model.RefreshReport) error {
				out := cmd.OutOrStdout()
				printNotice(out, startup.Notice)

				status := a.widget.Status()
				fmt.Fprintf(out, "Base currency: %s\n", status.BaseCurrency)
				fmt.Fprintf(out, "Last update:   %s\n", status.APITimestamp.Format(time.RFC1123))
				fmt.Fprintf(out, "Fetched at:    %s\n", status.FetchTimestamp.Format(time.RFC1123))
				fmt.Fprintf(out, "Next update:   %s (in %d day(s))\n", status.NextUpdate.Format("Monday, Jan 2"), status.NextUpdateInDays)
				fmt.Fprintf(out, "Market open:   %t\n", status.MarketOpen)
				fmt.Fprintf(out, "Trend source:  %s\n", status.TrendSource)
				return nil
			})
		},
	}
}

func newHistoryCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show an estimated chart series for a currency pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("base")
			target, _ := cmd.Flags().GetString("target")
			days, _ := cmd.Flags().GetInt("days")

			return withApp(cmd, state, func(ctx context.Context, a *app, startup model.RefreshReport) error {
				points, err := a.widget.History(
					model.Currency(strings.ToUpper(base)),
					model.Currency(strings.ToUpper(target)),
					days,
				)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, p := range points {
					fmt.Fprintf(out, "%s  %s  %s\n", p.Date, p.Label, strconv.FormatFloat(p.Rate, 'f', 4, 64))
				}
				fmt.Fprintf(out, "(%s series, not market history)\n", model.TrendSourceSynthetic)
				return nil
			})
		},
	}
	cmd.Flags().String("base", "", "base currency (defaults to the saved preference)")
	cmd.Flags().String("target", "", "target currency (defaults to USD, or EUR for a USD base)")
	cmd.Flags().Int("days", 0, "number of days (defaults to FXWIDGET_TREND_HISTORY_DAYS)")
	return cmd
}

func newBaseCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "base [code]",
		Short: "Show or set the preferred base currency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, state, func(ctx context.Context, a *app, startup model.RefreshReport) error {
				if len(args) == 1 {
					if err := a.widget.SetBase(ctx, model.Currency(strings.ToUpper(args[0]))); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.widget.Base())
				return nil
			})
		},
	}
}

func printNotice(out io.Writer, notice string) {
	if notice != "" {
		fmt.Fprintf(out, "* %s\n", notice)
	}
}

func printCards(out io.Writer, cards []model.CurrencyCard) {
	for _, c := range cards {
		arrow := "▲"
		if !c.IsPositiveTrend {
			arrow = "▼"
		}
		fmt.Fprintf(out, "%-4s %-20s %18s  %s %.2f%%\n", c.CurrencyCode, c.Name, c.FormattedValue, arrow, c.ChangePercent)
	}
}
