package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/planet-pizzaria/internal/app"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/config"
)

// Export kinds accepted by "pizzaria export".
const (
	kindPizzasByDay   = "pizzas-by-day"
	kindPizzasMonth   = "pizzas-month"
	kindRevenueByDay  = "revenue-by-day"
	kindRevenueMonth  = "revenue-month"
	kindFlavorRanking = "flavor-ranking"
	kindHistory       = "history"
)

var exportKinds = []string{kindPizzasByDay, kindPizzasMonth, kindRevenueByDay, kindRevenueMonth, kindFlavorRanking, kindHistory}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.Load, app.Options{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type loader func() (*config.Config, error)

func newRootCmd(load loader, opts app.Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "pizzaria",
		Short:         "Planet Pizzaria order management",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := start(cmd, load, opts)
			if err != nil {
				return err
			}
			runErr := a.Shell.Run(cmd.Context())
			return errors.Join(runErr, a.Close(context.WithoutCancel(cmd.Context())))
		},
	}
	root.AddCommand(newExportCmd(load, opts))
	return root
}

type exportFlags struct {
	year  int
	month int
	from  string
	to    string
	taxID string
}

func newExportCmd(load loader, opts app.Options) *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:       "export <kind>",
		Short:     "Write one report as CSV",
		Long:      "Write one report as CSV. Kinds: " + strings.Join(exportKinds, ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: exportKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := start(cmd, load, opts)
			if err != nil {
				return err
			}
			paths, runErr := runExport(cmd.Context(), a, args[0], f)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return errors.Join(runErr, a.Close(context.WithoutCancel(cmd.Context())))
		},
	}
	now := time.Now()
	cmd.Flags().IntVar(&f.year, "year", now.Year(), "year for monthly reports")
	cmd.Flags().IntVar(&f.month, "month", int(now.Month()), "month (1-12) for monthly reports")
	cmd.Flags().StringVar(&f.from, "from", "", "start date dd/mm/yyyy for the flavor ranking")
	cmd.Flags().StringVar(&f.to, "to", "", "end date dd/mm/yyyy for the flavor ranking")
	cmd.Flags().StringVar(&f.taxID, "tax-id", "", "customer tax ID for the history export")
	return cmd
}

func start(cmd *cobra.Command, load loader, opts app.Options) (*app.App, error) {
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.In == nil {
		opts.In = cmd.InOrStdin()
	}
	if opts.Out == nil {
		opts.Out = cmd.OutOrStdout()
	}
	return app.New(cmd.Context(), cfg, opts)
}

func runExport(ctx context.Context, a *app.App, kind string, f exportFlags) ([]string, error) {
	single := func(path string, err error) ([]string, error) {
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	switch kind {
	case kindPizzasByDay:
		return single(a.Exporter.PizzasByDay(a.Reports.PizzasByDay(ctx)))
	case kindPizzasMonth:
		m, err := a.Reports.PizzasInMonth(ctx, f.year, f.month)
		if err != nil {
			return nil, err
		}
		return a.Exporter.PizzasInMonth(m)
	case kindRevenueByDay:
		return single(a.Exporter.RevenueByDay(a.Reports.RevenueByDay(ctx)))
	case kindRevenueMonth:
		m, err := a.Reports.RevenueInMonth(ctx, f.year, f.month)
		if err != nil {
			return nil, err
		}
		return single(a.Exporter.RevenueInMonth(m))
	case kindFlavorRanking:
		from, err := common.ParseDate(f.from, a.Config.Location)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		to, err := common.ParseDate(f.to, a.Config.Location)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
		return single(a.Exporter.FlavorRanking(a.Reports.FlavorRanking(ctx, from, to)))
	case kindHistory:
		h, err := a.Reports.CustomerHistory(ctx, f.taxID)
		if err != nil {
			return nil, err
		}
		return single(a.Exporter.CustomerHistory(h))
	}
	return nil, fmt.Errorf("unknown export kind %q (want one of %s)", kind, strings.Join(exportKinds, ", "))
}
