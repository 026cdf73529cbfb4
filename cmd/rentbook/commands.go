package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smallbiznis/rentbook/internal/clock"
	financedomain "github.com/smallbiznis/rentbook/internal/finance/domain"
	"github.com/smallbiznis/rentbook/internal/invoice/format"
	"github.com/smallbiznis/rentbook/internal/migration"
	"github.com/smallbiznis/rentbook/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const commandTimeout = 2 * time.Minute

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				coreModules(),
				migration.Module,
				domainModules(),
				server.Module,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				coreModules(),
				migration.Module,
				fx.NopLogger,
			)
			return runOnce(cmd.Context(), app)
		},
	}
}

func SummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the profit and loss of one building or the whole portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			buildingID, _ := cmd.Flags().GetString("building")
			asJSON, _ := cmd.Flags().GetBool("json")

			var (
				financeSvc financedomain.Service
				clk        clock.Clock
			)
			app := fx.New(
				coreModules(),
				domainModules(),
				fx.NopLogger,
				fx.Populate(&financeSvc, &clk),
			)
			if err := app.Err(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(contextOrBackground(cmd.Context()), commandTimeout)
			defer cancel()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = app.Stop(context.Background()) }()

			year, month = resolvePeriod(clk, year, month)

			var result any
			if buildingID != "" {
				id, err := financedomain.ParseID(buildingID)
				if err != nil || id <= 0 {
					return financedomain.ErrInvalidBuilding
				}
				summary, err := financeSvc.BuildingMonthSummary(ctx, id, year, month)
				if err != nil {
					return err
				}
				result = summary
				if !asJSON {
					printSummary(cmd, summary)
					return nil
				}
			} else {
				portfolio, err := financeSvc.PortfolioSummary(ctx, year, month)
				if err != nil {
					return err
				}
				result = portfolio
				if !asJSON {
					for _, summary := range portfolio.Buildings {
						printSummary(cmd, summary)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "TOTAL %04d-%02d  revenue %s  costs %s  profit %s\n",
						portfolio.Year, portfolio.Month,
						format.FormatAmount(portfolio.Revenue),
						format.FormatAmount(portfolio.Costs),
						format.FormatAmount(portfolio.Profit),
					)
					return nil
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().Int("year", 0, "Summary year (defaults to the current year)")
	cmd.Flags().Int("month", 0, "Summary month 1-12 (defaults to the current month)")
	cmd.Flags().String("building", "", "Building id; omit for the whole portfolio")
	cmd.Flags().Bool("json", false, "Print JSON instead of text")
	return cmd
}

// resolvePeriod fills an unset year or month from the clock.
func resolvePeriod(clk clock.Clock, year, month int) (int, int) {
	now := clk.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return year, month
}

func printSummary(cmd *cobra.Command, s financedomain.Summary) {
	name := s.BuildingName
	if name == "" {
		name = s.BuildingID.String()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %04d-%02d  revenue %s  costs %s (lease %s, opex %s, depreciation %s)  profit %s\n",
		name, s.Year, s.Month,
		format.FormatAmount(s.Revenue),
		format.FormatAmount(s.Costs),
		format.FormatAmount(s.Breakdown.MasterLease),
		format.FormatAmount(s.Breakdown.Opex),
		format.FormatAmount(s.Breakdown.Depreciation),
		format.FormatAmount(s.Profit),
	)
}

// runOnce starts the app so its invokes run, then stops it.
func runOnce(ctx context.Context, app *fx.App) error {
	if err := app.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(contextOrBackground(ctx), commandTimeout)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
