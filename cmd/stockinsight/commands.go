package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	bapp "github.com/wyfcoding/stockinsight/internal/backtest/application"
	"github.com/wyfcoding/stockinsight/internal/bootstrap"
	mdomain "github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/internal/report/domain"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// symbolArg 校验并规范化位置参数中的代码
func symbolArg(args []string) (string, error) {
	return mdomain.NormalizeSymbol(args[0])
}

func newFetchCmd() *cobra.Command {
	var dataType, market string

	cmd := &cobra.Command{
		Use:   "fetch SYMBOL",
		Short: "Fetch daily bars from the provider and upsert them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := symbolArg(args)
			if err != nil {
				return err
			}
			kind, err := mdomain.ParseDataKind(dataType)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.AppContext) error {
				msg, err := app.Fetch.Fetch(ctx, symbol, kind, market)
				if err != nil {
					return err
				}
				fmt.Println(msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dataType, "data-type", string(mdomain.KindStock), "stock or crypto")
	cmd.Flags().StringVar(&market, "market", mdomain.DefaultMarket, "quote market for crypto")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var horizon int

	cmd := &cobra.Command{
		Use:   "predict SYMBOL",
		Short: "Fit a linear trend and store predicted closes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := symbolArg(args)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.AppContext) error {
				h := horizon
				if h == 0 {
					h = app.Predict.DefaultHorizon()
				}
				preds, err := app.Predict.Predict(ctx, symbol, h)
				if err != nil {
					return err
				}
				for _, p := range preds {
					fmt.Printf("%s\t%s\n", p.Date.Format(mdomain.DateLayout), p.PredictedClose.StringFixed(8))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", 0, "days to extrapolate (config default when 0)")
	return cmd
}

func newEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate SYMBOL",
		Short: "Evaluate the linear trend on a chronological 80/20 split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := symbolArg(args)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.AppContext) error {
				ev, err := app.Predict.Evaluate(ctx, symbol)
				if err != nil {
					return err
				}
				return printJSON(ev)
			})
		},
	}
}

func newBacktestCmd() *cobra.Command {
	var initial string
	var short, long int

	cmd := &cobra.Command{
		Use:   "backtest SYMBOL",
		Short: "Replay the moving average crossover strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := symbolArg(args)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.AppContext) error {
				c := bapp.RunBacktestCommand{
					Symbol:            symbol,
					InitialInvestment: app.BacktestDefaults.InitialInvestment,
					ShortWindow:       app.BacktestDefaults.ShortWindow,
					LongWindow:        app.BacktestDefaults.LongWindow,
				}
				if initial != "" {
					v, err := decimal.NewFromString(initial)
					if err != nil {
						return fmt.Errorf("invalid --initial: %w", err)
					}
					c.InitialInvestment = v
				}
				if cmd.Flags().Changed("short") {
					c.ShortWindow = short
				}
				if cmd.Flags().Changed("long") {
					c.LongWindow = long
				}

				res, err := app.Backtest.RunBacktest(ctx, c)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{
					"symbol":          res.Symbol,
					"initial":         res.InitialInvestment.String(),
					"final_value":     res.FinalValue.String(),
					"total_return":    res.TotalReturn.String(),
					"max_drawdown":    res.MaxDrawdown.String(),
					"trades_executed": res.TradesExecuted,
					"trades":          res.Trades,
				})
			})
		},
	}
	cmd.Flags().StringVar(&initial, "initial", "", "initial investment (config default when empty)")
	cmd.Flags().IntVar(&short, "short", 0, "short SMA window")
	cmd.Flags().IntVar(&long, "long", 0, "long SMA window")
	return cmd
}

func newReportCmd() *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "report SYMBOL",
		Short: "Render actual and predicted closes as JSON or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := symbolArg(args)
			if err != nil {
				return err
			}
			f, err := domain.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.AppContext) error {
				res, err := app.Report.Report(ctx, symbol, f)
				if err != nil {
					return err
				}
				if f == domain.FormatJSON {
					return printJSON(res.Points)
				}
				path := out
				if path == "" {
					path = res.Filename
				}
				if err := os.WriteFile(path, res.PDF, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Println(path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(domain.FormatPDF), "json or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path for pdf (report_SYMBOL.pdf when empty)")
	return cmd
}
