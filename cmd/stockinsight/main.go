package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/wyfcoding/stockinsight/internal/bootstrap"
	"github.com/wyfcoding/stockinsight/pkg/config"
	"github.com/wyfcoding/stockinsight/pkg/logger"
	"github.com/wyfcoding/stockinsight/pkg/metrics"
)

// BootstrapName 服务唯一标识
const BootstrapName = "stockinsight"

var cfg *config.Config

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Fatal(context.Background(), "command failed", "error", err)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           BootstrapName,
		Short:         "Daily market data, linear trend forecasts, SMA crossover backtests and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env 只补充未设置的环境变量
			_ = godotenv.Load()

			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := logger.Init(loaded.Logger); err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config",
		config.GetEnv("STOCKINSIGHT_CONFIG", "configs/stockinsight.toml"), "config file path")

	root.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newFetchCmd(),
		newPredictCmd(),
		newEvaluateCmd(),
		newBacktestCmd(),
		newReportCmd(),
	)
	return root
}

// withApp 初始化应用上下文，执行 fn 后释放资源
func withApp(ctx context.Context, fn func(ctx context.Context, app *bootstrap.AppContext) error) error {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
	}
	app, cleanup, err := bootstrap.NewAppContext(cfg, m, logger.Get())
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, app)
}
