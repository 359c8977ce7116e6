package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/internal/backtest/domain"
	"github.com/wyfcoding/stockinsight/pkg/metrics"
)

// RunBacktestCommand 运行回测命令
type RunBacktestCommand struct {
	Symbol            string
	InitialInvestment decimal.Decimal
	ShortWindow       int
	LongWindow        int
}

// BacktestApplicationService 回测应用服务，同步执行并直接返回结果
type BacktestApplicationService struct {
	engine  *domain.BacktestEngine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewBacktestApplicationService(engine *domain.BacktestEngine, m *metrics.Metrics, logger *slog.Logger) *BacktestApplicationService {
	return &BacktestApplicationService{
		engine:  engine,
		metrics: m,
		logger:  logger,
	}
}

func (s *BacktestApplicationService) RunBacktest(ctx context.Context, cmd RunBacktestCommand) (*domain.BacktestResult, error) {
	start := time.Now()
	params := domain.CrossoverParams{
		InitialInvestment: cmd.InitialInvestment,
		ShortWindow:       cmd.ShortWindow,
		LongWindow:        cmd.LongWindow,
	}

	result, err := s.engine.RunBacktest(ctx, cmd.Symbol, params)
	if err != nil {
		s.logger.WarnContext(ctx, "backtest failed", "symbol", cmd.Symbol, "error", err)
		return nil, err
	}

	s.metrics.RecordBacktest(result.TradesExecuted)
	s.logger.InfoContext(ctx, "backtest completed",
		"symbol", cmd.Symbol,
		"short_window", cmd.ShortWindow,
		"long_window", cmd.LongWindow,
		"trades", result.TradesExecuted,
		"total_return", result.TotalReturn.String(),
		"duration", time.Since(start),
	)
	return result, nil
}
