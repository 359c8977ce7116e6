package infrastructure

import (
	"context"

	"github.com/wyfcoding/stockinsight/internal/backtest/domain"
	mdomain "github.com/wyfcoding/stockinsight/internal/marketdata/domain"
)

// SeriesLoader 行情序列加载，缺失时负责拉取
type SeriesLoader interface {
	EnsureSeries(ctx context.Context, symbol string) ([]*mdomain.Bar, error)
}

// MarketDataRepository 从行情上下文读取日线
type MarketDataRepository struct {
	loader SeriesLoader
}

func NewMarketDataRepository(loader SeriesLoader) domain.BacktestDataRepository {
	return &MarketDataRepository{loader: loader}
}

func (r *MarketDataRepository) GetHistoricalData(ctx context.Context, symbol string) ([]domain.Bar, error) {
	bars, err := r.loader.EnsureSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Bar, len(bars))
	for i, b := range bars {
		out[i] = domain.Bar{Date: b.Date, Close: b.Close}
	}
	return out, nil
}
