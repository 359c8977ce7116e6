// Package series 把行情上下文的日线序列适配为预测所需的观测
package series

import (
	"context"

	"github.com/wyfcoding/stockinsight/internal/forecast/domain"
	mdomain "github.com/wyfcoding/stockinsight/internal/marketdata/domain"
)

// BarLoader 行情序列加载，缺失时负责拉取
type BarLoader interface {
	EnsureSeries(ctx context.Context, symbol string) ([]*mdomain.Bar, error)
}

type MarketDataSource struct {
	loader BarLoader
}

func NewMarketDataSource(loader BarLoader) *MarketDataSource {
	return &MarketDataSource{loader: loader}
}

func (s *MarketDataSource) Observations(ctx context.Context, symbol string) ([]domain.Observation, error) {
	bars, err := s.loader.EnsureSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	obs := make([]domain.Observation, len(bars))
	for i, b := range bars {
		obs[i] = domain.Observation{Date: b.Date, Close: b.Close.InexactFloat64()}
	}
	return obs, nil
}
