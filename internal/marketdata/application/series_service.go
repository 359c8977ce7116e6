package application

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

// SeriesService 读取价格序列，缺失时按股票拉取一次
type SeriesService struct {
	repo    domain.BarRepository
	fetcher *FetchService
	logger  *slog.Logger
}

func NewSeriesService(repo domain.BarRepository, fetcher *FetchService, logger *slog.Logger) *SeriesService {
	return &SeriesService{repo: repo, fetcher: fetcher, logger: logger}
}

// GetSeries 只读存储，不触发拉取
func (s *SeriesService) GetSeries(ctx context.Context, symbol string) ([]*domain.Bar, error) {
	return s.repo.GetSeries(ctx, symbol)
}

// EnsureSeries 存储为空时以 stock/USD 拉取一次再重读，仍为空返回 NoData。
// 拉取本身的错误只记录日志。
func (s *SeriesService) EnsureSeries(ctx context.Context, symbol string) ([]*domain.Bar, error) {
	bars, err := s.repo.GetSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		return bars, nil
	}

	if _, err := s.fetcher.Fetch(ctx, symbol, domain.KindStock, domain.DefaultMarket); err != nil {
		s.logger.WarnContext(ctx, "fetch on miss failed", "symbol", symbol, "error", err)
	}

	bars, err = s.repo.GetSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, utils.NewNoDataError("No stock data available").WithDetail("symbol", symbol)
	}
	return bars, nil
}
