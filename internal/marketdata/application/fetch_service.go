package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/pkg/metrics"
	"github.com/wyfcoding/stockinsight/pkg/mq"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

// FetchService 从数据源拉取日线并写入价格存储
type FetchService struct {
	provider  domain.MarketDataProvider
	repo      domain.BarRepository
	publisher mq.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewFetchService 构造函数。publisher 与 m 可以为 nil。
func NewFetchService(provider domain.MarketDataProvider, repo domain.BarRepository, publisher mq.Publisher, m *metrics.Metrics, logger *slog.Logger) *FetchService {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	return &FetchService{
		provider:  provider,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Fetch 拉取 symbol 的完整日线并逐行 upsert。
// 行与行之间没有事务，中途失败会留下部分更新并返回错误；重复调用结果一致。
func (s *FetchService) Fetch(ctx context.Context, symbol string, kind domain.DataKind, market string) (string, error) {
	if kind != domain.KindStock && kind != domain.KindCrypto {
		return "", utils.NewValidationError("Invalid data_type %q, expected stock or crypto", kind)
	}
	if kind == domain.KindCrypto {
		market = strings.ToUpper(strings.TrimSpace(market))
		if market == "" {
			market = domain.DefaultMarket
		}
	}

	bars, err := s.provider.FetchDaily(ctx, symbol, kind, market)
	if err != nil {
		s.metrics.RecordFetch(string(kind), "provider_error")
		s.logger.WarnContext(ctx, "market data fetch failed", "symbol", symbol, "data_type", kind, "error", err)
		return "", err
	}

	for i, bar := range bars {
		if err := s.repo.Upsert(ctx, bar); err != nil {
			s.metrics.RecordFetch(string(kind), "store_error")
			s.metrics.RecordBarsUpserted(i)
			return "", fmt.Errorf("store %s bars: %w", symbol, err)
		}
	}
	s.metrics.RecordBarsUpserted(len(bars))
	s.metrics.RecordFetch(string(kind), "success")

	s.logger.InfoContext(ctx, "market data fetched", "symbol", symbol, "data_type", kind, "bars", len(bars))
	s.publishFetched(ctx, symbol, kind, market, bars)

	if kind == domain.KindCrypto {
		return fmt.Sprintf("Cryptocurrency data for %s fetched successfully.", symbol), nil
	}
	return fmt.Sprintf("Stock data for %s fetched successfully.", symbol), nil
}

// publishFetched 事件发布失败只记录日志，不影响拉取结果
func (s *FetchService) publishFetched(ctx context.Context, symbol string, kind domain.DataKind, market string, bars []*domain.Bar) {
	event := domain.BarsFetchedEvent{
		Symbol:    symbol,
		DataType:  kind,
		Market:    market,
		Count:     len(bars),
		FetchedAt: time.Now().UTC(),
	}
	if len(bars) > 0 {
		event.FirstDate = bars[0].Date.Format(domain.DateLayout)
		event.LastDate = bars[len(bars)-1].Date.Format(domain.DateLayout)
	}
	if err := s.publisher.Publish(ctx, domain.BarsFetchedEventType, symbol, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish bars fetched event", "symbol", symbol, "error", err)
	}
}
