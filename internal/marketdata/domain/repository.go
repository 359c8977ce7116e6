package domain

import "context"

// BarRepository 价格存储，只有行情拉取会写入
type BarRepository interface {
	// Upsert 按 (symbol, date) 插入或覆盖
	Upsert(ctx context.Context, bar *Bar) error
	// GetSeries 按日期升序返回该标的全部日线
	GetSeries(ctx context.Context, symbol string) ([]*Bar, error)
	// ListSymbols 已有数据的标的
	ListSymbols(ctx context.Context) ([]string, error)
}

// MarketDataProvider 第三方日线数据源
type MarketDataProvider interface {
	// FetchDaily 拉取完整日线序列，market 仅对加密货币有效
	FetchDaily(ctx context.Context, symbol string, kind DataKind, market string) ([]*Bar, error)
}
