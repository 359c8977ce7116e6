package domain

import (
	"context"
)

// BacktestDataRepository 回测数据来源，按日期升序返回全部历史，没有数据时返回 NoData 错误
type BacktestDataRepository interface {
	GetHistoricalData(ctx context.Context, symbol string) ([]Bar, error)
}
