// Package domain 定义收盘价趋势预测的领域模型
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PricePrecision 预测价格保留的小数位，与存储列 decimal(20,8) 一致
const PricePrecision = 8

// PredictedPrice 某个未来日期的预测收盘价。写入后不再修改。
type PredictedPrice struct {
	ID             uint
	Symbol         string
	Date           time.Time
	PredictedClose decimal.Decimal
	PredictedOpen  *decimal.Decimal
	PredictedHigh  *decimal.Decimal
	PredictedLow   *decimal.Decimal
	PredictedVol   *decimal.Decimal
	CreatedAt      time.Time
}

// Observation 用于拟合的一条 (日期, 收盘价)
type Observation struct {
	Date  time.Time
	Close float64
}

// PredictedPriceRepository 预测价格存储。(symbol, date) 不做唯一约束，由调用方先查后插。
type PredictedPriceRepository interface {
	// ExistingDates 返回 [from, to] 内已存在预测的日期
	ExistingDates(ctx context.Context, symbol string, from, to time.Time) ([]time.Time, error)
	// SaveBatch 批量插入
	SaveBatch(ctx context.Context, prices []*PredictedPrice) error
	// ListBySymbol 按日期升序返回
	ListBySymbol(ctx context.Context, symbol string) ([]*PredictedPrice, error)
}

// ModelCache 已拟合模型的缓存。缓存缺失或失效不影响结果正确性。
type ModelCache interface {
	Get(ctx context.Context, symbol, fingerprint string) (*LinearModel, bool)
	Put(ctx context.Context, symbol string, model *LinearModel) error
}
