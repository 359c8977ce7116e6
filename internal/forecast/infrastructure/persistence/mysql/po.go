package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/internal/forecast/domain"
)

// PredictedPricePO 预测价格持久化对象，(symbol, date) 只建普通索引
type PredictedPricePO struct {
	ID             uint                `gorm:"primarykey"`
	Symbol         string              `gorm:"column:symbol;type:varchar(10);index:idx_pred_symbol_date,priority:1;not null"`
	Date           time.Time           `gorm:"column:date;type:date;index:idx_pred_symbol_date,priority:2;not null"`
	PredictedClose decimal.Decimal     `gorm:"column:predicted_close_price;type:decimal(20,8);not null"`
	PredictedOpen  decimal.NullDecimal `gorm:"column:predicted_open_price;type:decimal(20,8)"`
	PredictedHigh  decimal.NullDecimal `gorm:"column:predicted_high_price;type:decimal(20,8)"`
	PredictedLow   decimal.NullDecimal `gorm:"column:predicted_low_price;type:decimal(20,8)"`
	PredictedVol   decimal.NullDecimal `gorm:"column:predicted_volume;type:decimal(20,8)"`
	CreatedAt      time.Time
}

func (PredictedPricePO) TableName() string { return "forecast_predicted_prices" }

func (po *PredictedPricePO) ToDomain() *domain.PredictedPrice {
	return &domain.PredictedPrice{
		ID:             po.ID,
		Symbol:         po.Symbol,
		Date:           truncate(po.Date),
		PredictedClose: po.PredictedClose,
		PredictedOpen:  fromNull(po.PredictedOpen),
		PredictedHigh:  fromNull(po.PredictedHigh),
		PredictedLow:   fromNull(po.PredictedLow),
		PredictedVol:   fromNull(po.PredictedVol),
		CreatedAt:      po.CreatedAt,
	}
}

func (po *PredictedPricePO) FromDomain(p *domain.PredictedPrice) {
	po.ID = p.ID
	po.Symbol = p.Symbol
	po.Date = truncate(p.Date)
	po.PredictedClose = p.PredictedClose
	po.PredictedOpen = toNull(p.PredictedOpen)
	po.PredictedHigh = toNull(p.PredictedHigh)
	po.PredictedLow = toNull(p.PredictedLow)
	po.PredictedVol = toNull(p.PredictedVol)
	po.CreatedAt = p.CreatedAt
}

func toNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func fromNull(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
