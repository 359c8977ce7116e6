package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
)

// BarPO 日线持久化对象
type BarPO struct {
	ID        uint            `gorm:"primarykey"`
	Symbol    string          `gorm:"column:symbol;type:varchar(10);uniqueIndex:idx_bar_symbol_date,priority:1;not null"`
	Date      time.Time       `gorm:"column:date;type:date;uniqueIndex:idx_bar_symbol_date,priority:2;not null"`
	Open      decimal.Decimal `gorm:"column:open;type:decimal(20,8);not null"`
	High      decimal.Decimal `gorm:"column:high;type:decimal(20,8);not null"`
	Low       decimal.Decimal `gorm:"column:low;type:decimal(20,8);not null"`
	Close     decimal.Decimal `gorm:"column:close;type:decimal(20,8);not null"`
	Volume    decimal.Decimal `gorm:"column:volume;type:decimal(20,8);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BarPO) TableName() string { return "marketdata_bars" }

func (po *BarPO) ToDomain() *domain.Bar {
	return &domain.Bar{
		Symbol: po.Symbol,
		Date:   domain.TruncateDate(po.Date),
		Open:   po.Open,
		High:   po.High,
		Low:    po.Low,
		Close:  po.Close,
		Volume: po.Volume,
	}
}

func (po *BarPO) FromDomain(b *domain.Bar) {
	po.Symbol = b.Symbol
	po.Date = domain.TruncateDate(b.Date)
	po.Open = b.Open
	po.High = b.High
	po.Low = b.Low
	po.Close = b.Close
	po.Volume = b.Volume
}
