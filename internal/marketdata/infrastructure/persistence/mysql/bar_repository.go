package mysql

import (
	"context"
	"fmt"

	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/pkg/db"
	"gorm.io/gorm"
)

var barUpdateColumns = []string{"open", "high", "low", "close", "volume", "updated_at"}

// BarRepository 基于 GORM 的价格存储，mysql/postgres/sqlite 通用
type BarRepository struct {
	db *gorm.DB
}

func NewBarRepository(gdb *gorm.DB) *BarRepository {
	return &BarRepository{db: gdb}
}

// Upsert 单行 upsert，每次调用独立提交
func (r *BarRepository) Upsert(ctx context.Context, bar *domain.Bar) error {
	var po BarPO
	po.FromDomain(bar)
	if err := db.UpsertWithConflict(ctx, r.db, &po, []string{"symbol", "date"}, barUpdateColumns); err != nil {
		return fmt.Errorf("upsert bar %s %s: %w", bar.Symbol, bar.Date.Format(domain.DateLayout), err)
	}
	return nil
}

func (r *BarRepository) GetSeries(ctx context.Context, symbol string) ([]*domain.Bar, error) {
	var pos []BarPO
	if err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date ASC").
		Find(&pos).Error; err != nil {
		return nil, err
	}

	bars := make([]*domain.Bar, len(pos))
	for i := range pos {
		bars[i] = pos[i].ToDomain()
	}
	return bars, nil
}

func (r *BarRepository) ListSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := r.db.WithContext(ctx).Model(&BarPO{}).Distinct("symbol").Order("symbol").Pluck("symbol", &symbols).Error
	return symbols, err
}

// AutoMigrate 建表
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&BarPO{})
}
