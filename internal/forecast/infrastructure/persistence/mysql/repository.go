package mysql

import (
	"context"
	"time"

	"github.com/wyfcoding/stockinsight/internal/forecast/domain"
	"github.com/wyfcoding/stockinsight/pkg/db"
	"gorm.io/gorm"
)

const batchSize = 500

type PredictedPriceRepository struct {
	db *gorm.DB
}

func NewPredictedPriceRepository(gdb *gorm.DB) *PredictedPriceRepository {
	return &PredictedPriceRepository{db: gdb}
}

func (r *PredictedPriceRepository) ExistingDates(ctx context.Context, symbol string, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).Model(&PredictedPricePO{}).
		Where("symbol = ? AND date BETWEEN ? AND ?", symbol, truncate(from), truncate(to)).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	for i := range dates {
		dates[i] = truncate(dates[i])
	}
	return dates, nil
}

// SaveBatch 分批插入，回填自增 ID
func (r *PredictedPriceRepository) SaveBatch(ctx context.Context, prices []*domain.PredictedPrice) error {
	if len(prices) == 0 {
		return nil
	}
	pos := make([]*PredictedPricePO, len(prices))
	for i, p := range prices {
		pos[i] = &PredictedPricePO{}
		pos[i].FromDomain(p)
	}
	if err := db.BatchInsert(ctx, r.db, pos, batchSize); err != nil {
		return err
	}
	for i := range pos {
		prices[i].ID = pos[i].ID
	}
	return nil
}

func (r *PredictedPriceRepository) ListBySymbol(ctx context.Context, symbol string) ([]*domain.PredictedPrice, error) {
	var pos []PredictedPricePO
	if err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date ASC, id ASC").
		Find(&pos).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.PredictedPrice, len(pos))
	for i := range pos {
		out[i] = pos[i].ToDomain()
	}
	return out, nil
}

// AutoMigrate 建表
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&PredictedPricePO{})
}
