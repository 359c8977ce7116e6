// Package source 从行情与预测存储读取报告所需的两个序列，不触发拉取
package source

import (
	"context"

	fdomain "github.com/wyfcoding/stockinsight/internal/forecast/domain"
	mdomain "github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/internal/report/domain"
)

type BarReader interface {
	GetSeries(ctx context.Context, symbol string) ([]*mdomain.Bar, error)
}

type PredictionReader interface {
	ListBySymbol(ctx context.Context, symbol string) ([]*fdomain.PredictedPrice, error)
}

// StoreSource 组合两个存储
type StoreSource struct {
	bars        BarReader
	predictions PredictionReader
}

func NewStoreSource(bars BarReader, predictions PredictionReader) *StoreSource {
	return &StoreSource{bars: bars, predictions: predictions}
}

func (s *StoreSource) Actual(ctx context.Context, symbol string) ([]domain.SeriesPoint, error) {
	bars, err := s.bars.GetSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SeriesPoint, len(bars))
	for i, b := range bars {
		out[i] = domain.SeriesPoint{Date: b.Date, Price: b.Close.InexactFloat64()}
	}
	return out, nil
}

func (s *StoreSource) Predicted(ctx context.Context, symbol string) ([]domain.SeriesPoint, error) {
	preds, err := s.predictions.ListBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SeriesPoint, len(preds))
	for i, p := range preds {
		out[i] = domain.SeriesPoint{Date: p.Date, Price: p.PredictedClose.InexactFloat64()}
	}
	return out, nil
}
