package domain

import (
	"context"
	"time"
)

const PredictionsCreatedEventType = "forecast.predictions.created"

// PredictionsCreatedEvent 一次预测完成后发布
type PredictionsCreatedEvent struct {
	Symbol    string    `json:"symbol"`
	Horizon   int       `json:"horizon"`
	Inserted  int       `json:"inserted"`
	FirstDate string    `json:"first_date"`
	LastDate  string    `json:"last_date"`
	Intercept float64   `json:"intercept"`
	Slope     float64   `json:"slope"`
	CreatedAt time.Time `json:"created_at"`
}

// ObservationSource 提供按日期升序的收盘价序列，数据缺失时返回 NoData 错误
type ObservationSource interface {
	Observations(ctx context.Context, symbol string) ([]Observation, error)
}
