package domain

import "time"

const (
	BarsFetchedEventType  = "marketdata.bars.fetched"
	FetchRequestEventType = "marketdata.fetch.requests"
)

// BarsFetchedEvent 一次拉取成功写入后发布
type BarsFetchedEvent struct {
	Symbol    string    `json:"symbol"`
	DataType  DataKind  `json:"data_type"`
	Market    string    `json:"market,omitempty"`
	Count     int       `json:"count"`
	FirstDate string    `json:"first_date,omitempty"`
	LastDate  string    `json:"last_date,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// FetchRequest 通过 Kafka 请求拉取某个标的
type FetchRequest struct {
	Symbol   string `json:"symbol"`
	DataType string `json:"data_type"`
	Market   string `json:"market"`
}
