// Package provider 实现 Alpha Vantage 日线数据源
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/pkg/config"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

const (
	stockSeriesKey  = "Time Series (Daily)"
	cryptoSeriesKey = "Time Series (Digital Currency Daily)"
)

// 数据源在出错或限流时返回的说明字段，按优先级排列
var providerMessageKeys = []string{"Error Message", "Note", "Information"}

// AlphaVantageClient Alpha Vantage REST 客户端。不做重试，超时只作为传输层保护。
type AlphaVantageClient struct {
	client *resty.Client
	apiKey string
}

// NewAlphaVantageClient 创建客户端
func NewAlphaVantageClient(cfg config.AlphaVantageConfig) *AlphaVantageClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &AlphaVantageClient{client: client, apiKey: cfg.APIKey}
}

// FetchDaily 拉取完整日线序列，按日期升序返回
func (c *AlphaVantageClient) FetchDaily(ctx context.Context, symbol string, kind domain.DataKind, market string) ([]*domain.Bar, error) {
	params := map[string]string{
		"symbol": symbol,
		"apikey": c.apiKey,
	}
	switch kind {
	case domain.KindStock:
		params["function"] = "TIME_SERIES_DAILY"
		params["outputsize"] = "full"
	case domain.KindCrypto:
		if market == "" {
			market = domain.DefaultMarket
		}
		market = strings.ToUpper(market)
		params["function"] = "DIGITAL_CURRENCY_DAILY"
		params["market"] = market
	default:
		return nil, utils.NewValidationError("Invalid data_type %q, expected stock or crypto", kind)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		return nil, utils.NewProviderError(fmt.Sprintf("Failed to reach market data provider for %s", symbol), err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, utils.NewProviderError(fmt.Sprintf("Market data provider returned HTTP %d", resp.StatusCode()), nil)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, utils.NewProviderError("Malformed response from market data provider", err)
	}

	if kind == domain.KindStock {
		return parseStockSeries(symbol, payload)
	}
	return parseCryptoSeries(symbol, market, payload)
}

func parseStockSeries(symbol string, payload map[string]json.RawMessage) ([]*domain.Bar, error) {
	series, err := extractSeries(payload, stockSeriesKey)
	if err != nil {
		return nil, err
	}

	bars := make([]*domain.Bar, 0, len(series))
	for day, row := range series {
		date, err := domain.ParseDate(day)
		if err != nil {
			return nil, utils.NewProviderError(fmt.Sprintf("Invalid date %q in provider response", day), err)
		}

		var values [5]decimal.Decimal
		fields := [5][]string{{"1. open"}, {"2. high"}, {"3. low"}, {"4. close"}, {"5. volume", "6. volume"}}
		for i, names := range fields {
			raw, ok := lookup(row, names...)
			if !ok {
				return nil, utils.NewProviderError(fmt.Sprintf("Missing field %q for %s on %s", names[0], symbol, day), nil)
			}
			if values[i], err = decimal.NewFromString(raw); err != nil {
				return nil, utils.NewProviderError(fmt.Sprintf("Invalid value %q for %q on %s", raw, names[0], day), err)
			}
		}
		bars = append(bars, domain.NewBar(symbol, date, values[0], values[1], values[2], values[3], values[4]))
	}

	sortByDate(bars)
	return bars, nil
}

// parseCryptoSeries 缺失字段按 0 填充
func parseCryptoSeries(symbol, market string, payload map[string]json.RawMessage) ([]*domain.Bar, error) {
	series, err := extractSeries(payload, cryptoSeriesKey)
	if err != nil {
		return nil, err
	}

	bars := make([]*domain.Bar, 0, len(series))
	for day, row := range series {
		date, err := domain.ParseDate(day)
		if err != nil {
			return nil, utils.NewProviderError(fmt.Sprintf("Invalid date %q in provider response", day), err)
		}

		var values [5]decimal.Decimal
		fields := [5][]string{
			{fmt.Sprintf("1a. open (%s)", market), "1. open"},
			{fmt.Sprintf("2a. high (%s)", market), "2. high"},
			{fmt.Sprintf("3a. low (%s)", market), "3. low"},
			{fmt.Sprintf("4a. close (%s)", market), "4. close"},
			{"5. volume"},
		}
		for i, names := range fields {
			raw, ok := lookup(row, names...)
			if !ok {
				values[i] = decimal.Zero
				continue
			}
			if values[i], err = decimal.NewFromString(raw); err != nil {
				return nil, utils.NewProviderError(fmt.Sprintf("Invalid value %q for %q on %s", raw, names[0], day), err)
			}
		}
		bars = append(bars, domain.NewBar(symbol, date, values[0], values[1], values[2], values[3], values[4]))
	}

	sortByDate(bars)
	return bars, nil
}

func extractSeries(payload map[string]json.RawMessage, key string) (map[string]map[string]string, error) {
	raw, ok := payload[key]
	if !ok {
		return nil, utils.NewProviderError(providerMessage(payload), nil)
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, utils.NewProviderError("Malformed time series in provider response", err)
	}
	return series, nil
}

func providerMessage(payload map[string]json.RawMessage) string {
	for _, key := range providerMessageKeys {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
			return msg
		}
	}
	return "Unknown error"
}

func lookup(row map[string]string, names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := row[name]; ok {
			return v, true
		}
	}
	return "", false
}

func sortByDate(bars []*domain.Bar) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
}
