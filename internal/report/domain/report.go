// Package domain 实际价格与预测价格对照报告的领域模型
package domain

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/wyfcoding/stockinsight/pkg/utils"
)

// Format 报告输出格式
type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat 空串视为 pdf
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", utils.NewValidationError("Invalid format %q, expected json or pdf", s)
	}
}

// SeriesPoint 单条 (日期, 价格)
type SeriesPoint struct {
	Date  time.Time
	Price float64
}

// Point 合并后的一行，缺失一侧为 nil
type Point struct {
	Date      time.Time `json:"date"`
	Close     *float64  `json:"close_price"`
	Predicted *float64  `json:"predicted_close_price"`
}

// PriceSource 报告的数据来源，两个序列均按日期升序
type PriceSource interface {
	Actual(ctx context.Context, symbol string) ([]SeriesPoint, error)
	Predicted(ctx context.Context, symbol string) ([]SeriesPoint, error)
}

// Renderer 把合并后的序列渲染为 PDF
type Renderer interface {
	RenderPDF(symbol string, points []Point) ([]byte, error)
}

// Merge 按日期外连接两个序列，结果按日期升序。
// 同一日期有多条预测时每条预测各占一行，实际价格在这些行上重复。
func Merge(actual, predicted []SeriesPoint) []Point {
	actualByDay := make(map[int64]float64, len(actual))
	predByDay := make(map[int64][]float64, len(predicted))
	days := make(map[int64]time.Time, len(actual)+len(predicted))

	for _, a := range actual {
		k := a.Date.Unix()
		actualByDay[k] = a.Price
		days[k] = a.Date
	}
	for _, p := range predicted {
		k := p.Date.Unix()
		predByDay[k] = append(predByDay[k], p.Price)
		days[k] = p.Date
	}

	keys := make([]int64, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Point, 0, len(keys))
	for _, k := range keys {
		var closePtr *float64
		if c, ok := actualByDay[k]; ok {
			closePtr = &c
		}
		preds := predByDay[k]
		if len(preds) == 0 {
			out = append(out, Point{Date: days[k], Close: closePtr})
			continue
		}
		for _, p := range preds {
			out = append(out, Point{Date: days[k], Close: closePtr, Predicted: &p})
		}
	}
	return out
}
