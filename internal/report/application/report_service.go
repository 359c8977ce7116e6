package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wyfcoding/stockinsight/internal/report/domain"
	"github.com/wyfcoding/stockinsight/pkg/logger"
	"github.com/wyfcoding/stockinsight/pkg/metrics"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

// Output 报告结果。JSON 格式填充 Points，PDF 格式同时填充 PDF 与 Filename。
type Output struct {
	Symbol   string
	Format   domain.Format
	Points   []domain.Point
	PDF      []byte
	Filename string
}

type ReportService struct {
	source   domain.PriceSource
	renderer domain.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewReportService(source domain.PriceSource, renderer domain.Renderer, m *metrics.Metrics, logger *slog.Logger) *ReportService {
	return &ReportService{source: source, renderer: renderer, metrics: m, logger: logger}
}

// Report 实际价格与预测价格都存在时才生成报告
func (s *ReportService) Report(ctx context.Context, symbol string, format domain.Format) (*Output, error) {
	actual, err := s.source.Actual(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load actual prices: %w", err)
	}
	if len(actual) == 0 {
		return nil, utils.NewNoDataError("No stock data available").WithDetail("symbol", symbol)
	}

	predicted, err := s.source.Predicted(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load predicted prices: %w", err)
	}
	if len(predicted) == 0 {
		return nil, utils.NewNoDataError("No predicted data available").WithDetail("symbol", symbol)
	}

	out := &Output{
		Symbol: symbol,
		Format: format,
		Points: domain.Merge(actual, predicted),
	}

	if format == domain.FormatPDF {
		done := logger.LogDuration(ctx, "pdf rendered", "symbol", symbol, "rows", len(out.Points))
		pdf, err := s.renderer.RenderPDF(symbol, out.Points)
		done()
		if err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
		out.PDF = pdf
		out.Filename = fmt.Sprintf("report_%s.pdf", symbol)
	}

	s.metrics.RecordReport(string(format))
	s.logger.InfoContext(ctx, "report generated",
		"symbol", symbol,
		"format", format,
		"rows", len(out.Points),
	)
	return out, nil
}
