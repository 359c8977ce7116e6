package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/stockinsight/internal/report/domain"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Actual(ctx context.Context, symbol string) ([]domain.SeriesPoint, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).([]domain.SeriesPoint), args.Error(1)
}

func (m *MockSource) Predicted(ctx context.Context, symbol string) ([]domain.SeriesPoint, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).([]domain.SeriesPoint), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderPDF(symbol string, points []domain.Point) ([]byte, error) {
	args := m.Called(symbol, points)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var d1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestReport_JSON(t *testing.T) {
	source := new(MockSource)
	source.On("Actual", mock.Anything, "AAPL").Return([]domain.SeriesPoint{{Date: d1, Price: 10}}, nil)
	source.On("Predicted", mock.Anything, "AAPL").Return([]domain.SeriesPoint{{Date: d1.AddDate(0, 0, 1), Price: 11}}, nil)
	renderer := new(MockRenderer)

	svc := NewReportService(source, renderer, nil, slog.Default())
	out, err := svc.Report(context.Background(), "AAPL", domain.FormatJSON)
	require.NoError(t, err)
	assert.Len(t, out.Points, 2)
	assert.Nil(t, out.PDF)
	renderer.AssertNotCalled(t, "RenderPDF", mock.Anything, mock.Anything)
}

func TestReport_PDF(t *testing.T) {
	source := new(MockSource)
	source.On("Actual", mock.Anything, "AAPL").Return([]domain.SeriesPoint{{Date: d1, Price: 10}}, nil)
	source.On("Predicted", mock.Anything, "AAPL").Return([]domain.SeriesPoint{{Date: d1.AddDate(0, 0, 1), Price: 11}}, nil)
	renderer := new(MockRenderer)
	renderer.On("RenderPDF", "AAPL", mock.Anything).Return([]byte("%PDF-1.3"), nil)

	svc := NewReportService(source, renderer, nil, slog.Default())
	out, err := svc.Report(context.Background(), "AAPL", domain.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "report_AAPL.pdf", out.Filename)
	assert.Equal(t, []byte("%PDF-1.3"), out.PDF)
}

func TestReport_NoData(t *testing.T) {
	source := new(MockSource)
	source.On("Actual", mock.Anything, "NOPE").Return([]domain.SeriesPoint{}, nil)
	source.On("Actual", mock.Anything, "NEW").Return([]domain.SeriesPoint{{Date: d1, Price: 10}}, nil)
	source.On("Predicted", mock.Anything, "NEW").Return([]domain.SeriesPoint{}, nil)

	svc := NewReportService(source, new(MockRenderer), nil, slog.Default())

	_, err := svc.Report(context.Background(), "NOPE", domain.FormatJSON)
	require.True(t, errors.Is(err, utils.ErrNoData))
	assert.Equal(t, "No stock data available", err.Error())

	_, err = svc.Report(context.Background(), "NEW", domain.FormatJSON)
	require.True(t, errors.Is(err, utils.ErrNoData))
	assert.Equal(t, "No predicted data available", err.Error())
}
