package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/stockinsight/internal/report/application"
	"github.com/wyfcoding/stockinsight/internal/report/domain"
	"github.com/wyfcoding/stockinsight/internal/report/infrastructure/render"
)

type stubSource struct {
	actual    map[string][]domain.SeriesPoint
	predicted map[string][]domain.SeriesPoint
}

func (s stubSource) Actual(_ context.Context, symbol string) ([]domain.SeriesPoint, error) {
	return s.actual[symbol], nil
}

func (s stubSource) Predicted(_ context.Context, symbol string) ([]domain.SeriesPoint, error) {
	return s.predicted[symbol], nil
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := stubSource{
		actual: map[string][]domain.SeriesPoint{
			"AAPL": {{Date: d, Price: 10}, {Date: d.AddDate(0, 0, 1), Price: 11}},
			"BARE": {{Date: d, Price: 10}},
		},
		predicted: map[string][]domain.SeriesPoint{
			"AAPL": {{Date: d.AddDate(0, 0, 2), Price: 12}},
		},
	}
	svc := application.NewReportService(src, render.NewPDFRenderer(), nil, slog.Default())

	r := gin.New()
	NewReportHandler(svc).RegisterRoutes(r)
	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestReportHandler_JSON(t *testing.T) {
	w := get(setupRouter(), "/report/aapl?format=json")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-01-01", rows[0]["date"])
	assert.Equal(t, 10.0, rows[0]["close_price"])
	assert.Nil(t, rows[0]["predicted_close_price"])
	assert.Contains(t, rows[0], "predicted_close_price")
	assert.Nil(t, rows[2]["close_price"])
	assert.Equal(t, 12.0, rows[2]["predicted_close_price"])
}

func TestReportHandler_PDFDefault(t *testing.T) {
	w := get(setupRouter(), "/report/AAPL")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report_AAPL.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestReportHandler_Errors(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		url        string
		wantStatus int
		wantError  string
	}{
		{"/report/NOPE?format=json", http.StatusNotFound, "No stock data available"},
		{"/report/BARE?format=json", http.StatusNotFound, "No predicted data available"},
		{"/report/AAPL?format=xml", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := get(r, tt.url)
			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}
