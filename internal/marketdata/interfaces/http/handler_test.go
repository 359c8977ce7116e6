package http

import (
	"context"
	"errors"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/stockinsight/internal/marketdata/application"
	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) FetchDaily(ctx context.Context, symbol string, kind domain.DataKind, market string) ([]*domain.Bar, error) {
	args := m.Called(ctx, symbol, kind, market)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Bar), args.Error(1)
}

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Upsert(ctx context.Context, bar *domain.Bar) error {
	return m.Called(ctx, bar).Error(0)
}

func (m *MockRepo) GetSeries(ctx context.Context, symbol string) ([]*domain.Bar, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).([]*domain.Bar), args.Error(1)
}

func (m *MockRepo) ListSymbols(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func setupRouter(provider *MockProvider, repo *MockRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := application.NewFetchService(provider, repo, nil, nil, slog.Default())
	NewMarketDataHandler(svc).RegisterRoutes(r)
	return r
}

func TestFetchHandler(t *testing.T) {
	one := decimal.NewFromInt(1)
	bars := []*domain.Bar{domain.NewBar("AAPL", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), one, one, one, one, one)}

	tests := []struct {
		name       string
		url        string
		setup      func(p *MockProvider, r *MockRepo)
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name: "stock success",
			url:  "/fetch/aapl",
			setup: func(p *MockProvider, r *MockRepo) {
				p.On("FetchDaily", mock.Anything, "AAPL", domain.KindStock, "USD").Return(bars, nil)
				r.On("Upsert", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "Stock data for AAPL fetched successfully.",
		},
		{
			name: "crypto success",
			url:  "/fetch/BTC?data_type=crypto&market=EUR",
			setup: func(p *MockProvider, r *MockRepo) {
				p.On("FetchDaily", mock.Anything, "BTC", domain.KindCrypto, "EUR").Return(bars, nil)
				r.On("Upsert", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "Cryptocurrency data for BTC fetched successfully.",
		},
		{
			name: "provider error",
			url:  "/fetch/NOPE",
			setup: func(p *MockProvider, r *MockRepo) {
				p.On("FetchDaily", mock.Anything, "NOPE", domain.KindStock, "USD").
					Return(nil, utils.NewProviderError("Invalid API call.", nil))
			},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantValue:  "Invalid API call.",
		},
		{
			name: "store error",
			url:  "/fetch/AAPL",
			setup: func(p *MockProvider, r *MockRepo) {
				p.On("FetchDaily", mock.Anything, "AAPL", domain.KindStock, "USD").Return(bars, nil)
				r.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("database is locked"))
			},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantValue:  "store AAPL bars: database is locked",
		},
		{
			name:       "invalid data type",
			url:        "/fetch/AAPL?data_type=forex",
			setup:      func(*MockProvider, *MockRepo) {},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
		},
		{
			name:       "invalid symbol",
			url:        "/fetch/TOOLONGSYMBOL",
			setup:      func(*MockProvider, *MockRepo) {},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, repo := new(MockProvider), new(MockRepo)
			tt.setup(provider, repo)
			r := setupRouter(provider, repo)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body, tt.wantKey)
			if tt.wantValue != "" {
				assert.Equal(t, tt.wantValue, body[tt.wantKey])
			}
			provider.AssertExpectations(t)
		})
	}
}
