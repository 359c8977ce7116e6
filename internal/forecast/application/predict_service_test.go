package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/stockinsight/internal/forecast/domain"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Observations(ctx context.Context, symbol string) ([]domain.Observation, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Observation), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, symbol, fingerprint string) (*domain.LinearModel, bool) {
	args := m.Called(ctx, symbol, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.LinearModel), args.Bool(1)
}

func (m *MockCache) Put(ctx context.Context, symbol string, model *domain.LinearModel) error {
	return m.Called(ctx, symbol, model).Error(0)
}

// memoryRepo 内存预测存储，不做唯一约束
type memoryRepo struct {
	mu   sync.Mutex
	rows []*domain.PredictedPrice
}

func (r *memoryRepo) ExistingDates(_ context.Context, symbol string, from, to time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, p := range r.rows {
		if p.Symbol == symbol && !p.Date.Before(from) && !p.Date.After(to) {
			out = append(out, p.Date)
		}
	}
	return out, nil
}

func (r *memoryRepo) SaveBatch(_ context.Context, prices []*domain.PredictedPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prices {
		p.ID = uint(len(r.rows) + 1)
		r.rows = append(r.rows, p)
	}
	return nil
}

func (r *memoryRepo) ListBySymbol(_ context.Context, symbol string) ([]*domain.PredictedPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PredictedPrice
	for _, p := range r.rows {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	return out, nil
}

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func linearSeries(n int) []domain.Observation {
	obs := make([]domain.Observation, n)
	for i := range obs {
		obs[i] = domain.Observation{Date: jan1.AddDate(0, 0, i), Close: 100 + float64(i)}
	}
	return obs
}

func newService(source domain.ObservationSource, repo domain.PredictedPriceRepository, cache domain.ModelCache) *PredictService {
	return NewPredictService(source, repo, cache, nil, nil, slog.Default(), 30)
}

func TestPredict_Horizon(t *testing.T) {
	source := new(MockSource)
	source.On("Observations", mock.Anything, "AAPL").Return(linearSeries(10), nil)
	repo := &memoryRepo{}
	svc := newService(source, repo, nil)

	preds, err := svc.Predict(context.Background(), "AAPL", 30)
	require.NoError(t, err)
	require.Len(t, preds, 30)

	lastBar := jan1.AddDate(0, 0, 9)
	assert.Equal(t, lastBar.AddDate(0, 0, 1), preds[0].Date)
	for i := 1; i < len(preds); i++ {
		assert.Equal(t, preds[i-1].Date.AddDate(0, 0, 1), preds[i].Date)
	}
	assert.Equal(t, "110", preds[0].PredictedClose.String())
	assert.Len(t, repo.rows, 30)
}

func TestPredict_SkipsExistingDates(t *testing.T) {
	source := new(MockSource)
	source.On("Observations", mock.Anything, "AAPL").Return(linearSeries(10), nil)
	repo := &memoryRepo{}
	svc := newService(source, repo, nil)

	_, err := svc.Predict(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	preds, err := svc.Predict(context.Background(), "AAPL", 30)
	require.NoError(t, err)

	assert.Len(t, preds, 30)
	assert.Len(t, repo.rows, 30)
}

func TestPredict_InvalidHorizon(t *testing.T) {
	svc := newService(new(MockSource), &memoryRepo{}, nil)
	for _, h := range []int{0, -1, MaxHorizonDays + 1} {
		_, err := svc.Predict(context.Background(), "AAPL", h)
		assert.True(t, errors.Is(err, utils.ErrValidation), "horizon %d", h)
	}
}

func TestPredict_NoData(t *testing.T) {
	source := new(MockSource)
	source.On("Observations", mock.Anything, "NOPE").Return(nil, utils.NewNoDataError("No stock data available"))
	svc := newService(source, &memoryRepo{}, nil)

	_, err := svc.Predict(context.Background(), "NOPE", 30)
	assert.True(t, errors.Is(err, utils.ErrNoData))
}

func TestPredict_UsesCachedModel(t *testing.T) {
	obs := linearSeries(5)
	source := new(MockSource)
	source.On("Observations", mock.Anything, "AAPL").Return(obs, nil)

	cached := &domain.LinearModel{Intercept: 1, Slope: 0, Origin: jan1, LastDate: jan1.AddDate(0, 0, 4), Samples: 5, Fingerprint: domain.Fingerprint(obs)}
	cache := new(MockCache)
	cache.On("Get", mock.Anything, "AAPL", domain.Fingerprint(obs)).Return(cached, true)

	svc := newService(source, &memoryRepo{}, cache)
	preds, err := svc.Predict(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	assert.Equal(t, "1", preds[0].PredictedClose.String())
	cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestPredict_CacheMissStoresModel(t *testing.T) {
	obs := linearSeries(5)
	source := new(MockSource)
	source.On("Observations", mock.Anything, "AAPL").Return(obs, nil)

	cache := new(MockCache)
	cache.On("Get", mock.Anything, "AAPL", mock.Anything).Return(nil, false)
	cache.On("Put", mock.Anything, "AAPL", mock.MatchedBy(func(m *domain.LinearModel) bool {
		return m.Samples == 5
	})).Return(errors.New("redis down"))

	svc := newService(source, &memoryRepo{}, cache)
	_, err := svc.Predict(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestEvaluate(t *testing.T) {
	source := new(MockSource)
	source.On("Observations", mock.Anything, "AAPL").Return(linearSeries(10), nil)
	source.On("Observations", mock.Anything, "TINY").Return(linearSeries(2), nil)
	svc := newService(source, &memoryRepo{}, nil)

	ev, err := svc.Evaluate(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 8, ev.TrainSize)
	assert.InDelta(t, 1, ev.R2, 1e-9)

	_, err = svc.Evaluate(context.Background(), "TINY")
	assert.True(t, errors.Is(err, utils.ErrValidation))
}
