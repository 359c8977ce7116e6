package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wyfcoding/stockinsight/internal/forecast/domain"
	"github.com/wyfcoding/stockinsight/pkg/metrics"
	"github.com/wyfcoding/stockinsight/pkg/mq"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

// MaxHorizonDays 单次预测的最大天数
const MaxHorizonDays = 365

const dateKey = "2006-01-02"

// PredictService 拟合线性趋势并写入预测价格
type PredictService struct {
	source         domain.ObservationSource
	repo           domain.PredictedPriceRepository
	cache          domain.ModelCache
	publisher      mq.Publisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	defaultHorizon int
	now            func() time.Time
}

// NewPredictService 构造函数。cache、publisher、m 可以为 nil。
func NewPredictService(
	source domain.ObservationSource,
	repo domain.PredictedPriceRepository,
	cache domain.ModelCache,
	publisher mq.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	defaultHorizon int,
) *PredictService {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	return &PredictService{
		source:         source,
		repo:           repo,
		cache:          cache,
		publisher:      publisher,
		metrics:        m,
		logger:         logger,
		defaultHorizon: defaultHorizon,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// DefaultHorizon 请求未指定时使用的天数
func (s *PredictService) DefaultHorizon() int {
	return s.defaultHorizon
}

// Predict 用全部历史拟合并外推 horizon 天，写入尚不存在的日期，返回本次计算的完整结果。
// 先查后插没有隔离，并发的相同请求可能写入重复行。
func (s *PredictService) Predict(ctx context.Context, symbol string, horizon int) ([]*domain.PredictedPrice, error) {
	if horizon <= 0 || horizon > MaxHorizonDays {
		return nil, utils.NewValidationError("horizon_days must be between 1 and %d", MaxHorizonDays)
	}

	obs, err := s.source.Observations(ctx, symbol)
	if err != nil {
		return nil, err
	}

	model, err := s.model(ctx, symbol, obs)
	if err != nil {
		return nil, err
	}

	preds := model.Extrapolate(symbol, horizon, s.now())
	inserted, err := s.persist(ctx, symbol, preds)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "predictions generated",
		"symbol", symbol,
		"horizon", horizon,
		"inserted", inserted,
		"slope", model.Slope,
	)
	s.publishCreated(ctx, symbol, horizon, inserted, model, preds)
	return preds, nil
}

// model 优先使用指纹一致的缓存模型
func (s *PredictService) model(ctx context.Context, symbol string, obs []domain.Observation) (*domain.LinearModel, error) {
	if s.cache != nil {
		if m, ok := s.cache.Get(ctx, symbol, domain.Fingerprint(obs)); ok {
			s.logger.DebugContext(ctx, "model cache hit", "symbol", symbol)
			return m, nil
		}
	}

	m, err := domain.FitLinearModel(obs)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", symbol, err)
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, symbol, m); err != nil {
			s.logger.WarnContext(ctx, "model cache write failed", "symbol", symbol, "error", err)
		}
	}
	return m, nil
}

// persist 跳过区间内已有日期，返回插入条数
func (s *PredictService) persist(ctx context.Context, symbol string, preds []*domain.PredictedPrice) (int, error) {
	if len(preds) == 0 {
		return 0, nil
	}
	existing, err := s.repo.ExistingDates(ctx, symbol, preds[0].Date, preds[len(preds)-1].Date)
	if err != nil {
		return 0, fmt.Errorf("load existing predictions: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		seen[d.Format(dateKey)] = struct{}{}
	}

	fresh := make([]*domain.PredictedPrice, 0, len(preds))
	for _, p := range preds {
		if _, ok := seen[p.Date.Format(dateKey)]; !ok {
			fresh = append(fresh, p)
		}
	}
	if err := s.repo.SaveBatch(ctx, fresh); err != nil {
		return 0, fmt.Errorf("save predictions: %w", err)
	}
	s.metrics.RecordPredictionsPersisted(len(fresh))
	return len(fresh), nil
}

func (s *PredictService) publishCreated(ctx context.Context, symbol string, horizon, inserted int, model *domain.LinearModel, preds []*domain.PredictedPrice) {
	if len(preds) == 0 {
		return
	}
	event := domain.PredictionsCreatedEvent{
		Symbol:    symbol,
		Horizon:   horizon,
		Inserted:  inserted,
		FirstDate: preds[0].Date.Format(dateKey),
		LastDate:  preds[len(preds)-1].Date.Format(dateKey),
		Intercept: model.Intercept,
		Slope:     model.Slope,
		CreatedAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, domain.PredictionsCreatedEventType, symbol, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish predictions created event", "symbol", symbol, "error", err)
	}
}

// Evaluate 离线评估，不写库
func (s *PredictService) Evaluate(ctx context.Context, symbol string) (*domain.Evaluation, error) {
	obs, err := s.source.Observations(ctx, symbol)
	if err != nil {
		return nil, err
	}
	ev, err := domain.Evaluate(symbol, obs)
	if err != nil {
		return nil, utils.NewValidationError("Cannot evaluate %s: %v", symbol, err)
	}
	return ev, nil
}
