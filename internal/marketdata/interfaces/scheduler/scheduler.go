// Package scheduler 定时刷新关注列表中的行情
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/pkg/config"
	"github.com/wyfcoding/stockinsight/pkg/metrics"
)

// Fetcher 行情拉取
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, kind domain.DataKind, market string) (string, error)
}

// PostFetchHook 拉取成功后执行，例如生成预测
type PostFetchHook func(ctx context.Context, symbol string) error

// Scheduler 基于 cron 的关注列表刷新
type Scheduler struct {
	cron      *cron.Cron
	fetcher   Fetcher
	watchlist []config.WatchItem
	hook      PostFetchHook
	metrics   *metrics.Metrics
	logger    *slog.Logger
	ctx       context.Context
}

// NewScheduler 创建调度器，cron 表达式带秒字段
func NewScheduler(ctx context.Context, fetcher Fetcher, watchlist []config.WatchItem, hook PostFetchHook, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		fetcher:   fetcher,
		watchlist: watchlist,
		hook:      hook,
		metrics:   m,
		logger:    logger,
		ctx:       ctx,
	}
}

// Register 注册刷新任务
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RefreshAll(s.ctx) }); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "symbols", len(s.watchlist))
}

// Stop 停止调度并等待正在运行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RefreshAll 依次刷新关注列表，单个标的失败不影响其余标的。返回失败个数。
func (s *Scheduler) RefreshAll(ctx context.Context) int {
	failed := 0
	for _, item := range s.watchlist {
		if err := s.refresh(ctx, item); err != nil {
			failed++
			s.metrics.RecordScheduledRefresh("error")
			s.logger.ErrorContext(ctx, "scheduled refresh failed", "symbol", item.Symbol, "error", err)
			continue
		}
		s.metrics.RecordScheduledRefresh("success")
	}
	return failed
}

func (s *Scheduler) refresh(ctx context.Context, item config.WatchItem) error {
	symbol, err := domain.NormalizeSymbol(item.Symbol)
	if err != nil {
		return err
	}
	kind, err := domain.ParseDataKind(item.DataType)
	if err != nil {
		return err
	}

	msg, err := s.fetcher.Fetch(ctx, symbol, kind, item.Market)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, msg)

	if s.hook != nil {
		if err := s.hook(ctx, symbol); err != nil {
			return fmt.Errorf("post fetch hook: %w", err)
		}
	}
	return nil
}
