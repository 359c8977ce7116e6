package consumer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/internal/marketdata/interfaces/scheduler"
	"github.com/wyfcoding/stockinsight/pkg/mq"
)

// FetchRequestHandler 消费拉取请求并执行拉取
type FetchRequestHandler struct {
	fetcher scheduler.Fetcher
	dlq     *mq.DeadLetterQueue
	logger  *slog.Logger
}

// NewFetchRequestHandler dlq 为 nil 时失败消息只记录日志
func NewFetchRequestHandler(fetcher scheduler.Fetcher, dlq *mq.DeadLetterQueue, logger *slog.Logger) *FetchRequestHandler {
	return &FetchRequestHandler{fetcher: fetcher, dlq: dlq, logger: logger}
}

// Handle 处理单条消息
func (h *FetchRequestHandler) Handle(ctx context.Context, msg *mq.Message) error {
	var req domain.FetchRequest
	if err := msg.UnmarshalPayload(&req); err != nil {
		return err
	}

	symbol, err := domain.NormalizeSymbol(req.Symbol)
	if err != nil {
		return err
	}
	kind, err := domain.ParseDataKind(req.DataType)
	if err != nil {
		return err
	}

	result, err := h.fetcher.Fetch(ctx, symbol, kind, req.Market)
	if err != nil {
		return err
	}
	h.logger.InfoContext(ctx, result, "offset", msg.Offset)
	return nil
}

// Run 持续消费直到 ctx 结束。处理失败的消息转入死信队列后继续。
func (h *FetchRequestHandler) Run(ctx context.Context, reader mq.Reader) error {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := h.Handle(ctx, msg); err != nil {
			h.logger.ErrorContext(ctx, "fetch request failed", "key", msg.Key, "offset", msg.Offset, "error", err)
			if h.dlq == nil {
				continue
			}
			if dlqErr := h.dlq.Send(ctx, msg, "fetch request failed", err); dlqErr != nil {
				h.logger.ErrorContext(ctx, "failed to send to dead letter queue", "topic", h.dlq.Topic(), "error", dlqErr)
			}
		}
	}
}
