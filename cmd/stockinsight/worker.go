package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wyfcoding/stockinsight/internal/bootstrap"
	"github.com/wyfcoding/stockinsight/internal/marketdata/interfaces/consumer"
	"github.com/wyfcoding/stockinsight/internal/marketdata/interfaces/scheduler"
	"github.com/wyfcoding/stockinsight/pkg/logger"
	"github.com/wyfcoding/stockinsight/pkg/mq"
	"golang.org/x/sync/errgroup"
)

func newWorkerCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the watchlist refresh schedule and the fetch request consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, func(ctx context.Context, app *bootstrap.AppContext) error {
				return runWorker(ctx, app, once)
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "refresh the watchlist once and exit")
	return cmd
}

func runWorker(ctx context.Context, app *bootstrap.AppContext, once bool) error {
	schedCfg := app.Config.Scheduler

	var hook scheduler.PostFetchHook
	if schedCfg.PredictAfterFetch {
		hook = func(ctx context.Context, symbol string) error {
			_, err := app.Predict.Predict(ctx, symbol, app.Predict.DefaultHorizon())
			return err
		}
	}
	sched := scheduler.NewScheduler(ctx, app.Fetch, schedCfg.Watchlist, hook, app.Metrics, app.Logger)

	if once {
		if failed := sched.RefreshAll(ctx); failed > 0 {
			logger.Warn(ctx, "watchlist refresh finished with failures", "failed", failed)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	if schedCfg.Enabled {
		if err := sched.Register(schedCfg.Cron); err != nil {
			return err
		}
		sched.Start()
		g.Go(func() error {
			<-gctx.Done()
			sched.Stop()
			return nil
		})
	}

	consuming := app.Config.KafkaEnabled() && schedCfg.FetchRequestTopic != ""
	if consuming {
		reader := mq.NewConsumer(app.Config.Kafka, schedCfg.FetchRequestTopic)
		dlq := mq.NewDeadLetterQueue(app.Publisher, schedCfg.FetchRequestTopic+".dlq")
		handler := consumer.NewFetchRequestHandler(app.Fetch, dlq, app.Logger)
		g.Go(func() error {
			defer reader.Close()
			return handler.Run(gctx, reader)
		})
	}

	logger.Info(ctx, "worker started",
		"scheduler", schedCfg.Enabled,
		"consumer", consuming,
	)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}
