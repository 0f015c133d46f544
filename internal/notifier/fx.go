package notifier

import (
	"context"

	"github.com/HollandRoad/mls/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("notifier",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			BatchSize:    cfg.Notifier.BatchSize,
			PollInterval: cfg.Notifier.PollInterval,
		}
	}),
	fx.Provide(NewLogMailer),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, cfg config.Config, worker *Worker) {
	if !cfg.Notifier.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
	})
}
