package cache

import "go.uber.org/fx"

var Module = fx.Module("cache",
	fx.Provide(NewRedisClient),
	fx.Provide(NewSummaryCache),
	fx.Provide(func(c SummaryCache) Invalidator { return c }),
)
