package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentbook/internal/cache"
	"github.com/smallbiznis/rentbook/internal/category"
	"github.com/smallbiznis/rentbook/internal/clock"
	"github.com/smallbiznis/rentbook/internal/config"
	"github.com/smallbiznis/rentbook/internal/expense"
	"github.com/smallbiznis/rentbook/internal/finance"
	"github.com/smallbiznis/rentbook/internal/invoice"
	"github.com/smallbiznis/rentbook/internal/lease"
	"github.com/smallbiznis/rentbook/internal/meter"
	"github.com/smallbiznis/rentbook/internal/observability"
	"github.com/smallbiznis/rentbook/internal/property"
	"github.com/smallbiznis/rentbook/internal/providers"
	"github.com/smallbiznis/rentbook/internal/ratelimit"
	"github.com/smallbiznis/rentbook/pkg/db"
	"go.uber.org/fx"
)

// coreModules is the infrastructure every command needs.
func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
	)
}

func domainModules() fx.Option {
	return fx.Options(
		cache.Module,
		ratelimit.Module,
		providers.Module,
		property.Module,
		lease.Module,
		meter.Module,
		category.Module,
		expense.Module,
		invoice.Module,
		finance.Module,
	)
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
