package finance

import (
	"github.com/smallbiznis/rentbook/internal/finance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("finance.service",
	fx.Provide(service.NewService),
)
