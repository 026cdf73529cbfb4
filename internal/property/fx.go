package property

import (
	"github.com/smallbiznis/rentbook/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(service.NewService),
)
