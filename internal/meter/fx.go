package meter

import (
	"github.com/smallbiznis/rentbook/internal/meter/repository"
	"github.com/smallbiznis/rentbook/internal/meter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
