package lease

import (
	"github.com/smallbiznis/rentbook/internal/lease/repository"
	"github.com/smallbiznis/rentbook/internal/lease/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lease.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
