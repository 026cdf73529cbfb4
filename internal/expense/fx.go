package expense

import (
	"github.com/smallbiznis/rentbook/internal/expense/repository"
	"github.com/smallbiznis/rentbook/internal/expense/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expense.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
