package cashflow

import (
	"github.com/smallbiznis/facturo/internal/cashflow/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cashflow.service",
	fx.Provide(service.New),
)
