package trend

import (
	"github.com/smallbiznis/facturo/internal/trend/service"
	"go.uber.org/fx"
)

var Module = fx.Module("trend.service",
	fx.Provide(service.New),
)
