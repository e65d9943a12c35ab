package supplierrank

import (
	"github.com/smallbiznis/facturo/internal/supplierrank/service"
	"go.uber.org/fx"
)

var Module = fx.Module("supplierrank.service",
	fx.Provide(service.New),
)
