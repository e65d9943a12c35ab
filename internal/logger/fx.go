package logger

import "go.uber.org/fx"

// Module provides a zap logger configured for production.
var Module = fx.Module("logger",
	fx.Provide(New),
)
