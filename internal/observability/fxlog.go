package observability

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// fxLogger routes fx lifecycle events through the application logger so DI
// wiring failures surface in the same stream as everything else.
func fxLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
}
