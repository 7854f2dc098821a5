// Package logger provides the application's zap logger as an fx module.
package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/royaltyflow/internal/config"
)

// New builds the root logger. Production gets sampled JSON output,
// everything else the human-readable development config.
func New(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

var Module = fx.Module("logger",
	fx.Provide(New),
)
