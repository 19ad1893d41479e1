package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zecs/internal/config"
	"github.com/zeusync/zecs/internal/core/events/bus"
	"github.com/zeusync/zecs/internal/core/observability/log"
)

// App holds the services every world of a run shares.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Bus    bus.EventBus
}

var ProviderSet = wire.NewSet(
	config.Load,
	ProvideLogger,
	ProvideBus,
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the logger described by cfg. The cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	logger, err := log.NewWithConfig(log.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}
