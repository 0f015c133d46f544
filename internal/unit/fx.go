package unit

import (
	"github.com/HollandRoad/mls/internal/unit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("unit.service",
	fx.Provide(service.NewService),
)
