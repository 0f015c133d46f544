package tenancy

import (
	"github.com/HollandRoad/mls/internal/tenancy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenancy.service",
	fx.Provide(service.NewService),
)
