package communication

import (
	"github.com/HollandRoad/mls/internal/communication/service"
	"go.uber.org/fx"
)

var Module = fx.Module("communication.service",
	fx.Provide(service.NewService),
)
