package audit

import (
	"github.com/HollandRoad/mls/internal/audit/repository"
	"github.com/HollandRoad/mls/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
