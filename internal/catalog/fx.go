package catalog

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/royaltyflow/internal/catalog/domain"
	"github.com/smallbiznis/royaltyflow/internal/catalog/repository"
	"github.com/smallbiznis/royaltyflow/internal/catalog/service"
)

var Module = fx.Module("catalog.service",
	fx.Provide(func(db *gorm.DB) domain.Repository {
		return repository.New(db)
	}),
	fx.Provide(service.NewService),
)
