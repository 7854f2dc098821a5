package royalty

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/royaltyflow/internal/royalty/domain"
	"github.com/smallbiznis/royaltyflow/internal/royalty/repository"
	"github.com/smallbiznis/royaltyflow/internal/royalty/service"
)

var Module = fx.Module("royalty.service",
	fx.Provide(func(db *gorm.DB) domain.Repository {
		return repository.New(db)
	}),
	fx.Provide(service.NewService),
)
