package tenant

import (
	"database/sql"

	"go.uber.org/zap"

	"comanda/internal/config"
	"comanda/internal/infrastructure/redis"
	"comanda/internal/tenant/controller"
	"comanda/internal/tenant/repository"
	"comanda/internal/tenant/service"
)

// Module bundles the tenant feature. Service and Repository are exported so
// the order module can resolve pages (cached) and accounts through them.
type Module struct {
	Controller *controller.PageController
	Service    *service.PageService
	Repository *repository.MySQLTenantRepository
}

func NewModule(db *sql.DB, cache redis.Cache, cfg *config.Config, logger *zap.Logger) *Module {
	repo := repository.NewMySQLTenantRepository(db)
	svc := service.NewPageService(repo, cache, cfg.Redis.PageTTL, logger)

	return &Module{
		Controller: controller.NewPageController(svc, logger),
		Service:    svc,
		Repository: repo,
	}
}
