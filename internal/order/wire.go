package order

import (
	"database/sql"

	"go.uber.org/zap"

	"comanda/internal/cart"
	"comanda/internal/config"
	"comanda/internal/order/controller"
	"comanda/internal/order/events"
	"comanda/internal/order/repository"
	"comanda/internal/order/service"
	"comanda/internal/order/usecase"
	"comanda/internal/tracking"
)

// Module bundles the order feature's HTTP surfaces.
type Module struct {
	Checkout  *controller.CheckoutController
	Tracking  *controller.TrackingController
	Dashboard *controller.DashboardController
}

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	pages usecase.PageFinder,
	accounts usecase.AccountFinder,
	feed *tracking.Feed,
	carts *cart.Store,
	publisher *events.Publisher,
	logger *zap.Logger,
) *Module {
	orderRepo := repository.NewMySQLOrderRepository(db)

	checkoutSvc := service.NewCheckoutService(db, orderRepo, logger, cfg.Order.SubmitTxTimeout)
	statusSvc := service.NewStatusService(orderRepo, feed, publisher, logger)

	submitUC := usecase.NewSubmitOrderUseCase(
		pages,
		checkoutSvc,
		publisher,
		logger,
		cfg.Server.BaseURL,
		cfg.Order.MaxRetryAttempts,
	)
	fulfillmentUC := usecase.NewFulfillmentUseCase(
		accounts,
		orderRepo,
		statusSvc,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	return &Module{
		Checkout:  controller.NewCheckoutController(submitUC, carts, logger),
		Tracking:  controller.NewTrackingController(orderRepo, feed, logger),
		Dashboard: controller.NewDashboardController(fulfillmentUC, logger),
	}
}
