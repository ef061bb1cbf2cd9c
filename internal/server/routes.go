package server

import (
	"net/http"

	"cocolytics/internal/config"
	"cocolytics/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Order        *handler.OrderHandler
	Inventory    *handler.InventoryHandler
	Warehouse    *handler.WarehouseHandler
	Payment      *handler.PaymentHandler
	Notification *handler.NotificationHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Inventory.RegisterRoutes(e, cfg)
	h.Warehouse.RegisterRoutes(e, cfg)
	h.Payment.RegisterRoutes(e, cfg)
	h.Notification.RegisterRoutes(e, cfg)
}
