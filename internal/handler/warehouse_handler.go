package handler

import (
	"net/http"

	"cocolytics/internal/config"
	"cocolytics/internal/domain/model"
	"cocolytics/internal/middleware"
	"cocolytics/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 倉庫からの直接払い出しAPI
type WarehouseHandler struct {
	uc *usecase.InventoryUsecase
}

func NewWarehouseHandler(uc *usecase.InventoryUsecase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc}
}

func (h *WarehouseHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/warehouse")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(model.RoleStaff, model.RoleAdmin))

	g.POST("/dispatch", h.dispatch)
}

type WarehouseDispatchRequest struct {
	ProductID    int64  `json:"cocolumber_id"`
	Quantity     int64  `json:"quantity"`
	CustomerName string `json:"customer_name"`
	Notes        string `json:"notes"`
}

func (h *WarehouseHandler) dispatch(c echo.Context) error {
	p, ok := getPrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req WarehouseDispatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.WarehouseDispatch(c.Request().Context(), p, usecase.WarehouseDispatchInput{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
