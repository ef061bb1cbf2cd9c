package handler

import (
	"net/http"
	"strconv"

	"cocolytics/internal/config"
	"cocolytics/internal/domain/model"
	"cocolytics/internal/middleware"
	"cocolytics/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderItemRequest struct {
	ProductID int64 `json:"cocolumber_id"`
	Quantity  int64 `json:"quantity"`
}

type DeliveryAddressRequest struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	Barangay   string `json:"barangay"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes"`
}

type OrderCreateRequest struct {
	Items           []OrderItemRequest      `json:"items"`
	PaymentMethod   string                  `json:"payment_method"`
	ShippingFee     decimal.Decimal         `json:"shipping_fee"`
	DeliveryAddress *DeliveryAddressRequest `json:"delivery_address"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/create", h.create)
	g.GET("/my-orders", h.myOrders)

	mg := e.Group("/api/orders")
	mg.Use(middleware.AuthJWT(cfg))
	mg.Use(middleware.RoleGuard(model.RoleStaff, model.RoleAdmin))
	mg.GET("/all", h.all)
	mg.PUT("/:id/status", h.updateStatus)
	mg.POST("/:id/ship", h.ship)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	var addr *usecase.DeliveryAddressInput
	if req.DeliveryAddress != nil {
		addr = &usecase.DeliveryAddressInput{
			FullName:   req.DeliveryAddress.FullName,
			Phone:      req.DeliveryAddress.Phone,
			Street:     req.DeliveryAddress.Street,
			Barangay:   req.DeliveryAddress.Barangay,
			City:       req.DeliveryAddress.City,
			Province:   req.DeliveryAddress.Province,
			PostalCode: req.DeliveryAddress.PostalCode,
			Notes:      req.DeliveryAddress.Notes,
		}
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		Items:           items,
		PaymentMethod:   req.PaymentMethod,
		ShippingFee:     req.ShippingFee,
		DeliveryAddress: addr,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

type orderListResponse struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (h *OrderHandler) myOrders(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit := pageAndLimit(c)

	items, total, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, orderListResponse{Items: items, Total: total, Page: page, Limit: limit})
}

func (h *OrderHandler) all(c echo.Context) error {
	p, ok := getPrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit := pageAndLimit(c)
	status := c.QueryParam("status")

	items, total, err := h.uc.ListAllOrders(c.Request().Context(), p, page, limit, status)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, orderListResponse{Items: items, Total: total, Page: page, Limit: limit})
}

type OrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	p, ok := getPrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), p, id, model.OrderStatus(req.Status)); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "status updated"})
}

type OrderShipRequest struct {
	CourierName string `json:"courier_name"`
	TrackingNo  string `json:"tracking_number"`
}

func (h *OrderHandler) ship(c echo.Context) error {
	p, ok := getPrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderShipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	err = h.uc.Ship(c.Request().Context(), p, id, usecase.ShipOrderInput{
		CourierName: req.CourierName,
		TrackingNo:  req.TrackingNo,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "order shipped"})
}

// page/limitクエリの共通処理
func pageAndLimit(c echo.Context) (int, int) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}

	return page, limit
}
