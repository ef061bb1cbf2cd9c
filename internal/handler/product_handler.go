package handler

import (
	"errors"
	"net/http"
	"strconv"

	"cocolytics/internal/config"
	"cocolytics/internal/domain/model"
	"cocolytics/internal/middleware"
	"cocolytics/internal/repository"
	"cocolytics/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのエラーをHTTPステータスへ変換する唯一の場所。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	var ise *usecase.InsufficientStockError
	if errors.As(err, &ise) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ise.Error()})
	}

	var nse *usecase.NegativeStockError
	if errors.As(err, &nse) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: nse.Error()})
	}

	var ppe *usecase.PaymentProviderError
	if errors.As(err, &ppe) {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "payment provider error"})
	}

	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// middlewareが入れたuser_idを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// user_id + role をPrincipalへ
func getPrincipalFromContext(c echo.Context) (usecase.Principal, bool) {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return usecase.Principal{}, false
	}

	role, ok := c.Get(middleware.CtxUserRoleKey).(string)
	if !ok || role == "" {
		return usecase.Principal{}, false
	}

	return usecase.Principal{ID: id, Role: model.Role(role)}, true
}

// /api/products（ココランバー在庫）のAPI
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/products")

	g.GET("", h.list)
	g.GET("/quote", h.quote)
	g.GET("/:id", h.detail)

	//登録・変更はstaff/adminのみ
	mg := e.Group("/api/products")
	mg.Use(middleware.AuthJWT(cfg))
	mg.Use(middleware.RoleGuard(model.RoleStaff, model.RoleAdmin))
	mg.POST("", h.create)
	mg.PUT("/:id", h.update)
	mg.DELETE("/:id", h.remove)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	var staffID *int64
	if v := c.QueryParam("staff_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid staff_id"})
		}
		staffID = &x
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:    page,
		Limit:   limit,
		Size:    c.QueryParam("size"),
		StaffID: staffID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

// 見積もり（DBを触らない価格計算）
func (h *ProductHandler) quote(c echo.Context) error {
	var length decimal.Decimal
	if v := c.QueryParam("length"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid length"})
		}
		length = d
	}

	var qty int64 = 1
	if v := c.QueryParam("quantity"); v != "" {
		q, err := strconv.ParseInt(v, 10, 64)
		if err != nil || q <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity"})
		}
		qty = q
	}

	out, err := h.uc.Quote(c.Request().Context(), usecase.QuoteInput{
		Size:         c.QueryParam("size"),
		Length:       length,
		QualityGrade: c.QueryParam("quality_grade"),
		Quantity:     qty,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

type ProductCreateRequest struct {
	Size           string          `json:"size"`
	Length         decimal.Decimal `json:"length"`
	Stock          int64           `json:"stock"`
	QualityGrade   string          `json:"quality_grade"`
	ProductPicture string          `json:"product_picture"`
}

func (h *ProductHandler) create(c echo.Context) error {
	p, ok := getPrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), p, usecase.CreateProductInput{
		Size:           req.Size,
		Length:         req.Length,
		Stock:          req.Stock,
		QualityGrade:   req.QualityGrade,
		ProductPicture: req.ProductPicture,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) update(c echo.Context) error {
	p, ok := getPrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	err = h.uc.UpdateProduct(c.Request().Context(), p, id, usecase.UpdateProductInput{
		Size:           req.Size,
		Length:         req.Length,
		QualityGrade:   req.QualityGrade,
		ProductPicture: req.ProductPicture,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
}

func (h *ProductHandler) remove(c echo.Context) error {
	p, ok := getPrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), p, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}
