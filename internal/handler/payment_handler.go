package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"cocolytics/internal/config"
	"cocolytics/internal/middleware"
	"cocolytics/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// webhook署名を検証する約束（paymongo.Clientが実装）
type WebhookSignatureVerifier interface {
	VerifyWebhookSignature(payload []byte, signatureHeader string) bool
}

type PaymentHandler struct {
	uc       *usecase.PaymentUsecase
	verifier WebhookSignatureVerifier
}

func NewPaymentHandler(uc *usecase.PaymentUsecase, verifier WebhookSignatureVerifier) *PaymentHandler {
	return &PaymentHandler{uc: uc, verifier: verifier}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	//webhookは認証なし（署名で守る）
	e.POST("/api/payments/webhook", h.webhook)

	g := e.Group("/api/payments")
	g.Use(middleware.AuthJWT(cfg))
	g.POST("/confirm", h.confirm)
}

// PayMongoイベントの必要な部分だけ
type webhookEvent struct {
	Data struct {
		Attributes struct {
			Type string `json:"type"`
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

func (h *PaymentHandler) webhook(c echo.Context) error {
	//署名検証は生のボディに対して行う
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sig := c.Request().Header.Get("Paymongo-Signature")
	if !h.verifier.VerifyWebhookSignature(body, sig) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	err = h.uc.HandleWebhookEvent(c.Request().Context(),
		ev.Data.Attributes.Type,
		ev.Data.Attributes.Data.ID,
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

type PaymentConfirmRequest struct {
	OrderID     int64           `json:"order_id"`
	SourceID    string          `json:"source_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *PaymentHandler) confirm(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req PaymentConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.ConfirmPayment(c.Request().Context(), userID, usecase.ConfirmPaymentInput{
		OrderID:     req.OrderID,
		SourceID:    req.SourceID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
