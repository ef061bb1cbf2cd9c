package usecase

import (
	"errors"
	"fmt"

	"cocolytics/internal/domain/model"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 在庫不足。要求数と現在庫を持ち回る。
type InsufficientStockError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", e.Available, e.Requested)
}

// 調整で在庫が負になる。
type NegativeStockError struct {
	ProductID int64
	Current   int64
	Delta     int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("Adjustment would result in negative stock. Current: %d, Adjustment: %d", e.Current, e.Delta)
}

// 外部決済プロバイダの失敗。
type PaymentProviderError struct {
	Err error
}

func (e *PaymentProviderError) Error() string {
	return fmt.Sprintf("payment provider error: %v", e.Err)
}

func (e *PaymentProviderError) Unwrap() error {
	return e.Err
}

// 認証済みの呼び出し元。middlewareがJWTから組み立てる。
type Principal struct {
	ID   int64
	Role model.Role
}

// 在庫・注文管理の操作はstaffとadminだけ
func (p Principal) CanManageInventory() bool {
	return p.Role == model.RoleStaff || p.Role == model.RoleAdmin
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}
