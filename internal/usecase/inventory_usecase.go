package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cocolytics/internal/domain/model"
	repo "cocolytics/internal/repository"
)

type InventoryUsecase struct {
	tx repo.TransactionManager
}

func NewInventoryUsecase(tx repo.TransactionManager) *InventoryUsecase {
	return &InventoryUsecase{tx: tx}
}

type StockMutationOutput struct {
	ProductID int64 `json:"cocolumber_id"`
	NewStock  int64 `json:"new_stock"`
}

// StockIn は入荷。在庫を増やして台帳に+qtyで記録する。
func (u *InventoryUsecase) StockIn(ctx context.Context, p Principal, productID, quantity int64, reason string) (StockMutationOutput, error) {
	if !p.CanManageInventory() {
		return StockMutationOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if productID <= 0 {
		return StockMutationOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if quantity <= 0 {
		return StockMutationOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}
	if reason == "" {
		reason = "Stock in"
	}

	var out StockMutationOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Inventory().IncreaseStock(ctx, productID, quantity); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.StockTransactions().Create(ctx, model.StockTransaction{
			ProductID: productID,
			UserID:    p.ID,
			Type:      model.StockTransactionIn,
			Quantity:  quantity,
			Reason:    reason,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		product, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = StockMutationOutput{ProductID: productID, NewStock: product.Stock}
		return nil
	})
	if err != nil {
		return StockMutationOutput{}, err
	}
	return out, nil
}

// Dispatch は出庫。在庫が足りるときだけ減らし、台帳に-qtyで記録する。
func (u *InventoryUsecase) Dispatch(ctx context.Context, p Principal, productID, quantity int64, reason string) (StockMutationOutput, error) {
	if !p.CanManageInventory() {
		return StockMutationOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if productID <= 0 {
		return StockMutationOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if quantity <= 0 {
		return StockMutationOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}
	if reason == "" {
		reason = "Dispatch"
	}

	var out StockMutationOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, productID, quantity)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			product, ferr := r.Products().FindByID(ctx, productID)
			if errors.Is(ferr, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			available := int64(0)
			if ferr == nil {
				available = product.Stock
			}
			return &InsufficientStockError{ProductID: productID, Available: available, Requested: quantity}
		}

		if err := r.StockTransactions().Create(ctx, model.StockTransaction{
			ProductID: productID,
			UserID:    p.ID,
			Type:      model.StockTransactionDispatch,
			Quantity:  -quantity,
			Reason:    reason,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		product, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = StockMutationOutput{ProductID: productID, NewStock: product.Stock}
		return nil
	})
	if err != nil {
		return StockMutationOutput{}, err
	}
	return out, nil
}

// Adjust は棚卸し等の手動補正。符号付きdeltaをそのまま台帳に残す。
// 理由は必須。補正の結果が負になる場合は何もせず拒否。
func (u *InventoryUsecase) Adjust(ctx context.Context, p Principal, productID, delta int64, reason string) (StockMutationOutput, error) {
	if !p.CanManageInventory() {
		return StockMutationOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if productID <= 0 {
		return StockMutationOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if delta == 0 {
		return StockMutationOutput{}, NewHTTPError(http.StatusBadRequest, "adjustment quantity must be non-zero")
	}
	if strings.TrimSpace(reason) == "" {
		return StockMutationOutput{}, NewHTTPError(http.StatusBadRequest, "reason is required for adjustments")
	}

	var out StockMutationOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Inventory().AdjustStockIfNonNegative(ctx, productID, delta)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			product, ferr := r.Products().FindByID(ctx, productID)
			if errors.Is(ferr, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			current := int64(0)
			if ferr == nil {
				current = product.Stock
			}
			return &NegativeStockError{ProductID: productID, Current: current, Delta: delta}
		}

		if err := r.StockTransactions().Create(ctx, model.StockTransaction{
			ProductID: productID,
			UserID:    p.ID,
			Type:      model.StockTransactionAdjust,
			Quantity:  delta,
			Reason:    reason,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		product, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = StockMutationOutput{ProductID: productID, NewStock: product.Stock}
		return nil
	})
	if err != nil {
		return StockMutationOutput{}, err
	}
	return out, nil
}

type WarehouseDispatchInput struct {
	ProductID    int64
	Quantity     int64
	CustomerName string
	Notes        string
}

type WarehouseDispatchOutput struct {
	DispatchID int64 `json:"dispatch_id"`
	ProductID  int64 `json:"cocolumber_id"`
	NewStock   int64 `json:"new_stock"`
}

// WarehouseDispatch は倉庫からの直接払い出し。
// 在庫減算・払い出し記録・台帳追記を1トランザクションで行う。
func (u *InventoryUsecase) WarehouseDispatch(ctx context.Context, p Principal, in WarehouseDispatchInput) (WarehouseDispatchOutput, error) {
	if !p.CanManageInventory() {
		return WarehouseDispatchOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if in.ProductID <= 0 {
		return WarehouseDispatchOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity <= 0 {
		return WarehouseDispatchOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return WarehouseDispatchOutput{}, NewHTTPError(http.StatusBadRequest, "customer name is required")
	}

	var out WarehouseDispatchOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, in.ProductID, in.Quantity)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			product, ferr := r.Products().FindByID(ctx, in.ProductID)
			if errors.Is(ferr, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			available := int64(0)
			if ferr == nil {
				available = product.Stock
			}
			return &InsufficientStockError{ProductID: in.ProductID, Available: available, Requested: in.Quantity}
		}

		dispatchID, err := r.Dispatches().Create(ctx, model.WarehouseDispatch{
			ProductID:    in.ProductID,
			UserID:       p.ID,
			Quantity:     in.Quantity,
			CustomerName: in.CustomerName,
			DateReleased: time.Now(),
			Notes:        in.Notes,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.StockTransactions().Create(ctx, model.StockTransaction{
			ProductID: in.ProductID,
			UserID:    p.ID,
			Type:      model.StockTransactionDispatch,
			Quantity:  -in.Quantity,
			Reason:    fmt.Sprintf("Warehouse dispatch to %s", in.CustomerName),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		product, err := r.Products().FindByID(ctx, in.ProductID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = WarehouseDispatchOutput{
			DispatchID: dispatchID,
			ProductID:  in.ProductID,
			NewStock:   product.Stock,
		}
		return nil
	})
	if err != nil {
		return WarehouseDispatchOutput{}, err
	}
	return out, nil
}

// Transactions は商品の在庫移動履歴（新しい順）を返す。
func (u *InventoryUsecase) Transactions(ctx context.Context, p Principal, productID int64, limit int) ([]model.StockTransaction, error) {
	if !p.CanManageInventory() {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if productID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var items []model.StockTransaction

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		items, err = r.StockTransactions().ListByProductID(ctx, productID, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
