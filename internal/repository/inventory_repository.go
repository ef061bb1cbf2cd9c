package repository

import "context"

// 在庫数の変更だけを約束。チェックと更新は1文のUPDATEで行う。
type InventoryRepository interface {
	// 無条件に加算（stock_in）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 在庫が足りるときだけ減算。減らせなければ false
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 結果が0以上になるときだけ delta を加算。負になるなら false
	AdjustStockIfNonNegative(ctx context.Context, productID int64, delta int64) (bool, error)
}
