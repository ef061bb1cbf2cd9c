package redisx

import "fmt"

// 低在庫アラートの重複排除キー（商品ごとに1日1回）
func LowStockAlertKey(productID int64) string {
	return fmt.Sprintf("cocolytics:lowstock:%d", productID)
}
