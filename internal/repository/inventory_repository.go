package repository

import "context"

type InventoryRepository interface {
	// 在庫の現在値を設定し、同じトランザクションで調整履歴を残す。
	// 片方だけ書けた状態を作らない。
	SetStockWithAdjustment(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error
}
