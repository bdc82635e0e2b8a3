package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫を「現在値」に更新し、調整履歴も残す。
// 差分の元になる読み出しも含めて1トランザクション。
func (r *InventoryGormRepository) SetStockWithAdjustment(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//変更前の在庫（差分計算用）
		var p model.Product
		if err := tx.First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		//products.stockを更新
		res := tx.Model(&model.Product{}).
			Where("id = ?", productID).
			Update("stock", newStock)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		//履歴を作成（差分）。失敗したら在庫更新ごと巻き戻る
		adj := model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       newStock - p.Stock,
			Reason:      reason,
		}
		if err := tx.Create(&adj).Error; err != nil {
			return err
		}

		return nil
	})
}
