package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// カタログの商品。stockは常に現在値。
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int64           `gorm:"not null" json:"stock"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Snapshot はカート明細に保存するコピーを返す。
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
	}
}
