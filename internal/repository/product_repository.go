package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 公開一覧のページング
type ProductListQuery struct {
	Page  int
	Limit int
}

// 商品の永続化（保存・取得）だけを約束。
// FindByID はキャッシュせず常に現在の在庫を返すこと。カートの在庫照合はこれに依存する。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
