package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 保存・取得を約束。FindBy系は見つからないとき (nil, nil) を返す。
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
}
