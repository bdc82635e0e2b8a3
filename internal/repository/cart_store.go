package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// セッションカートの置き場。キーはセッションID。
// カート本体とは別に、直前の失敗メッセージ（flash）を1つだけ持てる。
type CartStore interface {
	// LoadCart はカートを返す。無ければ空のカート。
	LoadCart(ctx context.Context, sessionKey string) (model.Cart, error)
	SaveCart(ctx context.Context, sessionKey string, cart model.Cart) error
	DeleteCart(ctx context.Context, sessionKey string) error

	// SaveFlash は次の表示で1回だけ見せるメッセージを保存する。
	SaveFlash(ctx context.Context, sessionKey string, message string) error
	// TakeFlash はメッセージを返して消す。無ければ空文字。
	TakeFlash(ctx context.Context, sessionKey string) (string, error)
}
