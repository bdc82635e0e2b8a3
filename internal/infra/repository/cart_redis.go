package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// セッションカートをRedisに置く実装。
// カート本体は cart:<sessionKey>、flashメッセージは cartmsg:<sessionKey>。
// どちらもセッションTTLで勝手に消える（セッション終了＝カート破棄）。
type CartRedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartRedisStore(rdb *redis.Client, ttl time.Duration) *CartRedisStore {
	return &CartRedisStore{rdb: rdb, ttl: ttl}
}

func cartKey(sessionKey string) string {
	return "cart:" + sessionKey
}

func flashKey(sessionKey string) string {
	return "cartmsg:" + sessionKey
}

// LoadCart はカートを返す。キーが無ければ空のカート。
func (s *CartRedisStore) LoadCart(ctx context.Context, sessionKey string) (model.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(sessionKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{Lines: []model.CartLine{}}, nil
	}
	if err != nil {
		return model.Cart{}, err
	}

	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return model.Cart{}, err
	}
	if cart.Lines == nil {
		cart.Lines = []model.CartLine{}
	}
	return cart, nil
}

func (s *CartRedisStore) SaveCart(ctx context.Context, sessionKey string, cart model.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(sessionKey), raw, s.ttl).Err()
}

func (s *CartRedisStore) DeleteCart(ctx context.Context, sessionKey string) error {
	return s.rdb.Del(ctx, cartKey(sessionKey), flashKey(sessionKey)).Err()
}

func (s *CartRedisStore) SaveFlash(ctx context.Context, sessionKey string, message string) error {
	return s.rdb.Set(ctx, flashKey(sessionKey), message, s.ttl).Err()
}

// TakeFlash はメッセージを読み出して消す。無ければ空文字。
func (s *CartRedisStore) TakeFlash(ctx context.Context, sessionKey string) (string, error) {
	msg, err := s.rdb.GetDel(ctx, flashKey(sessionKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return msg, nil
}
