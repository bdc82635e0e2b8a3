package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// カート操作の失敗種別。
type CartErrorKind string

const (
	//数量が整数でない、または範囲外
	CartErrInvalidQuantity CartErrorKind = "INVALID_QUANTITY"
	//商品がカタログに無い（削除済み・非公開含む）
	CartErrProductNotFound CartErrorKind = "PRODUCT_NOT_FOUND"
	//要求数量が現在の在庫を超えた
	CartErrInsufficientStock CartErrorKind = "INSUFFICIENT_STOCK"
	//カタログ/ストアのI/O失敗。これだけサーバ側の障害としてログする
	CartErrStoreUnavailable CartErrorKind = "STORE_UNAVAILABLE"
)

// カート操作の失敗。ユーザーに見せるMessageを持つ。
// AvailableStock は InsufficientStock のときだけ意味がある。
type CartError struct {
	Kind           CartErrorKind
	Message        string
	AvailableStock int64
}

func (e *CartError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func AsCartError(err error) (*CartError, bool) {
	ce, ok := err.(*CartError)
	return ce, ok
}

// CartService はカート更新の判断ロジック。
// I/Oは商品の取り直し（ProductRepository）だけで、カートの保存は呼び出し側の責務。
// 失敗したら渡されたカートには一切手を付けずそのまま返す。
type CartService struct {
	products repo.ProductRepository
}

func NewCartService(products repo.ProductRepository) *CartService {
	return &CartService{products: products}
}

// Viewの返却。小計は decimal で正確に計算する。
type CartView struct {
	Lines    []model.CartLine `json:"lines"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

// Add はカートに数量を「加算」する。
// 既に同じ商品があれば 既存数量+要求数量 を在庫と照合する（Updateと違い絶対値ではない）。
// 在庫は毎回この場で取り直す。古いスナップショットの在庫では判断しない。
func (s *CartService) Add(ctx context.Context, cart model.Cart, productID int64, rawQty string) (model.Cart, error) {
	qty, err := parseQuantity(rawQty)
	if err != nil || qty <= 0 {
		return cart, &CartError{Kind: CartErrInvalidQuantity, Message: "Invalid quantity."}
	}

	p, cerr := s.fetchProduct(ctx, productID)
	if cerr != nil {
		return cart, cerr
	}

	//加算後の数量で在庫と照合
	prospective := qty
	if i := cart.LineIndex(productID); i >= 0 {
		prospective += cart.Lines[i].Quantity
	}
	if prospective > p.Stock {
		return cart, insufficientStock(p)
	}

	next := cart.Clone()
	if i := next.LineIndex(productID); i >= 0 {
		//既存明細は数量を増やし、スナップショットも取り直す
		next.Lines[i].Quantity = prospective
		next.Lines[i].Product = p.Snapshot()
	} else {
		//新規明細は末尾に追加（表示順＝追加順）
		next.Lines = append(next.Lines, model.CartLine{Product: p.Snapshot(), Quantity: qty})
	}
	return next, nil
}

// Update は数量を「この値にする」（Addと違い加算ではない）。
// 0 は削除の意味で正常入力。対象明細が無ければ何もせず成功。
func (s *CartService) Update(ctx context.Context, cart model.Cart, productID int64, rawQty string) (model.Cart, error) {
	qty, err := parseQuantity(rawQty)
	if err != nil || qty < 0 {
		return cart, &CartError{Kind: CartErrInvalidQuantity, Message: "Invalid quantity."}
	}

	i := cart.LineIndex(productID)
	if i < 0 {
		//更新対象が無いのはエラーではない
		return cart, nil
	}

	if qty == 0 {
		return s.Remove(cart, productID), nil
	}

	//商品が消えている・在庫が変わっている可能性があるので取り直す
	p, cerr := s.fetchProduct(ctx, productID)
	if cerr != nil {
		return cart, cerr
	}
	if qty > p.Stock {
		return cart, insufficientStock(p)
	}

	next := cart.Clone()
	next.Lines[i].Quantity = qty
	next.Lines[i].Product = p.Snapshot()
	return next, nil
}

// Remove は productID の明細を無条件に取り除く。無ければ何もしない（冪等）。
func (s *CartService) Remove(cart model.Cart, productID int64) model.Cart {
	next := model.Cart{Lines: make([]model.CartLine, 0, len(cart.Lines))}
	for _, l := range cart.Lines {
		if l.Product.ID == productID {
			continue
		}
		next.Lines = append(next.Lines, l)
	}
	return next
}

// View は明細と小計を返す純粋な読み取り。
// 小計は明細の追加順に price×quantity を加算する。
func (s *CartService) View(cart model.Cart) CartView {
	lines := cart.Lines
	if lines == nil {
		lines = []model.CartLine{}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Product.Price.Mul(decimal.NewFromInt(l.Quantity)))
	}

	return CartView{Lines: lines, Subtotal: subtotal}
}

// 商品を現在値で取り直す。非公開は「無い」扱い。
func (s *CartService) fetchProduct(ctx context.Context, productID int64) (model.Product, *CartError) {
	p, err := s.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, &CartError{Kind: CartErrProductNotFound, Message: "Product not found."}
	}
	if err != nil {
		return model.Product{}, &CartError{Kind: CartErrStoreUnavailable, Message: "Could not load product."}
	}
	if !p.IsActive {
		return model.Product{}, &CartError{Kind: CartErrProductNotFound, Message: "Product not found."}
	}
	return p, nil
}

func insufficientStock(p model.Product) *CartError {
	return &CartError{
		Kind:           CartErrInsufficientStock,
		Message:        fmt.Sprintf("Not enough stock for %s. Available: %d", p.Name, p.Stock),
		AvailableStock: p.Stock,
	}
}

func parseQuantity(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}
