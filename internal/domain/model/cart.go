package model

import "github.com/shopspring/decimal"

// 追加時点の商品コピー。カートに入れてからの価格・在庫変動は反映されない。
// 次の更新系操作で取り直す。
type ProductSnapshot struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int64           `json:"stock"`
	ImageURL string          `json:"image_url"`
}

// カートの1明細。Quantityは常に1以上（0は保存せず明細ごと消す）。
type CartLine struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int64           `json:"quantity"`
}

// 1セッションが所有するカート。明細は追加順。
// 同じ商品の明細は最大1つ。
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// LineIndex は productID の明細の位置を返す。無ければ -1。
func (c Cart) LineIndex(productID int64) int {
	for i, l := range c.Lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Clone は明細スライスを複製したコピーを返す。
// 更新系操作は必ずコピーに対して行い、元のカートは触らない。
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}
