package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// /cartのHTTP。
// ここがload→判断→saveの1サイクルを持つ。判断はCartService、保存はCartStore。
type CartHandler struct {
	svc   *usecase.CartService
	store repository.CartStore
	locks *session.Locker
}

// DI
func NewCartHandler(svc *usecase.CartService, store repository.CartStore, locks *session.Locker) *CartHandler {
	return &CartHandler{svc: svc, store: store, locks: locks}
}

// quantityは文字列で受ける（フォーム入力そのまま）。整数チェックはCartService側。
type AddCartRequest struct {
	ProductID int64  `json:"product_id" form:"product_id"`
	Quantity  string `json:"quantity" form:"quantity"`
}

type UpdateCartLineRequest struct {
	Quantity string `json:"quantity" form:"quantity"`
}

type CartErrorBody struct {
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	AvailableStock int64  `json:"available_stock,omitempty"`
}

// 更新系の返却。失敗時のCartは変更前のまま。
type CartMutationResponse struct {
	OK    bool             `json:"ok"`
	Cart  usecase.CartView `json:"cart"`
	Error *CartErrorBody   `json:"error,omitempty"`
}

// GET /cart の返却。Errorは直前の失敗メッセージで、1回見せたら消える。
type CartViewResponse struct {
	usecase.CartView
	Error string `json:"error,omitempty"`
}

// /cart を登録。カートはセッション所有なのでログインは要らない。
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.Session(cfg.SessionTTL, cfg.IsProd()))

	g.GET("", h.view)
	g.POST("", h.add)
	g.PATCH("/:product_id", h.update)
	g.DELETE("/:product_id", h.remove)
	g.DELETE("", h.clear)
}

func (h *CartHandler) view(c echo.Context) error {
	key, ok := middleware.SessionKeyFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	ctx := c.Request().Context()

	cart, err := h.store.LoadCart(ctx, key)
	if err != nil {
		return h.storeFail(c, err)
	}

	//flashは読んだら消える（次の表示には出ない）
	flash, err := h.store.TakeFlash(ctx, key)
	if err != nil {
		logger.Log.Error("cart store failure", zap.Error(err))
		flash = ""
	}

	return c.JSON(http.StatusOK, CartViewResponse{
		CartView: h.svc.View(cart),
		Error:    flash,
	})
}

func (h *CartHandler) add(c echo.Context) error {
	key, ok := middleware.SessionKeyFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	//同一セッションの更新は直列化（二重サブミット対策）
	unlock := h.locks.Lock(key)
	defer unlock()

	ctx := c.Request().Context()
	cart, err := h.store.LoadCart(ctx, key)
	if err != nil {
		return h.storeFail(c, err)
	}

	next, err := h.svc.Add(ctx, cart, req.ProductID, req.Quantity)
	if err != nil {
		return h.mutationError(c, key, cart, err)
	}

	return h.saveAndRespond(c, key, next)
}

func (h *CartHandler) update(c echo.Context) error {
	key, ok := middleware.SessionKeyFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req UpdateCartLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	unlock := h.locks.Lock(key)
	defer unlock()

	ctx := c.Request().Context()
	cart, err := h.store.LoadCart(ctx, key)
	if err != nil {
		return h.storeFail(c, err)
	}

	next, err := h.svc.Update(ctx, cart, productID, req.Quantity)
	if err != nil {
		return h.mutationError(c, key, cart, err)
	}

	return h.saveAndRespond(c, key, next)
}

func (h *CartHandler) remove(c echo.Context) error {
	key, ok := middleware.SessionKeyFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	unlock := h.locks.Lock(key)
	defer unlock()

	ctx := c.Request().Context()
	cart, err := h.store.LoadCart(ctx, key)
	if err != nil {
		return h.storeFail(c, err)
	}

	next := h.svc.Remove(cart, productID)
	return h.saveAndRespond(c, key, next)
}

// カートを丸ごと破棄する
func (h *CartHandler) clear(c echo.Context) error {
	key, ok := middleware.SessionKeyFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	unlock := h.locks.Lock(key)
	defer unlock()

	if err := h.store.DeleteCart(c.Request().Context(), key); err != nil {
		return h.storeFail(c, err)
	}

	return c.JSON(http.StatusOK, CartMutationResponse{
		OK:   true,
		Cart: h.svc.View(model.Cart{Lines: []model.CartLine{}}),
	})
}

// 成功＝保存して、残っていたflashも消してから返す
func (h *CartHandler) saveAndRespond(c echo.Context, key string, next model.Cart) error {
	ctx := c.Request().Context()

	if err := h.store.SaveCart(ctx, key, next); err != nil {
		return h.storeFail(c, err)
	}

	if _, err := h.store.TakeFlash(ctx, key); err != nil {
		logger.Log.Error("cart store failure", zap.Error(err))
	}

	return c.JSON(http.StatusOK, CartMutationResponse{
		OK:   true,
		Cart: h.svc.View(next),
	})
}

// 失敗の返却。カートは変更前のまま返す。
// ユーザー起因の失敗はflashに残して、次のGET /cartで1回だけ見せる。
func (h *CartHandler) mutationError(c echo.Context, key string, cart model.Cart, err error) error {
	ctx := c.Request().Context()

	ce, ok := usecase.AsCartError(err)
	if !ok || ce.Kind == usecase.CartErrStoreUnavailable {
		//サーバ側の障害はこれだけログする
		logger.Log.Error("cart dependency failure", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, CartMutationResponse{
			OK:   false,
			Cart: h.svc.View(cart),
			Error: &CartErrorBody{
				Kind:    string(usecase.CartErrStoreUnavailable),
				Message: "internal error",
			},
		})
	}

	if ferr := h.store.SaveFlash(ctx, key, ce.Message); ferr != nil {
		logger.Log.Error("cart store failure", zap.Error(ferr))
	}

	return c.JSON(cartErrorStatus(ce.Kind), CartMutationResponse{
		OK:   false,
		Cart: h.svc.View(cart),
		Error: &CartErrorBody{
			Kind:           string(ce.Kind),
			Message:        ce.Message,
			AvailableStock: ce.AvailableStock,
		},
	})
}

func cartErrorStatus(kind usecase.CartErrorKind) int {
	switch kind {
	case usecase.CartErrProductNotFound:
		return http.StatusNotFound
	case usecase.CartErrInsufficientStock:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func (h *CartHandler) storeFail(c echo.Context, err error) error {
	logger.Log.Error("cart store failure", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
