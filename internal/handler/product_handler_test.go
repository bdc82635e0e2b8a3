package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type catalogRepoMock struct{ mock.Mock }

func (m *catalogRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *catalogRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *catalogRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *catalogRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *catalogRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type invRepoMock struct{ mock.Mock }

func (m *invRepoMock) SetStockWithAdjustment(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error {
	args := m.Called(ctx, adminUserID, productID, newStock, reason)
	return args.Error(0)
}

func newCatalogEnv(pRepo *catalogRepoMock, iRepo *invRepoMock) (*echo.Echo, config.Config) {
	cfg := config.Config{JWTSecret: "test-secret", GoEnv: "dev"}
	uc := usecase.NewProductUsecase(pRepo, iRepo)

	e := echo.New()
	NewProductHandler(uc).RegisterRoutes(e)
	NewAdminProductHandler(uc).RegisterRoutes(e, cfg)
	return e, cfg
}

func adminCookie(t *testing.T, cfg config.Config) *http.Cookie {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "1",
		"role": "ADMIN",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(cfg.JWTSecret))
	assert.NoError(t, err)
	return &http.Cookie{Name: middleware.JWTCookieName, Value: signed}
}

func TestProductHandler_List_Defaults(t *testing.T) {
	pRepo := new(catalogRepoMock)
	e, _ := newCatalogEnv(pRepo, new(invRepoMock))

	pRepo.On("ListPublic", mock.Anything, repo.ProductListQuery{Page: 1, Limit: 20}).
		Return([]model.Product{{ID: 1, Name: "P1", IsActive: true}}, int64(1), nil)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	pRepo.AssertExpectations(t)
}

func TestProductHandler_List_InvalidPage(t *testing.T) {
	e, _ := newCatalogEnv(new(catalogRepoMock), new(invRepoMock))

	for _, q := range []string{"?page=abc", "?page=0", "?limit=abc", "?limit=101"} {
		req := httptest.NewRequest(http.MethodGet, "/products"+q, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query=%s", q)
	}
}

func TestProductHandler_Detail_OK(t *testing.T) {
	pRepo := new(catalogRepoMock)
	e, _ := newCatalogEnv(pRepo, new(invRepoMock))

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID:       1,
		Name:     "P1",
		Price:    decimal.RequireFromString("9.99"),
		IsActive: true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/products/1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"P1"`)
}

func TestProductHandler_Detail_NotFound(t *testing.T) {
	pRepo := new(catalogRepoMock)
	e, _ := newCatalogEnv(pRepo, new(invRepoMock))

	pRepo.On("FindByID", mock.Anything, int64(9)).Return(model.Product{}, repo.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/products/9", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminProductHandler_RequiresAdmin(t *testing.T) {
	e, _ := newCatalogEnv(new(catalogRepoMock), new(invRepoMock))

	//トークン無しは401
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminProductHandler_CreateProduct(t *testing.T) {
	pRepo := new(catalogRepoMock)
	e, cfg := newCatalogEnv(pRepo, new(invRepoMock))

	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "New Product" && p.Price.Equal(decimal.RequireFromString("19.99"))
	})).Return(model.Product{ID: 7}, nil)

	body := `{"name":"New Product","price":"19.99","stock":5,"is_active":true}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(adminCookie(t, cfg))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)
}

func TestAdminProductHandler_UpdateInventory(t *testing.T) {
	pRepo := new(catalogRepoMock)
	iRepo := new(invRepoMock)
	e, cfg := newCatalogEnv(pRepo, iRepo)

	//JWTのsub=1が管理者として記録される
	iRepo.On("SetStockWithAdjustment", mock.Anything, int64(1), int64(1), int64(25), "restock").Return(nil)

	body := `{"stock":25,"reason":"restock"}`
	req := httptest.NewRequest(http.MethodPut, "/admin/inventory/1", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(adminCookie(t, cfg))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	iRepo.AssertExpectations(t)
}

func TestAdminProductHandler_DeleteProduct(t *testing.T) {
	pRepo := new(catalogRepoMock)
	e, cfg := newCatalogEnv(pRepo, new(invRepoMock))

	pRepo.On("SoftDelete", mock.Anything, int64(3)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/admin/products/3", nil)
	req.AddCookie(adminCookie(t, cfg))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	pRepo.AssertExpectations(t)
}
