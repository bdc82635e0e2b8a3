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
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newAuthTestEnv(users *userRepoMock) *echo.Echo {
	cfg := config.Config{JWTSecret: "test-secret", GoEnv: "dev"}
	h := NewAuthHandler(usecase.NewAuthUsecase(cfg, users), cfg)

	e := echo.New()
	h.RegisterRoutes(e, cfg)
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jwtCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register_SetsJWTCookie(t *testing.T) {
	users := new(userRepoMock)
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return((*model.User)(nil), nil)
	users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 10
	}).Return(nil)

	e := newAuthTestEnv(users)
	rec := postJSON(e, "/auth/register", `{"username":"taro","email":"taro@example.com","password":"password123"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"taro@example.com"`)
	//平文パスワードがレスポンスに出ないこと
	assert.NotContains(t, rec.Body.String(), "password123")

	cookie := jwtCookie(rec)
	assert.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestAuthHandler_Register_DuplicateEmail409(t *testing.T) {
	users := new(userRepoMock)
	users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	e := newAuthTestEnv(users)
	rec := postJSON(e, "/auth/register", `{"username":"taro","email":"taro@example.com","password":"password123"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	user := &model.User{
		ID:           3,
		Username:     "taro",
		Email:        "taro@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	users := new(userRepoMock)
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(user, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	users.On("FindByID", mock.Anything, int64(3)).Return(user, nil)

	e := newAuthTestEnv(users)
	rec := postJSON(e, "/auth/login", `{"email":"taro@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := jwtCookie(rec)
	assert.NotNil(t, cookie)

	//発行されたcookieで /auth/me が通る
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	meRec := httptest.NewRecorder()
	e.ServeHTTP(meRec, req)

	assert.Equal(t, http.StatusOK, meRec.Code)
	assert.Contains(t, meRec.Body.String(), `"username":"taro"`)
}

func TestAuthHandler_Login_WrongPassword401(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	users := new(userRepoMock)
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID:           3,
		Email:        "taro@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}, nil)

	e := newAuthTestEnv(users)
	rec := postJSON(e, "/auth/login", `{"email":"taro@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")
	assert.Nil(t, jwtCookie(rec))
}

func TestAuthHandler_Logout_ExpiresCookie(t *testing.T) {
	e := newAuthTestEnv(new(userRepoMock))
	rec := postJSON(e, "/auth/logout", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := jwtCookie(rec)
	assert.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestAuthHandler_Me_WithoutToken401(t *testing.T) {
	e := newAuthTestEnv(new(userRepoMock))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
