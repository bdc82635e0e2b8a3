package usecase

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限（cookieのMaxAgeと揃える）
const AccessTokenTTL = time.Hour

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type AuthRegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthLoginInput struct {
	Email    string
	Password string
}

// ログイン成功。TokenはそのままJWT cookieに入れる。
type LoginResult struct {
	User      UserDTO
	Token     string
	ExpiresAt time.Time
}

type AuthUsecase struct {
	cfg   config.Config
	users repository.UserRepository
}

func NewAuthUsecase(cfg config.Config, users repository.UserRepository) *AuthUsecase {
	return &AuthUsecase{
		cfg:   cfg,
		users: users,
	}
}

// Register は登録に成功したらそのままログイン状態にする（トークンも返す）。
func (u *AuthUsecase) Register(ctx context.Context, in AuthRegisterInput) (LoginResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	//必須チェック
	if username == "" || email == "" || in.Password == "" {
		return LoginResult{}, NewHTTPError(http.StatusBadRequest, "Please enter all fields.")
	}
	if !isEmailLike(email) {
		return LoginResult{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	// パスワード最低文字数（MVP: 8）
	if len(in.Password) < 8 {
		return LoginResult{}, NewHTTPError(http.StatusBadRequest, "password too short")
	}

	//email重複チェック
	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if existing != nil {
		return LoginResult{}, NewHTTPError(http.StatusConflict, "User with this email already exists.")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// uniqueIndex違反（同時登録）もここに落ちる
		return LoginResult{}, NewHTTPError(http.StatusConflict, "User with this email already exists.")
	}

	token, expiresAt, err := u.issueToken(user)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginResult{
		User:      toUserDTO(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in AuthLoginInput) (LoginResult, error) {
	email := strings.TrimSpace(in.Email)

	if email == "" || in.Password == "" {
		return LoginResult{}, NewHTTPError(http.StatusBadRequest, "Please enter all fields.")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//存在しない場合もパスワード不一致と同じ401にする（列挙対策）
	if user == nil || !user.IsActive {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "Invalid email or password.")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "Invalid email or password.")
	}

	token, expiresAt, err := u.issueToken(user)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//最終ログインを更新（失敗してもログインは通す）
	now := time.Now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	return LoginResult{
		User:      toUserDTO(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// GetMe はJWT検証済みのuser_idから現在のユーザーを返す。
func (u *AuthUsecase) GetMe(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil || !user.IsActive {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return toUserDTO(user), nil
}

// HS256でアクセストークンを発行する。
func (u *AuthUsecase) issueToken(user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(AccessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func toUserDTO(user *model.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
}

// 簡易メール形式をチェック
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
