package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionKey = "session_key" // string

	SessionCookieName = "session_id"
)

// Session はカートの持ち主になるセッションIDを保証する。
// cookieが無ければuuidを発行してセットし、毎リクエストで有効期限を延ばす。
func Session(ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//uuid以外のcookie値は使わない（クライアントが任意のキーを名乗れると
			//セッション固定とredisキーの無限増殖を許す）
			key := ""
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				if _, perr := uuid.Parse(cookie.Value); perr == nil {
					key = cookie.Value
				}
			}
			if key == "" {
				key = uuid.NewString()
			}

			c.SetCookie(&http.Cookie{
				Name:     SessionCookieName,
				Value:    key,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			c.Set(CtxSessionKey, key)
			return next(c)
		}
	}
}

// SessionKeyFromContext はSessionミドルウェアが入れたキーを返す。
func SessionKeyFromContext(c echo.Context) (string, bool) {
	key, ok := c.Get(CtxSessionKey).(string)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
