package server

import (
	"storefront/internal/config"
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	authH *handler.AuthHandler,
	adminH *handler.AdminProductHandler,
) {
	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e, cfg)
	authH.RegisterRoutes(e, cfg)
	adminH.RegisterRoutes(e, cfg)
}
