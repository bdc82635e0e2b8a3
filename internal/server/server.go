package server

import (
	"storefront/internal/config"
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func Start(
	addr string,
	cfg config.Config,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	authH *handler.AuthHandler,
	adminH *handler.AdminProductHandler,
) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())

	RegisterRoutes(e, cfg, productH, cartH, authH, adminH)
	return e.Start(addr)
}
