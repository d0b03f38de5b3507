package server

import (
	"net/http"

	"app/internal/config"

	"github.com/labstack/echo/v4"
)

// ルート登録できるハンドラ
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo, cfg config.Config)
}

// Newはechoを組み立てる
func New(cfg config.Config, handlers ...RouteRegistrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, h := range handlers {
		h.RegisterRoutes(e, cfg)
	}

	return e
}
