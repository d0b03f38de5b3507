package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 在庫の管理操作（登録・調整・移動・監査ログ閲覧）を許可するrole。
const roleAdmin = "ADMIN"

// contextに入っているroleがADMINかどうかを確認します。
// AuthJWTの後ろに置くこと。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//予約だけのUSERは拒否、ADMINだけ許可
			if role != roleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}
