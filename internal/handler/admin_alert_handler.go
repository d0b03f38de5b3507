package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/alerts をまとめる
type AdminAlertHandler struct {
	uc *usecase.AlertUsecase
}

// DI
func NewAdminAlertHandler(uc *usecase.AlertUsecase) *AdminAlertHandler {
	return &AdminAlertHandler{uc: uc}
}

// adminを登録
func (h *AdminAlertHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/alerts", h.listAlerts)
	admin.PUT("/alerts/:id/read", h.markRead)
}

func (h *AdminAlertHandler) listAlerts(c echo.Context) error {
	page, limit := parsePaging(c)

	recordID, ok := parseOptionalInt64Query(c, "inventory_record_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid inventory_record_id"})
	}

	in := usecase.ListAlertsInput{
		Page:              page,
		Limit:             limit,
		InventoryRecordID: recordID,
		UnreadOnly:        c.QueryParam("unread") == "true",
	}
	if raw := c.QueryParam("type"); raw != "" {
		t := model.AlertType(raw)
		in.Type = &t
	}

	out, err := h.uc.ListAlerts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminAlertHandler) markRead(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.MarkRead(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}
