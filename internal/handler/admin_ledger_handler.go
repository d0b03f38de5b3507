package handler

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/movements（台帳の参照と検証）をまとめる
type AdminLedgerHandler struct {
	uc *usecase.LedgerUsecase
}

// DI
func NewAdminLedgerHandler(uc *usecase.LedgerUsecase) *AdminLedgerHandler {
	return &AdminLedgerHandler{uc: uc}
}

// adminを登録
func (h *AdminLedgerHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/movements", h.listMovements)
	admin.GET("/movements/verify/:record_id", h.verifyRecord)
}

func (h *AdminLedgerHandler) listMovements(c echo.Context) error {
	page, limit := parsePaging(c)

	recordID, ok := parseOptionalInt64Query(c, "inventory_record_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid inventory_record_id"})
	}

	in := usecase.ListMovementsInput{
		Page:              page,
		Limit:             limit,
		InventoryRecordID: recordID,
	}

	//type=SALE&type=PURCHASE のように複数指定できる
	for _, raw := range c.QueryParams()["type"] {
		in.Types = append(in.Types, model.MovementType(raw))
	}

	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		in.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		in.To = &t
	}

	out, err := h.uc.ListMovements(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminLedgerHandler) verifyRecord(c echo.Context) error {
	recordID, ok := parseIDParam(c, "record_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid record id"})
	}

	out, err := h.uc.VerifyRecord(c.Request().Context(), recordID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
