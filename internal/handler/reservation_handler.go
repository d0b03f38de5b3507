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

// ReservationCreateRequest は在庫仮押さえの入力です。
type ReservationCreateRequest struct {
	InventoryRecordID int64  `json:"inventory_record_id"`
	Quantity          int64  `json:"quantity"`
	ExpiresAt         string `json:"expires_at"`
	OrderID           *int64 `json:"order_id,omitempty"`
}

// MovementCreateRequest は売上・仕入などのmovement記録の入力です。
type MovementCreateRequest struct {
	InventoryRecordID int64  `json:"inventory_record_id"`
	Type              string `json:"type"`
	Quantity          int64  `json:"quantity"`
	Reference         string `json:"reference,omitempty"`
	Description       string `json:"description,omitempty"`
}

// 注文フロー向けのAPI（/reservations と /movements）をまとめる
type ReservationHandler struct {
	uc     *usecase.ReservationUsecase
	ledger *usecase.LedgerUsecase
}

// DI
func NewReservationHandler(uc *usecase.ReservationUsecase, ledger *usecase.LedgerUsecase) *ReservationHandler {
	return &ReservationHandler{uc: uc, ledger: ledger}
}

// 認証必須（注文サービスもトークンを持って呼ぶ）
func (h *ReservationHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("")

	g.Use(middleware.AuthJWT(cfg))

	g.POST("/reservations", h.reserve)
	g.PUT("/reservations/:id/fulfill", h.fulfill)
	g.PUT("/reservations/:id/cancel", h.cancel)
	g.POST("/movements", h.recordMovement)
}

func (h *ReservationHandler) reserve(c echo.Context) error {
	var req ReservationCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid expires_at"})
	}

	res, err := h.uc.Reserve(c.Request().Context(), usecase.ReserveInput{
		InventoryRecordID: req.InventoryRecordID,
		Quantity:          req.Quantity,
		ExpiresAt:         expiresAt,
		OrderID:           req.OrderID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, res)
}

func (h *ReservationHandler) fulfill(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	res, err := h.uc.Fulfill(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) cancel(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	res, err := h.uc.Cancel(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) recordMovement(c echo.Context) error {
	var req MovementCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	movement, err := h.ledger.RecordMovement(c.Request().Context(), actorID, usecase.RecordMovementInput{
		InventoryRecordID: req.InventoryRecordID,
		Type:              model.MovementType(req.Type),
		Quantity:          req.Quantity,
		Reference:         req.Reference,
		Description:       req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, movement)
}
