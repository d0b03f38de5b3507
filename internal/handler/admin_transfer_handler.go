package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// TransferRequest は拠点間移動の入力です。
type TransferRequest struct {
	FromRecordID int64  `json:"from_record_id"`
	ToLocationID int64  `json:"to_location_id"`
	Quantity     int64  `json:"quantity"`
	Reference    string `json:"reference,omitempty"`
}

// /admin/transfers をまとめる
type AdminTransferHandler struct {
	uc *usecase.TransferUsecase
}

// DI
func NewAdminTransferHandler(uc *usecase.TransferUsecase) *AdminTransferHandler {
	return &AdminTransferHandler{uc: uc}
}

// adminを登録
func (h *AdminTransferHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/transfers", h.transfer)
	admin.POST("/transfers/batch", h.transferBatch)
}

func (h *AdminTransferHandler) transfer(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Transfer(c.Request().Context(), adminID, usecase.TransferInput{
		FromRecordID: req.FromRecordID,
		ToLocationID: req.ToLocationID,
		Quantity:     req.Quantity,
		Reference:    req.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminTransferHandler) transferBatch(c echo.Context) error {
	var req struct {
		Items []TransferRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items := make([]usecase.TransferInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.TransferInput{
			FromRecordID: item.FromRecordID,
			ToLocationID: item.ToLocationID,
			Quantity:     item.Quantity,
			Reference:    item.Reference,
		})
	}

	//全件成功か全件失敗
	outs, err := h.uc.TransferBatch(c.Request().Context(), adminID, items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": outs})
}
