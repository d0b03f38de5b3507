package handler

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// RecordUpsertRequest は在庫レコード作成・更新の入力です。
// nilのフィールドは変更しません。
type RecordUpsertRequest struct {
	ProductID  int64 `json:"product_id"`
	LocationID int64 `json:"location_id"`

	Quantity        *int64  `json:"quantity,omitempty"`
	MinimumStock    *int64  `json:"minimum_stock,omitempty"`
	MaximumStock    *int64  `json:"maximum_stock,omitempty"`
	ReorderPoint    *int64  `json:"reorder_point,omitempty"`
	ReorderQuantity *int64  `json:"reorder_quantity,omitempty"`
	UnitCost        *string `json:"unit_cost,omitempty"`
	Status          *string `json:"status,omitempty"`
	Bin             *string `json:"bin,omitempty"`
	BatchNumber     *string `json:"batch_number,omitempty"`
	ExpiryDate      *string `json:"expiry_date,omitempty"`
	LastStockCheck  *string `json:"last_stock_check,omitempty"`
}

// QuantityUpdateRequest は在庫数量調整の入力です。
type QuantityUpdateRequest struct {
	Quantity   int64  `json:"quantity"`
	Reason     string `json:"reason"`
	Notes      string `json:"notes"`
	ApprovedBy *int64 `json:"approved_by,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

// BatchQuantityUpdateRequest はまとめて調整する入力です。
type BatchQuantityUpdateRequest struct {
	Items []struct {
		InventoryRecordID int64  `json:"inventory_record_id"`
		Quantity          int64  `json:"quantity"`
		Reason            string `json:"reason"`
		Notes             string `json:"notes"`
		Reference         string `json:"reference,omitempty"`
	} `json:"items"`
}

// /admin/inventory をまとめる
type AdminInventoryHandler struct {
	inv *usecase.InventoryUsecase
	adj *usecase.AdjustmentUsecase
}

// DI
func NewAdminInventoryHandler(inv *usecase.InventoryUsecase, adj *usecase.AdjustmentUsecase) *AdminInventoryHandler {
	return &AdminInventoryHandler{inv: inv, adj: adj}
}

// adminを登録
func (h *AdminInventoryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/inventory", h.upsertRecord)
	admin.POST("/inventory/batch", h.batchUpsert)
	admin.GET("/inventory", h.listRecords)
	admin.GET("/inventory/record", h.getRecord)
	admin.GET("/inventory/low-stock", h.listLowStock)
	admin.GET("/inventory/expiring", h.listExpiring)
	admin.PUT("/inventory/:record_id/quantity", h.updateQuantity)
	admin.PUT("/inventory/quantity/batch", h.updateQuantityBatch)
}

func (r RecordUpsertRequest) toInput() (usecase.UpsertRecordInput, error) {
	in := usecase.UpsertRecordInput{
		ProductID:       r.ProductID,
		LocationID:      r.LocationID,
		Quantity:        r.Quantity,
		MinimumStock:    r.MinimumStock,
		MaximumStock:    r.MaximumStock,
		ReorderPoint:    r.ReorderPoint,
		ReorderQuantity: r.ReorderQuantity,
		Bin:             r.Bin,
		BatchNumber:     r.BatchNumber,
	}

	if r.UnitCost != nil {
		d, err := decimal.NewFromString(*r.UnitCost)
		if err != nil {
			return usecase.UpsertRecordInput{}, err
		}
		in.UnitCost = &d
	}
	if r.Status != nil {
		s := model.InventoryStatus(*r.Status)
		in.Status = &s
	}
	if r.ExpiryDate != nil {
		t, err := time.Parse(time.RFC3339, *r.ExpiryDate)
		if err != nil {
			return usecase.UpsertRecordInput{}, err
		}
		in.ExpiryDate = &t
	}
	if r.LastStockCheck != nil {
		t, err := time.Parse(time.RFC3339, *r.LastStockCheck)
		if err != nil {
			return usecase.UpsertRecordInput{}, err
		}
		in.LastStockCheck = &t
	}

	return in, nil
}

func (h *AdminInventoryHandler) upsertRecord(c echo.Context) error {
	var req RecordUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, err := req.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	rec, err := h.inv.UpsertRecord(c.Request().Context(), adminID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, rec)
}

func (h *AdminInventoryHandler) batchUpsert(c echo.Context) error {
	var req struct {
		Items []RecordUpsertRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty items"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items := make([]usecase.UpsertRecordInput, 0, len(req.Items))
	for _, item := range req.Items {
		in, err := item.toInput()
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}
		items = append(items, in)
	}

	//行ごとの結果を返す（全体のトランザクションは張らない）
	results := h.inv.BatchUpsert(c.Request().Context(), adminID, items)
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

func (h *AdminInventoryHandler) getRecord(c echo.Context) error {
	productID, ok := parseOptionalInt64Query(c, "product_id")
	if !ok || productID == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}
	locationID, ok := parseOptionalInt64Query(c, "location_id")
	if !ok || locationID == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid location_id"})
	}

	rec, err := h.inv.GetRecord(c.Request().Context(), *productID, *locationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *AdminInventoryHandler) listRecords(c echo.Context) error {
	page, limit := parsePaging(c)

	productID, ok := parseOptionalInt64Query(c, "product_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}
	locationID, ok := parseOptionalInt64Query(c, "location_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid location_id"})
	}

	in := usecase.ListRecordsInput{
		Page:       page,
		Limit:      limit,
		ProductID:  productID,
		LocationID: locationID,
	}
	if raw := c.QueryParam("status"); raw != "" {
		s := model.InventoryStatus(raw)
		in.Status = &s
	}

	out, err := h.inv.ListRecords(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminInventoryHandler) listLowStock(c echo.Context) error {
	locationID, ok := parseOptionalInt64Query(c, "location_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid location_id"})
	}

	records, err := h.inv.ListLowStock(c.Request().Context(), locationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": records})
}

func (h *AdminInventoryHandler) listExpiring(c echo.Context) error {
	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		v, ok := parseOptionalInt64Query(c, "days")
		if !ok || v == nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid days"})
		}
		days = int(*v)
	}

	records, err := h.inv.ListExpiring(c.Request().Context(), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": records})
}

func (h *AdminInventoryHandler) updateQuantity(c echo.Context) error {
	recordID, ok := parseIDParam(c, "record_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid record id"})
	}

	var req QuantityUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.adj.Adjust(c.Request().Context(), adminID, usecase.AdjustInput{
		InventoryRecordID: recordID,
		NewQuantity:       req.Quantity,
		Reason:            model.AdjustmentReason(req.Reason),
		Notes:             req.Notes,
		ApprovedBy:        req.ApprovedBy,
		Reference:         req.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminInventoryHandler) updateQuantityBatch(c echo.Context) error {
	var req BatchQuantityUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items := make([]usecase.AdjustInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.AdjustInput{
			InventoryRecordID: item.InventoryRecordID,
			NewQuantity:       item.Quantity,
			Reason:            model.AdjustmentReason(item.Reason),
			Notes:             item.Notes,
			Reference:         item.Reference,
		})
	}

	//全件成功か全件失敗
	outs, err := h.adj.UpdateStockLevelsBatch(c.Request().Context(), adminID, items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": outs})
}
