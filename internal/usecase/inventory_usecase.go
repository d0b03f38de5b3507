package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 在庫レコードの取得・作成・更新（Inventory Record Store）。
type InventoryUsecase struct {
	tx      repo.TransactionManager
	records repo.InventoryRecordRepository
	alerts  *AlertEngine
	clock   Clock
}

// DI
func NewInventoryUsecase(
	tx repo.TransactionManager,
	records repo.InventoryRecordRepository,
	alerts *AlertEngine,
	clock Clock,
) *InventoryUsecase {
	return &InventoryUsecase{
		tx:      tx,
		records: records,
		alerts:  alerts,
		clock:   clock,
	}
}

func (u *InventoryUsecase) GetRecord(ctx context.Context, productID int64, locationID int64) (model.InventoryRecord, error) {
	if productID <= 0 {
		return model.InventoryRecord{}, newValidationError("invalid product id")
	}
	if locationID <= 0 {
		return model.InventoryRecord{}, newValidationError("invalid location id")
	}

	rec, err := u.records.FindByProductAndLocation(ctx, productID, locationID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.InventoryRecord{}, newNotFound("inventory record not found")
	}
	if err != nil {
		return model.InventoryRecord{}, newDBError()
	}
	return rec, nil
}

// 作成・更新の入力。nilのフィールドは「変更しない」。
type UpsertRecordInput struct {
	ProductID  int64
	LocationID int64

	Quantity *int64

	MinimumStock    *int64
	MaximumStock    *int64
	ReorderPoint    *int64
	ReorderQuantity *int64

	UnitCost *decimal.Decimal
	Status   *model.InventoryStatus

	Bin            *string
	BatchNumber    *string
	ExpiryDate     *time.Time
	LastStockCheck *time.Time
}

func validStatus(s model.InventoryStatus) bool {
	switch s {
	case model.InventoryStatusActive, model.InventoryStatusInactive,
		model.InventoryStatusOnHold, model.InventoryStatusDiscontinued:
		return true
	}
	return false
}

// 無ければ作成、有れば渡されたフィールドだけマージする。
// quantityを変えるときはADJUSTMENTのmovementも追記して台帳と一致させる。
func (u *InventoryUsecase) UpsertRecord(ctx context.Context, adminID int64, in UpsertRecordInput) (model.InventoryRecord, error) {
	if adminID <= 0 {
		return model.InventoryRecord{}, newUnauthorized()
	}
	if in.ProductID <= 0 {
		return model.InventoryRecord{}, newValidationError("invalid product id")
	}
	if in.LocationID <= 0 {
		return model.InventoryRecord{}, newValidationError("invalid location id")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return model.InventoryRecord{}, newValidationError("quantity must be >= 0")
	}
	if in.MinimumStock != nil && *in.MinimumStock < 0 {
		return model.InventoryRecord{}, newValidationError("minimum_stock must be >= 0")
	}
	if in.MaximumStock != nil && *in.MaximumStock < 0 {
		return model.InventoryRecord{}, newValidationError("maximum_stock must be >= 0")
	}
	if in.ReorderPoint != nil && *in.ReorderPoint < 0 {
		return model.InventoryRecord{}, newValidationError("reorder_point must be >= 0")
	}
	if in.ReorderQuantity != nil && *in.ReorderQuantity < 0 {
		return model.InventoryRecord{}, newValidationError("reorder_quantity must be >= 0")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return model.InventoryRecord{}, newValidationError("unit_cost must be >= 0")
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return model.InventoryRecord{}, newValidationError("invalid status")
	}

	var out model.InventoryRecord

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rec, err := u.upsertInTx(ctx, r, adminID, in)
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return model.InventoryRecord{}, translateRepoError(err)
	}
	return out, nil
}

// upsert本体。バッチからも1件ずつ呼ばれる。
func (u *InventoryUsecase) upsertInTx(ctx context.Context, r repo.TxRepos, adminID int64, in UpsertRecordInput) (model.InventoryRecord, error) {
	//商品・拠点の存在確認
	product, err := r.Products().FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.InventoryRecord{}, newNotFound("product not found")
	}
	if err != nil {
		return model.InventoryRecord{}, err
	}
	if _, err := r.Locations().FindByID(ctx, in.LocationID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.InventoryRecord{}, newNotFound("location not found")
		}
		return model.InventoryRecord{}, err
	}

	now := u.clock.Now()

	rec, err := r.Records().FindByProductAndLocationForUpdate(ctx, in.ProductID, in.LocationID)
	created := false
	if errors.Is(err, repo.ErrNotFound) {
		//新規レコード。単価は商品から引き継ぐ。
		rec, err = r.Records().Create(ctx, model.InventoryRecord{
			ProductID:  in.ProductID,
			LocationID: in.LocationID,
			Quantity:   0,
			UnitCost:   product.UnitCost,
			Status:     model.InventoryStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return model.InventoryRecord{}, err
		}
		created = true
	} else if err != nil {
		return model.InventoryRecord{}, err
	}

	beforeJSON, _ := json.Marshal(rec)

	//渡されたフィールドだけマージ
	if in.MinimumStock != nil {
		rec.MinimumStock = *in.MinimumStock
	}
	if in.MaximumStock != nil {
		rec.MaximumStock = in.MaximumStock
	}
	if in.ReorderPoint != nil {
		rec.ReorderPoint = *in.ReorderPoint
	}
	if in.ReorderQuantity != nil {
		rec.ReorderQuantity = *in.ReorderQuantity
	}
	if in.UnitCost != nil {
		rec.UnitCost = *in.UnitCost
	}
	if in.Status != nil {
		rec.Status = *in.Status
	}
	if in.Bin != nil {
		rec.Bin = *in.Bin
	}
	if in.BatchNumber != nil {
		rec.BatchNumber = *in.BatchNumber
	}
	if in.ExpiryDate != nil {
		rec.ExpiryDate = in.ExpiryDate
	}
	if in.LastStockCheck != nil {
		rec.LastStockCheck = in.LastStockCheck
	}

	if err := r.Records().Update(ctx, rec); err != nil {
		return model.InventoryRecord{}, err
	}

	//quantityの変更は台帳を通す
	if in.Quantity != nil && *in.Quantity != rec.Quantity {
		delta := *in.Quantity - rec.Quantity
		if _, err := r.Movements().Create(ctx, model.StockMovement{
			InventoryRecordID: rec.ID,
			Type:              model.MovementTypeAdjustment,
			Delta:             delta,
			Description:       "stock level set via upsert",
			UnitCost:          rec.UnitCost,
			PerformedBy:       adminID,
			CreatedAt:         now,
		}); err != nil {
			return model.InventoryRecord{}, err
		}
		if err := r.Records().UpdateQuantity(ctx, rec.ID, *in.Quantity); err != nil {
			return model.InventoryRecord{}, err
		}
		rec.Quantity = *in.Quantity
	}

	afterJSON, _ := json.Marshal(rec)

	//監査ログ
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionUpsertRecord,
		ResourceType: model.AuditResourceInventoryRecord,
		ResourceID:   rec.ID,
		BeforeJSON:   beforeOrEmpty(created, beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    now,
	}); err != nil {
		return model.InventoryRecord{}, err
	}

	//しきい値チェック
	if _, err := u.alerts.Evaluate(ctx, r.Alerts(), rec); err != nil {
		return model.InventoryRecord{}, err
	}

	return rec, nil
}

// 新規作成のときbeforeは空にする
func beforeOrEmpty(created bool, beforeJSON []byte) string {
	if created {
		return ""
	}
	return string(beforeJSON)
}

// バッチ1件ごとの結果。失敗しても他の行は続行する。
type BatchUpsertResult struct {
	Index  int                    `json:"index"`
	Record *model.InventoryRecord `json:"record,omitempty"`
	Error  string                 `json:"error,omitempty"`
	Code   string                 `json:"code,omitempty"`
}

// 取り込み行ごとにupsertする。行をまたぐトランザクションは張らない
// （1行の失敗で他の行を巻き戻さない。結果は行ごとに返す）。
func (u *InventoryUsecase) BatchUpsert(ctx context.Context, adminID int64, items []UpsertRecordInput) []BatchUpsertResult {
	results := make([]BatchUpsertResult, 0, len(items))

	for i, item := range items {
		rec, err := u.UpsertRecord(ctx, adminID, item)
		if err != nil {
			res := BatchUpsertResult{Index: i, Error: err.Error()}
			if he, ok := AsHTTPError(err); ok {
				res.Error = he.Message
				res.Code = he.Code
			}
			results = append(results, res)
			continue
		}
		results = append(results, BatchUpsertResult{Index: i, Record: &rec})
	}

	return results
}

type ListRecordsInput struct {
	Page       int
	Limit      int
	ProductID  *int64
	LocationID *int64
	Status     *model.InventoryStatus
}

type RecordListOutput struct {
	Items []model.InventoryRecord `json:"items"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

func (u *InventoryUsecase) ListRecords(ctx context.Context, in ListRecordsInput) (RecordListOutput, error) {
	if in.Page < 1 {
		return RecordListOutput{}, newValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return RecordListOutput{}, newValidationError("invalid limit")
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return RecordListOutput{}, newValidationError("invalid status")
	}

	items, total, err := u.records.List(ctx, repo.RecordListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Status:     in.Status,
	})
	if err != nil {
		return RecordListOutput{}, newDBError()
	}

	return RecordListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 低在庫の一覧（拠点で絞り込み可）
func (u *InventoryUsecase) ListLowStock(ctx context.Context, locationID *int64) ([]model.InventoryRecord, error) {
	if locationID != nil && *locationID <= 0 {
		return nil, newValidationError("invalid location id")
	}

	records, err := u.records.FindLowStock(ctx, locationID)
	if err != nil {
		return nil, newDBError()
	}
	return records, nil
}

// 指定日数以内に期限が切れるレコードの一覧
func (u *InventoryUsecase) ListExpiring(ctx context.Context, withinDays int) ([]model.InventoryRecord, error) {
	if withinDays < 0 || withinDays > 365 {
		return nil, newValidationError("invalid days")
	}

	cutoff := u.clock.Now().AddDate(0, 0, withinDays)
	records, err := u.records.FindExpiringBefore(ctx, cutoff)
	if err != nil {
		return nil, newDBError()
	}
	return records, nil
}
