package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 手動の在庫調整（破損・紛失・棚卸など）。
type AdjustmentUsecase struct {
	tx          repo.TransactionManager
	adjustments repo.StockAdjustmentRepository
	alerts      *AlertEngine
	clock       Clock
}

// DI
func NewAdjustmentUsecase(
	tx repo.TransactionManager,
	adjustments repo.StockAdjustmentRepository,
	alerts *AlertEngine,
	clock Clock,
) *AdjustmentUsecase {
	return &AdjustmentUsecase{
		tx:          tx,
		adjustments: adjustments,
		alerts:      alerts,
		clock:       clock,
	}
}

type AdjustInput struct {
	InventoryRecordID int64
	NewQuantity       int64
	Reason            model.AdjustmentReason
	Notes             string
	ApprovedBy        *int64

	//呼び出し側が選ぶ参照トークン（再送時の二重適用防止。任意）
	Reference string
}

type AdjustOutput struct {
	Record     model.InventoryRecord `json:"record"`
	Adjustment model.StockAdjustment `json:"adjustment"`
}

func validReason(r model.AdjustmentReason) bool {
	switch r {
	case model.AdjustmentReasonDamaged, model.AdjustmentReasonExpired,
		model.AdjustmentReasonLost, model.AdjustmentReasonFound,
		model.AdjustmentReasonTheft, model.AdjustmentReasonCountAdjustment,
		model.AdjustmentReasonOther:
		return true
	}
	return false
}

func (u *AdjustmentUsecase) validate(adminID int64, in AdjustInput) error {
	if adminID <= 0 {
		return newUnauthorized()
	}
	if in.InventoryRecordID <= 0 {
		return newValidationError("invalid inventory record id")
	}
	//0未満には調整できない（増減どちらの調整も可）
	if in.NewQuantity < 0 {
		return newValidationError("quantity must be >= 0")
	}
	if !validReason(in.Reason) {
		return newValidationError("invalid reason")
	}
	if in.ApprovedBy != nil && *in.ApprovedBy <= 0 {
		return newValidationError("invalid approved_by")
	}
	if len(in.Reference) > 255 {
		return newValidationError("reference too long")
	}
	return nil
}

// 現在値との差分を計算して、レコード更新＋ADJUSTMENT movement＋調整履歴＋
// 監査ログ＋アラート判定を1つのトランザクションで行う。
func (u *AdjustmentUsecase) Adjust(ctx context.Context, adminID int64, in AdjustInput) (AdjustOutput, error) {
	if err := u.validate(adminID, in); err != nil {
		return AdjustOutput{}, err
	}

	var out AdjustOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		res, err := u.adjustInTx(ctx, r, adminID, in)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return AdjustOutput{}, translateRepoError(err)
	}
	return out, nil
}

// 調整本体。バッチからも同じトランザクション内で1件ずつ呼ばれる。
func (u *AdjustmentUsecase) adjustInTx(ctx context.Context, r repo.TxRepos, adminID int64, in AdjustInput) (AdjustOutput, error) {
	//同じ参照トークンの調整は二重適用として拒否する
	if strings.TrimSpace(in.Reference) != "" {
		dup, err := r.Movements().ExistsByTypeAndReference(ctx, model.MovementTypeAdjustment, in.Reference)
		if err != nil {
			return AdjustOutput{}, err
		}
		if dup {
			return AdjustOutput{}, NewHTTPError(http.StatusConflict, CodeDuplicateReference, "duplicate reference")
		}
	}

	rec, err := r.Records().FindByIDForUpdate(ctx, in.InventoryRecordID)
	if errors.Is(err, repo.ErrNotFound) {
		return AdjustOutput{}, newNotFound("inventory record not found")
	}
	if err != nil {
		return AdjustOutput{}, err
	}

	now := u.clock.Now()
	delta := in.NewQuantity - rec.Quantity

	//台帳へ追記
	movement, err := r.Movements().Create(ctx, model.StockMovement{
		InventoryRecordID: rec.ID,
		Type:              model.MovementTypeAdjustment,
		Delta:             delta,
		Reference:         strings.TrimSpace(in.Reference),
		Description:       in.Notes,
		UnitCost:          rec.UnitCost,
		PerformedBy:       adminID,
		CreatedAt:         now,
	})
	if err != nil {
		return AdjustOutput{}, err
	}

	//レコードの数量を更新
	if err := r.Records().UpdateQuantity(ctx, rec.ID, in.NewQuantity); err != nil {
		return AdjustOutput{}, err
	}

	//調整履歴
	adj, err := r.Adjustments().Create(ctx, model.StockAdjustment{
		InventoryRecordID: rec.ID,
		QuantityBefore:    rec.Quantity,
		QuantityAfter:     in.NewQuantity,
		Delta:             delta,
		Reason:            in.Reason,
		Notes:             in.Notes,
		PerformedBy:       adminID,
		ApprovedBy:        in.ApprovedBy,
		MovementID:        movement.ID,
		CreatedAt:         now,
	})
	if err != nil {
		return AdjustOutput{}, err
	}

	//監査ログ（before/afterを残す）
	beforeJSON, _ := json.Marshal(map[string]int64{"quantity": rec.Quantity})
	afterJSON, _ := json.Marshal(map[string]int64{"quantity": in.NewQuantity})
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionAdjustStock,
		ResourceType: model.AuditResourceInventoryRecord,
		ResourceID:   rec.ID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    now,
	}); err != nil {
		return AdjustOutput{}, err
	}

	//しきい値チェック
	rec.Quantity = in.NewQuantity
	if _, err := u.alerts.Evaluate(ctx, r.Alerts(), rec); err != nil {
		return AdjustOutput{}, err
	}

	return AdjustOutput{Record: rec, Adjustment: adj}, nil
}

// 複数レコードの数量を1つのトランザクションでまとめて調整する。
// 途中で失敗したら全体を巻き戻す。
func (u *AdjustmentUsecase) UpdateStockLevelsBatch(ctx context.Context, adminID int64, items []AdjustInput) ([]AdjustOutput, error) {
	if len(items) == 0 {
		return nil, newValidationError("empty batch")
	}
	for _, item := range items {
		if err := u.validate(adminID, item); err != nil {
			return nil, err
		}
	}

	outs := make([]AdjustOutput, 0, len(items))

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, item := range items {
			res, err := u.adjustInTx(ctx, r, adminID, item)
			if err != nil {
				return err
			}
			outs = append(outs, res)
		}
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}
	return outs, nil
}

// レコードの調整履歴（新しい順）
func (u *AdjustmentUsecase) ListByRecord(ctx context.Context, recordID int64, page int, limit int) ([]model.StockAdjustment, int64, error) {
	if recordID <= 0 {
		return nil, 0, newValidationError("invalid inventory record id")
	}
	if page < 1 {
		return nil, 0, newValidationError("invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, newValidationError("invalid limit")
	}

	items, total, err := u.adjustments.ListByRecord(ctx, recordID, page, limit)
	if err != nil {
		return nil, 0, newDBError()
	}
	return items, total, nil
}
