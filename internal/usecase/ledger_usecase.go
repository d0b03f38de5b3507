package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 在庫台帳の参照と、調整・移動以外のmovement（売上・仕入など）の記録。
type LedgerUsecase struct {
	tx        repo.TransactionManager
	movements repo.StockMovementRepository
	records   repo.InventoryRecordRepository
	alerts    *AlertEngine
	clock     Clock
}

// DI
func NewLedgerUsecase(
	tx repo.TransactionManager,
	movements repo.StockMovementRepository,
	records repo.InventoryRecordRepository,
	alerts *AlertEngine,
	clock Clock,
) *LedgerUsecase {
	return &LedgerUsecase{
		tx:        tx,
		movements: movements,
		records:   records,
		alerts:    alerts,
		clock:     clock,
	}
}

type ListMovementsInput struct {
	Page              int
	Limit             int
	InventoryRecordID *int64
	Types             []model.MovementType
	From              *time.Time
	To                *time.Time
}

type MovementListOutput struct {
	Items []model.StockMovement `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func validMovementType(t model.MovementType) bool {
	switch t {
	case model.MovementTypePurchase, model.MovementTypeSale,
		model.MovementTypeTransferIn, model.MovementTypeTransferOut,
		model.MovementTypeAdjustment, model.MovementTypeReturn,
		model.MovementTypeDamaged, model.MovementTypeExpired:
		return true
	}
	return false
}

// 台帳をcreated_at昇順で返す。offset/limitで途中から再開できる。
func (u *LedgerUsecase) ListMovements(ctx context.Context, in ListMovementsInput) (MovementListOutput, error) {
	if in.Page < 1 {
		return MovementListOutput{}, newValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return MovementListOutput{}, newValidationError("invalid limit")
	}
	for _, t := range in.Types {
		if !validMovementType(t) {
			return MovementListOutput{}, newValidationError("invalid movement type")
		}
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return MovementListOutput{}, newValidationError("from must be <= to")
	}

	items, total, err := u.movements.List(ctx, repo.MovementQuery{
		Page:              in.Page,
		Limit:             in.Limit,
		InventoryRecordID: in.InventoryRecordID,
		Types:             in.Types,
		From:              in.From,
		To:                in.To,
	})
	if err != nil {
		return MovementListOutput{}, newDBError()
	}

	return MovementListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

type RecordMovementInput struct {
	InventoryRecordID int64
	Type              model.MovementType
	//正の数で渡す。符号は種類から決まる。
	Quantity    int64
	Reference   string
	Description string
}

// 種類ごとの符号。入庫系は＋、出庫系は−。
func movementSign(t model.MovementType) (int64, bool) {
	switch t {
	case model.MovementTypePurchase, model.MovementTypeReturn:
		return 1, true
	case model.MovementTypeSale, model.MovementTypeDamaged, model.MovementTypeExpired:
		return -1, true
	}
	//ADJUSTMENT / TRANSFERは専用の操作を使う
	return 0, false
}

// 売上・仕入・返品などのmovementを記録して数量へ反映する。
// 注文フローが予約のfulfillとあわせてSALEを記録するのに使う。
func (u *LedgerUsecase) RecordMovement(ctx context.Context, actorID int64, in RecordMovementInput) (model.StockMovement, error) {
	if actorID <= 0 {
		return model.StockMovement{}, newUnauthorized()
	}
	if in.InventoryRecordID <= 0 {
		return model.StockMovement{}, newValidationError("invalid inventory record id")
	}
	if in.Quantity <= 0 {
		return model.StockMovement{}, newValidationError("quantity must be > 0")
	}
	sign, ok := movementSign(in.Type)
	if !ok {
		return model.StockMovement{}, newValidationError("invalid movement type")
	}
	if len(in.Reference) > 255 {
		return model.StockMovement{}, newValidationError("reference too long")
	}

	var out model.StockMovement

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じ参照トークンは二重適用として拒否
		ref := strings.TrimSpace(in.Reference)
		if ref != "" {
			dup, err := r.Movements().ExistsByTypeAndReference(ctx, in.Type, ref)
			if err != nil {
				return err
			}
			if dup {
				return NewHTTPError(http.StatusConflict, CodeDuplicateReference, "duplicate reference")
			}
		}

		rec, err := r.Records().FindByIDForUpdate(ctx, in.InventoryRecordID)
		if errors.Is(err, repo.ErrNotFound) {
			return newNotFound("inventory record not found")
		}
		if err != nil {
			return err
		}

		delta := sign * in.Quantity
		newQuantity := rec.Quantity + delta

		//0未満になる操作は台帳に残さず拒否する
		if newQuantity < 0 {
			return NewHTTPError(http.StatusConflict, CodeInsufficientStock, "insufficient stock")
		}

		now := u.clock.Now()
		movement, err := r.Movements().Create(ctx, model.StockMovement{
			InventoryRecordID: rec.ID,
			Type:              in.Type,
			Delta:             delta,
			Reference:         ref,
			Description:       in.Description,
			UnitCost:          rec.UnitCost,
			PerformedBy:       actorID,
			CreatedAt:         now,
		})
		if err != nil {
			return err
		}

		if err := r.Records().UpdateQuantity(ctx, rec.ID, newQuantity); err != nil {
			return err
		}

		//しきい値チェック
		rec.Quantity = newQuantity
		if _, err := u.alerts.Evaluate(ctx, r.Alerts(), rec); err != nil {
			return err
		}

		out = movement
		return nil
	})
	if err != nil {
		return model.StockMovement{}, translateRepoError(err)
	}
	return out, nil
}

type VerifyRecordOutput struct {
	InventoryRecordID int64 `json:"inventory_record_id"`
	Quantity          int64 `json:"quantity"`
	LedgerSum         int64 `json:"ledger_sum"`
	InAgreement       bool  `json:"in_agreement"`
}

// レコードのquantityと台帳のdelta合計が一致しているかを検証する。
func (u *LedgerUsecase) VerifyRecord(ctx context.Context, recordID int64) (VerifyRecordOutput, error) {
	if recordID <= 0 {
		return VerifyRecordOutput{}, newValidationError("invalid inventory record id")
	}

	rec, err := u.records.FindByID(ctx, recordID)
	if errors.Is(err, repo.ErrNotFound) {
		return VerifyRecordOutput{}, newNotFound("inventory record not found")
	}
	if err != nil {
		return VerifyRecordOutput{}, newDBError()
	}

	sum, err := u.movements.SumDeltaByRecord(ctx, recordID)
	if err != nil {
		return VerifyRecordOutput{}, newDBError()
	}

	return VerifyRecordOutput{
		InventoryRecordID: recordID,
		Quantity:          rec.Quantity,
		LedgerSum:         sum,
		InAgreement:       rec.Quantity == sum,
	}, nil
}
