package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 拠点間の在庫移動。2つのレコードと台帳2行を、全部成功か全部失敗で扱う。
type TransferUsecase struct {
	tx     repo.TransactionManager
	alerts *AlertEngine
	clock  Clock
}

// DI
func NewTransferUsecase(tx repo.TransactionManager, alerts *AlertEngine, clock Clock) *TransferUsecase {
	return &TransferUsecase{
		tx:     tx,
		alerts: alerts,
		clock:  clock,
	}
}

type TransferInput struct {
	FromRecordID int64
	ToLocationID int64
	Quantity     int64

	//呼び出し側が選ぶ参照トークン（任意）
	Reference string
}

type TransferOutput struct {
	Outbound   model.StockMovement   `json:"outbound"`
	Inbound    model.StockMovement   `json:"inbound"`
	FromRecord model.InventoryRecord `json:"from_record"`
	ToRecord   model.InventoryRecord `json:"to_record"`
}

func (u *TransferUsecase) validate(adminID int64, in TransferInput) error {
	if adminID <= 0 {
		return newUnauthorized()
	}
	if in.FromRecordID <= 0 {
		return newValidationError("invalid from record id")
	}
	if in.ToLocationID <= 0 {
		return newValidationError("invalid to location id")
	}
	if in.Quantity <= 0 {
		return newValidationError("quantity must be > 0")
	}
	if len(in.Reference) > 255 {
		return newValidationError("reference too long")
	}
	return nil
}

// 移動の全手順（残高確認→出庫→入庫→アラート）を1トランザクションで行う。
// 途中で失敗したら両レコードも台帳も元のまま。
func (u *TransferUsecase) Transfer(ctx context.Context, adminID int64, in TransferInput) (TransferOutput, error) {
	if err := u.validate(adminID, in); err != nil {
		return TransferOutput{}, err
	}

	var out TransferOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		res, err := u.transferInTx(ctx, r, adminID, in)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return TransferOutput{}, translateRepoError(err)
	}
	return out, nil
}

func (u *TransferUsecase) transferInTx(ctx context.Context, r repo.TxRepos, adminID int64, in TransferInput) (TransferOutput, error) {
	//同じ参照トークンの移動は二重適用として拒否する
	if strings.TrimSpace(in.Reference) != "" {
		dup, err := r.Movements().ExistsByTypeAndReference(ctx, model.MovementTypeTransferOut, in.Reference)
		if err != nil {
			return TransferOutput{}, err
		}
		if dup {
			return TransferOutput{}, NewHTTPError(http.StatusConflict, CodeDuplicateReference, "duplicate reference")
		}
	}

	//まずロック無しで両レコードの居場所を確かめる（ロック順を決めるため）
	src0, err := r.Records().FindByID(ctx, in.FromRecordID)
	if errors.Is(err, repo.ErrNotFound) {
		return TransferOutput{}, newNotFound("inventory record not found")
	}
	if err != nil {
		return TransferOutput{}, err
	}
	if src0.LocationID == in.ToLocationID {
		return TransferOutput{}, newValidationError("cannot transfer to the same location")
	}

	dest0, err := r.Records().FindByProductAndLocation(ctx, src0.ProductID, in.ToLocationID)
	destExists := true
	if errors.Is(err, repo.ErrNotFound) {
		destExists = false
	} else if err != nil {
		return TransferOutput{}, err
	}

	//行ロックは必ずID昇順で取る（すれ違いの移動同士でデッドロックしないため）
	var src, dest model.InventoryRecord
	if destExists {
		if src0.ID < dest0.ID {
			if src, err = r.Records().FindByIDForUpdate(ctx, src0.ID); err != nil {
				return TransferOutput{}, err
			}
			if dest, err = r.Records().FindByIDForUpdate(ctx, dest0.ID); err != nil {
				return TransferOutput{}, err
			}
		} else {
			if dest, err = r.Records().FindByIDForUpdate(ctx, dest0.ID); err != nil {
				return TransferOutput{}, err
			}
			if src, err = r.Records().FindByIDForUpdate(ctx, src0.ID); err != nil {
				return TransferOutput{}, err
			}
		}
	} else {
		if src, err = r.Records().FindByIDForUpdate(ctx, src0.ID); err != nil {
			return TransferOutput{}, err
		}

		//移動先レコードを新規作成。拠点の存在を確認し、単価は商品から引き継ぐ。
		if _, err := r.Locations().FindByID(ctx, in.ToLocationID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return TransferOutput{}, newNotFound("location not found")
			}
			return TransferOutput{}, err
		}
		product, err := r.Products().FindByID(ctx, src.ProductID)
		if err != nil {
			return TransferOutput{}, err
		}

		now := u.clock.Now()
		dest, err = r.Records().Create(ctx, model.InventoryRecord{
			ProductID:  src.ProductID,
			LocationID: in.ToLocationID,
			Quantity:   0,
			UnitCost:   product.UnitCost,
			Status:     model.InventoryStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			//同時に同じ移動先が作られた場合はErrConflictで上がってくる
			return TransferOutput{}, err
		}
	}

	//残高確認（ロック後の値で判定する）
	if in.Quantity > src.Quantity {
		return TransferOutput{}, NewHTTPError(http.StatusConflict, CodeInsufficientStock, "insufficient stock")
	}

	now := u.clock.Now()
	ref := strings.TrimSpace(in.Reference)

	//出庫側
	outbound, err := r.Movements().Create(ctx, model.StockMovement{
		InventoryRecordID: src.ID,
		Type:              model.MovementTypeTransferOut,
		Delta:             -in.Quantity,
		Reference:         ref,
		Description:       fmt.Sprintf("transfer to location %d", in.ToLocationID),
		UnitCost:          src.UnitCost,
		PerformedBy:       adminID,
		CreatedAt:         now,
	})
	if err != nil {
		return TransferOutput{}, err
	}
	if err := r.Records().UpdateQuantity(ctx, src.ID, src.Quantity-in.Quantity); err != nil {
		return TransferOutput{}, err
	}

	//入庫側（出庫movementを相互参照する）
	inbound, err := r.Movements().Create(ctx, model.StockMovement{
		InventoryRecordID: dest.ID,
		Type:              model.MovementTypeTransferIn,
		Delta:             in.Quantity,
		Reference:         ref,
		Description:       fmt.Sprintf("transfer from location %d", src.LocationID),
		UnitCost:          src.UnitCost,
		PerformedBy:       adminID,
		PairedMovementID:  &outbound.ID,
		CreatedAt:         now,
	})
	if err != nil {
		return TransferOutput{}, err
	}
	if err := r.Records().UpdateQuantity(ctx, dest.ID, dest.Quantity+in.Quantity); err != nil {
		return TransferOutput{}, err
	}

	src.Quantity -= in.Quantity
	dest.Quantity += in.Quantity

	//監査ログ
	beforeJSON, _ := json.Marshal(map[string]int64{
		"from_quantity": src.Quantity + in.Quantity,
		"to_quantity":   dest.Quantity - in.Quantity,
	})
	afterJSON, _ := json.Marshal(map[string]int64{
		"from_quantity": src.Quantity,
		"to_quantity":   dest.Quantity,
	})
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionTransferStock,
		ResourceType: model.AuditResourceInventoryRecord,
		ResourceID:   src.ID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    now,
	}); err != nil {
		return TransferOutput{}, err
	}

	//両側のしきい値チェック
	if _, err := u.alerts.Evaluate(ctx, r.Alerts(), src); err != nil {
		return TransferOutput{}, err
	}
	if _, err := u.alerts.Evaluate(ctx, r.Alerts(), dest); err != nil {
		return TransferOutput{}, err
	}

	return TransferOutput{
		Outbound:   outbound,
		Inbound:    inbound,
		FromRecord: src,
		ToRecord:   dest,
	}, nil
}

// 複数の移動を1つのトランザクションでまとめて行う。
// 途中で失敗したら全体を巻き戻す。
func (u *TransferUsecase) TransferBatch(ctx context.Context, adminID int64, items []TransferInput) ([]TransferOutput, error) {
	if len(items) == 0 {
		return nil, newValidationError("empty batch")
	}
	for _, item := range items {
		if err := u.validate(adminID, item); err != nil {
			return nil, err
		}
	}

	outs := make([]TransferOutput, 0, len(items))

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, item := range items {
			res, err := u.transferInTx(ctx, r, adminID, item)
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
