package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 在庫予約（仮押さえ）の作成・確定・解放。
type ReservationUsecase struct {
	tx           repo.TransactionManager
	reservations repo.StockReservationRepository
	clock        Clock
}

// DI
func NewReservationUsecase(
	tx repo.TransactionManager,
	reservations repo.StockReservationRepository,
	clock Clock,
) *ReservationUsecase {
	return &ReservationUsecase{
		tx:           tx,
		reservations: reservations,
		clock:        clock,
	}
}

type ReserveInput struct {
	InventoryRecordID int64
	Quantity          int64
	ExpiresAt         time.Time
	OrderID           *int64
}

// available = quantity − Σ(PENDINGかつ未期限の予約)。
// 合計の読みと予約のINSERTを同じトランザクションで行い、
// レコード行をロックして同時予約の売り越しを防ぐ。
func (u *ReservationUsecase) Reserve(ctx context.Context, in ReserveInput) (model.StockReservation, error) {
	if in.InventoryRecordID <= 0 {
		return model.StockReservation{}, newValidationError("invalid inventory record id")
	}
	if in.Quantity <= 0 {
		return model.StockReservation{}, newValidationError("quantity must be > 0")
	}
	now := u.clock.Now()
	if !in.ExpiresAt.After(now) {
		return model.StockReservation{}, newValidationError("expires_at must be in the future")
	}
	if in.OrderID != nil && *in.OrderID <= 0 {
		return model.StockReservation{}, newValidationError("invalid order id")
	}

	var out model.StockReservation

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//行ロックを取ってから空き数量を計算する
		rec, err := r.Records().FindByIDForUpdate(ctx, in.InventoryRecordID)
		if errors.Is(err, repo.ErrNotFound) {
			return newNotFound("inventory record not found")
		}
		if err != nil {
			return err
		}

		//期限切れはReaperが動く前でも数えない
		pending, err := r.Reservations().SumPendingQuantity(ctx, rec.ID, now)
		if err != nil {
			return err
		}

		available := rec.Quantity - pending
		if in.Quantity > available {
			return NewHTTPError(http.StatusConflict, CodeInsufficientAvailableStock, "insufficient available stock")
		}

		created, err := r.Reservations().Create(ctx, model.StockReservation{
			InventoryRecordID: rec.ID,
			Quantity:          in.Quantity,
			Status:            model.ReservationStatusPending,
			OrderID:           in.OrderID,
			ExpiresAt:         in.ExpiresAt,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		if err != nil {
			return err
		}

		out = created
		return nil
	})
	if err != nil {
		return model.StockReservation{}, translateRepoError(err)
	}
	return out, nil
}

// PENDING → FULFILLED。数量はここでは変えない
// （売上のSALE movementは呼び出し側が別に記録する）。
func (u *ReservationUsecase) Fulfill(ctx context.Context, reservationID int64) (model.StockReservation, error) {
	return u.transition(ctx, reservationID, model.ReservationStatusFulfilled)
}

// PENDING → CANCELLED（呼び出し側の明示的な解放）。
func (u *ReservationUsecase) Cancel(ctx context.Context, reservationID int64) (model.StockReservation, error) {
	return u.transition(ctx, reservationID, model.ReservationStatusCancelled)
}

func (u *ReservationUsecase) transition(ctx context.Context, reservationID int64, to model.ReservationStatus) (model.StockReservation, error) {
	if reservationID <= 0 {
		return model.StockReservation{}, newValidationError("invalid reservation id")
	}

	var out model.StockReservation

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		res, err := r.Reservations().FindByID(ctx, reservationID)
		if errors.Is(err, repo.ErrNotFound) {
			return newNotFound("reservation not found")
		}
		if err != nil {
			return err
		}

		//条件付きUPDATEでPENDINGのときだけ遷移させる
		ok, err := r.Reservations().UpdateStatusIf(ctx, res.ID, model.ReservationStatusPending, to)
		if err != nil {
			return err
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, CodeValidationError, "reservation is not pending")
		}

		res.Status = to
		out = res
		return nil
	})
	if err != nil {
		return model.StockReservation{}, translateRepoError(err)
	}
	return out, nil
}

// 期限切れのPENDINGをまとめてCANCELLEDへ。Reaperから定期的に呼ばれる。
// 既に処理済みのものは対象から外れるので、重ねて実行しても安全。
func (u *ReservationUsecase) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	var count int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Reservations().CancelExpired(ctx, now)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, translateRepoError(err)
	}
	return count, nil
}

// レコードの予約一覧（管理画面用）
func (u *ReservationUsecase) ListByRecord(ctx context.Context, recordID int64, page int, limit int) ([]model.StockReservation, int64, error) {
	if recordID <= 0 {
		return nil, 0, newValidationError("invalid inventory record id")
	}
	if page < 1 {
		return nil, 0, newValidationError("invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, newValidationError("invalid limit")
	}

	items, total, err := u.reservations.ListByRecord(ctx, recordID, page, limit)
	if err != nil {
		return nil, 0, newDBError()
	}
	return items, total, nil
}
