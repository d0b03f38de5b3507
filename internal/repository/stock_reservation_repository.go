package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 在庫予約の永続化の約束。
type StockReservationRepository interface {
	Create(ctx context.Context, r model.StockReservation) (model.StockReservation, error)

	FindByID(ctx context.Context, id int64) (model.StockReservation, error)

	//PENDINGかつ expires_at > now の予約数量の合計。
	//available計算はこの合計を、予約のINSERTと同じトランザクションで読む。
	SumPendingQuantity(ctx context.Context, recordID int64, now time.Time) (int64, error)

	//状態がfromのときだけtoへ遷移。遷移できたらtrue。
	UpdateStatusIf(ctx context.Context, id int64, from model.ReservationStatus, to model.ReservationStatus) (bool, error)

	//期限切れのPENDINGを一括でCANCELLEDにする。件数を返す。
	//既にCANCELLEDのものには触れないので、何回実行しても同じ。
	CancelExpired(ctx context.Context, now time.Time) (int64, error)

	//レコードの予約一覧（新しい順）
	ListByRecord(ctx context.Context, recordID int64, page int, limit int) ([]model.StockReservation, int64, error)
}
