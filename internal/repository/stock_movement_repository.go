package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 台帳の絞り込み条件。
type MovementQuery struct {
	Page              int
	Limit             int
	InventoryRecordID *int64
	Types             []model.MovementType
	From              *time.Time
	To                *time.Time
}

// 在庫台帳（追記のみ）の約束。UpdateやDeleteは提供しない。
type StockMovementRepository interface {
	Create(ctx context.Context, m model.StockMovement) (model.StockMovement, error)

	//created_at昇順。offset/limitで再開できる。
	List(ctx context.Context, q MovementQuery) ([]model.StockMovement, int64, error)

	//レコードのdelta合計（quantityとの一致検証に使う）
	SumDeltaByRecord(ctx context.Context, recordID int64) (int64, error)

	//同じ(種類, 参照トークン)のmovementが既にあるか（二重適用の防止）
	ExistsByTypeAndReference(ctx context.Context, t model.MovementType, reference string) (bool, error)
}
