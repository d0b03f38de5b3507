package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反や同時更新の競合（ストア側で検出されたもの）。
var ErrConflict = errors.New("conflict")

// 一覧検索
type RecordListQuery struct {
	Page       int
	Limit      int
	ProductID  *int64
	LocationID *int64
	Status     *model.InventoryStatus
}

// 在庫レコードの永続化の約束。
// quantityの変更はUpdateQuantityだけ。読み→書きするときはForUpdateで行ロックを取る。
type InventoryRecordRepository interface {
	FindByID(ctx context.Context, id int64) (model.InventoryRecord, error)

	// SELECT ... FOR UPDATE で取得（トランザクション内でのみ使う）
	FindByIDForUpdate(ctx context.Context, id int64) (model.InventoryRecord, error)

	FindByProductAndLocation(ctx context.Context, productID int64, locationID int64) (model.InventoryRecord, error)
	FindByProductAndLocationForUpdate(ctx context.Context, productID int64, locationID int64) (model.InventoryRecord, error)

	Create(ctx context.Context, rec model.InventoryRecord) (model.InventoryRecord, error)

	//ポリシー・メタ情報の更新（quantityは更新しない）
	Update(ctx context.Context, rec model.InventoryRecord) error

	//数量の更新（必ずトランザクション内で、台帳への追記とセットで使う）
	UpdateQuantity(ctx context.Context, id int64, newQuantity int64) error

	List(ctx context.Context, q RecordListQuery) ([]model.InventoryRecord, int64, error)

	//quantity <= minimum_stock のレコード
	FindLowStock(ctx context.Context, locationID *int64) ([]model.InventoryRecord, error)

	//期限が指定日より前のレコード
	FindExpiringBefore(ctx context.Context, date time.Time) ([]model.InventoryRecord, error)
}
