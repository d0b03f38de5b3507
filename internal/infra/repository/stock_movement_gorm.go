package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type StockMovementGormRepository struct {
	db *gorm.DB
}

// DI
func NewStockMovementGormRepository(db *gorm.DB) *StockMovementGormRepository {
	return &StockMovementGormRepository{db: db}
}

// 台帳へ1件追記
func (r *StockMovementGormRepository) Create(ctx context.Context, m model.StockMovement) (model.StockMovement, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.StockMovement{}, translatePgError(err)
	}
	return m, nil
}

// created_at昇順で一覧取得（再開できるようにoffset/limit）
func (r *StockMovementGormRepository) List(ctx context.Context, q repo.MovementQuery) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.StockMovement{})

	if q.InventoryRecordID != nil {
		tx = tx.Where("inventory_record_id = ?", *q.InventoryRecordID)
	}
	if len(q.Types) > 0 {
		tx = tx.Where("type IN ?", q.Types)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at <= ?", *q.To)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.StockMovement{}, 0, err
	}

	//時系列の昇順。同時刻はIDで安定させる。
	tx = tx.Order("created_at asc").Order("id asc")

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&movements).Error; err != nil {
		return []model.StockMovement{}, 0, err
	}

	return movements, total, nil
}

// レコードのdelta合計
func (r *StockMovementGormRepository) SumDeltaByRecord(ctx context.Context, recordID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.StockMovement{}).
		Where("inventory_record_id = ?", recordID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// 同じ(種類, 参照トークン)のmovementが既にあるか
func (r *StockMovementGormRepository) ExistsByTypeAndReference(ctx context.Context, t model.MovementType, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.StockMovement{}).
		Where("type = ? AND reference = ?", t, reference).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
