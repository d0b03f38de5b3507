package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRecordGormRepository struct {
	db *gorm.DB
}

// DI
func NewInventoryRecordGormRepository(db *gorm.DB) *InventoryRecordGormRepository {
	return &InventoryRecordGormRepository{db: db}
}

// IDで在庫レコードを取得
func (r *InventoryRecordGormRepository) FindByID(ctx context.Context, id int64) (model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryRecord{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryRecord{}, err
	}
	return rec, nil
}

// SELECT ... FOR UPDATE で取得（読み→書きの直列化）
func (r *InventoryRecordGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryRecord{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryRecord{}, translatePgError(err)
	}
	return rec, nil
}

// (product, location) で取得
func (r *InventoryRecordGormRepository) FindByProductAndLocation(ctx context.Context, productID int64, locationID int64) (model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryRecord{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryRecord{}, err
	}
	return rec, nil
}

func (r *InventoryRecordGormRepository) FindByProductAndLocationForUpdate(ctx context.Context, productID int64, locationID int64) (model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryRecord{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryRecord{}, translatePgError(err)
	}
	return rec, nil
}

// 在庫レコードの作成。(product, location)の一意制約違反はErrConflict。
func (r *InventoryRecordGormRepository) Create(ctx context.Context, rec model.InventoryRecord) (model.InventoryRecord, error) {
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.InventoryRecord{}, translatePgError(err)
	}
	return rec, nil
}

// ポリシー・メタ情報の更新（quantityは触らない）
func (r *InventoryRecordGormRepository) Update(ctx context.Context, rec model.InventoryRecord) error {
	res := r.db.WithContext(ctx).Model(&model.InventoryRecord{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
		"minimum_stock":    rec.MinimumStock,
		"maximum_stock":    rec.MaximumStock,
		"reorder_point":    rec.ReorderPoint,
		"reorder_quantity": rec.ReorderQuantity,
		"unit_cost":        rec.UnitCost,
		"status":           rec.Status,
		"bin":              rec.Bin,
		"batch_number":     rec.BatchNumber,
		"expiry_date":      rec.ExpiryDate,
		"last_stock_check": rec.LastStockCheck,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 数量の更新（トランザクション内で台帳の追記とセットで使う）
func (r *InventoryRecordGormRepository) UpdateQuantity(ctx context.Context, id int64, newQuantity int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.InventoryRecord{}).
		Where("id = ?", id).
		Update("quantity", newQuantity)

	if res.Error != nil {
		return translatePgError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫レコードを条件付きで一覧取得
func (r *InventoryRecordGormRepository) List(ctx context.Context, q repo.RecordListQuery) ([]model.InventoryRecord, int64, error) {
	var records []model.InventoryRecord
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.InventoryRecord{})

	if q.ProductID != nil {
		tx = tx.Where("product_id = ?", *q.ProductID)
	}
	if q.LocationID != nil {
		tx = tx.Where("location_id = ?", *q.LocationID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.InventoryRecord{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("id asc").Offset(offset).Limit(q.Limit).Find(&records).Error; err != nil {
		return []model.InventoryRecord{}, 0, err
	}

	return records, total, nil
}

// quantity <= minimum_stock（無効レコードは除く）
func (r *InventoryRecordGormRepository) FindLowStock(ctx context.Context, locationID *int64) ([]model.InventoryRecord, error) {
	tx := r.db.WithContext(ctx).
		Where("quantity <= minimum_stock").
		Where("status = ?", model.InventoryStatusActive)

	if locationID != nil {
		tx = tx.Where("location_id = ?", *locationID)
	}

	var records []model.InventoryRecord
	if err := tx.Order("quantity asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// 期限が指定日より前のレコード
func (r *InventoryRecordGormRepository) FindExpiringBefore(ctx context.Context, date time.Time) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", date).
		Order("expiry_date asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
