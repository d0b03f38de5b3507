package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type StockAdjustmentGormRepository struct {
	db *gorm.DB
}

// DI
func NewStockAdjustmentGormRepository(db *gorm.DB) *StockAdjustmentGormRepository {
	return &StockAdjustmentGormRepository{db: db}
}

// 調整履歴を作成
func (r *StockAdjustmentGormRepository) Create(ctx context.Context, adj model.StockAdjustment) (model.StockAdjustment, error) {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return model.StockAdjustment{}, err
	}
	return adj, nil
}

// レコードの調整履歴（新しい順）
func (r *StockAdjustmentGormRepository) ListByRecord(ctx context.Context, recordID int64, page int, limit int) ([]model.StockAdjustment, int64, error) {
	var adjustments []model.StockAdjustment
	var total int64

	tx := r.db.WithContext(ctx).
		Model(&model.StockAdjustment{}).
		Where("inventory_record_id = ?", recordID)

	if err := tx.Count(&total).Error; err != nil {
		return []model.StockAdjustment{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("id desc").Offset(offset).Limit(limit).Find(&adjustments).Error; err != nil {
		return []model.StockAdjustment{}, 0, err
	}

	return adjustments, total, nil
}
