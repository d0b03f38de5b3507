package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type AlertGormRepository struct {
	db *gorm.DB
}

// DI
func NewAlertGormRepository(db *gorm.DB) *AlertGormRepository {
	return &AlertGormRepository{db: db}
}

// アラートを1件追記
func (r *AlertGormRepository) Create(ctx context.Context, a model.Alert) (model.Alert, error) {
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return model.Alert{}, err
	}
	return a, nil
}

// アラート一覧（新しい順）
func (r *AlertGormRepository) List(ctx context.Context, f repo.AlertListFilter) ([]model.Alert, int64, error) {
	var alerts []model.Alert
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Alert{})

	if f.InventoryRecordID != nil {
		tx = tx.Where("inventory_record_id = ?", *f.InventoryRecordID)
	}
	if f.Type != nil {
		tx = tx.Where("type = ?", *f.Type)
	}
	if f.UnreadOnly {
		tx = tx.Where("is_read = ?", false)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Alert{}, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := tx.Order("id desc").Offset(offset).Limit(f.Limit).Find(&alerts).Error; err != nil {
		return []model.Alert{}, 0, err
	}

	return alerts, total, nil
}

// 既読にする
func (r *AlertGormRepository) MarkRead(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("id = ?", id).
		Update("is_read", true)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 同じ種類の未読アラートが既にあるか
func (r *AlertGormRepository) ExistsUnread(ctx context.Context, recordID int64, t model.AlertType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("inventory_record_id = ? AND type = ? AND is_read = ?", recordID, t, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
