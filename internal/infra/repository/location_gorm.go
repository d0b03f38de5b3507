package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type LocationGormRepository struct {
	db *gorm.DB
}

// DI
func NewLocationGormRepository(db *gorm.DB) *LocationGormRepository {
	return &LocationGormRepository{db: db}
}

// IDで拠点を取得
func (r *LocationGormRepository) FindByID(ctx context.Context, id int64) (model.Location, error) {
	var l model.Location
	err := r.db.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Location{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Location{}, err
	}
	return l, nil
}

// 拠点の作成
func (r *LocationGormRepository) Create(ctx context.Context, l model.Location) (model.Location, error) {
	if err := r.db.WithContext(ctx).Create(&l).Error; err != nil {
		return model.Location{}, translatePgError(err)
	}
	return l, nil
}

// 拠点の一覧
func (r *LocationGormRepository) List(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	if err := r.db.WithContext(ctx).Order("id asc").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}
