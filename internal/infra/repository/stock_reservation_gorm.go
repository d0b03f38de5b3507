package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type StockReservationGormRepository struct {
	db *gorm.DB
}

// DI
func NewStockReservationGormRepository(db *gorm.DB) *StockReservationGormRepository {
	return &StockReservationGormRepository{db: db}
}

// 予約を作成
func (r *StockReservationGormRepository) Create(ctx context.Context, res model.StockReservation) (model.StockReservation, error) {
	if err := r.db.WithContext(ctx).Create(&res).Error; err != nil {
		return model.StockReservation{}, translatePgError(err)
	}
	return res, nil
}

// IDで予約を取得
func (r *StockReservationGormRepository) FindByID(ctx context.Context, id int64) (model.StockReservation, error) {
	var res model.StockReservation
	err := r.db.WithContext(ctx).First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.StockReservation{}, repo.ErrNotFound
	}
	if err != nil {
		return model.StockReservation{}, err
	}
	return res, nil
}

// PENDINGかつ未期限の予約数量の合計。
// expires_at > now の条件をここで掛けるので、Reaperが動く前でも
// 期限切れはavailableを減らさない。
func (r *StockReservationGormRepository) SumPendingQuantity(ctx context.Context, recordID int64, now time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.StockReservation{}).
		Where("inventory_record_id = ? AND status = ? AND expires_at > ?",
			recordID, model.ReservationStatusPending, now).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// 状態がfromのときだけtoへ遷移（条件付きUPDATEで競合を防ぐ）
func (r *StockReservationGormRepository) UpdateStatusIf(ctx context.Context, id int64, from model.ReservationStatus, to model.ReservationStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.StockReservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)

	if res.Error != nil {
		return false, translatePgError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 期限切れのPENDINGを一括CANCELLED。対象が無ければ0件で終わる。
func (r *StockReservationGormRepository) CancelExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.StockReservation{}).
		Where("status = ? AND expires_at <= ?", model.ReservationStatusPending, now).
		Update("status", model.ReservationStatusCancelled)

	if res.Error != nil {
		return 0, translatePgError(res.Error)
	}
	return res.RowsAffected, nil
}

// レコードの予約一覧（新しい順）
func (r *StockReservationGormRepository) ListByRecord(ctx context.Context, recordID int64, page int, limit int) ([]model.StockReservation, int64, error) {
	var reservations []model.StockReservation
	var total int64

	tx := r.db.WithContext(ctx).
		Model(&model.StockReservation{}).
		Where("inventory_record_id = ?", recordID)

	if err := tx.Count(&total).Error; err != nil {
		return []model.StockReservation{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("id desc").Offset(offset).Limit(limit).Find(&reservations).Error; err != nil {
		return []model.StockReservation{}, 0, err
	}

	return reservations, total, nil
}
