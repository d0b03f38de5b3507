package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	records      repo.InventoryRecordRepository
	movements    repo.StockMovementRepository
	reservations repo.StockReservationRepository
	adjustments  repo.StockAdjustmentRepository
	alerts       repo.AlertRepository
	products     repo.ProductRepository
	locations    repo.LocationRepository
	auditLogs    repo.AuditLogRepository
}

func (r *txReposGorm) Records() repo.InventoryRecordRepository       { return r.records }
func (r *txReposGorm) Movements() repo.StockMovementRepository       { return r.movements }
func (r *txReposGorm) Reservations() repo.StockReservationRepository { return r.reservations }
func (r *txReposGorm) Adjustments() repo.StockAdjustmentRepository   { return r.adjustments }
func (r *txReposGorm) Alerts() repo.AlertRepository                  { return r.alerts }
func (r *txReposGorm) Products() repo.ProductRepository              { return r.products }
func (r *txReposGorm) Locations() repo.LocationRepository            { return r.locations }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository            { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			records:      NewInventoryRecordGormRepository(tx),
			movements:    NewStockMovementGormRepository(tx),
			reservations: NewStockReservationGormRepository(tx),
			adjustments:  NewStockAdjustmentGormRepository(tx),
			alerts:       NewAlertGormRepository(tx),
			products:     NewProductGormRepository(tx),
			locations:    NewLocationGormRepository(tx),
			auditLogs:    NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
	//commit時に検出された競合もsentinelへ寄せる
	if err != nil {
		return translatePgError(err)
	}
	return nil
}
