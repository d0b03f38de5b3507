package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	records      repo.InventoryRecordRepository
	movements    repo.StockMovementRepository
	reservations repo.StockReservationRepository
	adjustments  repo.StockAdjustmentRepository
	alerts       repo.AlertRepository
	products     repo.ProductRepository
	locations    repo.LocationRepository
	auditLogs    repo.AuditLogRepository
}

func (r *TxReposMock) Records() repo.InventoryRecordRepository        { return r.records }
func (r *TxReposMock) Movements() repo.StockMovementRepository        { return r.movements }
func (r *TxReposMock) Reservations() repo.StockReservationRepository  { return r.reservations }
func (r *TxReposMock) Adjustments() repo.StockAdjustmentRepository    { return r.adjustments }
func (r *TxReposMock) Alerts() repo.AlertRepository                   { return r.alerts }
func (r *TxReposMock) Products() repo.ProductRepository               { return r.products }
func (r *TxReposMock) Locations() repo.LocationRepository             { return r.locations }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository             { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type RecordRepoMock struct{ mock.Mock }

func (m *RecordRepoMock) FindByID(ctx context.Context, id int64) (model.InventoryRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(model.InventoryRecord)
	return rec, args.Error(1)
}

func (m *RecordRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.InventoryRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(model.InventoryRecord)
	return rec, args.Error(1)
}

func (m *RecordRepoMock) FindByProductAndLocation(ctx context.Context, productID int64, locationID int64) (model.InventoryRecord, error) {
	args := m.Called(ctx, productID, locationID)
	rec, _ := args.Get(0).(model.InventoryRecord)
	return rec, args.Error(1)
}

func (m *RecordRepoMock) FindByProductAndLocationForUpdate(ctx context.Context, productID int64, locationID int64) (model.InventoryRecord, error) {
	args := m.Called(ctx, productID, locationID)
	rec, _ := args.Get(0).(model.InventoryRecord)
	return rec, args.Error(1)
}

func (m *RecordRepoMock) Create(ctx context.Context, rec model.InventoryRecord) (model.InventoryRecord, error) {
	args := m.Called(ctx, rec)
	out, _ := args.Get(0).(model.InventoryRecord)
	return out, args.Error(1)
}

func (m *RecordRepoMock) Update(ctx context.Context, rec model.InventoryRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *RecordRepoMock) UpdateQuantity(ctx context.Context, id int64, newQuantity int64) error {
	args := m.Called(ctx, id, newQuantity)
	return args.Error(0)
}

func (m *RecordRepoMock) List(ctx context.Context, q repo.RecordListQuery) ([]model.InventoryRecord, int64, error) {
	args := m.Called(ctx, q)
	recs, _ := args.Get(0).([]model.InventoryRecord)
	return recs, args.Get(1).(int64), args.Error(2)
}

func (m *RecordRepoMock) FindLowStock(ctx context.Context, locationID *int64) ([]model.InventoryRecord, error) {
	args := m.Called(ctx, locationID)
	recs, _ := args.Get(0).([]model.InventoryRecord)
	return recs, args.Error(1)
}

func (m *RecordRepoMock) FindExpiringBefore(ctx context.Context, date time.Time) ([]model.InventoryRecord, error) {
	args := m.Called(ctx, date)
	recs, _ := args.Get(0).([]model.InventoryRecord)
	return recs, args.Error(1)
}

type MovementRepoMock struct{ mock.Mock }

func (m *MovementRepoMock) Create(ctx context.Context, mv model.StockMovement) (model.StockMovement, error) {
	args := m.Called(ctx, mv)
	out, _ := args.Get(0).(model.StockMovement)
	return out, args.Error(1)
}

func (m *MovementRepoMock) List(ctx context.Context, q repo.MovementQuery) ([]model.StockMovement, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.StockMovement)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MovementRepoMock) SumDeltaByRecord(ctx context.Context, recordID int64) (int64, error) {
	args := m.Called(ctx, recordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MovementRepoMock) ExistsByTypeAndReference(ctx context.Context, t model.MovementType, reference string) (bool, error) {
	args := m.Called(ctx, t, reference)
	return args.Bool(0), args.Error(1)
}

type ReservationRepoMock struct{ mock.Mock }

func (m *ReservationRepoMock) Create(ctx context.Context, r model.StockReservation) (model.StockReservation, error) {
	args := m.Called(ctx, r)
	out, _ := args.Get(0).(model.StockReservation)
	return out, args.Error(1)
}

func (m *ReservationRepoMock) FindByID(ctx context.Context, id int64) (model.StockReservation, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(model.StockReservation)
	return out, args.Error(1)
}

func (m *ReservationRepoMock) SumPendingQuantity(ctx context.Context, recordID int64, now time.Time) (int64, error) {
	args := m.Called(ctx, recordID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReservationRepoMock) UpdateStatusIf(ctx context.Context, id int64, from model.ReservationStatus, to model.ReservationStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *ReservationRepoMock) CancelExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReservationRepoMock) ListByRecord(ctx context.Context, recordID int64, page int, limit int) ([]model.StockReservation, int64, error) {
	args := m.Called(ctx, recordID, page, limit)
	items, _ := args.Get(0).([]model.StockReservation)
	return items, args.Get(1).(int64), args.Error(2)
}

type AdjustmentRepoMock struct{ mock.Mock }

func (m *AdjustmentRepoMock) Create(ctx context.Context, adj model.StockAdjustment) (model.StockAdjustment, error) {
	args := m.Called(ctx, adj)
	out, _ := args.Get(0).(model.StockAdjustment)
	return out, args.Error(1)
}

func (m *AdjustmentRepoMock) ListByRecord(ctx context.Context, recordID int64, page int, limit int) ([]model.StockAdjustment, int64, error) {
	args := m.Called(ctx, recordID, page, limit)
	items, _ := args.Get(0).([]model.StockAdjustment)
	return items, args.Get(1).(int64), args.Error(2)
}

type AlertRepoMock struct{ mock.Mock }

func (m *AlertRepoMock) Create(ctx context.Context, a model.Alert) (model.Alert, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(model.Alert)
	return out, args.Error(1)
}

func (m *AlertRepoMock) List(ctx context.Context, f repo.AlertListFilter) ([]model.Alert, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Alert)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *AlertRepoMock) MarkRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AlertRepoMock) ExistsUnread(ctx context.Context, recordID int64, t model.AlertType) (bool, error) {
	args := m.Called(ctx, recordID, t)
	return args.Bool(0), args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

type LocationRepoMock struct{ mock.Mock }

func (m *LocationRepoMock) FindByID(ctx context.Context, id int64) (model.Location, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(model.Location)
	return l, args.Error(1)
}

func (m *LocationRepoMock) Create(ctx context.Context, l model.Location) (model.Location, error) {
	args := m.Called(ctx, l)
	out, _ := args.Get(0).(model.Location)
	return out, args.Error(1)
}

func (m *LocationRepoMock) List(ctx context.Context) ([]model.Location, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Location)
	return items, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Helpers
// =====================

// テストで時刻を固定する
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// error contains（HTTPErrorの実装詳細に依存しない）
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
