package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var inventoryBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newInventoryUC(tx *TxManagerMock, records repo.InventoryRecordRepository) *usecase.InventoryUsecase {
	clk := &fixedClock{now: inventoryBase}
	engine := usecase.NewAlertEngine(usecase.AlertEmitEveryTime, 30*24*time.Hour, clk)
	return usecase.NewInventoryUsecase(tx, records, engine, clk)
}

func int64Ptr(v int64) *int64 { return &v }

// =====================
// GetRecord
// =====================

func TestInventoryUsecase_GetRecord_InvalidProductID(t *testing.T) {
	uc := newInventoryUC(new(TxManagerMock), new(RecordRepoMock))

	_, err := uc.GetRecord(context.Background(), 0, 1)
	assertErrContains(t, err, "invalid product id")
}

func TestInventoryUsecase_GetRecord_NotFound(t *testing.T) {
	recordRepo := new(RecordRepoMock)
	recordRepo.On("FindByProductAndLocation", mock.Anything, int64(1), int64(2)).Return(model.InventoryRecord{}, repo.ErrNotFound)

	uc := newInventoryUC(new(TxManagerMock), recordRepo)

	_, err := uc.GetRecord(context.Background(), 1, 2)
	assertErrContains(t, err, "inventory record not found")
}

func TestInventoryUsecase_GetRecord_Success(t *testing.T) {
	recordRepo := new(RecordRepoMock)
	recordRepo.On("FindByProductAndLocation", mock.Anything, int64(1), int64(2)).Return(model.InventoryRecord{
		ID: 9, ProductID: 1, LocationID: 2, Quantity: 30,
	}, nil)

	uc := newInventoryUC(new(TxManagerMock), recordRepo)

	rec, err := uc.GetRecord(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), rec.ID)
	assert.Equal(t, int64(30), rec.Quantity)
}

// =====================
// UpsertRecord
// =====================

func TestInventoryUsecase_Upsert_UnauthorizedActor(t *testing.T) {
	uc := newInventoryUC(new(TxManagerMock), new(RecordRepoMock))

	_, err := uc.UpsertRecord(context.Background(), 0, usecase.UpsertRecordInput{ProductID: 1, LocationID: 1})
	assertErrContains(t, err, "unauthorized")
}

func TestInventoryUsecase_Upsert_NegativeMinimumStock(t *testing.T) {
	uc := newInventoryUC(new(TxManagerMock), new(RecordRepoMock))

	_, err := uc.UpsertRecord(context.Background(), 1, usecase.UpsertRecordInput{
		ProductID:    1,
		LocationID:   1,
		MinimumStock: int64Ptr(-1),
	})
	assertErrContains(t, err, "minimum_stock must be >= 0")
}

// 新規作成：単価は商品から引き継ぎ、quantityの設定は台帳を通す
func TestInventoryUsecase_Upsert_CreatesRecord(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	recordRepo := new(RecordRepoMock)
	movRepo := new(MovementRepoMock)
	alertRepo := new(AlertRepoMock)
	productRepo := new(ProductRepoMock)
	locationRepo := new(LocationRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{
		records:   recordRepo,
		movements: movRepo,
		alerts:    alertRepo,
		products:  productRepo,
		locations: locationRepo,
		auditLogs: audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	adminID := int64(1)
	unitCost := decimal.NewFromFloat(4.25)

	productRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, UnitCost: unitCost}, nil)
	locationRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Location{ID: 2}, nil)

	recordRepo.On("FindByProductAndLocationForUpdate", mock.Anything, int64(100), int64(2)).Return(model.InventoryRecord{}, repo.ErrNotFound)

	recordRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec model.InventoryRecord) bool {
		return rec.ProductID == 100 &&
			rec.LocationID == 2 &&
			rec.Quantity == 0 &&
			rec.UnitCost.Equal(unitCost) &&
			rec.Status == model.InventoryStatusActive
	})).Return(model.InventoryRecord{
		ID: 55, ProductID: 100, LocationID: 2, Quantity: 0, UnitCost: unitCost,
		Status: model.InventoryStatusActive,
	}, nil)

	recordRepo.On("Update", mock.Anything, mock.MatchedBy(func(rec model.InventoryRecord) bool {
		return rec.ID == 55 && rec.MinimumStock == 10
	})).Return(nil)

	//quantity 50 の設定はADJUSTMENT movementとセット
	movRepo.On("Create", mock.Anything, mock.MatchedBy(func(m model.StockMovement) bool {
		return m.InventoryRecordID == 55 &&
			m.Type == model.MovementTypeAdjustment &&
			m.Delta == 50
	})).Return(model.StockMovement{ID: 800, Delta: 50}, nil)
	recordRepo.On("UpdateQuantity", mock.Anything, int64(55), int64(50)).Return(nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		//新規作成なのでbeforeは空
		return a.Action == model.AuditActionUpsertRecord &&
			a.ResourceID == 55 &&
			a.BeforeJSON == ""
	})).Return(nil)

	uc := newInventoryUC(tx, recordRepo)

	out, err := uc.UpsertRecord(ctx, adminID, usecase.UpsertRecordInput{
		ProductID:    100,
		LocationID:   2,
		Quantity:     int64Ptr(50),
		MinimumStock: int64Ptr(10),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.ID)
	assert.Equal(t, int64(50), out.Quantity)

	recordRepo.AssertExpectations(t)
	movRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// 既存レコード：渡したフィールドだけマージされ、quantityに触れなければ台帳も触らない
func TestInventoryUsecase_Upsert_MergesExisting_NoQuantityChange(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	recordRepo := new(RecordRepoMock)
	movRepo := new(MovementRepoMock)
	alertRepo := new(AlertRepoMock)
	productRepo := new(ProductRepoMock)
	locationRepo := new(LocationRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{
		records:   recordRepo,
		movements: movRepo,
		alerts:    alertRepo,
		products:  productRepo,
		locations: locationRepo,
		auditLogs: audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	productRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100}, nil)
	locationRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Location{ID: 2}, nil)

	existing := model.InventoryRecord{
		ID: 55, ProductID: 100, LocationID: 2, Quantity: 40,
		MinimumStock: 5, Status: model.InventoryStatusActive,
	}
	recordRepo.On("FindByProductAndLocationForUpdate", mock.Anything, int64(100), int64(2)).Return(existing, nil)

	recordRepo.On("Update", mock.Anything, mock.MatchedBy(func(rec model.InventoryRecord) bool {
		//minimum_stockだけ変わる。quantityはそのまま。
		return rec.ID == 55 && rec.MinimumStock == 15 && rec.Quantity == 40
	})).Return(nil)

	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := newInventoryUC(tx, recordRepo)

	out, err := uc.UpsertRecord(ctx, 1, usecase.UpsertRecordInput{
		ProductID:    100,
		LocationID:   2,
		MinimumStock: int64Ptr(15),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(40), out.Quantity)

	movRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	recordRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestInventoryUsecase_Upsert_ProductNotFound(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	recordRepo := new(RecordRepoMock)
	productRepo := new(ProductRepoMock)

	tx.Repos = &TxReposMock{records: recordRepo, products: productRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	productRepo.On("FindByID", mock.Anything, int64(404)).Return(model.Product{}, repo.ErrNotFound)

	uc := newInventoryUC(tx, recordRepo)

	_, err := uc.UpsertRecord(ctx, 1, usecase.UpsertRecordInput{ProductID: 404, LocationID: 2})
	assertErrContains(t, err, "product not found")
}

// =====================
// BatchUpsert
// =====================

// 行ごとに独立。1件の失敗で他の行は巻き戻らない。
func TestInventoryUsecase_BatchUpsert_PerItemIsolation(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	recordRepo := new(RecordRepoMock)
	productRepo := new(ProductRepoMock)
	locationRepo := new(LocationRepoMock)
	alertRepo := new(AlertRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{
		records:   recordRepo,
		products:  productRepo,
		locations: locationRepo,
		alerts:    alertRepo,
		auditLogs: audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	//2行目だけ成功する
	productRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100}, nil)
	locationRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Location{ID: 2}, nil)
	recordRepo.On("FindByProductAndLocationForUpdate", mock.Anything, int64(100), int64(2)).Return(model.InventoryRecord{
		ID: 55, ProductID: 100, LocationID: 2, Quantity: 40,
	}, nil)
	recordRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := newInventoryUC(tx, recordRepo)

	results := uc.BatchUpsert(ctx, 1, []usecase.UpsertRecordInput{
		{ProductID: 0, LocationID: 2},                               //バリデーションで落ちる
		{ProductID: 100, LocationID: 2, MinimumStock: int64Ptr(5)},  //成功
	})

	assert.Equal(t, 2, len(results))

	assert.Nil(t, results[0].Record)
	assert.Equal(t, "VALIDATION_ERROR", results[0].Code)

	assert.NotNil(t, results[1].Record)
	assert.Equal(t, int64(55), results[1].Record.ID)
	assert.Empty(t, results[1].Error)
}

// =====================
// ListLowStock / ListExpiring
// =====================

func TestInventoryUsecase_ListLowStock_Success(t *testing.T) {
	recordRepo := new(RecordRepoMock)
	locID := int64Ptr(2)
	recordRepo.On("FindLowStock", mock.Anything, locID).Return([]model.InventoryRecord{
		{ID: 1, Quantity: 3, MinimumStock: 10},
	}, nil)

	uc := newInventoryUC(new(TxManagerMock), recordRepo)

	records, err := uc.ListLowStock(context.Background(), locID)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(records))
}

func TestInventoryUsecase_ListExpiring_InvalidDays(t *testing.T) {
	uc := newInventoryUC(new(TxManagerMock), new(RecordRepoMock))

	_, err := uc.ListExpiring(context.Background(), -1)
	assertErrContains(t, err, "invalid days")
}

// cutoffはnow + withinDays
func TestInventoryUsecase_ListExpiring_Success(t *testing.T) {
	recordRepo := new(RecordRepoMock)
	cutoff := inventoryBase.AddDate(0, 0, 7)
	recordRepo.On("FindExpiringBefore", mock.Anything, cutoff).Return([]model.InventoryRecord{
		{ID: 1}, {ID: 2},
	}, nil)

	uc := newInventoryUC(new(TxManagerMock), recordRepo)

	records, err := uc.ListExpiring(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(records))
}
