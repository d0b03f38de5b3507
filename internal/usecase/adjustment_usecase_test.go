package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var adjustBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newAdjustmentUC(tx *TxManagerMock, adjustments repo.StockAdjustmentRepository) *usecase.AdjustmentUsecase {
	clk := &fixedClock{now: adjustBase}
	engine := usecase.NewAlertEngine(usecase.AlertEmitEveryTime, 30*24*time.Hour, clk)
	return usecase.NewAdjustmentUsecase(tx, adjustments, engine, clk)
}

// =====================
// Validation
// =====================

func TestAdjustmentUsecase_Adjust_UnauthorizedActor(t *testing.T) {
	tx := new(TxManagerMock)
	uc := newAdjustmentUC(tx, new(AdjustmentRepoMock))

	_, err := uc.Adjust(context.Background(), 0, usecase.AdjustInput{
		InventoryRecordID: 1,
		NewQuantity:       5,
		Reason:            model.AdjustmentReasonDamaged,
	})
	assertErrContains(t, err, "unauthorized")
}

func TestAdjustmentUsecase_Adjust_NegativeQuantity(t *testing.T) {
	tx := new(TxManagerMock)
	uc := newAdjustmentUC(tx, new(AdjustmentRepoMock))

	_, err := uc.Adjust(context.Background(), 1, usecase.AdjustInput{
		InventoryRecordID: 1,
		NewQuantity:       -1,
		Reason:            model.AdjustmentReasonDamaged,
	})
	assertErrContains(t, err, "quantity must be >= 0")
}

func TestAdjustmentUsecase_Adjust_InvalidReason(t *testing.T) {
	tx := new(TxManagerMock)
	uc := newAdjustmentUC(tx, new(AdjustmentRepoMock))

	_, err := uc.Adjust(context.Background(), 1, usecase.AdjustInput{
		InventoryRecordID: 1,
		NewQuantity:       5,
		Reason:            "XXX",
	})
	assertErrContains(t, err, "invalid reason")
}

// =====================
// Adjust
// =====================

// 100 → 15（floodで破損）。movementのdelta -85、調整履歴、監査ログ、
// さらに 15 <= minimum 20 でLOW_STOCKアラートが出る。
func TestAdjustmentUsecase_Adjust_Damage_EmitsLowStockAlert(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	recordRepo := new(RecordRepoMock)
	movRepo := new(MovementRepoMock)
	adjRepo := new(AdjustmentRepoMock)
	alertRepo := new(AlertRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{
		records:     recordRepo,
		movements:   movRepo,
		adjustments: adjRepo,
		alerts:      alertRepo,
		auditLogs:   audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	adminID := int64(42)
	recordID := int64(10)

	recordRepo.On("FindByIDForUpdate", mock.Anything, recordID).Return(model.InventoryRecord{
		ID:           recordID,
		Quantity:     100,
		MinimumStock: 20,
	}, nil)

	movRepo.On("Create", mock.Anything, mock.MatchedBy(func(m model.StockMovement) bool {
		return m.InventoryRecordID == recordID &&
			m.Type == model.MovementTypeAdjustment &&
			m.Delta == -85 &&
			m.PerformedBy == adminID
	})).Return(model.StockMovement{ID: 501, Delta: -85}, nil)

	recordRepo.On("UpdateQuantity", mock.Anything, recordID, int64(15)).Return(nil)

	adjRepo.On("Create", mock.Anything, mock.MatchedBy(func(a model.StockAdjustment) bool {
		return a.InventoryRecordID == recordID &&
			a.QuantityBefore == 100 &&
			a.QuantityAfter == 15 &&
			a.Delta == -85 &&
			a.Reason == model.AdjustmentReasonDamaged &&
			a.MovementID == 501
	})).Return(model.StockAdjustment{ID: 900, Delta: -85}, nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		return a.ActorUserID == adminID &&
			a.Action == model.AuditActionAdjustStock &&
			a.ResourceID == recordID &&
			a.BeforeJSON == `{"quantity":100}` &&
			a.AfterJSON == `{"quantity":15}`
	})).Return(nil)

	alertRepo.On("Create", mock.Anything, mock.MatchedBy(func(a model.Alert) bool {
		return a.InventoryRecordID == recordID && a.Type == model.AlertTypeLowStock
	})).Return(model.Alert{ID: 1, Type: model.AlertTypeLowStock}, nil)

	uc := newAdjustmentUC(tx, adjRepo)

	out, err := uc.Adjust(ctx, adminID, usecase.AdjustInput{
		InventoryRecordID: recordID,
		NewQuantity:       15,
		Reason:            model.AdjustmentReasonDamaged,
		Notes:             "flood damage in warehouse",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(15), out.Record.Quantity)
	assert.Equal(t, int64(900), out.Adjustment.ID)

	recordRepo.AssertExpectations(t)
	movRepo.AssertExpectations(t)
	adjRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
	alertRepo.AssertExpectations(t)
}

// 同じ参照トークンは二重適用として拒否。レコードには触らない。
func TestAdjustmentUsecase_Adjust_DuplicateReference(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	recordRepo := new(RecordRepoMock)
	movRepo := new(MovementRepoMock)
	adjRepo := new(AdjustmentRepoMock)

	tx.Repos = &TxReposMock{records: recordRepo, movements: movRepo, adjustments: adjRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	movRepo.On("ExistsByTypeAndReference", mock.Anything, model.MovementTypeAdjustment, "adj-2026-001").Return(true, nil)

	uc := newAdjustmentUC(tx, adjRepo)

	_, err := uc.Adjust(ctx, 1, usecase.AdjustInput{
		InventoryRecordID: 10,
		NewQuantity:       15,
		Reason:            model.AdjustmentReasonCountAdjustment,
		Reference:         "adj-2026-001",
	})
	assertErrContains(t, err, "duplicate reference")

	recordRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestAdjustmentUsecase_Adjust_RecordNotFound(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	recordRepo := new(RecordRepoMock)
	adjRepo := new(AdjustmentRepoMock)

	tx.Repos = &TxReposMock{records: recordRepo, adjustments: adjRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	recordRepo.On("FindByIDForUpdate", mock.Anything, int64(99)).Return(model.InventoryRecord{}, repo.ErrNotFound)

	uc := newAdjustmentUC(tx, adjRepo)

	_, err := uc.Adjust(ctx, 1, usecase.AdjustInput{
		InventoryRecordID: 99,
		NewQuantity:       5,
		Reason:            model.AdjustmentReasonLost,
	})
	assertErrContains(t, err, "inventory record not found")
}

// =====================
// UpdateStockLevelsBatch
// =====================

// 1件でも入力が不正なら全体を始める前に弾く
func TestAdjustmentUsecase_Batch_ValidatesAllBeforeTx(t *testing.T) {
	tx := new(TxManagerMock)
	uc := newAdjustmentUC(tx, new(AdjustmentRepoMock))

	_, err := uc.UpdateStockLevelsBatch(context.Background(), 1, []usecase.AdjustInput{
		{InventoryRecordID: 1, NewQuantity: 5, Reason: model.AdjustmentReasonOther},
		{InventoryRecordID: 2, NewQuantity: -1, Reason: model.AdjustmentReasonOther},
	})
	assertErrContains(t, err, "quantity must be >= 0")

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdjustmentUsecase_Batch_EmptyInput(t *testing.T) {
	tx := new(TxManagerMock)
	uc := newAdjustmentUC(tx, new(AdjustmentRepoMock))

	_, err := uc.UpdateStockLevelsBatch(context.Background(), 1, nil)
	assertErrContains(t, err, "empty batch")
}

// 2件とも同じトランザクション内で適用される
func TestAdjustmentUsecase_Batch_Success(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	recordRepo := new(RecordRepoMock)
	movRepo := new(MovementRepoMock)
	adjRepo := new(AdjustmentRepoMock)
	alertRepo := new(AlertRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{
		records:     recordRepo,
		movements:   movRepo,
		adjustments: adjRepo,
		alerts:      alertRepo,
		auditLogs:   audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	recordRepo.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.InventoryRecord{ID: 1, Quantity: 10}, nil)
	recordRepo.On("FindByIDForUpdate", mock.Anything, int64(2)).Return(model.InventoryRecord{ID: 2, Quantity: 20}, nil)

	movRepo.On("Create", mock.Anything, mock.Anything).Return(model.StockMovement{ID: 1}, nil)
	recordRepo.On("UpdateQuantity", mock.Anything, int64(1), int64(12)).Return(nil)
	recordRepo.On("UpdateQuantity", mock.Anything, int64(2), int64(18)).Return(nil)
	adjRepo.On("Create", mock.Anything, mock.Anything).Return(model.StockAdjustment{}, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := newAdjustmentUC(tx, adjRepo)

	outs, err := uc.UpdateStockLevelsBatch(ctx, 1, []usecase.AdjustInput{
		{InventoryRecordID: 1, NewQuantity: 12, Reason: model.AdjustmentReasonFound},
		{InventoryRecordID: 2, NewQuantity: 18, Reason: model.AdjustmentReasonCountAdjustment},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))

	// WithinTxは1回だけ
	tx.AssertNumberOfCalls(t, "WithinTx", 1)
	recordRepo.AssertExpectations(t)
}

// =====================
// ListByRecord
// =====================

func TestAdjustmentUsecase_ListByRecord_InvalidPage(t *testing.T) {
	tx := new(TxManagerMock)
	uc := newAdjustmentUC(tx, new(AdjustmentRepoMock))

	_, _, err := uc.ListByRecord(context.Background(), 1, 0, 20)
	assertErrContains(t, err, "invalid page")
}

func TestAdjustmentUsecase_ListByRecord_Success(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	adjRepo := new(AdjustmentRepoMock)

	adjRepo.On("ListByRecord", mock.Anything, int64(3), 1, 10).Return([]model.StockAdjustment{
		{ID: 1}, {ID: 2}, {ID: 3},
	}, int64(3), nil)

	uc := newAdjustmentUC(tx, adjRepo)

	items, total, err := uc.ListByRecord(ctx, 3, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(items))
	assert.Equal(t, int64(3), total)
}
