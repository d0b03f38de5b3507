package repository

import (
	"context"

	"app/internal/domain/model"
)

// 調整履歴の約束。
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adj model.StockAdjustment) (model.StockAdjustment, error)

	ListByRecord(ctx context.Context, recordID int64, page int, limit int) ([]model.StockAdjustment, int64, error)
}
