package model

import "time"

// 調整の理由
type AdjustmentReason string

const (
	AdjustmentReasonDamaged         AdjustmentReason = "DAMAGED"
	AdjustmentReasonExpired         AdjustmentReason = "EXPIRED"
	AdjustmentReasonLost            AdjustmentReason = "LOST"
	AdjustmentReasonFound           AdjustmentReason = "FOUND"
	AdjustmentReasonTheft           AdjustmentReason = "THEFT"
	AdjustmentReasonCountAdjustment AdjustmentReason = "COUNT_ADJUSTMENT"
	AdjustmentReasonOther           AdjustmentReason = "OTHER"
)

// 在庫調整の履歴。必ずADJUSTMENTのStockMovementとペアで作る。
type StockAdjustment struct {
	ID                int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	InventoryRecordID int64 `gorm:"not null;index" json:"inventory_record_id"`

	QuantityBefore int64 `gorm:"not null" json:"quantity_before"`
	QuantityAfter  int64 `gorm:"not null" json:"quantity_after"`
	Delta          int64 `gorm:"not null" json:"delta"`

	Reason AdjustmentReason `gorm:"type:varchar(30);not null" json:"reason"`
	Notes  string           `gorm:"type:text" json:"notes,omitempty"`

	PerformedBy int64  `gorm:"not null;index" json:"performed_by"`
	ApprovedBy  *int64 `json:"approved_by,omitempty"`

	//ペアのmovement
	MovementID int64 `gorm:"not null;index" json:"movement_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
