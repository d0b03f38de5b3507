package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 在庫変動の種類
type MovementType string

const (
	MovementTypePurchase    MovementType = "PURCHASE"
	MovementTypeSale        MovementType = "SALE"
	MovementTypeTransferIn  MovementType = "TRANSFER_IN"
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	MovementTypeAdjustment  MovementType = "ADJUSTMENT"
	MovementTypeReturn      MovementType = "RETURN"
	MovementTypeDamaged     MovementType = "DAMAGED"
	MovementTypeExpired     MovementType = "EXPIRED"
)

// 在庫台帳の1行。追記のみで、更新・削除はしない。
// 訂正は新しいmovementとして追記する。
type StockMovement struct {
	ID                int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	InventoryRecordID int64        `gorm:"not null;index" json:"inventory_record_id"`
	Type              MovementType `gorm:"type:varchar(20);not null;index;uniqueIndex:uq_stock_movements_type_reference" json:"type"`

	//符号付きの増減量
	Delta int64 `gorm:"not null" json:"delta"`

	//呼び出し側が渡す参照トークン（注文IDなど。二重適用の防止にも使う）。
	//事前チェックをすり抜けた同時リトライは(type, reference)の部分一意
	//インデックスがcommit時に弾く。
	Reference   string `gorm:"type:varchar(255);index;uniqueIndex:uq_stock_movements_type_reference,where:reference <> ''" json:"reference,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	//変動時点の単価
	UnitCost decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_cost"`

	//操作したユーザーのID
	PerformedBy int64 `gorm:"not null;index" json:"performed_by"`

	//移動のペア（TRANSFER_INがTRANSFER_OUTを参照する）
	PairedMovementID *int64 `gorm:"index" json:"paired_movement_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;index;autoCreateTime" json:"created_at"`
}
