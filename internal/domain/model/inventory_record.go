package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 在庫レコードの状態
type InventoryStatus string

const (
	InventoryStatusActive       InventoryStatus = "ACTIVE"
	InventoryStatusInactive     InventoryStatus = "INACTIVE"
	InventoryStatusOnHold       InventoryStatus = "ON_HOLD"
	InventoryStatusDiscontinued InventoryStatus = "DISCONTINUED"
)

// 1つの商品×1つの拠点の現在在庫。
// (product_id, location_id) で一意。quantityは0未満にならない。
type InventoryRecord struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  int64 `gorm:"not null;index;uniqueIndex:idx_product_location" json:"product_id"`
	LocationID int64 `gorm:"not null;index;uniqueIndex:idx_product_location" json:"location_id"`

	//現在数量（台帳の合計と常に一致させる）
	Quantity int64 `gorm:"not null;default:0" json:"quantity"`

	//しきい値（アラート判定に使う。強制はしない）
	MinimumStock    int64  `gorm:"not null;default:0" json:"minimum_stock"`
	MaximumStock    *int64 `json:"maximum_stock,omitempty"`
	ReorderPoint    int64  `gorm:"not null;default:0" json:"reorder_point"`
	ReorderQuantity int64  `gorm:"not null;default:0" json:"reorder_quantity"`

	UnitCost decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_cost"`

	Status InventoryStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`

	//拠点内のメタ情報
	Bin         string     `gorm:"type:varchar(50)" json:"bin,omitempty"`
	BatchNumber string     `gorm:"type:varchar(100)" json:"batch_number,omitempty"`
	ExpiryDate  *time.Time `gorm:"index" json:"expiry_date,omitempty"`

	LastStockCheck *time.Time `json:"last_stock_check,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
