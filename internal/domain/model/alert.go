package model

import "time"

// アラートの種類
type AlertType string

const (
	AlertTypeLowStock     AlertType = "LOW_STOCK"
	AlertTypeOutOfStock   AlertType = "OUT_OF_STOCK"
	AlertTypeExpiringSoon AlertType = "EXPIRING_SOON"
	AlertTypeExpired      AlertType = "EXPIRED"
	AlertTypeOverStock    AlertType = "OVER_STOCK"
	AlertTypeReorderPoint AlertType = "REORDER_POINT"
)

// しきい値を越えたときの通知。集計結果であって在庫状態は変えない。
type Alert struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	InventoryRecordID int64     `gorm:"not null;index" json:"inventory_record_id"`
	Type              AlertType `gorm:"type:varchar(20);not null;index" json:"type"`
	Message           string    `gorm:"type:text;not null" json:"message"`
	IsRead            bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt         time.Time `gorm:"not null;index;autoCreateTime" json:"created_at"`
}
