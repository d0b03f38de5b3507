package model

import "time"

// 予約の状態。FULFILLED / CANCELLED が終端。
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusFulfilled ReservationStatus = "FULFILLED"
)

// 期限付きの在庫仮押さえ。
// PENDINGかつ未期限のものだけがavailableを減らす。
type StockReservation struct {
	ID                int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	InventoryRecordID int64             `gorm:"not null;index" json:"inventory_record_id"`
	Quantity          int64             `gorm:"not null" json:"quantity"`
	Status            ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	//注文との紐付け（任意）
	OrderID *int64 `gorm:"index" json:"order_id,omitempty"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
