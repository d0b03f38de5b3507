package model

import (
	"time"

	"github.com/shopspring/decimal"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	SKU         string `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Price       int64  `gorm:"not null" json:"price"`

	//仕入の基準単価。新しい在庫レコードはこれを引き継ぐ。
	UnitCost decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_cost"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
