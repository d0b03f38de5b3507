package model

import "time"

// 在庫更新、移動、レコード作成など。
type AuditAction string

const (
	//在庫数量を調整した操作。
	AuditActionAdjustStock AuditAction = "ADJUST_STOCK"
	//拠点間で在庫を移動した操作。
	AuditActionTransferStock AuditAction = "TRANSFER_STOCK"
	//在庫レコードを作成・更新した操作。
	AuditActionUpsertRecord AuditAction = "UPSERT_RECORD"
)

// 何に対する操作か
type AuditResourceType string

const (
	//在庫レコードに対する操作。
	AuditResourceInventoryRecord AuditResourceType = "inventory_record"

	//商品に対する操作。
	AuditResourceProduct AuditResourceType = "product"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	//IDは監査ログの主キー
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザー（主に管理者）のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	//Actionは操作の種類（ADJUST_STOCK / TRANSFER_STOCK など）。
	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の種類（inventory_record / product）。
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID。
	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//JSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	//作成時刻
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
