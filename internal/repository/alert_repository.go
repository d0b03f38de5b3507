package repository

import (
	"context"

	"app/internal/domain/model"
)

// アラートの絞り込み条件。
type AlertListFilter struct {
	Page              int
	Limit             int
	InventoryRecordID *int64
	Type              *model.AlertType
	UnreadOnly        bool
}

// アラートの保存・取得の約束。
// 通知の送信はここではやらない（外部が読む）。
type AlertRepository interface {
	Create(ctx context.Context, a model.Alert) (model.Alert, error)

	List(ctx context.Context, f AlertListFilter) ([]model.Alert, int64, error)

	MarkRead(ctx context.Context, id int64) error

	//同じ種類の未読アラートが既にあるか（emit-once設定で使う）
	ExistsUnread(ctx context.Context, recordID int64, t model.AlertType) (bool, error)
}
