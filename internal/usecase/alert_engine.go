package usecase

import (
	"context"
	"fmt"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// アラートの発行方式。
// 出典のふるまいは「しきい値を越えるたびに毎回発行」なのでそちらがデフォルト。
type AlertEmitMode string

const (
	//毎回新しいアラート行を追加する
	AlertEmitEveryTime AlertEmitMode = "every_time"
	//同じ種類の未読アラートがある間は追加しない
	AlertEmitOnceWhileOpen AlertEmitMode = "once_while_open"
)

// 変更後の在庫レコードをしきい値と突き合わせてアラートを作る。
// 在庫状態は変えない。呼び出し元のトランザクション内で動かすこと
// （変更がロールバックされたらアラートも消える）。
type AlertEngine struct {
	mode          AlertEmitMode
	expiryHorizon time.Duration
	clock         Clock
}

// DI
func NewAlertEngine(mode AlertEmitMode, expiryHorizon time.Duration, clock Clock) *AlertEngine {
	return &AlertEngine{
		mode:          mode,
		expiryHorizon: expiryHorizon,
		clock:         clock,
	}
}

// しきい値判定だけ（副作用なし）。
// OUT_OF_STOCK / LOW_STOCK は排他。REORDER_POINT・OVER_STOCK・期限系は独立に判定する。
func (e *AlertEngine) Check(rec model.InventoryRecord) []model.Alert {
	now := e.clock.Now()
	var alerts []model.Alert

	add := func(t model.AlertType, msg string) {
		alerts = append(alerts, model.Alert{
			InventoryRecordID: rec.ID,
			Type:              t,
			Message:           msg,
			CreatedAt:         now,
		})
	}

	//在庫切れ > 低在庫 の順で判定（同時には出さない）
	if rec.Quantity <= 0 {
		add(model.AlertTypeOutOfStock,
			fmt.Sprintf("record %d is out of stock", rec.ID))
	} else if rec.Quantity <= rec.MinimumStock {
		add(model.AlertTypeLowStock,
			fmt.Sprintf("record %d quantity %d is at or below minimum stock %d", rec.ID, rec.Quantity, rec.MinimumStock))
	} else if rec.ReorderPoint > 0 && rec.Quantity <= rec.ReorderPoint {
		//最低在庫より上でも発注点を割っていたら知らせる
		add(model.AlertTypeReorderPoint,
			fmt.Sprintf("record %d quantity %d reached reorder point %d", rec.ID, rec.Quantity, rec.ReorderPoint))
	}

	//過剰在庫
	if rec.MaximumStock != nil && rec.Quantity >= *rec.MaximumStock {
		add(model.AlertTypeOverStock,
			fmt.Sprintf("record %d quantity %d is at or above maximum stock %d", rec.ID, rec.Quantity, *rec.MaximumStock))
	}

	//期限
	if rec.ExpiryDate != nil {
		if !rec.ExpiryDate.After(now) {
			add(model.AlertTypeExpired,
				fmt.Sprintf("record %d batch %s has expired", rec.ID, rec.BatchNumber))
		} else if rec.ExpiryDate.Before(now.Add(e.expiryHorizon)) {
			add(model.AlertTypeExpiringSoon,
				fmt.Sprintf("record %d batch %s expires at %s", rec.ID, rec.BatchNumber, rec.ExpiryDate.Format(time.RFC3339)))
		}
	}

	return alerts
}

// 判定して保存まで行う。変更を起こしたトランザクションのrepoを渡すこと。
func (e *AlertEngine) Evaluate(ctx context.Context, alerts repo.AlertRepository, rec model.InventoryRecord) ([]model.Alert, error) {
	candidates := e.Check(rec)

	created := make([]model.Alert, 0, len(candidates))
	for _, a := range candidates {
		if e.mode == AlertEmitOnceWhileOpen {
			exists, err := alerts.ExistsUnread(ctx, rec.ID, a.Type)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
		}

		saved, err := alerts.Create(ctx, a)
		if err != nil {
			return nil, err
		}
		created = append(created, saved)
	}

	return created, nil
}
