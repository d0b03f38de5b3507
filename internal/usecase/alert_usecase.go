package usecase

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// アラートの参照・既読化。通知の配送は外部（このAPIを読む側）の仕事。
type AlertUsecase struct {
	alerts repo.AlertRepository
}

// DI
func NewAlertUsecase(alerts repo.AlertRepository) *AlertUsecase {
	return &AlertUsecase{alerts: alerts}
}

type ListAlertsInput struct {
	Page              int
	Limit             int
	InventoryRecordID *int64
	Type              *model.AlertType
	UnreadOnly        bool
}

type AlertListOutput struct {
	Items []model.Alert `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func validAlertType(t model.AlertType) bool {
	switch t {
	case model.AlertTypeLowStock, model.AlertTypeOutOfStock,
		model.AlertTypeExpiringSoon, model.AlertTypeExpired,
		model.AlertTypeOverStock, model.AlertTypeReorderPoint:
		return true
	}
	return false
}

func (u *AlertUsecase) ListAlerts(ctx context.Context, in ListAlertsInput) (AlertListOutput, error) {
	if in.Page < 1 {
		return AlertListOutput{}, newValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AlertListOutput{}, newValidationError("invalid limit")
	}
	if in.Type != nil && !validAlertType(*in.Type) {
		return AlertListOutput{}, newValidationError("invalid alert type")
	}

	items, total, err := u.alerts.List(ctx, repo.AlertListFilter{
		Page:              in.Page,
		Limit:             in.Limit,
		InventoryRecordID: in.InventoryRecordID,
		Type:              in.Type,
		UnreadOnly:        in.UnreadOnly,
	})
	if err != nil {
		return AlertListOutput{}, newDBError()
	}

	return AlertListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *AlertUsecase) MarkRead(ctx context.Context, alertID int64) error {
	if alertID <= 0 {
		return newValidationError("invalid alert id")
	}

	err := u.alerts.MarkRead(ctx, alertID)
	if errors.Is(err, repo.ErrNotFound) {
		return newNotFound("alert not found")
	}
	if err != nil {
		return newDBError()
	}
	return nil
}
