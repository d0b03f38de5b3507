package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 監査ログの参照。書き込みは各usecaseがトランザクション内で行う。
type AuditUsecase struct {
	logs repo.AuditLogRepository
}

// DI
func NewAuditUsecase(logs repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{logs: logs}
}

type ListAuditLogsInput struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func validAuditAction(a model.AuditAction) bool {
	switch a {
	case model.AuditActionAdjustStock, model.AuditActionTransferStock, model.AuditActionUpsertRecord:
		return true
	}
	return false
}

func validAuditResourceType(t model.AuditResourceType) bool {
	switch t {
	case model.AuditResourceInventoryRecord, model.AuditResourceProduct:
		return true
	}
	return false
}

func (u *AuditUsecase) ListLogs(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Limit > 200 {
		return nil, newValidationError("invalid limit")
	}
	if in.Offset < 0 {
		return nil, newValidationError("invalid offset")
	}
	if in.Action != nil && !validAuditAction(*in.Action) {
		return nil, newValidationError("invalid action")
	}
	if in.ResourceType != nil && !validAuditResourceType(*in.ResourceType) {
		return nil, newValidationError("invalid resource type")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, newValidationError("from must be <= to")
	}

	logs, err := u.logs.List(ctx, repo.AuditLogFilter{
		ActorUserID:  in.ActorUserID,
		Action:       in.Action,
		ResourceType: in.ResourceType,
		ResourceID:   in.ResourceID,
		CreatedFrom:  in.From,
		CreatedTo:    in.To,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, newDBError()
	}
	return logs, nil
}
