package repository

import (
	"app/internal/domain/model"
	"context"
)

// 拠点の永続化の約束。
type LocationRepository interface {
	FindByID(ctx context.Context, id int64) (model.Location, error)

	Create(ctx context.Context, l model.Location) (model.Location, error)

	List(ctx context.Context) ([]model.Location, error)
}
