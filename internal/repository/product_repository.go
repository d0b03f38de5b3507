package repository

import (
	"app/internal/domain/model"
	"context"
)

// 商品の永続化（保存・取得）だけを約束。
// カタログ管理そのものは別システムの領域なので最小限。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
}
