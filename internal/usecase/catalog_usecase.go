package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 商品マスタと拠点マスタの管理側操作。
// 在庫レコードは商品と拠点の組で作るので、その前段の登録口。
type CatalogUsecase struct {
	products  repo.ProductRepository
	locations repo.LocationRepository
}

// DI
func NewCatalogUsecase(products repo.ProductRepository, locations repo.LocationRepository) *CatalogUsecase {
	return &CatalogUsecase{
		products:  products,
		locations: locations,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	SKU         string
	Price       int64
	UnitCost    decimal.Decimal
}

func (u *CatalogUsecase) CreateProduct(ctx context.Context, adminID int64, in CreateProductInput) (model.Product, error) {
	if adminID <= 0 {
		return model.Product{}, newUnauthorized()
	}
	name := strings.TrimSpace(in.Name)
	sku := strings.TrimSpace(in.SKU)
	if name == "" || len(name) > 255 {
		return model.Product{}, newValidationError("invalid name")
	}
	if sku == "" || len(sku) > 100 {
		return model.Product{}, newValidationError("invalid sku")
	}
	if in.Price < 0 {
		return model.Product{}, newValidationError("price must be >= 0")
	}
	if in.UnitCost.IsNegative() {
		return model.Product{}, newValidationError("unit cost must be >= 0")
	}

	p, err := u.products.Create(ctx, model.Product{
		Name:        name,
		Description: in.Description,
		SKU:         sku,
		Price:       in.Price,
		UnitCost:    in.UnitCost,
		IsActive:    true,
	})
	if errors.Is(err, repo.ErrConflict) {
		//SKUの一意制約違反
		return model.Product{}, NewHTTPError(http.StatusConflict, CodeDuplicateKey, "sku already exists")
	}
	if err != nil {
		return model.Product{}, newDBError()
	}
	return p, nil
}

type CreateLocationInput struct {
	Code string
	Name string
}

func (u *CatalogUsecase) CreateLocation(ctx context.Context, adminID int64, in CreateLocationInput) (model.Location, error) {
	if adminID <= 0 {
		return model.Location{}, newUnauthorized()
	}
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || len(code) > 50 {
		return model.Location{}, newValidationError("invalid code")
	}
	if name == "" || len(name) > 255 {
		return model.Location{}, newValidationError("invalid name")
	}

	l, err := u.locations.Create(ctx, model.Location{
		Code:     code,
		Name:     name,
		IsActive: true,
	})
	if errors.Is(err, repo.ErrConflict) {
		return model.Location{}, NewHTTPError(http.StatusConflict, CodeDuplicateKey, "location code already exists")
	}
	if err != nil {
		return model.Location{}, newDBError()
	}
	return l, nil
}

// 拠点の一覧。移動先のプルダウンに使う想定なので絞り込みは無し。
func (u *CatalogUsecase) ListLocations(ctx context.Context) ([]model.Location, error) {
	locations, err := u.locations.List(ctx)
	if err != nil {
		return nil, newDBError()
	}
	return locations, nil
}
