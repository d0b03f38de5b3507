package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CreateProductRequest は商品登録の入力です。
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	SKU         string          `json:"sku"`
	Price       int64           `json:"price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// CreateLocationRequest は拠点登録の入力です。
type CreateLocationRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// /admin/products と /admin/locations をまとめる
type AdminCatalogHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{uc: uc}
}

// adminを登録
func (h *AdminCatalogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/products", h.createProduct)
	admin.POST("/locations", h.createLocation)
	admin.GET("/locations", h.listLocations)
}

func (h *AdminCatalogHandler) createProduct(c echo.Context) error {
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), adminID, usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		UnitCost:    req.UnitCost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminCatalogHandler) createLocation(c echo.Context) error {
	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	l, err := h.uc.CreateLocation(c.Request().Context(), adminID, usecase.CreateLocationInput{
		Code: req.Code,
		Name: req.Name,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *AdminCatalogHandler) listLocations(c echo.Context) error {
	locations, err := h.uc.ListLocations(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, locations)
}
