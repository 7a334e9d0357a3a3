package rest

import (
	"bytes"
	"context"
	"fmt"
	"hortifood/domain"
	"hortifood/internal/middleware"
	"hortifood/pkg/logger"
	"io"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProductService interface {
	Create(ctx context.Context, principal domain.Principal, product domain.Product) (domain.Product, error)
	FindOne(ctx context.Context, id uuid.UUID) (domain.Product, error)
	ListByVendor(ctx context.Context, hortifruitID uuid.UUID, q domain.PageQuery) (domain.Page[domain.Product], error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error)
	Featured(ctx context.Context, hortifruitID uuid.UUID, limit int) ([]domain.Product, error)
	Update(ctx context.Context, principal domain.Principal, id uuid.UUID, update domain.ProductUpdate) (domain.Product, error)
	Delete(ctx context.Context, principal domain.Principal, id uuid.UUID) error
	ToggleAvailability(ctx context.Context, principal domain.Principal, id uuid.UUID) (domain.Product, error)
	ToggleFeatured(ctx context.Context, principal domain.Principal, id uuid.UUID) (domain.Product, error)
	Export(ctx context.Context, principal domain.Principal, hortifruitID uuid.UUID, w io.Writer) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      newValidator(),
		timeout:        10 * time.Second,
	}
}

type CreateProductRequest struct {
	Name               string              `json:"name" validate:"required,max=100"`
	Description        string              `json:"description" validate:"max=1000"`
	Price              decimal.Decimal     `json:"price"`
	Unit               string              `json:"unit" validate:"required"`
	IsAvailable        *bool               `json:"is_available"`
	ImageURL           string              `json:"image_url" validate:"omitempty,url"`
	StockQuantity      int                 `json:"stock_quantity" validate:"min=0"`
	DiscountPercentage decimal.NullDecimal `json:"discount_percentage"`
	Featured           bool                `json:"featured"`
	CategoryID         uuid.UUID           `json:"category_id" validate:"required"`
	HortifruitID       uuid.UUID           `json:"hortifruit_id"`
}

type UpdateProductRequest struct {
	Name               *string              `json:"name,omitempty" validate:"omitempty,max=100"`
	Description        *string              `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price              *decimal.Decimal     `json:"price,omitempty"`
	Unit               *string              `json:"unit,omitempty"`
	IsAvailable        *bool                `json:"is_available,omitempty"`
	ImageURL           *string              `json:"image_url,omitempty" validate:"omitempty,url"`
	StockQuantity      *int                 `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	DiscountPercentage *decimal.NullDecimal `json:"discount_percentage,omitempty"`
	Featured           *bool                `json:"featured,omitempty"`
	CategoryID         *uuid.UUID           `json:"category_id,omitempty"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate product", err)
		return validationFailed(c, err)
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.productService.Create(ctx, p, domain.Product{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Unit:               req.Unit,
		IsAvailable:        isAvailable,
		ImageURL:           req.ImageURL,
		StockQuantity:      req.StockQuantity,
		DiscountPercentage: req.DiscountPercentage,
		Featured:           req.Featured,
		CategoryID:         req.CategoryID,
		HortifruitID:       req.HortifruitID,
	})
	if err != nil {
		logger.Error("Failed to create product", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *ProductHandler) ListByVendor(c echo.Context) error {
	hortifruitID, ok := paramUUID(c, "hortifruitId")
	if !ok {
		return badRequest(c, "invalid hortifruit id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	page, err := h.productService.ListByVendor(ctx, hortifruitID, pageQuery(c))
	if err != nil {
		logger.Error("Failed to list products", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) Featured(c echo.Context) error {
	hortifruitID, ok := paramUUID(c, "hortifruitId")
	if !ok {
		return badRequest(c, "invalid hortifruit id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.Featured(ctx, hortifruitID, queryInt(c, "limit"))
	if err != nil {
		logger.Error("Failed to list featured products", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) ListByCategory(c echo.Context) error {
	categoryID, ok := paramUUID(c, "categoryId")
	if !ok {
		return badRequest(c, "invalid category id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.ListByCategory(ctx, categoryID)
	if err != nil {
		logger.Error("Failed to list products by category", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.FindOne(ctx, id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.productService.Update(ctx, p, id, domain.ProductUpdate{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Unit:               req.Unit,
		IsAvailable:        req.IsAvailable,
		ImageURL:           req.ImageURL,
		StockQuantity:      req.StockQuantity,
		DiscountPercentage: req.DiscountPercentage,
		Featured:           req.Featured,
		CategoryID:         req.CategoryID,
	})
	if err != nil {
		logger.Error("Failed to update product", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.Delete(ctx, p, id); err != nil {
		logger.Error("Failed to delete product", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Product deleted successfully"))
}

func (h *ProductHandler) ToggleAvailability(c echo.Context) error {
	return h.toggle(c, h.productService.ToggleAvailability)
}

func (h *ProductHandler) ToggleFeatured(c echo.Context) error {
	return h.toggle(c, h.productService.ToggleFeatured)
}

func (h *ProductHandler) toggle(c echo.Context, fn func(context.Context, domain.Principal, uuid.UUID) (domain.Product, error)) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := fn(ctx, p, id)
	if err != nil {
		logger.Error("Failed to toggle product flag", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

// Export streams the vendor's catalog as an xlsx attachment. Admins pass
// ?hortifruit_id=, vendors export their own store.
func (h *ProductHandler) Export(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	hortifruitID := uuid.Nil
	if raw := c.QueryParam("hortifruit_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid hortifruit id")
		}
		hortifruitID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var buf bytes.Buffer
	if err := h.productService.Export(ctx, p, hortifruitID, &buf); err != nil {
		logger.Error("Failed to export products", err)
		return errorResponse(c, err)
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
