package product

import (
	"context"
	"fmt"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultFeaturedLimit = 10

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	FindByVendor(ctx context.Context, hortifruitID uuid.UUID, q domain.PageQuery) ([]domain.Product, int64, error)
	FindAllByVendor(ctx context.Context, hortifruitID uuid.UUID) ([]domain.Product, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error)
	FindFeatured(ctx context.Context, hortifruitID uuid.UUID, limit int) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Toggle(ctx context.Context, id uuid.UUID, column string) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
}

type HortifruitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error)
}

type productService struct {
	productRepo    ProductRepository
	categoryRepo   CategoryRepository
	hortifruitRepo HortifruitRepository
}

func NewProductService(productRepo ProductRepository, categoryRepo CategoryRepository, hortifruitRepo HortifruitRepository) *productService {
	return &productService{
		productRepo:    productRepo,
		categoryRepo:   categoryRepo,
		hortifruitRepo: hortifruitRepo,
	}
}

func validate(product domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return domain.BadRequestError("name is required")
	}

	if !domain.ValidUnit(product.Unit) {
		return domain.BadRequestError("invalid unit")
	}

	if product.Price.IsNegative() {
		return domain.BadRequestError("price must not be negative")
	}

	if product.StockQuantity < 0 {
		return domain.BadRequestError("stock quantity must not be negative")
	}

	if product.DiscountPercentage.Valid {
		d := product.DiscountPercentage.Decimal
		if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
			return domain.BadRequestError("discount percentage must be between 0 and 100")
		}
	}

	return nil
}

// vendorFor resolves which hortifruit a write acts for. Hortifruits act for
// themselves, admins must name one.
func vendorFor(principal domain.Principal, requested uuid.UUID) (uuid.UUID, error) {
	if principal.IsAdmin() {
		if requested == uuid.Nil {
			return uuid.Nil, domain.BadRequestError("hortifruit_id is required")
		}
		return requested, nil
	}

	if principal.AccountType != domain.AccountTypeHortifruit {
		return uuid.Nil, domain.ForbiddenError("insufficient permissions")
	}

	if requested != uuid.Nil && requested != principal.SubjectID {
		return uuid.Nil, domain.UnauthorizedError("you can only manage your own products")
	}

	return principal.SubjectID, nil
}

func (s *productService) Create(ctx context.Context, principal domain.Principal, product domain.Product) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	vendorID, err := vendorFor(principal, product.HortifruitID)
	if err != nil {
		return domain.Product{}, err
	}
	product.HortifruitID = vendorID

	if err := validate(product); err != nil {
		logger.Error("Invalid product data", err)
		return domain.Product{}, err
	}

	if _, err := s.hortifruitRepo.FindByID(ctx, product.HortifruitID); err != nil {
		logger.Error("failed to find hortifruit", err)
		return domain.Product{}, err
	}

	if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
		logger.Error("failed to find category", err)
		return domain.Product{}, err
	}

	product.ID = uuid.Nil
	product.ApplyDiscount()

	if err := s.productRepo.Create(ctx, &product); err != nil {
		logger.Error("failed to create new product", err)
		return domain.Product{}, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *productService) FindOne(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get product")
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err)
		return domain.Product{}, err
	}

	return product, nil
}

func (s *productService) ListByVendor(ctx context.Context, hortifruitID uuid.UUID, q domain.PageQuery) (domain.Page[domain.Product], error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when list products")
		return domain.Page[domain.Product]{}, fmt.Errorf("context error: %w", err)
	}

	q = domain.NormalizeProductQuery(q)

	products, total, err := s.productRepo.FindByVendor(ctx, hortifruitID, q)
	if err != nil {
		logger.Error("Failed to find products", err)
		return domain.Page[domain.Product]{}, err
	}

	return domain.NewPage(products, total, q), nil
}

func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	products, err := s.productRepo.FindByCategory(ctx, categoryID)
	if err != nil {
		logger.Error("Failed to find products", err)
		return nil, err
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}

func (s *productService) Featured(ctx context.Context, hortifruitID uuid.UUID, limit int) ([]domain.Product, error) {
	if limit < 1 || limit > domain.MaxLimit {
		limit = DefaultFeaturedLimit
	}

	products, err := s.productRepo.FindFeatured(ctx, hortifruitID, limit)
	if err != nil {
		logger.Error("Failed to find featured products", err)
		return nil, err
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}

// owned loads a product the principal may modify.
func (s *productService) owned(ctx context.Context, principal domain.Principal, id uuid.UUID) (domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err)
		return domain.Product{}, err
	}

	if !principal.IsAdmin() && product.HortifruitID != principal.SubjectID {
		logger.Warn("product ownership mismatch", "product_id", id.String(), "subject_id", principal.SubjectID.String())
		return domain.Product{}, domain.UnauthorizedError("you can only manage your own products")
	}

	return product, nil
}

func (s *productService) Update(ctx context.Context, principal domain.Principal, id uuid.UUID, update domain.ProductUpdate) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when update product")
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	product, err := s.owned(ctx, principal, id)
	if err != nil {
		return domain.Product{}, err
	}

	if update.CategoryID != nil && *update.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, *update.CategoryID); err != nil {
			logger.Error("failed to find category", err)
			return domain.Product{}, err
		}
	}

	applyUpdate(&product, update)

	if err := validate(product); err != nil {
		logger.Error("Invalid product data", err)
		return domain.Product{}, err
	}

	product.ApplyDiscount()

	if err := s.productRepo.Update(ctx, &product); err != nil {
		logger.Error("failed to update product", err)
		return domain.Product{}, err
	}

	return s.productRepo.FindByID(ctx, id)
}

func applyUpdate(product *domain.Product, update domain.ProductUpdate) {
	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Unit != nil {
		product.Unit = *update.Unit
	}
	if update.IsAvailable != nil {
		product.IsAvailable = *update.IsAvailable
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}
	if update.StockQuantity != nil {
		product.StockQuantity = *update.StockQuantity
	}
	if update.DiscountPercentage != nil {
		product.DiscountPercentage = *update.DiscountPercentage
	}
	if update.Featured != nil {
		product.Featured = *update.Featured
	}
	if update.CategoryID != nil {
		product.CategoryID = *update.CategoryID
		product.Category = nil
	}
}

func (s *productService) Delete(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when delete product")
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.owned(ctx, principal, id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	return nil
}

func (s *productService) ToggleAvailability(ctx context.Context, principal domain.Principal, id uuid.UUID) (domain.Product, error) {
	return s.toggle(ctx, principal, id, "is_available")
}

func (s *productService) ToggleFeatured(ctx context.Context, principal domain.Principal, id uuid.UUID) (domain.Product, error) {
	return s.toggle(ctx, principal, id, "featured")
}

func (s *productService) toggle(ctx context.Context, principal domain.Principal, id uuid.UUID, column string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when toggle product " + column)
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	if _, err := s.owned(ctx, principal, id); err != nil {
		return domain.Product{}, err
	}

	product, err := s.productRepo.Toggle(ctx, id, column)
	if err != nil {
		logger.Error("failed to toggle product "+column, err)
		return domain.Product{}, err
	}

	return product, nil
}
