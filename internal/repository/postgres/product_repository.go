package postgres

import (
	"context"
	"fmt"
	"hortifood/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Omit("Hortifruit", "Category").Create(product).Error; err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFoundError("hortifruit or category not found")
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error
	if err != nil {
		return domain.Product{}, notFound(err, "product")
	}

	return product, nil
}

// FindByVendor lists one hortifruit's products, newest first unless sorted
// otherwise.
func (r *ProductRepository) FindByVendor(ctx context.Context, hortifruitID uuid.UUID, q domain.PageQuery) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	q = domain.NormalizeProductQuery(q)

	base := r.DB.WithContext(ctx).Model(&domain.Product{}).
		Where("hortifruit_id = ?", hortifruitID).
		Scopes(search(q.Search))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []domain.Product
	err := base.Session(&gorm.Session{}).
		Preload("Category").
		Order(fmt.Sprintf("%s %s", q.Sort, q.Order)).
		Scopes(paginate(q)).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}

	return products, total, nil
}

func (r *ProductRepository) FindAllByVendor(ctx context.Context, hortifruitID uuid.UUID) ([]domain.Product, error) {
	var products []domain.Product

	err := r.DB.WithContext(ctx).
		Preload("Category").
		Where("hortifruit_id = ?", hortifruitID).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	var products []domain.Product

	err := r.DB.WithContext(ctx).
		Where("category_id = ? AND is_available = ?", categoryID, true).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindFeatured(ctx context.Context, hortifruitID uuid.UUID, limit int) ([]domain.Product, error) {
	var products []domain.Product

	err := r.DB.WithContext(ctx).
		Where("hortifruit_id = ? AND featured = ? AND is_available = ?", hortifruitID, true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find featured products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"name":                product.Name,
		"description":         product.Description,
		"price":               product.Price,
		"unit":                product.Unit,
		"is_available":        product.IsAvailable,
		"image_url":           product.ImageURL,
		"stock_quantity":      product.StockQuantity,
		"discount_percentage": product.DiscountPercentage,
		"promotional_price":   product.PromotionalPrice,
		"featured":            product.Featured,
		"category_id":         product.CategoryID,
		"updated_at":          time.Now(),
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", product.ID).Updates(updateData)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return domain.NotFoundError("category not found")
		}
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError("product not found")
	}

	return nil
}

// Toggle flips a boolean column in place and returns the new row.
func (r *ProductRepository) Toggle(ctx context.Context, id uuid.UUID, column string) (domain.Product, error) {
	if column != "is_available" && column != "featured" {
		return domain.Product{}, fmt.Errorf("column %q cannot be toggled", column)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       gorm.Expr("NOT " + column),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return domain.Product{}, fmt.Errorf("failed to toggle %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.Product{}, domain.NotFoundError("product not found")
	}

	return r.FindByID(ctx, id)
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError("product not found")
	}

	return nil
}
