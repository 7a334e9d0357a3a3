package postgres

import (
	"context"
	"fmt"
	"hortifood/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{
		DB: db,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ConflictError("category name already exists")
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return domain.Category{}, fmt.Errorf("context error: %w", err)
	}

	var category domain.Category

	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return domain.Category{}, notFound(err, "category")
	}

	return category, nil
}

// FindActiveByName matches case-insensitively among active categories.
func (r *CategoryRepository) FindActiveByName(ctx context.Context, name string) (domain.Category, error) {
	var category domain.Category

	err := r.DB.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND active = ?", name, true).
		First(&category).Error
	if err != nil {
		return domain.Category{}, notFound(err, "category")
	}

	return category, nil
}

func (r *CategoryRepository) FindAllActive(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var categories []domain.Category
	err := r.DB.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
			"active":      category.Active,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.ConflictError("category name already exists")
		}
		return fmt.Errorf("failed to update category: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("category not found")
	}

	return nil
}

func (r *CategoryRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate category: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("category not found")
	}

	return nil
}

func (r *CategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64

	err := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("category_id = ?", id).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count category products: %w", err)
	}

	return count, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return domain.BadRequestError("category still has products")
		}
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("category not found")
	}

	return nil
}

// Popular ranks active categories by product count.
func (r *CategoryRepository) Popular(ctx context.Context, limit int) ([]domain.CategoryPopularity, error) {
	var rows []domain.CategoryPopularity

	err := r.DB.WithContext(ctx).
		Table("categories").
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Where("categories.active = ?", true).
		Group("categories.id").
		Order("product_count DESC, categories.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find popular categories: %w", err)
	}

	return rows, nil
}
