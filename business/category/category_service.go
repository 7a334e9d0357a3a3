package category

import (
	"context"
	"errors"
	"fmt"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"strings"

	"github.com/google/uuid"
)

const DefaultPopularLimit = 5

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
	FindActiveByName(ctx context.Context, name string) (domain.Category, error)
	FindAllActive(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Popular(ctx context.Context, limit int) ([]domain.CategoryPopularity, error)
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all categories")
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.categoryRepo.FindAllActive(ctx)
	if err != nil {
		logger.Error("Failed to find all categories", err)
		return nil, err
	}

	if categories == nil {
		categories = []domain.Category{}
	}

	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get category by id")
		return domain.Category{}, fmt.Errorf("context error: %w", err)
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find category", err)
		return domain.Category{}, err
	}

	return category, nil
}

// ensureNameFree fails with Conflict when another active category already
// uses name. exceptID lets an update keep its own name.
func (s *categoryService) ensureNameFree(ctx context.Context, name string, exceptID uuid.UUID) error {
	existing, err := s.categoryRepo.FindActiveByName(ctx, name)
	if err == nil && existing.ID != exceptID {
		return domain.ConflictError("category name already exists")
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("failed to check category name", err)
		return err
	}

	return nil
}

func (s *categoryService) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create category")
		return domain.Category{}, fmt.Errorf("context error: %w", err)
	}

	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		logger.Error("Invalid category data: name is required")
		return domain.Category{}, domain.BadRequestError("name is required")
	}

	if err := s.ensureNameFree(ctx, category.Name, uuid.Nil); err != nil {
		return domain.Category{}, err
	}

	category.ID = uuid.Nil
	category.Active = true

	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		logger.Error("failed to create new category", err)
		return domain.Category{}, err
	}

	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, update domain.CategoryUpdate) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when update category")
		return domain.Category{}, fmt.Errorf("context error: %w", err)
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find category", err)
		return domain.Category{}, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return domain.Category{}, domain.BadRequestError("name is required")
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return domain.Category{}, err
		}
		category.Name = name
	}

	if update.Description != nil {
		category.Description = *update.Description
	}

	if update.Active != nil {
		if *update.Active && !category.Active {
			if err := s.ensureNameFree(ctx, category.Name, id); err != nil {
				return domain.Category{}, err
			}
		}
		category.Active = *update.Active
	}

	if err := s.categoryRepo.Update(ctx, &category); err != nil {
		logger.Error("failed to update category", err)
		return domain.Category{}, err
	}

	return s.categoryRepo.FindByID(ctx, id)
}

// DeleteCategory removes a category that no product refers to.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when delete category")
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		logger.Error("Failed to find category", err)
		return err
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		logger.Error("failed to count category products", err)
		return err
	}

	if count > 0 {
		return domain.BadRequestError(fmt.Sprintf("category has %d products", count))
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete category", err)
		return err
	}

	return nil
}

func (s *categoryService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when deactivate category")
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.categoryRepo.Deactivate(ctx, id); err != nil {
		logger.Error("failed to deactivate category", err)
		return err
	}

	return nil
}

func (s *categoryService) Popular(ctx context.Context, limit int) ([]domain.CategoryPopularity, error) {
	if limit < 1 || limit > domain.MaxLimit {
		limit = DefaultPopularLimit
	}

	categories, err := s.categoryRepo.Popular(ctx, limit)
	if err != nil {
		logger.Error("failed to find popular categories", err)
		return nil, err
	}

	if categories == nil {
		categories = []domain.CategoryPopularity{}
	}

	return categories, nil
}
