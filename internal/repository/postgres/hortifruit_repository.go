package postgres

import (
	"context"
	"errors"
	"fmt"
	"hortifood/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HortifruitRepository struct {
	DB *gorm.DB
}

func NewHortifruitRepository(db *gorm.DB) *HortifruitRepository {
	return &HortifruitRepository{
		DB: db,
	}
}

// Create inserts the hortifruit and, when present, its store address in one
// transaction.
func (r *HortifruitRepository) Create(ctx context.Context, hortifruit *domain.Hortifruit) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		address := hortifruit.Address
		hortifruit.Address = nil

		if err := tx.Create(hortifruit).Error; err != nil {
			return err
		}

		if address != nil {
			address.HortifruitID = &hortifruit.ID
			address.UserID = nil
			address.Type = domain.AddressTypeStore
			if err := tx.Create(address).Error; err != nil {
				return err
			}
		}

		hortifruit.Address = address
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ConflictError("email or document already registered")
		}
		return fmt.Errorf("failed to create hortifruit: %w", err)
	}

	return nil
}

func (r *HortifruitRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error) {
	var hortifruit domain.Hortifruit

	err := r.DB.WithContext(ctx).Preload("Address").Where("id = ?", id).First(&hortifruit).Error
	if err != nil {
		return domain.Hortifruit{}, notFound(err, "hortifruit")
	}

	return hortifruit, nil
}

func (r *HortifruitRepository) FindByEmail(ctx context.Context, email string) (domain.Hortifruit, error) {
	var hortifruit domain.Hortifruit

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&hortifruit).Error
	if err != nil {
		return domain.Hortifruit{}, notFound(err, "hortifruit")
	}

	return hortifruit, nil
}

func (r *HortifruitRepository) FindByDocument(ctx context.Context, document string) (domain.Hortifruit, error) {
	var hortifruit domain.Hortifruit

	err := r.DB.WithContext(ctx).Where("document = ?", document).First(&hortifruit).Error
	if err != nil {
		return domain.Hortifruit{}, notFound(err, "hortifruit")
	}

	return hortifruit, nil
}

func (r *HortifruitRepository) FindAll(ctx context.Context, filter domain.HortifruitFilter) ([]domain.Hortifruit, int64, error) {
	q := domain.NormalizeHortifruitQuery(filter.PageQuery)

	base := r.DB.WithContext(ctx).Model(&domain.Hortifruit{}).
		Where("is_active = ?", true).
		Scopes(search(q.Search))

	if filter.IsOpen != nil {
		base = base.Where("is_open = ?", *filter.IsOpen)
	}

	if filter.MinRating != nil {
		base = base.Where("rating >= ?", *filter.MinRating)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count hortifruits: %w", err)
	}

	var hortifruits []domain.Hortifruit
	err := base.Session(&gorm.Session{}).
		Preload("Address").
		Order(fmt.Sprintf("%s %s", q.Sort, q.Order)).
		Scopes(paginate(q)).
		Find(&hortifruits).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find hortifruits: %w", err)
	}

	return hortifruits, total, nil
}

// Update writes the mutable columns and upserts the store address.
func (r *HortifruitRepository) Update(ctx context.Context, hortifruit *domain.Hortifruit) error {
	address := hortifruit.Address
	hortifruit.Address = nil
	defer func() { hortifruit.Address = address }()

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hortifruit.UpdatedAt = time.Now()

		result := tx.Model(&domain.Hortifruit{}).Where("id = ?", hortifruit.ID).
			Select("name", "email", "phone", "document", "password", "min_order_value",
				"logo_url", "banner_url", "description", "is_active", "updated_at").
			Updates(hortifruit)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError("hortifruit not found")
		}

		if address == nil {
			return nil
		}

		address.HortifruitID = &hortifruit.ID
		address.UserID = nil
		address.Type = domain.AddressTypeStore

		var existing domain.Address
		err := tx.Where("hortifruit_id = ?", hortifruit.ID).First(&existing).Error
		switch {
		case err == nil:
			address.ID = existing.ID
			address.CreatedAt = existing.CreatedAt
			return tx.Save(address).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(address).Error
		default:
			return err
		}
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ConflictError("email or document already registered")
		}
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to update hortifruit: %w", err)
	}

	return nil
}

func (r *HortifruitRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := r.DB.WithContext(ctx).Model(&domain.Hortifruit{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"password":   passwordHash,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("hortifruit not found")
	}

	return nil
}

func (r *HortifruitRepository) UpdateOperatingStatus(ctx context.Context, id uuid.UUID, isOpen bool) error {
	result := r.DB.WithContext(ctx).Model(&domain.Hortifruit{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_open":    isOpen,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update operating status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("hortifruit not found")
	}

	return nil
}

// AddRating folds rating into the running mean in a single statement so
// concurrent ratings cannot overwrite each other.
func (r *HortifruitRepository) AddRating(ctx context.Context, id uuid.UUID, rating int) error {
	result := r.DB.WithContext(ctx).Model(&domain.Hortifruit{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":        gorm.Expr("(rating * total_ratings + ?) / (total_ratings + 1)", float64(rating)),
			"total_ratings": gorm.Expr("total_ratings + 1"),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to add rating: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("hortifruit not found")
	}

	return nil
}

func (r *HortifruitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Hortifruit{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete hortifruit: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("hortifruit not found")
	}

	return nil
}
