package postgres

import (
	"context"
	"fmt"
	"hortifood/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ConflictError("email or phone already registered")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return domain.User{}, notFound(err, "user")
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return domain.User{}, notFound(err, "user")
	}

	return user, nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	if err != nil {
		return domain.User{}, notFound(err, "user")
	}

	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	result := r.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).
		Select("name", "email", "phone", "password", "updated_at").
		Updates(user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.ConflictError("email or phone already registered")
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("user not found")
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := r.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"password":   passwordHash,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("user not found")
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("user not found")
	}

	return nil
}

// AddFavorite reports false when the product was already a favorite.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	favorite := domain.UserFavoriteProduct{
		UserID:    userID,
		ProductID: productID,
	}

	result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&favorite)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return false, domain.NotFoundError("product not found")
		}
		return false, fmt.Errorf("failed to add favorite: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// RemoveFavorite reports false when the product was not a favorite.
func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	result := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.UserFavoriteProduct{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *UserRepository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Product, error) {
	var products []domain.Product

	err := r.DB.WithContext(ctx).
		Joins("JOIN user_favorite_products f ON f.product_id = products.id").
		Where("f.user_id = ?", userID).
		Order("f.created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return products, nil
}
