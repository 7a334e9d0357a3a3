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

type AddressRepository struct {
	DB *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{
		DB: db,
	}
}

// Create inserts a user address. The user row is locked for the duration so
// the first-address default and an explicitly requested default are decided
// against a stable address set.
func (r *AddressRepository) Create(ctx context.Context, address *domain.Address) error {
	if address.UserID == nil {
		return fmt.Errorf("failed to create address: missing user id")
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner domain.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", *address.UserID).
			First(&owner).Error
		if err != nil {
			return notFound(err, "user")
		}

		var count int64
		if err := tx.Model(&domain.Address{}).Where("user_id = ?", *address.UserID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			address.IsDefault = true
		}

		if address.IsDefault && count > 0 {
			err := tx.Model(&domain.Address{}).
				Where("user_id = ? AND is_default = ?", *address.UserID, true).
				Updates(map[string]interface{}{"is_default": false, "updated_at": time.Now()}).Error
			if err != nil {
				return err
			}
		}

		return tx.Create(address).Error
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		if isUniqueViolation(err) {
			return domain.ConflictError("default address changed concurrently")
		}
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

func (r *AddressRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Address, error) {
	var address domain.Address

	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&address).Error
	if err != nil {
		return domain.Address{}, notFound(err, "address")
	}

	return address, nil
}

// FindAllByUser returns the default address first, then newest first.
func (r *AddressRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Address, error) {
	var addresses []domain.Address

	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find addresses: %w", err)
	}

	return addresses, nil
}

func (r *AddressRepository) Update(ctx context.Context, address *domain.Address) error {
	result := r.DB.WithContext(ctx).Model(&domain.Address{}).Where("id = ?", address.ID).
		Updates(map[string]interface{}{
			"street":          address.Street,
			"number":          address.Number,
			"complement":      address.Complement,
			"neighborhood":    address.Neighborhood,
			"city":            address.City,
			"state":           address.State,
			"zip_code":        address.ZipCode,
			"reference_point": address.ReferencePoint,
			"type":            address.Type,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update address: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("address not found")
	}

	return nil
}

// SetDefault clears and sets the default flag inside one transaction. It takes
// the same user row lock as Create so the two serialize.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner domain.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", userID).
			First(&owner).Error
		if err != nil {
			return notFound(err, "user")
		}

		var addresses []domain.Address
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Find(&addresses).Error
		if err != nil {
			return err
		}

		found := false
		for _, a := range addresses {
			if a.ID == addressID {
				found = true
				break
			}
		}
		if !found {
			return domain.NotFoundError("address not found")
		}

		now := time.Now()

		err = tx.Model(&domain.Address{}).
			Where("user_id = ? AND id <> ? AND is_default = ?", userID, addressID, true).
			Updates(map[string]interface{}{"is_default": false, "updated_at": now}).Error
		if err != nil {
			return err
		}

		return tx.Model(&domain.Address{}).
			Where("id = ?", addressID).
			Updates(map[string]interface{}{"is_default": true, "updated_at": now}).Error
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		if isUniqueViolation(err) {
			return domain.ConflictError("default address changed concurrently")
		}
		return fmt.Errorf("failed to set default address: %w", err)
	}

	return nil
}

func (r *AddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("address not found")
	}

	return nil
}
