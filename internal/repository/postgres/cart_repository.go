package postgres

import (
	"context"
	"fmt"
	"hortifood/domain"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct {
	DB *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		DB: db,
	}
}

const boundVendor = `(SELECT p.hortifruit_id FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	WHERE ci.cart_id = carts.id LIMIT 1)`

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("Items.Product")
}

// GetOrCreateActive relies on the carts_one_active_per_user partial index:
// concurrent callers race on the insert, the losers do nothing, and everyone
// reads back the same row.
func (r *CartRepository) GetOrCreateActive(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	cart := domain.Cart{
		UserID:   userID,
		Status:   domain.CartStatusActive,
		Subtotal: decimal.Zero,
		Total:    decimal.Zero,
	}

	err := r.DB.WithContext(ctx).
		Omit("Items").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Cart{}, domain.NotFoundError("user not found")
		}
		return domain.Cart{}, fmt.Errorf("failed to create cart: %w", err)
	}

	return r.FindActiveByUser(ctx, userID)
}

func (r *CartRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	var cart domain.Cart

	err := r.DB.WithContext(ctx).
		Scopes(withItems).
		Where("user_id = ? AND status = ?", userID, domain.CartStatusActive).
		First(&cart).Error
	if err != nil {
		return domain.Cart{}, notFound(err, "active cart")
	}

	return cart, nil
}

func (r *CartRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Cart, error) {
	var cart domain.Cart

	err := r.DB.WithContext(ctx).
		Scopes(withItems).
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return domain.Cart{}, notFound(err, "cart")
	}

	return cart, nil
}

// AddItem binds the cart to hortifruitID and adds quantity to the (cart,
// product) row, inserting it when missing. The cart row stays locked until
// the item is written, so concurrent adds for different vendors cannot both
// land in an empty cart.
func (r *CartRepository) AddItem(ctx context.Context, item *domain.CartItem, hortifruitID uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart domain.Cart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Where("id = ?", item.CartID).
			First(&cart).Error
		if err != nil {
			return notFound(err, "cart")
		}
		if cart.Status != domain.CartStatusActive {
			return domain.BadRequestError("cart is not active")
		}

		var vendors []uuid.UUID
		err = tx.Model(&domain.CartItem{}).
			Joins("JOIN products ON products.id = cart_items.product_id").
			Where("cart_items.cart_id = ?", item.CartID).
			Distinct().
			Pluck("products.hortifruit_id", &vendors).Error
		if err != nil {
			return err
		}
		for _, vendor := range vendors {
			if vendor != hortifruitID {
				return domain.BadRequestError("cart already holds products from another hortifruit")
			}
		}

		err = tx.Model(&domain.Cart{}).Where("id = ?", item.CartID).
			Updates(map[string]interface{}{"hortifruit_id": hortifruitID, "updated_at": time.Now()}).Error
		if err != nil {
			return err
		}

		return tx.Omit("Product").
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
					"unit_price": gorm.Expr("EXCLUDED.unit_price"),
					"updated_at": gorm.Expr("EXCLUDED.updated_at"),
				}),
			}).
			Create(item).Error
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		if isForeignKeyViolation(err) {
			return domain.NotFoundError("cart or product not found")
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	result := r.DB.WithContext(ctx).Model(&domain.CartItem{}).Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("cart item not found")
	}

	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", itemID).Delete(&domain.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NotFoundError("cart item not found")
	}

	return nil
}

func (r *CartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	if err := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// SaveTotals persists the recalculated totals and item price snapshots of an
// active cart. The vendor binding is re-derived from the stored items rather
// than taken from cart, which may be stale under concurrent writes.
func (r *CartRepository) SaveTotals(ctx context.Context, cart *domain.Cart) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked domain.Cart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", cart.ID).
			First(&locked).Error
		if err != nil {
			return notFound(err, "cart")
		}

		now := time.Now()

		result := tx.Model(&domain.Cart{}).
			Where("id = ? AND status = ?", cart.ID, domain.CartStatusActive).
			Updates(map[string]interface{}{
				"subtotal":      cart.Subtotal,
				"total":         cart.Total,
				"hortifruit_id": gorm.Expr(boundVendor),
				"updated_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.BadRequestError("cart is not active")
		}

		for _, item := range cart.Items {
			err := tx.Model(&domain.CartItem{}).Where("id = ?", item.ID).
				Update("unit_price", item.UnitPrice).Error
			if err != nil {
				return err
			}
		}

		cart.UpdatedAt = now
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to save cart totals: %w", err)
	}

	return nil
}

// MarkCompleted moves an active cart to completed. It reports false when the
// cart was no longer active, which makes a second checkout a no-op.
func (r *CartRepository) MarkCompleted(ctx context.Context, cart *domain.Cart) (bool, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range cart.Items {
			err := tx.Model(&domain.CartItem{}).Where("id = ?", item.ID).
				Update("unit_price", item.UnitPrice).Error
			if err != nil {
				return err
			}
		}

		result := tx.Model(&domain.Cart{}).
			Where("id = ? AND status = ?", cart.ID, domain.CartStatusActive).
			Updates(map[string]interface{}{
				"status":         domain.CartStatusCompleted,
				"subtotal":       cart.Subtotal,
				"total":          cart.Total,
				"change_amount":  cart.ChangeAmount,
				"address_id":     cart.AddressID,
				"payment_method": cart.PaymentMethod,
				"notes":          cart.Notes,
				"checked_out_at": cart.CheckedOutAt,
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errCartNotActive
		}

		return nil
	})
	if err == errCartNotActive {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to complete cart: %w", err)
	}

	return true, nil
}

var errCartNotActive = domain.BadRequestError("cart is not active")
