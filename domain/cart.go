package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusCompleted CartStatus = "completed"
	CartStatusCancelled CartStatus = "cancelled"
)

const (
	PaymentCreditCard = "credit_card"
	PaymentDebitCard  = "debit_card"
	PaymentPix        = "pix"
	PaymentMoney      = "money"
)

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentMoney:
		return true
	}
	return false
}

type Cart struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID           `gorm:"type:uuid;column:user_id;not null" json:"user_id"`
	HortifruitID  *uuid.UUID          `gorm:"type:uuid;column:hortifruit_id" json:"hortifruit_id,omitempty"`
	Items         []CartItem          `gorm:"foreignKey:CartID" json:"items"`
	Status        CartStatus          `gorm:"column:status;not null" json:"status"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null" json:"total"`
	ChangeAmount  decimal.NullDecimal `gorm:"column:change_amount;type:numeric(10,2)" json:"change_amount"`
	AddressID     *uuid.UUID          `gorm:"type:uuid;column:address_id" json:"address_id,omitempty"`
	PaymentMethod string              `gorm:"column:payment_method" json:"payment_method,omitempty"`
	Notes         string              `gorm:"column:notes" json:"notes,omitempty"`
	CheckedOutAt  *time.Time          `gorm:"column:checked_out_at" json:"checked_out_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Recalculate refreshes item unit prices from their loaded products and sets
// subtotal and total. Items whose product is not loaded keep their snapshot.
// The vendor binding follows the items.
func (c *Cart) Recalculate() {
	subtotal := decimal.Zero
	for i := range c.Items {
		item := &c.Items[i]
		if item.Product != nil {
			item.UnitPrice = item.Product.EffectivePrice()
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	c.Subtotal = subtotal
	c.Total = subtotal

	if len(c.Items) == 0 {
		c.HortifruitID = nil
	} else if p := c.Items[0].Product; p != nil {
		vendor := p.HortifruitID
		c.HortifruitID = &vendor
	}
}

// Item returns the cart item with the given id, if present.
func (c Cart) Item(itemID uuid.UUID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return CartItem{}, false
}

type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    uuid.UUID       `gorm:"type:uuid;column:cart_id;not null" json:"cart_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;column:product_id;not null" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type CheckoutRequest struct {
	AddressID     *uuid.UUID
	PaymentMethod string
	ChangeAmount  decimal.NullDecimal
	Notes         string
}

// CheckoutEvent is published after a cart transitions to completed.
type CheckoutEvent struct {
	CartID        uuid.UUID       `json:"cart_id"`
	UserID        uuid.UUID       `json:"user_id"`
	HortifruitID  *uuid.UUID      `json:"hortifruit_id,omitempty"`
	AddressID     *uuid.UUID      `json:"address_id,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	CheckedOutAt  time.Time       `json:"checked_out_at"`
}
