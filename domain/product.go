package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	UnitKilogram = "kg"
	UnitGram     = "g"
	UnitUnit     = "un"
	UnitLiter    = "L"
	UnitMilliter = "ml"
	UnitPackage  = "pacote"
	UnitBox      = "caixa"
)

var productUnits = map[string]bool{
	UnitKilogram: true,
	UnitGram:     true,
	UnitUnit:     true,
	UnitLiter:    true,
	UnitMilliter: true,
	UnitPackage:  true,
	UnitBox:      true,
}

func ValidUnit(unit string) bool {
	return productUnits[unit]
}

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string              `gorm:"column:name;not null" json:"name"`
	Description        string              `gorm:"column:description" json:"description,omitempty"`
	Price              decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Unit               string              `gorm:"column:unit;not null" json:"unit"`
	IsAvailable        bool                `gorm:"column:is_available;not null" json:"is_available"`
	ImageURL           string              `gorm:"column:image_url" json:"image_url,omitempty"`
	StockQuantity      int                 `gorm:"column:stock_quantity;not null" json:"stock_quantity"`
	DiscountPercentage decimal.NullDecimal `gorm:"column:discount_percentage;type:numeric(5,2)" json:"discount_percentage"`
	PromotionalPrice   decimal.NullDecimal `gorm:"column:promotional_price;type:numeric(10,2)" json:"promotional_price"`
	Featured           bool                `gorm:"column:featured;not null" json:"featured"`
	HortifruitID       uuid.UUID           `gorm:"type:uuid;column:hortifruit_id;not null" json:"hortifruit_id"`
	Hortifruit         *Hortifruit         `gorm:"foreignKey:HortifruitID" json:"hortifruit,omitempty"`
	CategoryID         uuid.UUID           `gorm:"type:uuid;column:category_id;not null" json:"category_id"`
	Category           *Category           `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ApplyDiscount derives the promotional price from price and discount. It is
// the only place the promotional price gets set.
func (p *Product) ApplyDiscount() {
	if !p.DiscountPercentage.Valid {
		p.PromotionalPrice = decimal.NullDecimal{}
		return
	}

	factor := hundred.Sub(p.DiscountPercentage.Decimal).Div(hundred)
	p.PromotionalPrice = decimal.NullDecimal{
		Decimal: p.Price.Mul(factor).Round(2),
		Valid:   true,
	}
}

// EffectivePrice is the promotional price when one is set, otherwise price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.PromotionalPrice.Valid {
		return p.PromotionalPrice.Decimal
	}
	return p.Price
}

type ProductUpdate struct {
	Name               *string
	Description        *string
	Price              *decimal.Decimal
	Unit               *string
	IsAvailable        *bool
	ImageURL           *string
	StockQuantity      *int
	DiscountPercentage *decimal.NullDecimal
	Featured           *bool
	CategoryID         *uuid.UUID
}
