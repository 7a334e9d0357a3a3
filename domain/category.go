package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is soft-deletable through Active; list queries only see active rows.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	Active      bool      `gorm:"column:active;not null" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CategoryUpdate struct {
	Name        *string
	Description *string
	Active      *bool
}

// CategoryPopularity is a category with the number of products filed under it.
type CategoryPopularity struct {
	Category
	ProductCount int64 `gorm:"column:product_count" json:"product_count"`
}
