package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Hortifruit struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"column:name;not null" json:"name"`
	Email         string          `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password      string          `gorm:"column:password;not null" json:"-"`
	Phone         string          `gorm:"column:phone;not null" json:"phone"`
	Document      string          `gorm:"column:document;uniqueIndex;not null" json:"document"`
	Role          string          `gorm:"column:role;not null" json:"role"`
	Address       *Address        `gorm:"foreignKey:HortifruitID" json:"address,omitempty"`
	IsActive      bool            `gorm:"column:is_active;not null" json:"is_active"`
	IsOpen        bool            `gorm:"column:is_open;not null" json:"is_open"`
	Rating        float64         `gorm:"column:rating;not null" json:"rating"`
	TotalRatings  int             `gorm:"column:total_ratings;not null" json:"total_ratings"`
	MinOrderValue decimal.Decimal `gorm:"column:min_order_value;type:numeric(10,2);not null" json:"min_order_value"`
	LogoURL       string          `gorm:"column:logo_url" json:"logo_url,omitempty"`
	BannerURL     string          `gorm:"column:banner_url" json:"banner_url,omitempty"`
	Description   string          `gorm:"column:description" json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Hortifruit) TableName() string {
	return "hortifruits"
}

func (h *Hortifruit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Role == "" {
		h.Role = RoleHortifruit
	}
	return nil
}

const (
	MinRating = 1
	MaxRating = 5
)

// NextRating folds one more rating into a running mean.
func NextRating(average float64, count int, rating int) (float64, int) {
	return (average*float64(count) + float64(rating)) / float64(count+1), count + 1
}

// HortifruitFilter narrows a vendor listing.
type HortifruitFilter struct {
	PageQuery
	IsOpen    *bool
	MinRating *float64
}

type HortifruitUpdate struct {
	Name          *string
	Email         *string
	Phone         *string
	Document      *string
	Password      *string
	MinOrderValue *decimal.Decimal
	LogoURL       *string
	BannerURL     *string
	Description   *string
	IsActive      *bool
	Address       *Address
}
