package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Email     string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password;not null" json:"-"`
	Phone     string    `gorm:"column:phone;uniqueIndex;not null" json:"phone"`
	Role      string    `gorm:"column:role;not null" json:"role"`
	Addresses []Address `gorm:"foreignKey:UserID" json:"addresses,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// UserUpdate carries the optional fields of a profile update.
type UserUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
}

// UserFavoriteProduct is the join row between a user and a favorited product.
type UserFavoriteProduct struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time
}

func (UserFavoriteProduct) TableName() string {
	return "user_favorite_products"
}
