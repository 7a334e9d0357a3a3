package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AddressTypeHome  = "home"
	AddressTypeWork  = "work"
	AddressTypeStore = "store"
)

func ValidAddressType(t string) bool {
	switch t {
	case AddressTypeHome, AddressTypeWork, AddressTypeStore:
		return true
	}
	return false
}

// Address belongs to either a user or a hortifruit's store, never both.
type Address struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Street         string     `gorm:"column:street;not null" json:"street"`
	Number         string     `gorm:"column:number;not null" json:"number"`
	Complement     string     `gorm:"column:complement" json:"complement,omitempty"`
	Neighborhood   string     `gorm:"column:neighborhood;not null" json:"neighborhood"`
	City           string     `gorm:"column:city;not null" json:"city"`
	State          string     `gorm:"column:state;not null" json:"state"`
	ZipCode        string     `gorm:"column:zip_code;not null" json:"zip_code"`
	ReferencePoint string     `gorm:"column:reference_point" json:"reference_point,omitempty"`
	IsDefault      bool       `gorm:"column:is_default;not null" json:"is_default"`
	Type           string     `gorm:"column:type;not null" json:"type"`
	UserID         *uuid.UUID `gorm:"type:uuid;column:user_id" json:"user_id,omitempty"`
	HortifruitID   *uuid.UUID `gorm:"type:uuid;column:hortifruit_id" json:"hortifruit_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether the address belongs to the given user.
func (a Address) OwnedBy(userID uuid.UUID) bool {
	return a.UserID != nil && *a.UserID == userID
}

type AddressUpdate struct {
	Street         *string
	Number         *string
	Complement     *string
	Neighborhood   *string
	City           *string
	State          *string
	ZipCode        *string
	ReferencePoint *string
	Type           *string
}
