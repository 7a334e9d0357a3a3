package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the credential-bearing view shared by users and hortifruits.
type Account struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	AccountType string    `json:"account_type"`
	Role        string    `json:"role"`
}

func (u User) Account() Account {
	return Account{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		AccountType: AccountTypeUser,
		Role:        u.Role,
	}
}

func (h Hortifruit) Account() Account {
	return Account{
		ID:          h.ID,
		Name:        h.Name,
		Email:       h.Email,
		Phone:       h.Phone,
		AccountType: AccountTypeHortifruit,
		Role:        h.Role,
	}
}

// RefreshToken stores the sha256 digest of an opaque refresh token, never the
// token itself.
type RefreshToken struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TokenHash   string    `gorm:"column:token_hash;uniqueIndex;not null"`
	SubjectID   uuid.UUID `gorm:"type:uuid;column:subject_id;not null"`
	AccountType string    `gorm:"column:account_type;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null"`
	IsRevoked   bool      `gorm:"column:is_revoked;not null"`
	CreatedAt   time.Time
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenPair is what a successful login, registration or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthResult struct {
	Tokens  TokenPair `json:"tokens"`
	Account Account   `json:"account"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}
