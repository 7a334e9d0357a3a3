package domain

import "github.com/google/uuid"

const (
	RoleUser       = "user"
	RoleHortifruit = "hortifruit"
	RoleAdmin      = "admin"
)

const (
	AccountTypeUser       = "user"
	AccountTypeHortifruit = "hortifruit"
)

func ValidAccountType(accountType string) bool {
	return accountType == AccountTypeUser || accountType == AccountTypeHortifruit
}

// Capability is the permission tag a route requires before dispatch.
type Capability string

const (
	CapCartManage       Capability = "cart:manage"
	CapAddressesManage  Capability = "addresses:manage"
	CapFavoritesManage  Capability = "favorites:manage"
	CapHortifruitsRate  Capability = "hortifruits:rate"
	CapProductsManage   Capability = "products:manage"
	CapStoreOperate     Capability = "store:operate"
	CapHortifruitsAdmin Capability = "hortifruits:admin"
	CapCategoriesManage Capability = "categories:manage"
	CapUsersAdmin       Capability = "users:admin"
)

var roleCapabilities = map[string][]Capability{
	RoleUser: {
		CapCartManage,
		CapAddressesManage,
		CapFavoritesManage,
		CapHortifruitsRate,
	},
	RoleHortifruit: {
		CapProductsManage,
		CapStoreOperate,
	},
	RoleAdmin: {
		CapCartManage,
		CapAddressesManage,
		CapFavoritesManage,
		CapHortifruitsRate,
		CapProductsManage,
		CapStoreOperate,
		CapHortifruitsAdmin,
		CapCategoriesManage,
		CapUsersAdmin,
	},
}

// Principal is the authenticated caller resolved from an access token.
type Principal struct {
	SubjectID   uuid.UUID
	Email       string
	AccountType string
	Role        string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Capabilities returns the tag set granted to the principal's role.
func (p Principal) Capabilities() []Capability {
	return roleCapabilities[p.Role]
}

// Authorize returns ErrForbidden unless the principal's role grants capability.
func Authorize(p Principal, capability Capability) error {
	for _, c := range p.Capabilities() {
		if c == capability {
			return nil
		}
	}

	return ForbiddenError("insufficient permissions")
}
