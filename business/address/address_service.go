package address

import (
	"context"
	"fmt"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"strings"

	"github.com/google/uuid"
)

// AddressRepository contract interface
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Address, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Address, error)
	Update(ctx context.Context, address *domain.Address) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type addressService struct {
	addressRepo AddressRepository
}

func NewAddressService(addressRepo AddressRepository) *addressService {
	return &addressService{
		addressRepo: addressRepo,
	}
}

func validate(address domain.Address) error {
	required := []struct{ field, value string }{
		{"street", address.Street},
		{"number", address.Number},
		{"neighborhood", address.Neighborhood},
		{"city", address.City},
		{"state", address.State},
		{"zip_code", address.ZipCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.BadRequestError(r.field + " is required")
		}
	}

	if !domain.ValidAddressType(address.Type) {
		return domain.BadRequestError("invalid address type")
	}

	return nil
}

func (s *addressService) Create(ctx context.Context, userID uuid.UUID, address domain.Address) (domain.Address, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create address")
		return domain.Address{}, fmt.Errorf("context error: %w", err)
	}

	if address.Type == "" {
		address.Type = domain.AddressTypeHome
	}

	if err := validate(address); err != nil {
		logger.Error("Invalid address data", err)
		return domain.Address{}, err
	}

	address.ID = uuid.Nil
	address.UserID = &userID
	address.HortifruitID = nil

	if err := s.addressRepo.Create(ctx, &address); err != nil {
		logger.Error("failed to create address", err)
		return domain.Address{}, err
	}

	return address, nil
}

func (s *addressService) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Address, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when list addresses")
		return nil, fmt.Errorf("context error: %w", err)
	}

	addresses, err := s.addressRepo.FindAllByUser(ctx, userID)
	if err != nil {
		logger.Error("failed to find addresses", err)
		return nil, err
	}

	if addresses == nil {
		addresses = []domain.Address{}
	}

	return addresses, nil
}

func (s *addressService) FindOne(ctx context.Context, id uuid.UUID) (domain.Address, error) {
	address, err := s.addressRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find address", err)
		return domain.Address{}, err
	}

	return address, nil
}

func (s *addressService) Update(ctx context.Context, id uuid.UUID, update domain.AddressUpdate) (domain.Address, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when update address")
		return domain.Address{}, fmt.Errorf("context error: %w", err)
	}

	address, err := s.addressRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find address", err)
		return domain.Address{}, err
	}

	applyUpdate(&address, update)

	if err := validate(address); err != nil {
		logger.Error("Invalid address data", err)
		return domain.Address{}, err
	}

	if err := s.addressRepo.Update(ctx, &address); err != nil {
		logger.Error("failed to update address", err)
		return domain.Address{}, err
	}

	return s.addressRepo.FindByID(ctx, id)
}

func applyUpdate(address *domain.Address, update domain.AddressUpdate) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	set(&address.Street, update.Street)
	set(&address.Number, update.Number)
	set(&address.Complement, update.Complement)
	set(&address.Neighborhood, update.Neighborhood)
	set(&address.City, update.City)
	set(&address.State, update.State)
	set(&address.ZipCode, update.ZipCode)
	set(&address.ReferencePoint, update.ReferencePoint)
	set(&address.Type, update.Type)
}

func (s *addressService) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (domain.Address, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when set default address")
		return domain.Address{}, fmt.Errorf("context error: %w", err)
	}

	if err := s.addressRepo.SetDefault(ctx, userID, addressID); err != nil {
		logger.Error("failed to set default address", err)
		return domain.Address{}, err
	}

	return s.addressRepo.FindByID(ctx, addressID)
}

// Remove deletes an address. The default address can only go once it is the
// last one left.
func (s *addressService) Remove(ctx context.Context, userID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when remove address")
		return fmt.Errorf("context error: %w", err)
	}

	address, err := s.addressRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find address", err)
		return err
	}

	if address.IsDefault {
		addresses, err := s.addressRepo.FindAllByUser(ctx, userID)
		if err != nil {
			logger.Error("failed to find addresses", err)
			return err
		}
		if len(addresses) > 1 {
			return domain.ForbiddenError("set another default address before removing this one")
		}
	}

	if err := s.addressRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete address", err)
		return err
	}

	return nil
}
