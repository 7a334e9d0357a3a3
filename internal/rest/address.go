package rest

import (
	"context"
	"hortifood/domain"
	"hortifood/internal/middleware"
	"hortifood/pkg/logger"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AddressService interface {
	Create(ctx context.Context, userID uuid.UUID, address domain.Address) (domain.Address, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Address, error)
	FindOne(ctx context.Context, id uuid.UUID) (domain.Address, error)
	Update(ctx context.Context, id uuid.UUID, update domain.AddressUpdate) (domain.Address, error)
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (domain.Address, error)
	Remove(ctx context.Context, userID, id uuid.UUID) error
}

type AddressHandler struct {
	addressService AddressService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewAddressHandler(addressService AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		validator:      newValidator(),
		timeout:        10 * time.Second,
	}
}

type CreateAddressRequest struct {
	Street         string `json:"street" validate:"required"`
	Number         string `json:"number" validate:"required"`
	Complement     string `json:"complement"`
	Neighborhood   string `json:"neighborhood" validate:"required"`
	City           string `json:"city" validate:"required"`
	State          string `json:"state" validate:"required"`
	ZipCode        string `json:"zip_code" validate:"required"`
	ReferencePoint string `json:"reference_point"`
	IsDefault      bool   `json:"is_default"`
	Type           string `json:"type" validate:"omitempty,oneof=home work"`
}

type UpdateAddressRequest struct {
	Street         *string `json:"street,omitempty"`
	Number         *string `json:"number,omitempty"`
	Complement     *string `json:"complement,omitempty"`
	Neighborhood   *string `json:"neighborhood,omitempty"`
	City           *string `json:"city,omitempty"`
	State          *string `json:"state,omitempty"`
	ZipCode        *string `json:"zip_code,omitempty"`
	ReferencePoint *string `json:"reference_point,omitempty"`
	Type           *string `json:"type,omitempty" validate:"omitempty,oneof=home work"`
}

// ownedAddress loads the :id address and writes 403 when it belongs to
// someone else. The bool reports whether the handler may continue.
func (h *AddressHandler) ownedAddress(ctx context.Context, c echo.Context, p domain.Principal) (domain.Address, bool, error) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return domain.Address{}, false, badRequest(c, "invalid address id")
	}

	address, err := h.addressService.FindOne(ctx, id)
	if err != nil {
		return domain.Address{}, false, errorResponse(c, err)
	}

	if address.UserID == nil || (!address.OwnedBy(p.SubjectID) && !p.IsAdmin()) {
		logger.Warn("address ownership mismatch", "address_id", id.String(), "caller", p.SubjectID.String())
		return domain.Address{}, false, errorResponse(c, domain.ForbiddenError("you can only access your own addresses"))
	}

	return address, true, nil
}

func (h *AddressHandler) Create(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate address", err)
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.addressService.Create(ctx, p.SubjectID, domain.Address{
		Street:         req.Street,
		Number:         req.Number,
		Complement:     req.Complement,
		Neighborhood:   req.Neighborhood,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		ReferencePoint: req.ReferencePoint,
		IsDefault:      req.IsDefault,
		Type:           req.Type,
	})
	if err != nil {
		logger.Error("Failed to create address", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *AddressHandler) FindAll(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	addresses, err := h.addressService.FindAllByUser(ctx, p.SubjectID)
	if err != nil {
		logger.Error("Failed to list addresses", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(addresses))
}

func (h *AddressHandler) FindOne(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, ok, err := h.ownedAddress(ctx, c, p)
	if !ok {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(address))
}

func (h *AddressHandler) Update(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateAddressRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, ok, err := h.ownedAddress(ctx, c, p)
	if !ok {
		return err
	}

	updated, err := h.addressService.Update(ctx, address.ID, domain.AddressUpdate{
		Street:         req.Street,
		Number:         req.Number,
		Complement:     req.Complement,
		Neighborhood:   req.Neighborhood,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		ReferencePoint: req.ReferencePoint,
		Type:           req.Type,
	})
	if err != nil {
		logger.Error("Failed to update address", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, ok, err := h.ownedAddress(ctx, c, p)
	if !ok {
		return err
	}

	updated, err := h.addressService.SetDefault(ctx, *address.UserID, address.ID)
	if err != nil {
		logger.Error("Failed to set default address", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *AddressHandler) Remove(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, ok, err := h.ownedAddress(ctx, c, p)
	if !ok {
		return err
	}

	if err := h.addressService.Remove(ctx, *address.UserID, address.ID); err != nil {
		logger.Error("Failed to remove address", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Address removed successfully"))
}
