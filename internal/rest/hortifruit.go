package rest

import (
	"context"
	"hortifood/domain"
	"hortifood/internal/middleware"
	"hortifood/pkg/logger"
	"net/http"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type HortifruitService interface {
	Create(ctx context.Context, hortifruit domain.Hortifruit) (domain.Hortifruit, error)
	FindAll(ctx context.Context, filter domain.HortifruitFilter) (domain.Page[domain.Hortifruit], error)
	FindOne(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error)
	Update(ctx context.Context, principal domain.Principal, id uuid.UUID, update domain.HortifruitUpdate) (domain.Hortifruit, error)
	UpdateOperatingStatus(ctx context.Context, principal domain.Principal, id uuid.UUID, isOpen bool) (domain.Hortifruit, error)
	AddRating(ctx context.Context, id uuid.UUID, rating int) (domain.Hortifruit, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type HortifruitHandler struct {
	hortifruitService HortifruitService
	validator         *validator.Validate
	timeout           time.Duration
}

func NewHortifruitHandler(hortifruitService HortifruitService) *HortifruitHandler {
	return &HortifruitHandler{
		hortifruitService: hortifruitService,
		validator:         newValidator(),
		timeout:           10 * time.Second,
	}
}

type StoreAddressRequest struct {
	Street         string `json:"street" validate:"required"`
	Number         string `json:"number" validate:"required"`
	Complement     string `json:"complement"`
	Neighborhood   string `json:"neighborhood" validate:"required"`
	City           string `json:"city" validate:"required"`
	State          string `json:"state" validate:"required"`
	ZipCode        string `json:"zip_code" validate:"required"`
	ReferencePoint string `json:"reference_point"`
}

func (r *StoreAddressRequest) toDomain() *domain.Address {
	if r == nil {
		return nil
	}
	return &domain.Address{
		Street:         r.Street,
		Number:         r.Number,
		Complement:     r.Complement,
		Neighborhood:   r.Neighborhood,
		City:           r.City,
		State:          r.State,
		ZipCode:        r.ZipCode,
		ReferencePoint: r.ReferencePoint,
		Type:           domain.AddressTypeStore,
	}
}

type CreateHortifruitRequest struct {
	Name          string               `json:"name" validate:"required"`
	Email         string               `json:"email" validate:"required,email"`
	Password      string               `json:"password" validate:"required,min=6"`
	Phone         string               `json:"phone" validate:"required"`
	Document      string               `json:"document" validate:"required"`
	MinOrderValue decimal.Decimal      `json:"min_order_value"`
	IsOpen        bool                 `json:"is_open"`
	LogoURL       string               `json:"logo_url" validate:"omitempty,url"`
	BannerURL     string               `json:"banner_url" validate:"omitempty,url"`
	Description   string               `json:"description"`
	Address       *StoreAddressRequest `json:"address" validate:"required"`
}

type UpdateHortifruitRequest struct {
	Name          *string              `json:"name,omitempty"`
	Email         *string              `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string              `json:"phone,omitempty"`
	Document      *string              `json:"document,omitempty"`
	Password      *string              `json:"password,omitempty" validate:"omitempty,min=6"`
	MinOrderValue *decimal.Decimal     `json:"min_order_value,omitempty"`
	LogoURL       *string              `json:"logo_url,omitempty" validate:"omitempty,url"`
	BannerURL     *string              `json:"banner_url,omitempty" validate:"omitempty,url"`
	Description   *string              `json:"description,omitempty"`
	IsActive      *bool                `json:"is_active,omitempty"`
	Address       *StoreAddressRequest `json:"address,omitempty"`
}

type OperatingStatusRequest struct {
	IsOpen *bool `json:"is_open" validate:"required"`
}

type RatingRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

func (h *HortifruitHandler) Create(c echo.Context) error {
	var req CreateHortifruitRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate hortifruit", err)
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.hortifruitService.Create(ctx, domain.Hortifruit{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		Document:      req.Document,
		MinOrderValue: req.MinOrderValue,
		IsOpen:        req.IsOpen,
		LogoURL:       req.LogoURL,
		BannerURL:     req.BannerURL,
		Description:   req.Description,
		Address:       req.Address.toDomain(),
	})
	if err != nil {
		logger.Error("Failed to create hortifruit", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

// FindAll lists stores with pagination plus the is_open and min_rating filters
func (h *HortifruitHandler) FindAll(c echo.Context) error {
	filter := domain.HortifruitFilter{PageQuery: pageQuery(c)}

	if raw := c.QueryParam("is_open"); raw != "" {
		isOpen, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "is_open must be a boolean")
		}
		filter.IsOpen = &isOpen
	}

	if raw := c.QueryParam("min_rating"); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return badRequest(c, "min_rating must be a number")
		}
		filter.MinRating = &minRating
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	page, err := h.hortifruitService.FindAll(ctx, filter)
	if err != nil {
		logger.Error("Failed to list hortifruits", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, page)
}

func (h *HortifruitHandler) FindOne(c echo.Context) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid hortifruit id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	hortifruit, err := h.hortifruitService.FindOne(ctx, id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(hortifruit))
}

func (h *HortifruitHandler) Update(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid hortifruit id")
	}

	var req UpdateHortifruitRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.hortifruitService.Update(ctx, p, id, domain.HortifruitUpdate{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Document:      req.Document,
		Password:      req.Password,
		MinOrderValue: req.MinOrderValue,
		LogoURL:       req.LogoURL,
		BannerURL:     req.BannerURL,
		Description:   req.Description,
		IsActive:      req.IsActive,
		Address:       req.Address.toDomain(),
	})
	if err != nil {
		logger.Error("Failed to update hortifruit", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *HortifruitHandler) UpdateOperatingStatus(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid hortifruit id")
	}

	var req OperatingStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.hortifruitService.UpdateOperatingStatus(ctx, p, id, *req.IsOpen)
	if err != nil {
		logger.Error("Failed to update operating status", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *HortifruitHandler) AddRating(c echo.Context) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid hortifruit id")
	}

	var req RatingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rated, err := h.hortifruitService.AddRating(ctx, id, req.Rating)
	if err != nil {
		logger.Error("Failed to add rating", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(rated))
}

func (h *HortifruitHandler) Delete(c echo.Context) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid hortifruit id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.hortifruitService.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete hortifruit", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Hortifruit deleted successfully"))
}
