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
	"github.com/shopspring/decimal"
)

type CartService interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	FindOne(ctx context.Context, userID, cartID uuid.UUID) (domain.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (domain.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (domain.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	Checkout(ctx context.Context, userID, cartID uuid.UUID, req domain.CheckoutRequest) (domain.Cart, error)
}

type CartHandler struct {
	cartService CartService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   newValidator(),
		timeout:     10 * time.Second,
	}
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type CheckoutRequest struct {
	AddressID     *uuid.UUID          `json:"address_id"`
	PaymentMethod string              `json:"payment_method" validate:"required,oneof=credit_card debit_card pix money"`
	ChangeAmount  decimal.NullDecimal `json:"change_amount"`
	Notes         string              `json:"notes" validate:"max=500"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.GetOrCreateCart(ctx, p.SubjectID)
	if err != nil {
		logger.Error("Failed to get cart", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

// GetActiveCart returns the caller's active cart without creating one.
func (h *CartHandler) GetActiveCart(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.FindByUser(ctx, p.SubjectID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) GetCartByID(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	cartID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid cart id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.FindOne(ctx, p.SubjectID, cartID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate cart item", err)
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.AddItem(ctx, p.SubjectID, req.ProductID, req.Quantity)
	if err != nil {
		logger.Error("Failed to add cart item", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(cart))
}

// UpdateItem sets an item's quantity; zero or less removes it
func (h *CartHandler) UpdateItem(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	itemID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid cart item id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.UpdateItem(ctx, p.SubjectID, itemID, *req.Quantity)
	if err != nil {
		logger.Error("Failed to update cart item", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	itemID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid cart item id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.RemoveItem(ctx, p.SubjectID, itemID)
	if err != nil {
		logger.Error("Failed to remove cart item", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) Clear(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.Clear(ctx, p.SubjectID)
	if err != nil {
		logger.Error("Failed to clear cart", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) Checkout(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	cartID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid cart id")
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate checkout", err)
		return validationFailed(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.Checkout(ctx, p.SubjectID, cartID, domain.CheckoutRequest{
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		ChangeAmount:  req.ChangeAmount,
		Notes:         req.Notes,
	})
	if err != nil {
		logger.Error("Failed to checkout cart", err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}
