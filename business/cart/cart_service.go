package cart

import (
	"context"
	"errors"
	"fmt"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"hortifood/pkg/metrics"
	"time"

	"github.com/google/uuid"
)

// CartRepository contract interface
type CartRepository interface {
	GetOrCreateActive(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Cart, error)
	AddItem(ctx context.Context, item *domain.CartItem, hortifruitID uuid.UUID) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	SaveTotals(ctx context.Context, cart *domain.Cart) error
	MarkCompleted(ctx context.Context, cart *domain.Cart) (bool, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

type AddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Address, error)
}

type HortifruitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error)
}

// CheckoutPublisher announces completed carts to downstream consumers.
type CheckoutPublisher interface {
	Topic() string
	PublishCheckout(ctx context.Context, event domain.CheckoutEvent) error
}

type cartService struct {
	cartRepo       CartRepository
	productRepo    ProductRepository
	addressRepo    AddressRepository
	hortifruitRepo HortifruitRepository
	publisher      CheckoutPublisher
	now            func() time.Time
}

// NewCartService builds the cart service. publisher may be nil.
func NewCartService(
	cartRepo CartRepository,
	productRepo ProductRepository,
	addressRepo AddressRepository,
	hortifruitRepo HortifruitRepository,
	publisher CheckoutPublisher,
) *cartService {
	return &cartService{
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		addressRepo:    addressRepo,
		hortifruitRepo: hortifruitRepo,
		publisher:      publisher,
		now:            time.Now,
	}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get cart")
		return domain.Cart{}, fmt.Errorf("context error: %w", err)
	}

	cart, err := s.cartRepo.GetOrCreateActive(ctx, userID)
	if err != nil {
		logger.Error("failed to get or create cart", err)
		return domain.Cart{}, err
	}

	return cart, nil
}

func (s *cartService) FindByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	cart, err := s.cartRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		logger.Error("failed to find active cart", err)
		return domain.Cart{}, err
	}

	return cart, nil
}

// FindOne returns a cart of the caller. Carts of other users look missing.
func (s *cartService) FindOne(ctx context.Context, userID, cartID uuid.UUID) (domain.Cart, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		logger.Error("failed to find cart", err)
		return domain.Cart{}, err
	}

	if cart.UserID != userID {
		return domain.Cart{}, domain.NotFoundError("cart not found")
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when add cart item")
		return domain.Cart{}, fmt.Errorf("context error: %w", err)
	}

	if quantity < 1 {
		return domain.Cart{}, domain.BadRequestError("quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		logger.Error("failed to find product", err)
		return domain.Cart{}, err
	}

	if !product.IsAvailable {
		return domain.Cart{}, domain.BadRequestError("product is not available")
	}

	cart, err := s.cartRepo.GetOrCreateActive(ctx, userID)
	if err != nil {
		logger.Error("failed to get or create cart", err)
		return domain.Cart{}, err
	}

	item := domain.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.EffectivePrice(),
	}

	// the repository enforces the single-vendor rule under a cart row lock
	if err := s.cartRepo.AddItem(ctx, &item, product.HortifruitID); err != nil {
		logger.Error("failed to add cart item", err)
		return domain.Cart{}, err
	}

	return s.recalculate(ctx, userID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when update cart item")
		return domain.Cart{}, fmt.Errorf("context error: %w", err)
	}

	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	if _, err := s.ownItem(ctx, userID, itemID); err != nil {
		return domain.Cart{}, err
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		logger.Error("failed to update cart item", err)
		return domain.Cart{}, err
	}

	return s.recalculate(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when remove cart item")
		return domain.Cart{}, fmt.Errorf("context error: %w", err)
	}

	if _, err := s.ownItem(ctx, userID, itemID); err != nil {
		return domain.Cart{}, err
	}

	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		logger.Error("failed to delete cart item", err)
		return domain.Cart{}, err
	}

	return s.recalculate(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	cart, err := s.cartRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		logger.Error("failed to find active cart", err)
		return domain.Cart{}, err
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		logger.Error("failed to clear cart", err)
		return domain.Cart{}, err
	}

	return s.recalculate(ctx, userID)
}

// Checkout completes the caller's active cart. Only one of two concurrent
// checkouts can win the conditional status update.
func (s *cartService) Checkout(ctx context.Context, userID, cartID uuid.UUID, req domain.CheckoutRequest) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when checkout")
		return domain.Cart{}, fmt.Errorf("context error: %w", err)
	}

	cart, err := s.FindOne(ctx, userID, cartID)
	if err != nil {
		return domain.Cart{}, err
	}

	if cart.Status != domain.CartStatusActive {
		return domain.Cart{}, domain.BadRequestError("cart is not active")
	}

	if len(cart.Items) == 0 {
		return domain.Cart{}, domain.BadRequestError("cart is empty")
	}

	cart.Recalculate()

	if cart.HortifruitID != nil {
		hortifruit, err := s.hortifruitRepo.FindByID(ctx, *cart.HortifruitID)
		if err != nil {
			logger.Error("failed to find cart hortifruit", err)
			return domain.Cart{}, err
		}

		if cart.Subtotal.LessThan(hortifruit.MinOrderValue) {
			return domain.Cart{}, domain.BadRequestError(fmt.Sprintf("minimum order value is %s", hortifruit.MinOrderValue.StringFixed(2)))
		}
	}

	if err := s.applyCheckoutRequest(ctx, userID, &cart, req); err != nil {
		return domain.Cart{}, err
	}

	checkedOutAt := s.now()
	cart.CheckedOutAt = &checkedOutAt

	completed, err := s.cartRepo.MarkCompleted(ctx, &cart)
	if err != nil {
		logger.Error("failed to complete cart", err)
		return domain.Cart{}, err
	}
	if !completed {
		return domain.Cart{}, domain.BadRequestError("cart is not active")
	}

	cart.Status = domain.CartStatusCompleted
	metrics.CartCheckouts.Inc()
	logger.Info("cart checked out", "cart_id", cart.ID.String(), "total", cart.Total.StringFixed(2))

	s.publish(ctx, cart)

	return cart, nil
}

func (s *cartService) applyCheckoutRequest(ctx context.Context, userID uuid.UUID, cart *domain.Cart, req domain.CheckoutRequest) error {
	if req.AddressID != nil {
		address, err := s.addressRepo.FindByID(ctx, *req.AddressID)
		if err != nil {
			logger.Error("failed to find checkout address", err)
			return err
		}
		if !address.OwnedBy(userID) {
			return domain.NotFoundError("address not found")
		}
		cart.AddressID = req.AddressID
	}

	if req.PaymentMethod != "" && !domain.ValidPaymentMethod(req.PaymentMethod) {
		return domain.BadRequestError("invalid payment method")
	}

	if req.ChangeAmount.Valid {
		if req.PaymentMethod != domain.PaymentMoney {
			return domain.BadRequestError("change amount is only allowed for money payments")
		}
		if req.ChangeAmount.Decimal.LessThan(cart.Total) {
			return domain.BadRequestError("change amount must cover the total")
		}
	}

	cart.PaymentMethod = req.PaymentMethod
	cart.ChangeAmount = req.ChangeAmount
	cart.Notes = req.Notes

	return nil
}

// publish is best effort: the cart is already completed when it runs.
func (s *cartService) publish(ctx context.Context, cart domain.Cart) {
	if s.publisher == nil {
		return
	}

	event := domain.CheckoutEvent{
		CartID:        cart.ID,
		UserID:        cart.UserID,
		HortifruitID:  cart.HortifruitID,
		AddressID:     cart.AddressID,
		PaymentMethod: cart.PaymentMethod,
		Total:         cart.Total,
		ItemCount:     len(cart.Items),
		CheckedOutAt:  *cart.CheckedOutAt,
	}

	if err := s.publisher.PublishCheckout(ctx, event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(s.publisher.Topic()).Inc()
		logger.Warn("failed to publish checkout event", err)
	}
}

func (s *cartService) ownItem(ctx context.Context, userID, itemID uuid.UUID) (domain.CartItem, error) {
	cart, err := s.cartRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.CartItem{}, domain.NotFoundError("cart item not found")
		}
		logger.Error("failed to find active cart", err)
		return domain.CartItem{}, err
	}

	item, ok := cart.Item(itemID)
	if !ok {
		return domain.CartItem{}, domain.NotFoundError("cart item not found")
	}

	return item, nil
}

// recalculate reloads the active cart and persists fresh totals.
func (s *cartService) recalculate(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	cart, err := s.cartRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		logger.Error("failed to reload cart", err)
		return domain.Cart{}, err
	}

	cart.Recalculate()

	if err := s.cartRepo.SaveTotals(ctx, &cart); err != nil {
		logger.Error("failed to save cart totals", err)
		return domain.Cart{}, err
	}

	return cart, nil
}
