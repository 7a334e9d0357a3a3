//go:build !integration

package rest

import (
	"context"
	"hortifood/domain"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeCartService struct {
	lastQuantity int
	checkout     domain.CheckoutRequest
	checkoutErr  error
	active       *domain.Cart
}

func (f *fakeCartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	return domain.Cart{ID: uuid.New(), UserID: userID, Status: domain.CartStatusActive}, nil
}

func (f *fakeCartService) FindByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	if f.active == nil {
		return domain.Cart{}, domain.NotFoundError("active cart not found")
	}
	return *f.active, nil
}

func (f *fakeCartService) FindOne(ctx context.Context, userID, cartID uuid.UUID) (domain.Cart, error) {
	return domain.Cart{}, domain.NotFoundError("cart not found")
}

func (f *fakeCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (domain.Cart, error) {
	f.lastQuantity = quantity
	return domain.Cart{ID: uuid.New(), UserID: userID}, nil
}

func (f *fakeCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (domain.Cart, error) {
	f.lastQuantity = quantity
	return domain.Cart{ID: uuid.New(), UserID: userID}, nil
}

func (f *fakeCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (domain.Cart, error) {
	return domain.Cart{}, domain.NotFoundError("cart item not found")
}

func (f *fakeCartService) Clear(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	return domain.Cart{ID: uuid.New(), UserID: userID}, nil
}

func (f *fakeCartService) Checkout(ctx context.Context, userID, cartID uuid.UUID, req domain.CheckoutRequest) (domain.Cart, error) {
	f.checkout = req
	if f.checkoutErr != nil {
		return domain.Cart{}, f.checkoutErr
	}
	return domain.Cart{ID: cartID, UserID: userID, Status: domain.CartStatusCompleted}, nil
}

func cartServer(svc *fakeCartService) *testServer {
	s := newTestServer()
	h := NewCartHandler(svc)
	g := s.e.Group("/carts", s.auth)
	g.GET("", h.GetCart)
	g.GET("/active", h.GetActiveCart)
	g.GET("/:id", h.GetCartByID)
	g.POST("/items", h.AddItem)
	g.PUT("/items/:id", h.UpdateItem)
	g.DELETE("/items/:id", h.RemoveItem)
	g.POST("/checkout/:id", h.Checkout)
	g.DELETE("/clear", h.Clear)
	return s
}

func TestCartItems(t *testing.T) {
	svc := &fakeCartService{}
	s := cartServer(svc)
	token := s.token(t, buyer())

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/carts", "", token).Code)

	rec := s.do(http.MethodPost, "/carts/items", `{"product_id":"`+uuid.NewString()+`","quantity":2}`, token)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, svc.lastQuantity)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/carts/items", `{"product_id":"`+uuid.NewString()+`","quantity":0}`, token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/carts/items", `{"quantity":1}`, token).Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/carts/items/"+uuid.NewString(), `{"quantity":0}`, token).Code)
	assert.Equal(t, 0, svc.lastQuantity)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/carts/items/"+uuid.NewString(), `{}`, token).Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/carts/items/"+uuid.NewString(), "", token).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/carts/"+uuid.NewString(), "", token).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/carts/clear", "", token).Code)
}

func TestGetActiveCart(t *testing.T) {
	svc := &fakeCartService{}
	s := cartServer(svc)
	token := s.token(t, buyer())

	rec := s.do(http.MethodGet, "/carts/active", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "active cart not found", errorBody(t, rec).Message)

	cartID := uuid.New()
	svc.active = &domain.Cart{ID: cartID, Status: domain.CartStatusActive}
	rec = s.do(http.MethodGet, "/carts/active", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), cartID.String())
}

func TestCheckoutHandler(t *testing.T) {
	svc := &fakeCartService{}
	s := cartServer(svc)
	token := s.token(t, buyer())
	cartID := uuid.NewString()
	addressID := uuid.New()

	rec := s.do(http.MethodPost, "/carts/checkout/"+cartID,
		`{"address_id":"`+addressID.String()+`","payment_method":"money","change_amount":"50.00","notes":"ring twice"}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "completed")
	if assert.NotNil(t, svc.checkout.AddressID) {
		assert.Equal(t, addressID, *svc.checkout.AddressID)
	}
	assert.True(t, svc.checkout.ChangeAmount.Valid)
	assert.Equal(t, "50", svc.checkout.ChangeAmount.Decimal.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/carts/checkout/"+cartID, `{"payment_method":"boleto"}`, token).Code)

	svc.checkoutErr = domain.BadRequestError("cart is not active")
	rec = s.do(http.MethodPost, "/carts/checkout/"+cartID, `{"payment_method":"pix"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is not active", errorBody(t, rec).Message)
}

func TestCartRequiresToken(t *testing.T) {
	s := cartServer(&fakeCartService{})
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/carts", "", "").Code)
}
