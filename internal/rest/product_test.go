//go:build !integration

package rest

import (
	"context"
	"hortifood/domain"
	"hortifood/internal/middleware"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductService struct {
	created     domain.Product
	listQuery   domain.PageQuery
	exportedFor uuid.UUID
}

func (f *fakeProductService) Create(ctx context.Context, principal domain.Principal, product domain.Product) (domain.Product, error) {
	f.created = product
	product.ID = uuid.New()
	product.HortifruitID = principal.SubjectID
	return product, nil
}

func (f *fakeProductService) FindOne(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return domain.Product{}, domain.NotFoundError("product not found")
}

func (f *fakeProductService) ListByVendor(ctx context.Context, hortifruitID uuid.UUID, q domain.PageQuery) (domain.Page[domain.Product], error) {
	f.listQuery = q
	q = domain.NormalizeProductQuery(q)
	return domain.NewPage([]domain.Product{{ID: uuid.New(), Name: "Banana"}}, 31, q), nil
}

func (f *fakeProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	return []domain.Product{}, nil
}

func (f *fakeProductService) Featured(ctx context.Context, hortifruitID uuid.UUID, limit int) ([]domain.Product, error) {
	return []domain.Product{}, nil
}

func (f *fakeProductService) Update(ctx context.Context, principal domain.Principal, id uuid.UUID, update domain.ProductUpdate) (domain.Product, error) {
	return domain.Product{}, domain.UnauthorizedError("you can only manage your own products")
}

func (f *fakeProductService) Delete(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	return nil
}

func (f *fakeProductService) ToggleAvailability(ctx context.Context, principal domain.Principal, id uuid.UUID) (domain.Product, error) {
	return domain.Product{ID: id, IsAvailable: false}, nil
}

func (f *fakeProductService) ToggleFeatured(ctx context.Context, principal domain.Principal, id uuid.UUID) (domain.Product, error) {
	return domain.Product{ID: id, Featured: true}, nil
}

func (f *fakeProductService) Export(ctx context.Context, principal domain.Principal, hortifruitID uuid.UUID, w io.Writer) error {
	f.exportedFor = hortifruitID
	if principal.AccountType != domain.AccountTypeHortifruit && !principal.IsAdmin() {
		return domain.ForbiddenError("insufficient permissions")
	}
	_, err := w.Write([]byte("PK-fake-xlsx"))
	return err
}

func productServer(svc *fakeProductService) *testServer {
	s := newTestServer()
	h := NewProductHandler(svc)
	g := s.e.Group("/products")
	g.GET("/hortifruit/:hortifruitId", h.ListByVendor)
	g.GET("/hortifruit/:hortifruitId/featured", h.Featured)
	g.GET("/category/:categoryId", h.ListByCategory)
	g.GET("/:id", h.GetProduct)

	manage := g.Group("", s.auth, middleware.Require(domain.CapProductsManage))
	manage.GET("/export", h.Export)
	manage.POST("", h.CreateProduct)
	manage.PATCH("/:id", h.UpdateProduct)
	manage.DELETE("/:id", h.DeleteProduct)
	manage.PATCH("/:id/availability", h.ToggleAvailability)
	manage.PATCH("/:id/featured", h.ToggleFeatured)
	return s
}

func TestCreateProductHandler(t *testing.T) {
	svc := &fakeProductService{}
	s := productServer(svc)
	categoryID := uuid.New()

	body := `{"name":"Banana","price":"4.99","unit":"kg","stock_quantity":10,"discount_percentage":"10","category_id":"` + categoryID.String() + `"}`

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/products", body, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/products", body, s.token(t, buyer())).Code)

	rec := s.do(http.MethodPost, "/products", body, s.token(t, vendor()))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Banana", svc.created.Name)
	assert.Equal(t, "4.99", svc.created.Price.String())
	assert.True(t, svc.created.IsAvailable)
	assert.True(t, svc.created.DiscountPercentage.Valid)
	assert.Equal(t, categoryID, svc.created.CategoryID)

	rec = s.do(http.MethodPost, "/products", `{"name":"Banana","unit":"kg","stock_quantity":-1,"category_id":"`+categoryID.String()+`"}`, s.token(t, vendor()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByVendorPagination(t *testing.T) {
	svc := &fakeProductService{}
	s := productServer(svc)

	rec := s.do(http.MethodGet, "/products/hortifruit/"+uuid.NewString()+"?page=2&limit=10&search=ban&sort=price&order=asc", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PageQuery{Page: 2, Limit: 10, Search: "ban", Sort: "price", Order: "ASC"}, svc.listQuery)
	assert.Contains(t, rec.Body.String(), `"totalPages":4`)
	assert.Contains(t, rec.Body.String(), `"hasNextPage":true`)
	assert.Contains(t, rec.Body.String(), `"hasPreviousPage":true`)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products/hortifruit/nope", "", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/products/"+uuid.NewString(), "", "").Code)
}

func TestProductOwnershipMapsToUnauthorized(t *testing.T) {
	s := productServer(&fakeProductService{})

	rec := s.do(http.MethodPatch, "/products/"+uuid.NewString(), `{"name":"Maçã"}`, s.token(t, vendor()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/products/"+uuid.NewString()+"/featured", "", s.token(t, vendor())).Code)
}

func TestExportHandler(t *testing.T) {
	svc := &fakeProductService{}
	s := productServer(svc)

	rec := s.do(http.MethodGet, "/products/export", "", s.token(t, vendor()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment;")
	assert.Equal(t, "PK-fake-xlsx", rec.Body.String())
	assert.Equal(t, uuid.Nil, svc.exportedFor)

	target := uuid.New()
	rec = s.do(http.MethodGet, "/products/export?hortifruit_id="+target.String(), "", s.token(t, admin()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, target, svc.exportedFor)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products/export?hortifruit_id=x", "", s.token(t, vendor())).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/products/export", "", s.token(t, buyer())).Code)
}
