//go:build !integration

package rest

import (
	"context"
	"hortifood/domain"
	"hortifood/internal/middleware"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHortifruitService struct {
	filter  domain.HortifruitFilter
	isOpen  *bool
	rating  int
	created domain.Hortifruit
	deleted []uuid.UUID
}

func (f *fakeHortifruitService) Create(ctx context.Context, h domain.Hortifruit) (domain.Hortifruit, error) {
	f.created = h
	h.ID = uuid.New()
	return h, nil
}

func (f *fakeHortifruitService) FindAll(ctx context.Context, filter domain.HortifruitFilter) (domain.Page[domain.Hortifruit], error) {
	f.filter = filter
	return domain.NewPage[domain.Hortifruit](nil, 0, domain.NormalizeHortifruitQuery(filter.PageQuery)), nil
}

func (f *fakeHortifruitService) FindOne(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error) {
	return domain.Hortifruit{ID: id, Name: "Verde Vivo"}, nil
}

func (f *fakeHortifruitService) Update(ctx context.Context, p domain.Principal, id uuid.UUID, update domain.HortifruitUpdate) (domain.Hortifruit, error) {
	if !p.IsAdmin() && p.SubjectID != id {
		return domain.Hortifruit{}, domain.ForbiddenError("you can only manage your own store")
	}
	return domain.Hortifruit{ID: id}, nil
}

func (f *fakeHortifruitService) UpdateOperatingStatus(ctx context.Context, p domain.Principal, id uuid.UUID, isOpen bool) (domain.Hortifruit, error) {
	f.isOpen = &isOpen
	return domain.Hortifruit{ID: id, IsOpen: isOpen}, nil
}

func (f *fakeHortifruitService) AddRating(ctx context.Context, id uuid.UUID, rating int) (domain.Hortifruit, error) {
	f.rating = rating
	return domain.Hortifruit{ID: id, Rating: float64(rating), TotalRatings: 1}, nil
}

func (f *fakeHortifruitService) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func hortifruitServer(svc *fakeHortifruitService) *testServer {
	s := newTestServer()
	h := NewHortifruitHandler(svc)
	g := s.e.Group("/hortifruits")
	g.GET("", h.FindAll)
	g.GET("/:id", h.FindOne)
	g.POST("", h.Create, s.auth, middleware.Require(domain.CapHortifruitsAdmin))
	g.DELETE("/:id", h.Delete, s.auth, middleware.Require(domain.CapHortifruitsAdmin))
	g.PATCH("/:id", h.Update, s.auth, middleware.Require(domain.CapStoreOperate))
	g.PATCH("/:id/status", h.UpdateOperatingStatus, s.auth, middleware.Require(domain.CapStoreOperate))
	g.POST("/:id/ratings", h.AddRating, s.auth, middleware.Require(domain.CapHortifruitsRate))
	return s
}

func TestHortifruitListingFilters(t *testing.T) {
	svc := &fakeHortifruitService{}
	s := hortifruitServer(svc)

	rec := s.do(http.MethodGet, "/hortifruits?is_open=true&min_rating=4.5&search=verde&limit=500", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.IsOpen)
	assert.True(t, *svc.filter.IsOpen)
	require.NotNil(t, svc.filter.MinRating)
	assert.InDelta(t, 4.5, *svc.filter.MinRating, 1e-9)
	assert.Equal(t, "verde", svc.filter.Search)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), `"limit":100`)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/hortifruits?is_open=maybe", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/hortifruits?min_rating=high", "", "").Code)
}

func TestHortifruitCapabilities(t *testing.T) {
	svc := &fakeHortifruitService{}
	s := hortifruitServer(svc)
	store := vendor()

	create := `{"name":"Verde Vivo","email":"loja@verdevivo.com","password":"vendor1","phone":"1133334444","document":"12.345.678/0001-90","min_order_value":"20","address":{"street":"Av. Brasil","number":"100","neighborhood":"Centro","city":"Campinas","state":"SP","zip_code":"13010-000"}}`
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/hortifruits", create, s.token(t, store)).Code)

	rec := s.do(http.MethodPost, "/hortifruits", create, s.token(t, admin()))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created.Address)
	assert.Equal(t, domain.AddressTypeStore, svc.created.Address.Type)
	assert.Equal(t, "20", svc.created.MinOrderValue.String())

	missingAddress := `{"name":"X","email":"x@y.com","password":"vendor1","phone":"1","document":"1"}`
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/hortifruits", missingAddress, s.token(t, admin())).Code)

	own := "/hortifruits/" + store.SubjectID.String()
	assert.Equal(t, http.StatusOK, s.do(http.MethodPatch, own, `{"name":"Novo"}`, s.token(t, store)).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, "/hortifruits/"+uuid.NewString(), `{"name":"Novo"}`, s.token(t, store)).Code)

	rec = s.do(http.MethodPatch, own+"/status", `{"is_open":false}`, s.token(t, store))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.isOpen)
	assert.False(t, *svc.isOpen)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, own+"/status", `{}`, s.token(t, store)).Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, own+"/ratings", `{"rating":5}`, s.token(t, store)).Code)
	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, own+"/ratings", `{"rating":5}`, s.token(t, buyer())).Code)
	assert.Equal(t, 5, svc.rating)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, own+"/ratings", `{"rating":6}`, s.token(t, buyer())).Code)
	assert.Equal(t, 5, svc.rating)
}

type fakeCategoryService struct {
	names map[string]bool
}

func (f *fakeCategoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{}, nil
}

func (f *fakeCategoryService) GetCategoryByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	return domain.Category{}, domain.NotFoundError("category not found")
}

func (f *fakeCategoryService) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	if f.names[category.Name] {
		return domain.Category{}, domain.ConflictError("category already exists")
	}
	f.names[category.Name] = true
	category.ID = uuid.New()
	category.Active = true
	return category, nil
}

func (f *fakeCategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, update domain.CategoryUpdate) (domain.Category, error) {
	return domain.Category{ID: id}, nil
}

func (f *fakeCategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return domain.BadRequestError("category has products")
}

func (f *fakeCategoryService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeCategoryService) Popular(ctx context.Context, limit int) ([]domain.CategoryPopularity, error) {
	return []domain.CategoryPopularity{}, nil
}

func TestCategoryHandlers(t *testing.T) {
	s := newTestServer()
	h := NewCategoryHandler(&fakeCategoryService{names: map[string]bool{}})
	g := s.e.Group("/categories")
	g.GET("", h.GetAllCategories)
	g.GET("/popular", h.Popular)
	g.GET("/:id", h.GetCategoryByID)
	manage := g.Group("", s.auth, middleware.Require(domain.CapCategoriesManage))
	manage.POST("", h.CreateCategory)
	manage.DELETE("/:id", h.DeleteCategory)
	manage.PATCH("/:id/deactivate", h.Deactivate)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/categories", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/categories/popular?limit=3", "", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/categories/"+uuid.NewString(), "", "").Code)

	token := s.token(t, admin())
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/categories", `{"name":"Frutas"}`, s.token(t, vendor())).Code)
	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/categories", `{"name":"Frutas"}`, token).Code)

	rec := s.do(http.MethodPost, "/categories", `{"name":"Frutas"}`, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorBody(t, rec).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/categories/"+uuid.NewString(), "", token).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/categories/"+uuid.NewString()+"/deactivate", "", token).Code)
}

type fakeUserService struct {
	favorites map[uuid.UUID]bool
}

func (f *fakeUserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return []domain.User{}, nil
}

func (f *fakeUserService) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return domain.User{ID: id, Name: "Ana"}, nil
}

func (f *fakeUserService) UpdateUser(ctx context.Context, id uuid.UUID, update domain.UserUpdate) (domain.User, error) {
	return domain.User{ID: id}, nil
}

func (f *fakeUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeUserService) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	if f.favorites[productID] {
		return domain.ConflictError("product already in favorites")
	}
	f.favorites[productID] = true
	return nil
}

func (f *fakeUserService) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	if !f.favorites[productID] {
		return domain.NotFoundError("product not in favorites")
	}
	delete(f.favorites, productID)
	return nil
}

func (f *fakeUserService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Product, error) {
	return []domain.Product{}, nil
}

func TestUserHandlers(t *testing.T) {
	s := newTestServer()
	h := NewUserHandler(&fakeUserService{favorites: map[uuid.UUID]bool{}})
	g := s.e.Group("/users", s.auth)
	g.GET("", h.GetAllUsers, middleware.Require(domain.CapUsersAdmin))
	g.GET("/me/favorites", h.ListFavorites, middleware.Require(domain.CapFavoritesManage))
	g.POST("/me/favorites/:productId", h.AddFavorite, middleware.Require(domain.CapFavoritesManage))
	g.DELETE("/me/favorites/:productId", h.RemoveFavorite, middleware.Require(domain.CapFavoritesManage))
	g.GET("/:id", h.GetUserByID, middleware.SelfOrAdmin())
	g.PATCH("/:id", h.UpdateUser, middleware.SelfOrAdmin())

	me := buyer()
	token := s.token(t, me)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/users", "", token).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users", "", s.token(t, admin())).Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users/"+me.SubjectID.String(), "", token).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/users/"+uuid.NewString(), "", token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/users/"+me.SubjectID.String(), `{"phone":"12"}`, token).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/users/"+me.SubjectID.String(), `{"phone":"11988887777"}`, token).Code)

	productID := uuid.NewString()
	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/users/me/favorites/"+productID, "", token).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/users/me/favorites/"+productID, "", token).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users/me/favorites", "", token).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/users/me/favorites/"+productID, "", token).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/users/me/favorites/"+productID, "", token).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/users/me/favorites/"+productID, "", s.token(t, vendor())).Code)
}
