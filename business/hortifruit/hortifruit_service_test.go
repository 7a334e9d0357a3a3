//go:build !integration

package hortifruit

import (
	"context"
	"hortifood/domain"
	"hortifood/pkg/utils"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.BcryptCost = 4
}

type fakeHortifruitRepo struct {
	hortifruits map[uuid.UUID]domain.Hortifruit
}

func newFakeRepo() *fakeHortifruitRepo {
	return &fakeHortifruitRepo{hortifruits: map[uuid.UUID]domain.Hortifruit{}}
}

func (r *fakeHortifruitRepo) Create(ctx context.Context, h *domain.Hortifruit) error {
	h.ID = uuid.New()
	if h.Address != nil {
		h.Address.HortifruitID = &h.ID
		h.Address.Type = domain.AddressTypeStore
	}
	r.hortifruits[h.ID] = *h
	return nil
}

func (r *fakeHortifruitRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error) {
	if h, ok := r.hortifruits[id]; ok {
		return h, nil
	}
	return domain.Hortifruit{}, domain.NotFoundError("hortifruit not found")
}

func (r *fakeHortifruitRepo) FindByEmail(ctx context.Context, email string) (domain.Hortifruit, error) {
	for _, h := range r.hortifruits {
		if h.Email == email {
			return h, nil
		}
	}
	return domain.Hortifruit{}, domain.NotFoundError("hortifruit not found")
}

func (r *fakeHortifruitRepo) FindByDocument(ctx context.Context, document string) (domain.Hortifruit, error) {
	for _, h := range r.hortifruits {
		if h.Document == document {
			return h, nil
		}
	}
	return domain.Hortifruit{}, domain.NotFoundError("hortifruit not found")
}

func (r *fakeHortifruitRepo) FindAll(ctx context.Context, filter domain.HortifruitFilter) ([]domain.Hortifruit, int64, error) {
	var out []domain.Hortifruit
	for _, h := range r.hortifruits {
		if filter.IsOpen != nil && h.IsOpen != *filter.IsOpen {
			continue
		}
		if filter.MinRating != nil && h.Rating < *filter.MinRating {
			continue
		}
		out = append(out, h)
	}
	return out, int64(len(out)), nil
}

func (r *fakeHortifruitRepo) Update(ctx context.Context, h *domain.Hortifruit) error {
	r.hortifruits[h.ID] = *h
	return nil
}

func (r *fakeHortifruitRepo) UpdateOperatingStatus(ctx context.Context, id uuid.UUID, isOpen bool) error {
	h, ok := r.hortifruits[id]
	if !ok {
		return domain.NotFoundError("hortifruit not found")
	}
	h.IsOpen = isOpen
	r.hortifruits[id] = h
	return nil
}

func (r *fakeHortifruitRepo) AddRating(ctx context.Context, id uuid.UUID, rating int) error {
	h, ok := r.hortifruits[id]
	if !ok {
		return domain.NotFoundError("hortifruit not found")
	}
	h.Rating, h.TotalRatings = domain.NextRating(h.Rating, h.TotalRatings, rating)
	r.hortifruits[id] = h
	return nil
}

func (r *fakeHortifruitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.hortifruits, id)
	return nil
}

func newStore() domain.Hortifruit {
	return domain.Hortifruit{
		Name:          "Verde Vivo",
		Email:         "Loja@VerdeVivo.com",
		Password:      "vendor1",
		Phone:         "1133334444",
		Document:      "12.345.678/0001-90",
		MinOrderValue: decimal.NewFromInt(20),
		Address: &domain.Address{
			Street: "Av. Brasil", Number: "100", Neighborhood: "Centro",
			City: "Campinas", State: "SP", ZipCode: "13010-000",
		},
	}
}

func TestCreate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewHortifruitService(repo)

	created, err := svc.Create(context.Background(), newStore())
	require.NoError(t, err)
	assert.Equal(t, "loja@verdevivo.com", created.Email)
	assert.Equal(t, domain.RoleHortifruit, created.Role)
	assert.True(t, created.IsActive)
	assert.True(t, utils.CheckPassword("vendor1", created.Password))
	require.NotNil(t, created.Address)
	assert.Equal(t, domain.AddressTypeStore, created.Address.Type)

	dupEmail := newStore()
	dupEmail.Document = "other"
	_, err = svc.Create(context.Background(), dupEmail)
	assert.ErrorIs(t, err, domain.ErrConflict)

	dupDocument := newStore()
	dupDocument.Email = "other@verdevivo.com"
	_, err = svc.Create(context.Background(), dupDocument)
	assert.ErrorIs(t, err, domain.ErrConflict)

	weak := newStore()
	weak.Email, weak.Document, weak.Password = "x@y.com", "x", "123"
	_, err = svc.Create(context.Background(), weak)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestAddRating(t *testing.T) {
	repo := newFakeRepo()
	svc := NewHortifruitService(repo)
	created, err := svc.Create(context.Background(), newStore())
	require.NoError(t, err)

	_, err = svc.AddRating(context.Background(), created.ID, 3)
	require.NoError(t, err)
	rated, err := svc.AddRating(context.Background(), created.ID, 5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rated.Rating, 1e-9)
	assert.Equal(t, 2, rated.TotalRatings)

	for _, bad := range []int{0, 6} {
		_, err = svc.AddRating(context.Background(), created.ID, bad)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	}

	unchanged, err := svc.FindOne(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unchanged.TotalRatings)
	assert.InDelta(t, 4.0, unchanged.Rating, 1e-9)

	_, err = svc.AddRating(context.Background(), uuid.New(), 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := NewHortifruitService(repo)
	created, err := svc.Create(context.Background(), newStore())
	require.NoError(t, err)

	owner := domain.Principal{SubjectID: created.ID, AccountType: domain.AccountTypeHortifruit, Role: domain.RoleHortifruit}
	other := domain.Principal{SubjectID: uuid.New(), AccountType: domain.AccountTypeHortifruit, Role: domain.RoleHortifruit}

	name := "Verde Vivo Centro"
	updated, err := svc.Update(context.Background(), owner, created.ID, domain.HortifruitUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = svc.Update(context.Background(), other, created.ID, domain.HortifruitUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	inactive := false
	_, err = svc.Update(context.Background(), owner, created.ID, domain.HortifruitUpdate{IsActive: &inactive})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := domain.Principal{SubjectID: uuid.New(), Role: domain.RoleAdmin}
	updated, err = svc.Update(context.Background(), admin, created.ID, domain.HortifruitUpdate{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestUpdateConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := NewHortifruitService(repo)
	first, err := svc.Create(context.Background(), newStore())
	require.NoError(t, err)

	second := newStore()
	second.Email, second.Document = "outra@loja.com", "99.999.999/0001-99"
	created, err := svc.Create(context.Background(), second)
	require.NoError(t, err)

	owner := domain.Principal{SubjectID: created.ID, AccountType: domain.AccountTypeHortifruit, Role: domain.RoleHortifruit}

	_, err = svc.Update(context.Background(), owner, created.ID, domain.HortifruitUpdate{Email: &first.Email})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Update(context.Background(), owner, created.ID, domain.HortifruitUpdate{Document: &first.Document})
	assert.ErrorIs(t, err, domain.ErrConflict)

	own := "OUTRA@loja.com"
	_, err = svc.Update(context.Background(), owner, created.ID, domain.HortifruitUpdate{Email: &own})
	assert.NoError(t, err)
}

func TestOperatingStatusAndListing(t *testing.T) {
	repo := newFakeRepo()
	svc := NewHortifruitService(repo)
	created, err := svc.Create(context.Background(), newStore())
	require.NoError(t, err)

	owner := domain.Principal{SubjectID: created.ID, AccountType: domain.AccountTypeHortifruit, Role: domain.RoleHortifruit}
	opened, err := svc.UpdateOperatingStatus(context.Background(), owner, created.ID, true)
	require.NoError(t, err)
	assert.True(t, opened.IsOpen)

	isOpen := true
	page, err := svc.FindAll(context.Background(), domain.HortifruitFilter{IsOpen: &isOpen})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, 10, page.Meta.Limit)

	minRating := 4.5
	page, err = svc.FindAll(context.Background(), domain.HortifruitFilter{MinRating: &minRating})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.Meta.Total)
}
