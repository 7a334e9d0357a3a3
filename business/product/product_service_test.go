//go:build !integration

package product

import (
	"bytes"
	"context"
	"hortifood/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

type fakeProductRepo struct {
	products map[uuid.UUID]domain.Product
}

func (r *fakeProductRepo) Create(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New()
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return domain.Product{}, domain.NotFoundError("product not found")
}

func (r *fakeProductRepo) FindByVendor(ctx context.Context, hortifruitID uuid.UUID, q domain.PageQuery) ([]domain.Product, int64, error) {
	var all []domain.Product
	for _, p := range r.products {
		if p.HortifruitID == hortifruitID {
			all = append(all, p)
		}
	}
	total := int64(len(all))
	start := q.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeProductRepo) FindAllByVendor(ctx context.Context, hortifruitID uuid.UUID) ([]domain.Product, error) {
	all, _, err := r.FindByVendor(ctx, hortifruitID, domain.PageQuery{Page: 1, Limit: 1000})
	return all, err
}

func (r *fakeProductRepo) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindFeatured(ctx context.Context, hortifruitID uuid.UUID, limit int) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.HortifruitID == hortifruitID && p.Featured && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *domain.Product) error {
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Toggle(ctx context.Context, id uuid.UUID, column string) (domain.Product, error) {
	p := r.products[id]
	switch column {
	case "is_available":
		p.IsAvailable = !p.IsAvailable
	case "featured":
		p.Featured = !p.Featured
	}
	r.products[id] = p
	return p, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

type fakeCategoryRepo struct{ ids map[uuid.UUID]bool }

func (r fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	if r.ids[id] {
		return domain.Category{ID: id, Name: "Frutas", Active: true}, nil
	}
	return domain.Category{}, domain.NotFoundError("category not found")
}

type fakeHortifruitRepo struct{ ids map[uuid.UUID]bool }

func (r fakeHortifruitRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error) {
	if r.ids[id] {
		return domain.Hortifruit{ID: id}, nil
	}
	return domain.Hortifruit{}, domain.NotFoundError("hortifruit not found")
}

type fixture struct {
	svc        *productService
	repo       *fakeProductRepo
	vendor     domain.Principal
	categoryID uuid.UUID
}

func newFixture() *fixture {
	vendorID := uuid.New()
	categoryID := uuid.New()
	repo := &fakeProductRepo{products: map[uuid.UUID]domain.Product{}}
	return &fixture{
		svc: NewProductService(repo,
			fakeCategoryRepo{ids: map[uuid.UUID]bool{categoryID: true}},
			fakeHortifruitRepo{ids: map[uuid.UUID]bool{vendorID: true}}),
		repo:       repo,
		vendor:     domain.Principal{SubjectID: vendorID, AccountType: domain.AccountTypeHortifruit, Role: domain.RoleHortifruit},
		categoryID: categoryID,
	}
}

func (f *fixture) newProduct() domain.Product {
	return domain.Product{
		Name:          "Banana prata",
		Price:         decimal.RequireFromString("8.90"),
		Unit:          domain.UnitKilogram,
		IsAvailable:   true,
		StockQuantity: 20,
		CategoryID:    f.categoryID,
	}
}

func TestCreateDerivesPromotionalPrice(t *testing.T) {
	f := newFixture()
	p := f.newProduct()
	p.DiscountPercentage = decimal.NewNullDecimal(decimal.NewFromInt(10))
	p.PromotionalPrice = decimal.NewNullDecimal(decimal.NewFromInt(1))

	created, err := f.svc.Create(context.Background(), f.vendor, p)
	require.NoError(t, err)
	assert.Equal(t, f.vendor.SubjectID, created.HortifruitID)
	require.True(t, created.PromotionalPrice.Valid)
	assert.Equal(t, "8.01", created.PromotionalPrice.Decimal.StringFixed(2))
}

func TestCreateValidates(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		mutate func(p *domain.Product)
		kind   error
	}{
		{"bad unit", func(p *domain.Product) { p.Unit = "dozen" }, domain.ErrBadRequest},
		{"negative price", func(p *domain.Product) { p.Price = decimal.NewFromInt(-1) }, domain.ErrBadRequest},
		{"negative stock", func(p *domain.Product) { p.StockQuantity = -1 }, domain.ErrBadRequest},
		{"discount over 100", func(p *domain.Product) {
			p.DiscountPercentage = decimal.NewNullDecimal(decimal.NewFromInt(101))
		}, domain.ErrBadRequest},
		{"missing category", func(p *domain.Product) { p.CategoryID = uuid.New() }, domain.ErrNotFound},
		{"foreign vendor", func(p *domain.Product) { p.HortifruitID = uuid.New() }, domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := f.newProduct()
			tt.mutate(&p)
			_, err := f.svc.Create(context.Background(), f.vendor, p)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestCreateByAdminNeedsVendor(t *testing.T) {
	f := newFixture()
	admin := domain.Principal{SubjectID: uuid.New(), AccountType: domain.AccountTypeUser, Role: domain.RoleAdmin}

	_, err := f.svc.Create(context.Background(), admin, f.newProduct())
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	p := f.newProduct()
	p.HortifruitID = f.vendor.SubjectID
	created, err := f.svc.Create(context.Background(), admin, p)
	require.NoError(t, err)
	assert.Equal(t, f.vendor.SubjectID, created.HortifruitID)

	p.HortifruitID = uuid.New()
	_, err = f.svc.Create(context.Background(), admin, p)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOwnershipOnWrites(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), f.vendor, f.newProduct())
	require.NoError(t, err)

	other := domain.Principal{SubjectID: uuid.New(), AccountType: domain.AccountTypeHortifruit, Role: domain.RoleHortifruit}
	name := "Banana nanica"

	_, err = f.svc.Update(context.Background(), other, created.ID, domain.ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.ToggleAvailability(context.Background(), other, created.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = f.svc.Delete(context.Background(), other, created.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	admin := domain.Principal{SubjectID: uuid.New(), Role: domain.RoleAdmin}
	updated, err := f.svc.Update(context.Background(), admin, created.ID, domain.ProductUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestUpdateRecomputesDiscount(t *testing.T) {
	f := newFixture()
	p := f.newProduct()
	p.DiscountPercentage = decimal.NewNullDecimal(decimal.NewFromInt(50))
	created, err := f.svc.Create(context.Background(), f.vendor, p)
	require.NoError(t, err)

	price := decimal.NewFromInt(20)
	updated, err := f.svc.Update(context.Background(), f.vendor, created.ID, domain.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "10.00", updated.PromotionalPrice.Decimal.StringFixed(2))

	cleared := decimal.NullDecimal{}
	updated, err = f.svc.Update(context.Background(), f.vendor, created.ID, domain.ProductUpdate{DiscountPercentage: &cleared})
	require.NoError(t, err)
	assert.False(t, updated.PromotionalPrice.Valid)
	assert.True(t, updated.EffectivePrice().Equal(price))
}

func TestToggles(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), f.vendor, f.newProduct())
	require.NoError(t, err)

	toggled, err := f.svc.ToggleAvailability(context.Background(), f.vendor, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsAvailable)

	toggled, err = f.svc.ToggleFeatured(context.Background(), f.vendor, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Featured)

	featured, err := f.svc.Featured(context.Background(), f.vendor.SubjectID, 0)
	require.NoError(t, err)
	assert.Len(t, featured, 1)
}

func TestListByVendorPaginates(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(context.Background(), f.vendor, f.newProduct())
		require.NoError(t, err)
	}

	page, err := f.svc.ListByVendor(context.Background(), f.vendor.SubjectID, domain.PageQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.False(t, page.Meta.HasNextPage)
	assert.True(t, page.Meta.HasPreviousPage)

	empty, err := f.svc.ListByVendor(context.Background(), uuid.New(), domain.PageQuery{})
	require.NoError(t, err)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 10, empty.Meta.Limit)
}

func TestExport(t *testing.T) {
	f := newFixture()
	p := f.newProduct()
	p.DiscountPercentage = decimal.NewNullDecimal(decimal.NewFromInt(10))
	_, err := f.svc.Create(context.Background(), f.vendor, p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(context.Background(), f.vendor, uuid.Nil, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Products", sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "Banana prata", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "8.90", sheet.Rows[1].Cells[5].Value)
	assert.Equal(t, "8.01", sheet.Rows[1].Cells[7].Value)
}

func TestExportRequiresVendor(t *testing.T) {
	f := newFixture()
	customer := domain.Principal{SubjectID: uuid.New(), AccountType: domain.AccountTypeUser, Role: domain.RoleUser}

	var buf bytes.Buffer
	err := f.svc.Export(context.Background(), customer, uuid.Nil, &buf)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, buf.Len())
}
