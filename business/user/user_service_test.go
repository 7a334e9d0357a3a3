//go:build !integration

package user

import (
	"context"
	"hortifood/domain"
	"hortifood/pkg/utils"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.BcryptCost = 4
}

type favoriteKey struct{ user, product uuid.UUID }

type fakeUserRepo struct {
	users     map[uuid.UUID]domain.User
	favorites map[favoriteKey]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     map[uuid.UUID]domain.User{},
		favorites: map[favoriteKey]bool{},
	}
}

func (r *fakeUserRepo) add(name, email, phone string) domain.User {
	u := domain.User{ID: uuid.New(), Name: name, Email: email, Phone: phone, Role: domain.RoleUser}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return domain.User{}, domain.NotFoundError("user not found")
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.NotFoundError("user not found")
}

func (r *fakeUserRepo) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return domain.User{}, domain.NotFoundError("user not found")
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return domain.NotFoundError("user not found")
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) AddFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	key := favoriteKey{userID, productID}
	if r.favorites[key] {
		return false, nil
	}
	r.favorites[key] = true
	return true, nil
}

func (r *fakeUserRepo) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	key := favoriteKey{userID, productID}
	if !r.favorites[key] {
		return false, nil
	}
	delete(r.favorites, key)
	return true, nil
}

func (r *fakeUserRepo) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Product, error) {
	var out []domain.Product
	for key := range r.favorites {
		if key.user == userID {
			out = append(out, domain.Product{ID: key.product})
		}
	}
	return out, nil
}

type fakeProductRepo struct{ ids map[uuid.UUID]bool }

func (r fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if r.ids[id] {
		return domain.Product{ID: id}, nil
	}
	return domain.Product{}, domain.NotFoundError("product not found")
}

func TestUpdateUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, fakeProductRepo{})
	ana := repo.add("Ana", "ana@example.com", "111")
	bia := repo.add("Bia", "bia@example.com", "222")

	email := " ANA.SOUZA@example.com "
	password := "newsecret"
	updated, err := svc.UpdateUser(context.Background(), ana.ID, domain.UserUpdate{Email: &email, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "ana.souza@example.com", updated.Email)
	assert.True(t, utils.CheckPassword("newsecret", repo.users[ana.ID].Password))

	_, err = svc.UpdateUser(context.Background(), ana.ID, domain.UserUpdate{Email: &bia.Email})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.UpdateUser(context.Background(), ana.ID, domain.UserUpdate{Phone: &bia.Phone})
	assert.ErrorIs(t, err, domain.ErrConflict)

	short := "123"
	_, err = svc.UpdateUser(context.Background(), ana.ID, domain.UserUpdate{Password: &short})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.UpdateUser(context.Background(), uuid.New(), domain.UserUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, fakeProductRepo{})
	ana := repo.add("Ana", "ana@example.com", "111")

	require.NoError(t, svc.DeleteUser(context.Background(), ana.ID))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), ana.ID), domain.ErrNotFound)

	users, err := svc.GetAllUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestFavorites(t *testing.T) {
	repo := newFakeUserRepo()
	productID := uuid.New()
	svc := NewUserService(repo, fakeProductRepo{ids: map[uuid.UUID]bool{productID: true}})
	ana := repo.add("Ana", "ana@example.com", "111")

	require.NoError(t, svc.AddFavorite(context.Background(), ana.ID, productID))
	assert.ErrorIs(t, svc.AddFavorite(context.Background(), ana.ID, productID), domain.ErrConflict)
	assert.ErrorIs(t, svc.AddFavorite(context.Background(), ana.ID, uuid.New()), domain.ErrNotFound)

	favorites, err := svc.ListFavorites(context.Background(), ana.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, productID, favorites[0].ID)

	require.NoError(t, svc.RemoveFavorite(context.Background(), ana.ID, productID))
	assert.ErrorIs(t, svc.RemoveFavorite(context.Background(), ana.ID, productID), domain.ErrNotFound)

	favorites, err = svc.ListFavorites(context.Background(), ana.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}
