package user

import (
	"context"
	"errors"
	"fmt"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"hortifood/pkg/utils"
	"strings"

	"github.com/google/uuid"
)

const MinPasswordLength = 6

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByPhone(ctx context.Context, phone string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Product, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

type userService struct {
	userRepo    UserRepository
	productRepo ProductRepository
}

func NewUserService(userRepo UserRepository, productRepo ProductRepository) *userService {
	return &userService{
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all users")
		return nil, fmt.Errorf("context error: %w", err)
	}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all users", err)
		return nil, err
	}

	if users == nil {
		users = []domain.User{}
	}

	return users, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get user by id")
		return domain.User{}, fmt.Errorf("context error: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find user", err)
		return domain.User{}, err
	}

	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, update domain.UserUpdate) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when update user")
		return domain.User{}, fmt.Errorf("context error: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find user", err)
		return domain.User{}, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return domain.User{}, domain.BadRequestError("name is required")
		}
		user.Name = name
	}

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if email != user.Email {
			existing, err := s.userRepo.FindByEmail(ctx, email)
			if err == nil && existing.ID != id {
				logger.Error("Email already exists")
				return domain.User{}, domain.ConflictError("email already registered")
			}
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				logger.Error("failed to check email", err)
				return domain.User{}, err
			}
		}
		user.Email = email
	}

	if update.Phone != nil && *update.Phone != user.Phone {
		existing, err := s.userRepo.FindByPhone(ctx, *update.Phone)
		if err == nil && existing.ID != id {
			logger.Error("Phone already exists")
			return domain.User{}, domain.ConflictError("phone already registered")
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Error("failed to check phone", err)
			return domain.User{}, err
		}
		user.Phone = *update.Phone
	}

	if update.Password != nil {
		if len(*update.Password) < MinPasswordLength {
			return domain.User{}, domain.BadRequestError("password must be at least 6 characters")
		}
		passwordHash, err := utils.HashPassword(*update.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(passwordHash)
	}

	if err := s.userRepo.Update(ctx, &user); err != nil {
		logger.Error("failed to update user", err)
		return domain.User{}, err
	}

	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when delete user")
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete user", err)
		return err
	}

	logger.Info("user deleted", "user_id", id.String())

	return nil
}

func (s *userService) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when add favorite")
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		logger.Error("failed to find product", err)
		return err
	}

	added, err := s.userRepo.AddFavorite(ctx, userID, productID)
	if err != nil {
		logger.Error("failed to add favorite", err)
		return err
	}

	if !added {
		return domain.ConflictError("product already in favorites")
	}

	return nil
}

func (s *userService) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	removed, err := s.userRepo.RemoveFavorite(ctx, userID, productID)
	if err != nil {
		logger.Error("failed to remove favorite", err)
		return err
	}

	if !removed {
		return domain.NotFoundError("product not in favorites")
	}

	return nil
}

func (s *userService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Product, error) {
	products, err := s.userRepo.ListFavorites(ctx, userID)
	if err != nil {
		logger.Error("failed to list favorites", err)
		return nil, err
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}
