package hortifruit

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

// HortifruitRepository contract interface
type HortifruitRepository interface {
	Create(ctx context.Context, hortifruit *domain.Hortifruit) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error)
	FindByEmail(ctx context.Context, email string) (domain.Hortifruit, error)
	FindByDocument(ctx context.Context, document string) (domain.Hortifruit, error)
	FindAll(ctx context.Context, filter domain.HortifruitFilter) ([]domain.Hortifruit, int64, error)
	Update(ctx context.Context, hortifruit *domain.Hortifruit) error
	UpdateOperatingStatus(ctx context.Context, id uuid.UUID, isOpen bool) error
	AddRating(ctx context.Context, id uuid.UUID, rating int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type hortifruitService struct {
	hortifruitRepo HortifruitRepository
}

func NewHortifruitService(hortifruitRepo HortifruitRepository) *hortifruitService {
	return &hortifruitService{
		hortifruitRepo: hortifruitRepo,
	}
}

// ensureUnique fails with Conflict when email or document belongs to a
// hortifruit other than exceptID.
func (s *hortifruitService) ensureUnique(ctx context.Context, email, document string, exceptID uuid.UUID) error {
	if email != "" {
		existing, err := s.hortifruitRepo.FindByEmail(ctx, email)
		if err == nil && existing.ID != exceptID {
			return domain.ConflictError("email already registered")
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Error("failed to check hortifruit email", err)
			return err
		}
	}

	if document != "" {
		existing, err := s.hortifruitRepo.FindByDocument(ctx, document)
		if err == nil && existing.ID != exceptID {
			return domain.ConflictError("document already registered")
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Error("failed to check hortifruit document", err)
			return err
		}
	}

	return nil
}

func (s *hortifruitService) Create(ctx context.Context, hortifruit domain.Hortifruit) (domain.Hortifruit, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create hortifruit")
		return domain.Hortifruit{}, fmt.Errorf("context error: %w", err)
	}

	hortifruit.Email = strings.ToLower(strings.TrimSpace(hortifruit.Email))
	hortifruit.Name = strings.TrimSpace(hortifruit.Name)

	if hortifruit.Name == "" || hortifruit.Email == "" || hortifruit.Document == "" {
		return domain.Hortifruit{}, domain.BadRequestError("name, email and document are required")
	}

	if len(hortifruit.Password) < MinPasswordLength {
		return domain.Hortifruit{}, domain.BadRequestError("password must be at least 6 characters")
	}

	if hortifruit.MinOrderValue.IsNegative() {
		return domain.Hortifruit{}, domain.BadRequestError("min order value must not be negative")
	}

	if err := s.ensureUnique(ctx, hortifruit.Email, hortifruit.Document, uuid.Nil); err != nil {
		return domain.Hortifruit{}, err
	}

	passwordHash, err := utils.HashPassword(hortifruit.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.Hortifruit{}, fmt.Errorf("failed to hash password: %w", err)
	}

	hortifruit.ID = uuid.Nil
	hortifruit.Password = string(passwordHash)
	hortifruit.Role = domain.RoleHortifruit
	hortifruit.IsActive = true
	hortifruit.Rating = 0
	hortifruit.TotalRatings = 0

	if err := s.hortifruitRepo.Create(ctx, &hortifruit); err != nil {
		logger.Error("failed to create hortifruit", err)
		return domain.Hortifruit{}, err
	}

	logger.Info("hortifruit created", "hortifruit_id", hortifruit.ID.String())

	return hortifruit, nil
}

func (s *hortifruitService) FindAll(ctx context.Context, filter domain.HortifruitFilter) (domain.Page[domain.Hortifruit], error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when list hortifruits")
		return domain.Page[domain.Hortifruit]{}, fmt.Errorf("context error: %w", err)
	}

	filter.PageQuery = domain.NormalizeHortifruitQuery(filter.PageQuery)

	hortifruits, total, err := s.hortifruitRepo.FindAll(ctx, filter)
	if err != nil {
		logger.Error("failed to find hortifruits", err)
		return domain.Page[domain.Hortifruit]{}, err
	}

	return domain.NewPage(hortifruits, total, filter.PageQuery), nil
}

func (s *hortifruitService) FindOne(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error) {
	hortifruit, err := s.hortifruitRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find hortifruit", err)
		return domain.Hortifruit{}, err
	}

	return hortifruit, nil
}

func canOperate(principal domain.Principal, id uuid.UUID) error {
	if principal.IsAdmin() {
		return nil
	}

	if principal.AccountType != domain.AccountTypeHortifruit || principal.SubjectID != id {
		return domain.ForbiddenError("you can only manage your own store")
	}

	return nil
}

func (s *hortifruitService) Update(ctx context.Context, principal domain.Principal, id uuid.UUID, update domain.HortifruitUpdate) (domain.Hortifruit, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when update hortifruit")
		return domain.Hortifruit{}, fmt.Errorf("context error: %w", err)
	}

	if err := canOperate(principal, id); err != nil {
		return domain.Hortifruit{}, err
	}

	if update.IsActive != nil && !principal.IsAdmin() {
		return domain.Hortifruit{}, domain.ForbiddenError("only admins can change the active flag")
	}

	hortifruit, err := s.hortifruitRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find hortifruit", err)
		return domain.Hortifruit{}, err
	}

	email, document := "", ""
	if update.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*update.Email))
		update.Email = &email
	}
	if update.Document != nil {
		document = *update.Document
	}

	if err := s.ensureUnique(ctx, email, document, id); err != nil {
		return domain.Hortifruit{}, err
	}

	if err := applyUpdate(&hortifruit, update); err != nil {
		return domain.Hortifruit{}, err
	}

	if err := s.hortifruitRepo.Update(ctx, &hortifruit); err != nil {
		logger.Error("failed to update hortifruit", err)
		return domain.Hortifruit{}, err
	}

	return s.hortifruitRepo.FindByID(ctx, id)
}

func applyUpdate(h *domain.Hortifruit, update domain.HortifruitUpdate) error {
	if update.Name != nil {
		h.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		h.Email = *update.Email
	}
	if update.Phone != nil {
		h.Phone = *update.Phone
	}
	if update.Document != nil {
		h.Document = *update.Document
	}
	if update.MinOrderValue != nil {
		if update.MinOrderValue.IsNegative() {
			return domain.BadRequestError("min order value must not be negative")
		}
		h.MinOrderValue = *update.MinOrderValue
	}
	if update.LogoURL != nil {
		h.LogoURL = *update.LogoURL
	}
	if update.BannerURL != nil {
		h.BannerURL = *update.BannerURL
	}
	if update.Description != nil {
		h.Description = *update.Description
	}
	if update.IsActive != nil {
		h.IsActive = *update.IsActive
	}
	if update.Password != nil {
		if len(*update.Password) < MinPasswordLength {
			return domain.BadRequestError("password must be at least 6 characters")
		}
		passwordHash, err := utils.HashPassword(*update.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return fmt.Errorf("failed to hash password: %w", err)
		}
		h.Password = string(passwordHash)
	}
	if update.Address != nil {
		h.Address = update.Address
	}

	if h.Name == "" {
		return domain.BadRequestError("name is required")
	}

	return nil
}

func (s *hortifruitService) UpdateOperatingStatus(ctx context.Context, principal domain.Principal, id uuid.UUID, isOpen bool) (domain.Hortifruit, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when update operating status")
		return domain.Hortifruit{}, fmt.Errorf("context error: %w", err)
	}

	if err := canOperate(principal, id); err != nil {
		return domain.Hortifruit{}, err
	}

	if err := s.hortifruitRepo.UpdateOperatingStatus(ctx, id, isOpen); err != nil {
		logger.Error("failed to update operating status", err)
		return domain.Hortifruit{}, err
	}

	logger.Info("operating status changed", "hortifruit_id", id.String(), "is_open", isOpen)

	return s.hortifruitRepo.FindByID(ctx, id)
}

// AddRating folds a 1..5 rating into the store's running average.
func (s *hortifruitService) AddRating(ctx context.Context, id uuid.UUID, rating int) (domain.Hortifruit, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when add rating")
		return domain.Hortifruit{}, fmt.Errorf("context error: %w", err)
	}

	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.Hortifruit{}, domain.BadRequestError("rating must be between 1 and 5")
	}

	if err := s.hortifruitRepo.AddRating(ctx, id, rating); err != nil {
		logger.Error("failed to add rating", err)
		return domain.Hortifruit{}, err
	}

	return s.hortifruitRepo.FindByID(ctx, id)
}

func (s *hortifruitService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when delete hortifruit")
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.hortifruitRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete hortifruit", err)
		return err
	}

	return nil
}
