package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"hortifood/pkg/metrics"
	"hortifood/pkg/utils"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MinPasswordLength = 6

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByPhone(ctx context.Context, phone string) (domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// HortifruitRepository contract interface
type HortifruitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Hortifruit, error)
	FindByEmail(ctx context.Context, email string) (domain.Hortifruit, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// RefreshTokenRepository contract interface
type RefreshTokenRepository interface {
	Replace(ctx context.Context, token *domain.RefreshToken) error
	Rotate(ctx context.Context, oldHash string, next *domain.RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (domain.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) error
}

// SessionStore is the optional access-token allow-list.
type SessionStore interface {
	StartSession(ctx context.Context, principal domain.Principal, token string, expiresAt time.Time) error
	EndSessions(ctx context.Context, subjectID uuid.UUID) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateJWT(subjectID, email, accountType, role string) (string, time.Time, error)
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

type Config struct {
	RefreshTTL       time.Duration
	ResetPasswordKey string
	AppDeploymentUrl string
}

type authService struct {
	userRepo       UserRepository
	hortifruitRepo HortifruitRepository
	tokenRepo      RefreshTokenRepository
	sessions       SessionStore
	issuer         TokenIssuer
	notifRepo      NotificationRepository
	cfg            Config
	now            func() time.Time
}

// NewAuthService wires the auth flows. sessions may be nil when no redis is
// configured.
func NewAuthService(
	userRepo UserRepository,
	hortifruitRepo HortifruitRepository,
	tokenRepo RefreshTokenRepository,
	sessions SessionStore,
	issuer TokenIssuer,
	notifRepo NotificationRepository,
	cfg Config,
) *authService {
	return &authService{
		userRepo:       userRepo,
		hortifruitRepo: hortifruitRepo,
		tokenRepo:      tokenRepo,
		sessions:       sessions,
		issuer:         issuer,
		notifRepo:      notifRepo,
		cfg:            cfg,
		now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// account resolves credentials by account type. Both unknown accounts and
// storage misses come back as domain NotFound.
func (s *authService) account(ctx context.Context, email, accountType string) (domain.Account, string, error) {
	switch accountType {
	case domain.AccountTypeUser:
		user, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return domain.Account{}, "", err
		}
		return user.Account(), user.Password, nil
	case domain.AccountTypeHortifruit:
		hortifruit, err := s.hortifruitRepo.FindByEmail(ctx, email)
		if err != nil {
			return domain.Account{}, "", err
		}
		if !hortifruit.IsActive {
			return domain.Account{}, "", domain.NotFoundError("hortifruit not found")
		}
		return hortifruit.Account(), hortifruit.Password, nil
	default:
		return domain.Account{}, "", domain.BadRequestError("invalid account type")
	}
}

func (s *authService) Login(ctx context.Context, email, password, accountType string) (domain.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when login")
		return domain.AuthResult{}, fmt.Errorf("context error: %w", err)
	}

	account, passwordHash, err := s.account(ctx, normalizeEmail(email), accountType)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(accountType, "failure").Inc()
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("login for unknown account", "account_type", accountType)
			return domain.AuthResult{}, domain.UnauthorizedError("invalid credentials")
		}
		logger.Error("failed to find account", err)
		return domain.AuthResult{}, err
	}

	if !utils.CheckPassword(password, passwordHash) {
		metrics.LoginAttempts.WithLabelValues(accountType, "failure").Inc()
		logger.Warn("password mismatch", "subject_id", account.ID.String())
		return domain.AuthResult{}, domain.UnauthorizedError("invalid credentials")
	}

	tokens, err := s.issue(ctx, account, "")
	if err != nil {
		return domain.AuthResult{}, err
	}

	metrics.LoginAttempts.WithLabelValues(accountType, "success").Inc()
	logger.Info("login success", "subject_id", account.ID.String(), "account_type", accountType)

	return domain.AuthResult{Tokens: tokens, Account: account}, nil
}

// Refresh exchanges a live refresh token for a new token pair. The presented
// token is revoked in the same transaction that stores its successor.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (domain.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when refresh token")
		return domain.AuthResult{}, fmt.Errorf("context error: %w", err)
	}

	tokenHash := hashRefreshToken(refreshToken)

	stored, err := s.tokenRepo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AuthResult{}, domain.UnauthorizedError("invalid refresh token")
		}
		logger.Error("failed to find refresh token", err)
		return domain.AuthResult{}, err
	}

	if stored.IsRevoked {
		logger.Warn("revoked refresh token presented", "subject_id", stored.SubjectID.String())
		return domain.AuthResult{}, domain.UnauthorizedError("refresh token revoked")
	}

	if stored.Expired(s.now()) {
		if err := s.tokenRepo.Revoke(ctx, stored.ID); err != nil {
			logger.Error("failed to revoke expired refresh token", err)
		}
		return domain.AuthResult{}, domain.UnauthorizedError("refresh token expired")
	}

	account, err := s.accountByID(ctx, stored.SubjectID, stored.AccountType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AuthResult{}, domain.UnauthorizedError("invalid refresh token")
		}
		logger.Error("failed to find token subject", err)
		return domain.AuthResult{}, err
	}

	tokens, err := s.issue(ctx, account, tokenHash)
	if err != nil {
		return domain.AuthResult{}, err
	}

	return domain.AuthResult{Tokens: tokens, Account: account}, nil
}

func (s *authService) Register(ctx context.Context, input domain.RegisterInput) (domain.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when register")
		return domain.AuthResult{}, fmt.Errorf("context error: %w", err)
	}

	if len(input.Password) < MinPasswordLength {
		logger.Error("Invalid user password")
		return domain.AuthResult{}, domain.BadRequestError("password must be at least 6 characters")
	}

	email := normalizeEmail(input.Email)

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		logger.Error("Email already exists")
		return domain.AuthResult{}, domain.ConflictError("email already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		logger.Error("failed to check email", err)
		return domain.AuthResult{}, err
	}

	if _, err := s.userRepo.FindByPhone(ctx, input.Phone); err == nil {
		logger.Error("Phone already exists")
		return domain.AuthResult{}, domain.ConflictError("phone already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		logger.Error("failed to check phone", err)
		return domain.AuthResult{}, err
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: string(passwordHash),
		Phone:    input.Phone,
		Role:     domain.RoleUser,
	}

	if err := s.userRepo.Create(ctx, &user); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.AuthResult{}, err
	}

	account := user.Account()

	tokens, err := s.issue(ctx, account, "")
	if err != nil {
		return domain.AuthResult{}, err
	}

	logger.Info("user registered", "subject_id", account.ID.String())

	return domain.AuthResult{Tokens: tokens, Account: account}, nil
}

func (s *authService) Me(ctx context.Context, principal domain.Principal) (domain.Account, error) {
	account, err := s.accountByID(ctx, principal.SubjectID, principal.AccountType)
	if err != nil {
		logger.Error("failed to find account", err)
		return domain.Account{}, err
	}

	return account, nil
}

// Logout revokes every refresh token and the live session of the caller.
func (s *authService) Logout(ctx context.Context, principal domain.Principal) error {
	if err := s.tokenRepo.RevokeAllForSubject(ctx, principal.SubjectID); err != nil {
		logger.Error("failed to revoke refresh tokens", err)
		return err
	}

	if s.sessions != nil {
		if err := s.sessions.EndSessions(ctx, principal.SubjectID); err != nil {
			logger.Error("failed to revoke session", err)
			return err
		}
	}

	logger.Info("logout success", "subject_id", principal.SubjectID.String())

	return nil
}

func (s *authService) accountByID(ctx context.Context, id uuid.UUID, accountType string) (domain.Account, error) {
	switch accountType {
	case domain.AccountTypeUser:
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return domain.Account{}, err
		}
		return user.Account(), nil
	case domain.AccountTypeHortifruit:
		hortifruit, err := s.hortifruitRepo.FindByID(ctx, id)
		if err != nil {
			return domain.Account{}, err
		}
		return hortifruit.Account(), nil
	default:
		return domain.Account{}, domain.BadRequestError("invalid account type")
	}
}

// issue signs an access token and stores a fresh refresh token. With a
// previous token hash it rotates, otherwise it replaces every live token.
func (s *authService) issue(ctx context.Context, account domain.Account, previousHash string) (domain.TokenPair, error) {
	accessToken, expiresAt, err := s.issuer.GenerateJWT(account.ID.String(), account.Email, account.AccountType, account.Role)
	if err != nil {
		logger.Error("Failed to generated token", err)
		return domain.TokenPair{}, fmt.Errorf("failed to generate token: %w", err)
	}

	refreshToken := uuid.NewString() + uuid.NewString()
	stored := domain.RefreshToken{
		TokenHash:   hashRefreshToken(refreshToken),
		SubjectID:   account.ID,
		AccountType: account.AccountType,
		ExpiresAt:   s.now().Add(s.cfg.RefreshTTL),
	}

	if previousHash == "" {
		err = s.tokenRepo.Replace(ctx, &stored)
	} else {
		err = s.tokenRepo.Rotate(ctx, previousHash, &stored)
	}
	if err != nil {
		logger.Error("failed to store refresh token", err)
		return domain.TokenPair{}, err
	}

	if s.sessions != nil {
		principal := domain.Principal{
			SubjectID:   account.ID,
			Email:       account.Email,
			AccountType: account.AccountType,
			Role:        account.Role,
		}
		if err := s.sessions.StartSession(ctx, principal, accessToken, expiresAt); err != nil {
			logger.Error("failed to store session", err)
			return domain.TokenPair{}, err
		}
	}

	return domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(expiresAt.Sub(s.now()).Round(time.Second).Seconds()),
	}, nil
}
