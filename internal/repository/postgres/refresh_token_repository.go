package postgres

import (
	"context"
	"fmt"
	"hortifood/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	DB *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		DB: db,
	}
}

// lockSubject serializes token writes for one subject until the surrounding
// transaction ends.
func lockSubject(tx *gorm.DB, subjectID uuid.UUID) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", subjectID.String()).Error
}

func revokeLive(tx *gorm.DB, subjectID uuid.UUID) error {
	return tx.Model(&domain.RefreshToken{}).
		Where("subject_id = ? AND is_revoked = ?", subjectID, false).
		Update("is_revoked", true).Error
}

// Replace revokes every live token of the subject and stores token.
func (r *RefreshTokenRepository) Replace(ctx context.Context, token *domain.RefreshToken) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSubject(tx, token.SubjectID); err != nil {
			return err
		}

		if err := revokeLive(tx, token.SubjectID); err != nil {
			return err
		}

		return tx.Create(token).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// Rotate swaps the live token identified by oldHash for next. It fails with
// Unauthorized when oldHash was revoked in the meantime.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash string, next *domain.RefreshToken) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSubject(tx, next.SubjectID); err != nil {
			return err
		}

		result := tx.Model(&domain.RefreshToken{}).
			Where("token_hash = ? AND subject_id = ? AND is_revoked = ?", oldHash, next.SubjectID, false).
			Update("is_revoked", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.UnauthorizedError("refresh token revoked")
		}

		if err := revokeLive(tx, next.SubjectID); err != nil {
			return err
		}

		return tx.Create(next).Error
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return nil
}

func (r *RefreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (domain.RefreshToken, error) {
	var token domain.RefreshToken

	err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error
	if err != nil {
		return domain.RefreshToken{}, notFound(err, "refresh token")
	}

	return token, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	err := r.DB.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ?", id).
		Update("is_revoked", true).Error
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

func (r *RefreshTokenRepository) RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSubject(tx, subjectID); err != nil {
			return err
		}
		return revokeLive(tx, subjectID)
	})
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	return nil
}
