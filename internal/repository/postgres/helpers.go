package postgres

import (
	"errors"
	"fmt"
	"hortifood/domain"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// notFound maps gorm.ErrRecordNotFound to a domain NotFound and wraps any
// other failure.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError(what + " not found")
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}

// paginate applies limit and offset of a normalized page query.
func paginate(q domain.PageQuery) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit)
	}
}

// search matches term case-insensitively against name and description.
func search(term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		pattern := "%" + escapeLike(term) + "%"
		return db.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func isDomainError(err error) bool {
	var de *domain.Error
	return errors.As(err, &de)
}
