package middleware

import (
	"context"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"hortifood/pkg/utils"
	"net/http"
	"strings"
	"time"

	jsonres "hortifood/pkg/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// TokenParser verifies an access token and returns its claims
type TokenParser interface {
	ParseJWT(tokenString string) (*utils.JWTClaims, error)
}

// TokenValidator checks that a token still has a live session in Redis
type TokenValidator interface {
	ValidateTokenFromRedis(ctx context.Context, token string) (string, error)
}

// bearerToken extracts the token from the Authorization header, or returns
// the rejection message when the header is missing or malformed.
func bearerToken(c echo.Context) (string, string) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", "Missing authorization header"
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
		return "", "Invalid authorization format"
	}

	return tokenParts[1], ""
}

func principalFromClaims(claims *utils.JWTClaims) (domain.Principal, error) {
	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Principal{}, err
	}

	return domain.Principal{
		SubjectID:   subjectID,
		Email:       claims.Email,
		AccountType: claims.AccountType,
		Role:        claims.Role,
	}, nil
}

func setPrincipal(c echo.Context, principal domain.Principal, token string) {
	c.Set(principalKey, principal)
	c.Set("user_id", principal.SubjectID)
	c.Set("role", principal.Role)
	c.Set("token", token)
}

// AuthMiddleware accepts any validly signed, unexpired access token.
func AuthMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, reason := bearerToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", reason, nil,
				))
			}

			claims, err := parser.ParseJWT(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			principal, err := principalFromClaims(claims)
			if err != nil {
				logger.Error("Invalid subject in token", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			setPrincipal(c, principal, tokenString)

			return next(c)
		}
	}
}

// AuthMiddlewareWithRedis additionally requires the token to be the
// subject's current session, so logout takes effect before expiry.
func AuthMiddlewareWithRedis(parser TokenParser, tokenValidator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, reason := bearerToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", reason, nil,
				))
			}

			claims, err := parser.ParseJWT(tokenString)
			if err != nil {
				logger.Error("Failed to parse JWT", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			subjectID, err := tokenValidator.ValidateTokenFromRedis(ctx, tokenString)
			if err != nil {
				logger.Error("Token not found in Redis", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Token expired or invalid", nil,
				))
			}

			if subjectID != claims.Subject {
				logger.Error("Subject mismatch between JWT and Redis")
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			principal, err := principalFromClaims(claims)
			if err != nil {
				logger.Error("Invalid subject in token", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			setPrincipal(c, principal, tokenString)

			return next(c)
		}
	}
}

// PrincipalFrom returns the caller stored by the auth middleware.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	principal, ok := c.Get(principalKey).(domain.Principal)
	return principal, ok
}

// Require rejects callers whose role does not grant capability.
func Require(capability domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			if err := domain.Authorize(principal, capability); err != nil {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Insufficient permissions", nil,
				))
			}

			return next(c)
		}
	}
}

// SelfOrAdmin lets a caller reach /:id only for their own account unless
// they hold users:admin.
func SelfOrAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			if domain.Authorize(principal, domain.CapUsersAdmin) == nil {
				return next(c)
			}

			requestedID, err := uuid.Parse(c.Param("id"))
			if err != nil {
				return c.JSON(http.StatusBadRequest, jsonres.Error(
					"BAD_REQUEST", "Invalid user ID", nil,
				))
			}

			if requestedID != principal.SubjectID {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "You can only access your own data", nil,
				))
			}

			return next(c)
		}
	}
}
