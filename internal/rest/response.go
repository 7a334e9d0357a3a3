package rest

import (
	"errors"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	jsonres "hortifood/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var (
	phonePattern = regexp.MustCompile(`^\d{10,11}$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitOrSign  = regexp.MustCompile(`[\d\W]`)
)

// newValidator returns a validator with the project's custom tags:
// phone (10 or 11 digits) and strongpassword (upper, lower and a digit or symbol).
func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		return upperPattern.MatchString(pw) && lowerPattern.MatchString(pw) && digitOrSign.MatchString(pw)
	})

	return v
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, jsonres.Error("BAD_REQUEST", message, nil))
}

func validationFailed(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest(c, err.Error())
	}

	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}

	return c.JSON(http.StatusBadRequest, jsonres.Error("VALIDATION_ERROR", "request validation failed", details))
}

// errorResponse maps a component error to its status code. Errors that do not
// carry a domain kind are infrastructure failures and never leak their text.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, jsonres.Error("NOT_FOUND", err.Error(), nil))
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, jsonres.Error("CONFLICT", err.Error(), nil))
	case errors.Is(err, domain.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, jsonres.Error("BAD_REQUEST", err.Error(), nil))
	case errors.Is(err, domain.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", err.Error(), nil))
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, jsonres.Error("FORBIDDEN", err.Error(), nil))
	}

	logger.Error("internal error", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, jsonres.Error(
		"INTERNAL_SERVER_ERROR", "Internal server error", nil,
	))
}

func paramUUID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, jsonres.Error(
		"UNAUTHORIZED", "User not authenticated", nil,
	))
}

func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// pageQuery reads page, limit, search, sort and order. Out-of-range values
// are clamped later by the listing's normalizer.
func pageQuery(c echo.Context) domain.PageQuery {
	return domain.PageQuery{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Search: c.QueryParam("search"),
		Sort:   c.QueryParam("sort"),
		Order:  strings.ToUpper(c.QueryParam("order")),
	}
}
