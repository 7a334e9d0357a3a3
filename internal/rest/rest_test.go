//go:build !integration

package rest

import (
	"encoding/json"
	"hortifood/domain"
	"hortifood/internal/middleware"
	"hortifood/pkg/utils"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsonres "hortifood/pkg/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e    *echo.Echo
	jwt  *utils.JWTManager
	auth echo.MiddlewareFunc
}

func newTestServer() *testServer {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	jwt := utils.NewJWTManager("rest-test-secret", time.Minute)
	return &testServer{e: e, jwt: jwt, auth: middleware.AuthMiddleware(jwt)}
}

func (s *testServer) token(t *testing.T, p domain.Principal) string {
	t.Helper()
	token, _, err := s.jwt.GenerateJWT(p.SubjectID.String(), p.Email, p.AccountType, p.Role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) jsonres.ErrorBody {
	t.Helper()
	var body jsonres.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func buyer() domain.Principal {
	return domain.Principal{SubjectID: uuid.New(), Email: "ana@example.com", AccountType: domain.AccountTypeUser, Role: domain.RoleUser}
}

func vendor() domain.Principal {
	return domain.Principal{SubjectID: uuid.New(), Email: "loja@example.com", AccountType: domain.AccountTypeHortifruit, Role: domain.RoleHortifruit}
}

func admin() domain.Principal {
	return domain.Principal{SubjectID: uuid.New(), Email: "admin@example.com", AccountType: domain.AccountTypeUser, Role: domain.RoleAdmin}
}
