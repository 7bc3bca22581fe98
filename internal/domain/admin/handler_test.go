package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollos-hideaway/hideaway-api/internal/middleware"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/jwt"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/password"
)

func newTestRouter(t *testing.T, hash string) (http.Handler, *jwt.Service) {
	t.Helper()
	jwtSvc := jwt.NewService("test-secret", time.Hour)
	h := NewHandler(NewService("Owner@ApollosHideaway.com", hash, jwtSvc))

	bookings := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	return h.Routes(jwtSvc, nil, Sections{Bookings: bookings}), jwtSvc
}

func postLogin(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestLogin(t *testing.T) {
	hash, err := password.Hash("olive-grove")
	require.NoError(t, err)
	router, jwtSvc := newTestRouter(t, hash)

	rr := postLogin(router, `{"email":"owner@apolloshideaway.com","password":"olive-grove"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, int64(3600), out.ExpiresIn)

	claims, err := jwtSvc.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "owner@apolloshideaway.com", claims.Email)
	assert.Equal(t, middleware.RoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	hash, err := password.Hash("olive-grove")
	require.NoError(t, err)
	router, _ := newTestRouter(t, hash)

	rr := postLogin(router, `{"email":"owner@apolloshideaway.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid email or password")

	rr = postLogin(router, `{"email":"someone@else.com","password":"olive-grove"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postLogin(router, `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestLoginDisabledWithoutCredentials(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rr := postLogin(router, `{"email":"owner@apolloshideaway.com","password":"olive-grove"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestProtectedSections(t *testing.T) {
	router, jwtSvc := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	guest, _, err := jwtSvc.GenerateAccessToken("guest@example.com", "guest")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+guest)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	token, _, err := jwtSvc.GenerateAccessToken("owner@apolloshideaway.com", middleware.RoleAdmin)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var me MeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "owner@apolloshideaway.com", me.Email)
	assert.Equal(t, middleware.RoleAdmin, me.Role)
}
