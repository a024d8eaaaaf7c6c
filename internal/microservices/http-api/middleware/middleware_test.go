package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
	"yamdb/internal/shared"
	"yamdb/internal/testutil"
)

type stubAuth struct {
	claims map[string]*shared.AuthClaims
}

func (s stubAuth) Signup(context.Context, string, string) (*models.User, error) { return nil, nil }
func (s stubAuth) Token(context.Context, string, string) (string, error)        { return "", nil }
func (s stubAuth) ValidateToken(token string) (*shared.AuthClaims, error) {
	if c, ok := s.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(t *testing.T, optional bool) (*gin.Engine, *models.User) {
	t.Helper()
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ann", permission.RoleModerator)
	auth := stubAuth{claims: map[string]*shared.AuthClaims{
		"good":  {UserID: user.ID, Type: shared.TokenTypeAccess},
		"ghost": {UserID: "00000000-0000-0000-0000-000000000000", Type: shared.TokenTypeAccess},
	}}
	users := repository.NewUserRepository(db)

	mw := AuthMiddleware(auth, users, nil)
	if optional {
		mw = OptionalAuth(auth, users, nil)
	}

	r := gin.New()
	r.GET("/whoami", mw, func(c *gin.Context) {
		actor := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"username": actor.Username, "role": actor.Role})
	})
	return r, user
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, _ := setupAuthRouter(t, false)

	w := doGet(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"ann","role":"moderator"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer bad").Code)

	w = doGet(r, "Bearer ghost")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), apperr.CodeUnauthorized)
}

func TestOptionalAuth(t *testing.T) {
	r, _ := setupAuthRouter(t, true)

	w := doGet(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"","role":""}`, w.Body.String())

	assert.Equal(t, http.StatusOK, doGet(r, "Bearer good").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer bad").Code)
}

func TestRateLimit(t *testing.T) {
	l := NewIPRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/auth/token", RateLimit(l, nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{204, 204, 429}, codes)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "other clients have their own bucket")
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	require.True(t, l.Allow("1.1.1.1"))
	l.clients["1.1.1.1"].lastSeen = time.Now().Add(-time.Hour)

	l.Cleanup(time.Minute)
	assert.Empty(t, l.clients)
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		WriteError(c, nil, errors.New("pq: connection reset"))
	})
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.Contains(t, w.Body.String(), apperr.CodeInternal)
}
