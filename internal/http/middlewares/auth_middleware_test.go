package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/healthvault/internal/auth"
	"github.com/geocoder89/healthvault/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f fakeVerifier) Verify(token string) (*auth.Claims, error) {
	return f.claims, f.err
}

func setup(v middlewares.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.NewAuthMiddleware(v).RequireAuth())
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		verifier   fakeVerifier
		wantStatus int
	}{
		{
			name:       "missing header is unauthorized",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-bearer header is unauthorized",
			authHeader: "Basic abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer token is unauthorized",
			authHeader: "Bearer   ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token is forbidden",
			authHeader: "Bearer not-a-token",
			verifier:   fakeVerifier{err: errors.New("bad signature")},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid token passes",
			authHeader: "Bearer good-token",
			verifier:   fakeVerifier{claims: &auth.Claims{UserID: "u1", Email: "a@b.c", Role: "OWNER"}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := setup(tc.verifier)

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)

			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}
