package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/healthvault/internal/auth"
	"github.com/geocoder89/healthvault/internal/http/handlers"
	"github.com/geocoder89/healthvault/internal/repo/memory"
	"github.com/geocoder89/healthvault/internal/security"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func newAuthRouter(users *memory.UsersRepo, jwt *auth.Manager) *gin.Engine {
	h := handlers.NewAuthHandler(users, users, jwt)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		seedEmail  string
		wantStatus int
		wantCode   string
		wantRole   string
	}{
		{
			name:       "success returns user and token",
			body:       `{"name":"Alice","email":"alice@example.com","password":"password-123","role":"OWNER"}`,
			wantStatus: http.StatusCreated,
			wantRole:   "OWNER",
		},
		{
			name:       "viewer registration",
			body:       `{"name":"Bob","email":"bob@example.com","password":"password-123","role":"VIEWER"}`,
			wantStatus: http.StatusCreated,
			wantRole:   "VIEWER",
		},
		{
			name:       "omitted role defaults to owner",
			body:       `{"name":"Alice","email":"alice@example.com","password":"password-123"}`,
			wantStatus: http.StatusCreated,
			wantRole:   "OWNER",
		},
		{
			name:       "duplicate email",
			body:       `{"name":"Alice","email":"alice@example.com","password":"password-123","role":"OWNER"}`,
			seedEmail:  "alice@example.com",
			wantStatus: http.StatusBadRequest,
			wantCode:   "email_taken",
		},
		{
			name:       "short password",
			body:       `{"name":"Alice","email":"alice@example.com","password":"short","role":"OWNER"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "bad role",
			body:       `{"name":"Alice","email":"alice@example.com","password":"password-123","role":"ADMIN"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "missing email",
			body:       `{"name":"Alice","password":"password-123","role":"OWNER"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			users := memory.NewUsersRepo()

			if tc.seedEmail != "" {
				if _, err := users.Create(context.Background(), "Seed", tc.seedEmail, "hash", "OWNER"); err != nil {
					t.Fatalf("seed failed: %v", err)
				}
			}

			jwt := auth.NewManager("test-secret", 0)
			r := newAuthRouter(users, jwt)

			w := postJSON(t, r, "/auth/register", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantCode != "" {
				var resp errorEnvelope

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal error body: %v", err)
				}

				if resp.Error.Code != tc.wantCode {
					t.Fatalf("got code %q, want %q", resp.Error.Code, tc.wantCode)
				}
				return
			}

			var resp authResponse

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal success body: %v", err)
			}

			if resp.Token == "" || resp.User.ID == "" {
				t.Fatalf("incomplete response: %s", w.Body.String())
			}

			if resp.User.Role != tc.wantRole {
				t.Fatalf("got role %q, want %q", resp.User.Role, tc.wantRole)
			}

			// token must resolve to the created user
			claims, err := jwt.Verify(resp.Token)

			if err != nil {
				t.Fatalf("returned token does not verify: %v", err)
			}

			if claims.UserID != resp.User.ID {
				t.Fatalf("token bound to %q, user is %q", claims.UserID, resp.User.ID)
			}
		})
	}
}

func TestRegisterNeverReturnsPasswordHash(t *testing.T) {
	users := memory.NewUsersRepo()
	r := newAuthRouter(users, auth.NewManager("test-secret", 0))

	w := postJSON(t, r, "/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password-123","role":"OWNER"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %s", w.Body.String())
	}

	if bytes.Contains(w.Body.Bytes(), []byte("passwordHash")) || bytes.Contains(w.Body.Bytes(), []byte("password_hash")) {
		t.Fatalf("response leaks the password hash: %s", w.Body.String())
	}
}

func TestLogin(t *testing.T) {
	users := memory.NewUsersRepo()

	hash, err := security.HashPassword("password-123")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if _, err := users.Create(context.Background(), "Alice", "alice@example.com", hash, "OWNER"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	jwt := auth.NewManager("test-secret", 0)
	r := newAuthRouter(users, jwt)

	t.Run("success", func(t *testing.T) {
		w := postJSON(t, r, "/auth/login", `{"email":"alice@example.com","password":"password-123"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		var resp authResponse

		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if _, err := jwt.Verify(resp.Token); err != nil {
			t.Fatalf("token does not verify: %v", err)
		}
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		wrongPass := postJSON(t, r, "/auth/login", `{"email":"alice@example.com","password":"nope-nope"}`)
		unknown := postJSON(t, r, "/auth/login", `{"email":"ghost@example.com","password":"password-123"}`)

		if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
			t.Fatalf("statuses: %d vs %d", wrongPass.Code, unknown.Code)
		}

		var a, b errorEnvelope

		if err := json.Unmarshal(wrongPass.Body.Bytes(), &a); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if err := json.Unmarshal(unknown.Body.Bytes(), &b); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if a.Error.Code != b.Error.Code || a.Error.Message != b.Error.Message {
			t.Fatalf("error bodies differ: %+v vs %+v", a.Error, b.Error)
		}
	})
}
