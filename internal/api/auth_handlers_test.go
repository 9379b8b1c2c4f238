package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookshelf-go/bookshelf/internal/auth"
	"github.com/bookshelf-go/bookshelf/internal/models"
	"github.com/bookshelf-go/bookshelf/internal/testutil"
)

func TestAuthHandlers(t *testing.T) {
	server, _, _ := testutil.SetupTestServer(t)
	router := server.Router()

	passwordHash, _ := auth.HashPassword("secret")
	if _, err := server.Store().CreateUser("alice", passwordHash, "user"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	login := func(username, password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"username": username, "password": password})
		req, _ := http.NewRequest("POST", "/api/users/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Login success sets session cookie", func(t *testing.T) {
		rr := login("alice", "secret")
		if rr.Code != http.StatusOK {
			t.Fatalf("Login failed: %d", rr.Code)
		}
		var sessionCookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == "session_token" {
				sessionCookie = c
			}
		}
		if sessionCookie == nil || sessionCookie.Value == "" {
			t.Fatal("No session cookie set on login")
		}

		// The cookie authenticates /api/users/me.
		req, _ := http.NewRequest("GET", "/api/users/me", nil)
		req.AddCookie(sessionCookie)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Me endpoint failed: %d", rr.Code)
		}
		var user models.User
		json.Unmarshal(rr.Body.Bytes(), &user)
		if user.Username != "alice" {
			t.Errorf("Expected alice, got %q", user.Username)
		}
	})

	t.Run("Wrong password rejected", func(t *testing.T) {
		rr := login("alice", "wrong")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401 for wrong password, got %d", rr.Code)
		}
	})

	t.Run("Unknown user rejected", func(t *testing.T) {
		rr := login("mallory", "secret")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401 for unknown user, got %d", rr.Code)
		}
	})

	t.Run("Logout invalidates session", func(t *testing.T) {
		rr := login("alice", "secret")
		var sessionCookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == "session_token" {
				sessionCookie = c
			}
		}

		req, _ := http.NewRequest("POST", "/api/users/logout", nil)
		req.AddCookie(sessionCookie)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Logout failed: %d", rr.Code)
		}

		req, _ = http.NewRequest("GET", "/api/users/me", nil)
		req.AddCookie(sessionCookie)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401 after logout, got %d", rr.Code)
		}
	})
}
