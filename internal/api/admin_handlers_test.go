package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookshelf-go/bookshelf/internal/jobs"
	"github.com/bookshelf-go/bookshelf/internal/models"
	"github.com/bookshelf-go/bookshelf/internal/testutil"
)

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	server, _, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.CookieForUser(t, server, "plainuser", "password", "user")

	req, _ := http.NewRequest("GET", "/api/admin/users", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for non-admin, got %d", rr.Code)
	}
}

func TestAdminUserManagement(t *testing.T) {
	server, _, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.CookieForUser(t, server, "admin", "password", "admin")

	do := func(method, path string, payload interface{}) *httptest.ResponseRecorder {
		var body *bytes.Buffer = bytes.NewBuffer(nil)
		if payload != nil {
			b, _ := json.Marshal(payload)
			body = bytes.NewBuffer(b)
		}
		req, _ := http.NewRequest(method, path, body)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	var created models.User
	t.Run("Create user", func(t *testing.T) {
		rr := do("POST", "/api/admin/users", map[string]string{
			"username": "bob", "password": "hunter2", "role": "user",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Create user failed: %d %s", rr.Code, rr.Body.String())
		}
		json.Unmarshal(rr.Body.Bytes(), &created)
		if created.Username != "bob" || created.Role != "user" {
			t.Errorf("Unexpected created user: %+v", created)
		}
	})

	t.Run("Duplicate username conflicts", func(t *testing.T) {
		rr := do("POST", "/api/admin/users", map[string]string{
			"username": "bob", "password": "hunter2", "role": "user",
		})
		if rr.Code != http.StatusConflict {
			t.Fatalf("Expected 409 for duplicate username, got %d", rr.Code)
		}
	})

	t.Run("Invalid role rejected", func(t *testing.T) {
		rr := do("POST", "/api/admin/users", map[string]string{
			"username": "eve", "password": "pw", "role": "superuser",
		})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400 for invalid role, got %d", rr.Code)
		}
	})

	t.Run("List users", func(t *testing.T) {
		rr := do("GET", "/api/admin/users", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("List users failed: %d", rr.Code)
		}
		var users []*models.User
		json.Unmarshal(rr.Body.Bytes(), &users)
		if len(users) < 2 {
			t.Errorf("Expected at least admin and bob, got %d users", len(users))
		}
	})

	t.Run("Update user", func(t *testing.T) {
		rr := do("PUT", "/api/admin/users/"+itoa(created.ID), map[string]string{
			"username": "bob", "role": "admin",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("Update user failed: %d", rr.Code)
		}
		user, err := server.Store().GetUserByID(created.ID)
		if err != nil {
			t.Fatalf("Failed to reload user: %v", err)
		}
		if user.Role != "admin" {
			t.Errorf("Role was not updated, got %q", user.Role)
		}
	})

	t.Run("Delete user", func(t *testing.T) {
		rr := do("DELETE", "/api/admin/users/"+itoa(created.ID), nil)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("Delete user failed: %d", rr.Code)
		}
	})
}

func TestAdminJobEndpoints(t *testing.T) {
	server, _, app := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.CookieForUser(t, server, "jobadmin", "password", "admin")

	ran := make(chan struct{}, 1)
	app.JobManager().Register("noop", func(ctx jobs.JobContext) {
		ran <- struct{}{}
	})

	t.Run("Job status", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/admin/jobs/status", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Job status failed: %d", rr.Code)
		}
		var statuses []*jobs.JobStatus
		json.Unmarshal(rr.Body.Bytes(), &statuses)
		if len(statuses) != 1 || statuses[0].Name != "noop" {
			t.Errorf("Unexpected statuses: %+v", statuses)
		}
	})

	t.Run("Run job", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"job_name": "noop"})
		req, _ := http.NewRequest("POST", "/api/admin/jobs/run", bytes.NewBuffer(body))
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusAccepted {
			t.Fatalf("Run job failed: %d %s", rr.Code, rr.Body.String())
		}
		<-ran
	})

	t.Run("Run unknown job", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"job_name": "missing"})
		req, _ := http.NewRequest("POST", "/api/admin/jobs/run", bytes.NewBuffer(body))
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusConflict {
			t.Fatalf("Expected 409 for unknown job, got %d", rr.Code)
		}
	})
}
