package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rebertiger/student-chat/internal/config"
	"github.com/rebertiger/student-chat/internal/upload"
	"github.com/rebertiger/student-chat/internal/ws"
)

func testConfig() config.Config {
	return config.Config{
		Port:                  "0",
		DatabaseDSN:           "unused",
		JWTSecret:             "test-secret",
		Env:                   "dev",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLDays:   7,
		UploadDir:             "uploads",
		MaxUploadMB:           10,
	}
}

// newTestRouter builds the router without a database. Only routes that fail
// before their first query can be exercised this way.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	uploads, err := upload.NewStore(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("upload store: %v", err)
	}
	return SetupRouter(testConfig(), nil, ws.NewHub(), uploads)
}

func TestHealthz(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthedRoutes_MissingToken(t *testing.T) {
	engine := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/rooms"},
		{http.MethodPost, "/api/rooms"},
		{http.MethodGet, "/api/profile"},
		{http.MethodGet, "/api/subjects"},
		{http.MethodGet, "/api/messages/1"},
		{http.MethodDelete, "/api/auth/delete"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestAuthedRoutes_MalformedToken(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for malformed token, got %d", w.Code)
	}
}

func TestRegister_InvalidPayload(t *testing.T) {
	engine := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"missing full name", `{"email":"a@b.edu","password":"secret"}`},
		{"missing email", `{"password":"secret","full_name":"Test User"}`},
		{"short password", `{"email":"a@b.edu","password":"x","full_name":"Test User"}`},
		{"not json", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestLogin_InvalidPayload(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
