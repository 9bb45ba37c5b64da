package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/metrics"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter builds the full router over a fresh in-memory database
func newTestRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testutil.TestConfig()
	cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}
	cfg.LoginRatePerMinute = 3
	cfg.MetricsEnabled = true
	config.SetConfig(cfg)
	testutil.NewTestDB(t)

	reg := prometheus.NewRegistry()
	metrics.Set(metrics.NewMetrics(reg))

	return setupRouter(cfg, reg), cfg
}

// TestHealthEndpointIntegration tests the /api/v1/health endpoint with full routing
func TestHealthEndpointIntegration(t *testing.T) {
	router, _ := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status 200 OK")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Point of sale API is running", response["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "every response carries a request id")
}

// TestHealthEndpointMethod tests that only GET method is allowed
func TestHealthEndpointMethod(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, method := range []string{"POST", "PUT", "DELETE"} {
		req, _ := http.NewRequest(method, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s should not be allowed", method)
	}
}

// TestAPIV1Prefix tests that the endpoint requires /api/v1 prefix
func TestAPIV1Prefix(t *testing.T) {
	router, _ := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "Endpoint should require /api/v1 prefix")

	req, _ = http.NewRequest("GET", "/api/v1/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "Endpoint should work with /api/v1 prefix")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/api/v1/user/me", "/api/v1/phone/all", "/api/v1/pool/all", "/api/v1/dashboard/summary"} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRoleGates(t *testing.T) {
	router, cfg := newTestRouter(t)
	db := config.GetDB()

	manager := testutil.CreateUser(t, db, "mia@example.com", "long-enough", models.RoleManager, nil)
	admin := testutil.CreateUser(t, db, "ada@example.com", "long-enough", models.RoleAdmin, nil)
	officer := testutil.CreateUser(t, db, "cole@example.com", "long-enough", models.RoleCollectionOfficer, nil)

	tests := []struct {
		name         string
		user         *models.User
		method       string
		path         string
		expectedCode int
	}{
		{"manager cannot list suppliers", &manager, "GET", "/api/v1/supplier/all", http.StatusForbidden},
		{"admin lists suppliers", &admin, "GET", "/api/v1/supplier/all", http.StatusOK},
		{"admin cannot create pools", &admin, "POST", "/api/v1/pool/new", http.StatusForbidden},
		{"manager lists pools", &manager, "GET", "/api/v1/pool/all", http.StatusOK},
		{"manager lists locations", &manager, "GET", "/api/v1/location/all", http.StatusOK},
		{"officer cannot create phones", &officer, "POST", "/api/v1/phone/new", http.StatusForbidden},
		{"officer reaches reconcile", &officer, "PUT", "/api/v1/phone/999/reconcile", http.StatusNotFound},
		{"manager cannot reconcile", &manager, "PUT", "/api/v1/phone/999/reconcile", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+testutil.IssueTestToken(t, cfg, tt.user))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
		})
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"email":"ghost@example.com","password":"whatever"}`
	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("POST", "/api/v1/user/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusUnauthorized, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[4], "the burst is the per-minute limit")
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req, _ = http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pointofsale_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/api/v1/health"`)
}

func TestMetricsEndpointDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testutil.TestConfig()
	cfg.MetricsEnabled = false
	router := setupRouter(cfg, prometheus.NewRegistry())

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req, _ := http.NewRequest("OPTIONS", "/api/v1/phone/all", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest("OPTIONS", "/api/v1/phone/all", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSConfig_NoOrigins(t *testing.T) {
	cfg := corsConfig(nil)
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
	assert.NoError(t, cfg.Validate())
}
