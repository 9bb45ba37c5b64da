package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTokenClaims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "middleware-test-secret",
		JWTIssuer:   "pointofsale",
		JWTAudience: "pointofsale-dashboard",
		TokenTTL:    time.Hour,
	}
}

func signTestToken(t *testing.T, secret string, claims testTokenClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(subject, role string) testTokenClaims {
	now := time.Now()
	return testTokenClaims{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			Issuer:    "pointofsale",
			Audience:  "pointofsale-dashboard",
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		},
	}
}

func TestCustomClaims_HasRole(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		roles []string
		want  bool
	}{
		{"matches single role", "admin", []string{"admin"}, true},
		{"matches one of several", "super admin", []string{"admin", "super admin"}, true},
		{"does not match", "manager", []string{"admin", "super admin"}, false},
		{"empty role", "", []string{"admin"}, false},
		{"partial match should not work", "admin", []string{"super admin"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := CustomClaims{Role: tt.role}
			assert.Equal(t, tt.want, claims.HasRole(tt.roles...))
		})
	}
}

func TestEnsureValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	expired := validClaims("7", "manager")
	expired.ExpiresAt = time.Now().Add(-2 * time.Hour).Unix()
	wrongAudience := validClaims("7", "manager")
	wrongAudience.Audience = "someone-else"

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID uint
	}{
		{"valid token", "Bearer " + signTestToken(t, cfg.JWTSecret, validClaims("7", "manager")), http.StatusOK, 7},
		{"missing header", "", http.StatusUnauthorized, 0},
		{"wrong secret", "Bearer " + signTestToken(t, "other-secret", validClaims("7", "manager")), http.StatusUnauthorized, 0},
		{"expired", "Bearer " + signTestToken(t, cfg.JWTSecret, expired), http.StatusUnauthorized, 0},
		{"wrong audience", "Bearer " + signTestToken(t, cfg.JWTSecret, wrongAudience), http.StatusUnauthorized, 0},
		{"non numeric subject", "Bearer " + signTestToken(t, cfg.JWTSecret, validClaims("abc", "manager")), http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			var gotUserID uint
			var gotRole string
			router.GET("/protected", EnsureValidToken(cfg), func(c *gin.Context) {
				gotUserID, _ = GetUserID(c)
				gotRole, _ = GetRole(c)
				c.JSON(http.StatusOK, gin.H{"success": true})
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUserID, gotUserID)
				assert.Equal(t, "manager", gotRole)
				return
			}

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.False(t, response["success"].(bool))
			assert.Equal(t, "INVALID_TOKEN", response["error"].(map[string]interface{})["code"])
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    uint
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", uint(12))
			},
			wantID: 12,
		},
		{
			name:      "user ID not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "user ID is not numeric",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "12")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Zero(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantErr   bool
	}{
		{
			name: "successfully extracts claims",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", &validator.ValidatedClaims{
					RegisteredClaims: validator.RegisteredClaims{Issuer: "pointofsale", Subject: "1"},
					CustomClaims:     &CustomClaims{Role: "admin"},
				})
			},
		},
		{
			name:      "claims not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "claims are not the expected type",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", "invalid")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			claims, err := GetClaims(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	withRole := func(role string) func(*gin.Context) {
		return func(c *gin.Context) {
			c.Set("validated_claims", &validator.ValidatedClaims{CustomClaims: &CustomClaims{Role: role}})
		}
	}

	tests := []struct {
		name           string
		roles          []string
		setupFunc      func(*gin.Context)
		wantStatusCode int
		wantAborted    bool
	}{
		{
			name:      "has allowed role",
			roles:     []string{"admin", "super admin"},
			setupFunc: withRole("super admin"),
		},
		{
			name:           "role not allowed",
			roles:          []string{"super admin"},
			setupFunc:      withRole("admin"),
			wantStatusCode: http.StatusForbidden,
			wantAborted:    true,
		},
		{
			name:           "claims not in context",
			roles:          []string{"admin"},
			setupFunc:      func(c *gin.Context) {},
			wantStatusCode: http.StatusUnauthorized,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			tt.setupFunc(c)
			RequireRole(tt.roles...)(c)

			if tt.wantAborted {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatusCode, w.Code)
			} else {
				assert.False(t, c.IsAborted())
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Code:    "TEST_ERROR",
		Message: "This is a test error",
	}

	assert.Equal(t, "This is a test error", err.Error())
}
