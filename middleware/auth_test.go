package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comandapp/comandas-api/config"
	"github.com/comandapp/comandas-api/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "unit-test-secret"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":           float64(7),
		"name":          "Ana",
		"role":          "waiter",
		"restaurant_id": float64(3),
		"exp":           time.Now().Add(time.Hour).Unix(),
	}
}

func setupAuthTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: testSecret}
	router := gin.New()
	router.GET("/protected", EnsureValidToken(cfg), handler)
	return router
}

func TestEnsureValidToken(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "Valid token",
			authHeader:     "Bearer " + signTestToken(t, testSecret, validClaims()),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed header",
			authHeader:     "Token abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong signing key",
			authHeader:     "Bearer " + signTestToken(t, "other-secret", validClaims()),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Expired token",
			authHeader: "Bearer " + signTestToken(t, testSecret, jwt.MapClaims{
				"sub":           float64(7),
				"role":          "waiter",
				"restaurant_id": float64(3),
				"exp":           time.Now().Add(-time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown role claim",
			authHeader: "Bearer " + signTestToken(t, testSecret, jwt.MapClaims{
				"sub":           float64(7),
				"role":          "customer",
				"restaurant_id": float64(3),
				"exp":           time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Missing restaurant claim",
			authHeader: "Bearer " + signTestToken(t, testSecret, jwt.MapClaims{
				"sub":  float64(7),
				"role": "waiter",
				"exp":  time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured Identity
			router := setupAuthTestRouter(func(c *gin.Context) {
				identity, err := GetIdentity(c)
				assert.NoError(t, err)
				captured = identity
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, uint(7), captured.UserID)
				assert.Equal(t, "Ana", captured.Name)
				assert.Equal(t, models.RoleWaiter, captured.Role)
				assert.Equal(t, uint(3), captured.RestaurantID)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		role           models.Role
		allowed        []models.Role
		expectedStatus int
	}{
		{"Administrator allowed", models.RoleAdministrator, []models.Role{models.RoleAdministrator}, http.StatusOK},
		{"Waiter allowed among several", models.RoleWaiter, []models.Role{models.RoleWaiter, models.RoleAdministrator}, http.StatusOK},
		{"Cook rejected", models.RoleCook, []models.Role{models.RoleWaiter, models.RoleAdministrator}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/gated",
				func(c *gin.Context) {
					SetIdentity(c, Identity{UserID: 1, Role: tt.role, RestaurantID: 1})
					c.Next()
				},
				RequireRoles(tt.allowed...),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireRolesWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/gated",
		RequireRoles(models.RoleAdministrator),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
