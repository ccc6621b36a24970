package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/comandapp/comandas-api/config"
	"github.com/comandapp/comandas-api/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthError represents an authentication/authorization error with a stable code
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Identity is the trusted acting-user context extracted from a validated
// token: who is acting, in which role, for which restaurant. Handlers and
// services rely on it instead of re-verifying credentials.
type Identity struct {
	UserID       uint
	Name         string
	Role         models.Role
	RestaurantID uint
}

const identityKey = "identity"

// EnsureValidToken validates the Bearer token on the request and stores
// the resulting Identity in the Gin context.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "MISSING_TOKEN", "Authorization header with Bearer token is required")
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "INVALID_TOKEN", "Failed to validate token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "INVALID_TOKEN", "Unexpected token claims")
			return
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			abortUnauthorized(c, "INVALID_CLAIMS", err.Error())
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRoles only lets the listed roles through. It must run after
// EnsureValidToken.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := GetIdentity(c)
		if err != nil {
			abortUnauthorized(c, "UNAUTHORIZED", "Could not extract user information")
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Your role does not permit this action",
			},
		})
	}
}

// GetIdentity extracts the acting-user identity from the Gin context
func GetIdentity(c *gin.Context) (Identity, error) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, &AuthError{Code: "MISSING_IDENTITY", Message: "Identity not found in context"}
	}
	identity, ok := value.(Identity)
	if !ok {
		return Identity{}, &AuthError{Code: "INVALID_IDENTITY", Message: "Identity has an unexpected type"}
	}
	return identity, nil
}

// SetIdentity stores an identity in the Gin context (used by test helpers)
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	sub, ok := claims["sub"].(float64)
	if !ok {
		return Identity{}, fmt.Errorf("missing or invalid sub claim")
	}
	restaurantID, ok := claims["restaurant_id"].(float64)
	if !ok {
		return Identity{}, fmt.Errorf("missing or invalid restaurant_id claim")
	}
	roleClaim, _ := claims["role"].(string)
	role, err := models.ParseRole(roleClaim)
	if err != nil {
		return Identity{}, err
	}
	name, _ := claims["name"].(string)

	return Identity{
		UserID:       uint(sub),
		Name:         name,
		Role:         role,
		RestaurantID: uint(restaurantID),
	}, nil
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
