package services

import (
	"errors"
	"testing"

	"github.com/comandapp/comandas-api/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

func TestRegisterRestaurant(t *testing.T) {
	db := setupItemTestDB(t)
	svc := NewAuthService(db, testJWTSecret)

	restaurant, admin, err := svc.RegisterRestaurant(RegisterRestaurantInput{
		RestaurantName: "La Esquina",
		AdminName:      "Ana",
		Email:          "ana@laesquina.example",
		Password:       "correct-horse",
	})
	assert.NoError(t, err)
	assert.NotZero(t, restaurant.ID)
	assert.Equal(t, restaurant.ID, admin.RestaurantID)
	assert.Equal(t, models.RoleAdministrator, admin.Role)
	assert.NotEqual(t, "correct-horse", admin.PasswordHash, "password must be hashed")
}

func TestLogin(t *testing.T) {
	db := setupItemTestDB(t)
	svc := NewAuthService(db, testJWTSecret)

	_, _, err := svc.RegisterRestaurant(RegisterRestaurantInput{
		RestaurantName: "La Esquina",
		AdminName:      "Ana",
		Email:          "ana@laesquina.example",
		Password:       "correct-horse",
	})
	assert.NoError(t, err)

	token, user, err := svc.Login("ana@laesquina.example", "correct-horse")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ana@laesquina.example", user.Email)

	// The token carries the identity context the middleware expects.
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(user.ID), claims["sub"])
	assert.Equal(t, string(models.RoleAdministrator), claims["role"])
	assert.Equal(t, float64(user.RestaurantID), claims["restaurant_id"])
	assert.Equal(t, "Ana", claims["name"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupItemTestDB(t)
	svc := NewAuthService(db, testJWTSecret)

	_, _, err := svc.RegisterRestaurant(RegisterRestaurantInput{
		RestaurantName: "La Esquina",
		AdminName:      "Ana",
		Email:          "ana@laesquina.example",
		Password:       "correct-horse",
	})
	assert.NoError(t, err)

	_, _, err = svc.Login("ana@laesquina.example", "wrong-password")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = svc.Login("nobody@laesquina.example", "correct-horse")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestCreateUser(t *testing.T) {
	db := setupItemTestDB(t)
	svc := NewAuthService(db, testJWTSecret)

	restaurant, _, err := svc.RegisterRestaurant(RegisterRestaurantInput{
		RestaurantName: "La Esquina",
		AdminName:      "Ana",
		Email:          "ana@laesquina.example",
		Password:       "correct-horse",
	})
	assert.NoError(t, err)

	cook, err := svc.CreateUser(restaurant.ID, "Luis", "luis@laesquina.example", "another-pass", models.RoleCook)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleCook, cook.Role)
	assert.Equal(t, restaurant.ID, cook.RestaurantID)

	_, _, err = svc.Login("luis@laesquina.example", "another-pass")
	assert.NoError(t, err)
}
