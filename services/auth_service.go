package services

import (
	"errors"
	"time"

	"github.com/comandapp/comandas-api/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRestaurantInput bundles the fields needed to onboard a new
// tenant: the restaurant itself plus its first administrator account.
type RegisterRestaurantInput struct {
	RestaurantName string
	Address        *string
	Phone          *string
	AdminName      string
	Email          string
	Password       string
}

// AuthService issues and backs the identities the rest of the system
// trusts: it registers tenants, verifies credentials and signs the JWTs
// the middleware later validates.
type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates an auth service signing tokens with the given secret
func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret), tokenTTL: 24 * time.Hour}
}

// RegisterRestaurant creates the restaurant and its administrator user in
// one transaction so a tenant can never exist without an admin.
func (s *AuthService) RegisterRestaurant(input RegisterRestaurantInput) (*models.Restaurant, *models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	restaurant := models.Restaurant{
		Name:    input.RestaurantName,
		Address: input.Address,
		Phone:   input.Phone,
	}
	admin := models.User{
		Name:         input.AdminName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         models.RoleAdministrator,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		admin.RestaurantID = restaurant.ID
		return tx.Create(&admin).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return &restaurant, &admin, nil
}

// CreateUser adds a staff member (waiter or cook) to an existing restaurant.
func (s *AuthService) CreateUser(restaurantID uint, name, email, password string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		RestaurantID: restaurantID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies the credentials and returns a signed token plus the user.
// A missing user and a wrong password produce the same error.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.signToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// signToken builds the HS256 JWT carrying the identity context the
// middleware extracts on every request.
func (s *AuthService) signToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":           user.ID,
		"name":          user.Name,
		"role":          string(user.Role),
		"restaurant_id": user.RestaurantID,
		"iat":           now.Unix(),
		"exp":           now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
