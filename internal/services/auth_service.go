package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"lavka/internal/models"
	"lavka/internal/store"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and profile management.
type AuthService struct {
	gw         *store.Gateway
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(gw *store.Gateway, jwtSecret string) *AuthService {
	return &AuthService{
		gw:         gw,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// RegisterUser registers a new user, hashes their password, and stores them.
func (s *AuthService) RegisterUser(user *models.User) error {
	existing, err := s.gw.FetchRows("users", map[string]any{"login": user.Login})
	if err != nil {
		return fmt.Errorf("failed to check login availability: %w", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: %s", ErrLoginTaken, user.Login)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	err = s.gw.InsertRow("users", map[string]any{
		"login":        user.Login,
		"password":     user.Password,
		"phone_number": user.PhoneNumber,
		"name":         user.Name,
		"surname":      user.Surname,
	})
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(login, password string) (string, error) {
	row, err := s.gw.FetchOne("users", map[string]any{"login": login})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user %s: %w", login, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.String("password")), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"login": login,
		"exp":   time.Now().Add(s.tokenDurat).Unix(),
		"iat":   time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Profile returns the stored profile of login. A session that references a
// deleted account surfaces as store.ErrNotFound, not a crash.
func (s *AuthService) Profile(login string) (*models.User, error) {
	row, err := s.gw.FetchOne("users", map[string]any{"login": login})
	if err != nil {
		return nil, err
	}
	return &models.User{
		Login:       row.String("login"),
		PhoneNumber: row.String("phone_number"),
		Name:        row.String("name"),
		Surname:     row.String("surname"),
	}, nil
}

// ProfileUpdate carries the mutable profile fields. An empty Password keeps
// the current one.
type ProfileUpdate struct {
	Password    string `json:"password" validate:"omitempty,min=6"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=32"`
	Name        string `json:"name" validate:"required,max=100"`
	Surname     string `json:"surname" validate:"required,max=100"`
}

// UpdateProfile updates the profile of login.
func (s *AuthService) UpdateProfile(login string, update ProfileUpdate) error {
	if _, err := s.gw.FetchOne("users", map[string]any{"login": login}); err != nil {
		return err
	}

	values := map[string]any{
		"phone_number": update.PhoneNumber,
		"name":         update.Name,
		"surname":      update.Surname,
	}
	if update.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		values["password"] = string(hashedPassword)
	}

	if err := s.gw.UpdateRows("users", values, map[string]any{"login": login}); err != nil {
		return fmt.Errorf("failed to update profile of %s: %w", login, err)
	}
	return nil
}
