package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"lavka/internal/models"
	"lavka/internal/services"
	"lavka/internal/store"
)

const testJWTSecret = "test_jwt_secret"

func registerTestUser(t *testing.T, authService *services.AuthService, login string) {
	t.Helper()
	err := authService.RegisterUser(&models.User{
		Login:       login,
		Password:    "password123",
		PhoneNumber: "+495551234",
		Name:        "Ivan",
		Surname:     "Petrov",
	})
	assert.NoError(t, err)
}

func TestAuthRegisterUser(t *testing.T) {
	gw, _ := newTestStore(t)
	authService := services.NewAuthService(gw, testJWTSecret)

	registerTestUser(t, authService, "ivan")

	// The stored password is a bcrypt hash of the plaintext, never the
	// plaintext itself.
	row, err := gw.FetchOne("users", map[string]any{"login": "ivan"})
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", row.String("password"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(row.String("password")), []byte("password123")))

	// Registering the same login again is rejected.
	err = authService.RegisterUser(&models.User{
		Login: "ivan", Password: "other-password", Name: "Other", Surname: "Other",
	})
	assert.ErrorIs(t, err, services.ErrLoginTaken)
}

func TestAuthLoginUser(t *testing.T) {
	gw, _ := newTestStore(t)
	authService := services.NewAuthService(gw, testJWTSecret)
	registerTestUser(t, authService, "ivan")

	token, err := authService.LoginUser("ivan", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, "ivan", claims["login"])

	// Wrong password and unknown login report the same error.
	_, err = authService.LoginUser("ivan", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = authService.LoginUser("nobody", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthValidateToken(t *testing.T) {
	gw, _ := newTestStore(t)
	authService := services.NewAuthService(gw, testJWTSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"login": "ivan",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "ivan", claims["login"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"login": "ivan",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
}

func TestAuthProfile(t *testing.T) {
	gw, _ := newTestStore(t)
	authService := services.NewAuthService(gw, testJWTSecret)
	registerTestUser(t, authService, "ivan")

	profile, err := authService.Profile("ivan")
	assert.NoError(t, err)
	assert.Equal(t, "ivan", profile.Login)
	assert.Equal(t, "Ivan", profile.Name)
	assert.Empty(t, profile.Password)

	_, err = authService.Profile("ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthUpdateProfile(t *testing.T) {
	gw, _ := newTestStore(t)
	authService := services.NewAuthService(gw, testJWTSecret)
	registerTestUser(t, authService, "ivan")

	err := authService.UpdateProfile("ivan", services.ProfileUpdate{
		PhoneNumber: "+495559999",
		Name:        "Ivan",
		Surname:     "Sidorov",
	})
	assert.NoError(t, err)

	profile, err := authService.Profile("ivan")
	assert.NoError(t, err)
	assert.Equal(t, "Sidorov", profile.Surname)
	assert.Equal(t, "+495559999", profile.PhoneNumber)

	// Empty password keeps the old credential working.
	_, err = authService.LoginUser("ivan", "password123")
	assert.NoError(t, err)

	// A new password replaces it.
	err = authService.UpdateProfile("ivan", services.ProfileUpdate{
		Password: "newpassword", PhoneNumber: "+495559999", Name: "Ivan", Surname: "Sidorov",
	})
	assert.NoError(t, err)
	_, err = authService.LoginUser("ivan", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = authService.LoginUser("ivan", "newpassword")
	assert.NoError(t, err)

	err = authService.UpdateProfile("ghost", services.ProfileUpdate{Name: "x", Surname: "y"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
