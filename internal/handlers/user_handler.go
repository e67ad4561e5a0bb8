package handlers

import (
	"errors"
	"log"

	"lavka/internal/middleware"
	"lavka/internal/services"
	"lavka/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles the authenticated user's profile.
type UserHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the profile routes. The router is expected to be
// behind the auth middleware.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/me", h.HandleProfile)
	userRoutes.Put("/me", h.HandleUpdateProfile)
}

// HandleProfile returns the current user's profile.
func (h *UserHandler) HandleProfile(c *fiber.Ctx) error {
	login := middleware.Login(c)
	profile, err := h.authService.Profile(login)
	if err != nil {
		log.Printf("Error loading profile of %s: %v", login, err)
		if errors.Is(err, store.ErrNotFound) {
			// The session outlived the account.
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found, please log in again",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load profile",
		})
	}
	return c.JSON(profile)
}

// HandleUpdateProfile updates the current user's profile.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	login := middleware.Login(c)

	var update services.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		log.Printf("Error parsing profile update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrors(err),
		})
	}

	if err := h.authService.UpdateProfile(login, update); err != nil {
		log.Printf("Error updating profile of %s: %v", login, err)
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found, please log in again",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update profile",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
	})
}
