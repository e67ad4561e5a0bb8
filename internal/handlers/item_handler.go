package handlers

import (
	"errors"
	"log"
	"strconv"

	"lavka/internal/middleware"
	"lavka/internal/services"
	"lavka/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles item browsing and reviews.
type ItemHandler struct {
	catalogService *services.CatalogService
	reviewService  *services.ReviewService
	validate       *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(catalogService *services.CatalogService, reviewService *services.ReviewService) *ItemHandler {
	return &ItemHandler{
		catalogService: catalogService,
		reviewService:  reviewService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the public browsing routes.
func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleListItems)
	itemRoutes.Get("/:id", h.HandleGetItem)
	itemRoutes.Get("/:id/reviews", h.HandleListReviews)
}

// RegisterProtectedRoutes registers the review-writing routes; the router is
// expected to be behind the auth middleware.
func (h *ItemHandler) RegisterProtectedRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/:id/reviews/me", h.HandleMyReview)
	itemRoutes.Post("/:id/reviews", h.HandleCreateReview)
	itemRoutes.Put("/:id/reviews/:reviewID", h.HandleUpdateReview)
}

// paramID parses a numeric path parameter; a non-numeric value is malformed
// input, reported as 400 by the caller.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}

// HandleListItems returns the whole catalog.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	items, err := h.catalogService.ListItems()
	if err != nil {
		log.Printf("Error listing items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
		})
	}
	return c.JSON(items)
}

// HandleGetItem returns a single item by id.
func (h *ItemHandler) HandleGetItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Item id must be numeric",
		})
	}

	item, err := h.catalogService.GetItem(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		log.Printf("Error getting item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve item",
		})
	}
	return c.JSON(item)
}

// HandleListReviews returns all reviews of an item.
func (h *ItemHandler) HandleListReviews(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Item id must be numeric",
		})
	}

	reviews, err := h.reviewService.ListForItem(id)
	if err != nil {
		log.Printf("Error listing reviews of item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve reviews",
		})
	}
	return c.JSON(reviews)
}

// HandleMyReview returns the current user's review of an item, so the review
// page can decide between offering a review form and showing the existing one.
func (h *ItemHandler) HandleMyReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Item id must be numeric",
		})
	}

	login := middleware.Login(c)
	review, err := h.reviewService.UserReview(id, login)
	if err != nil {
		log.Printf("Error fetching review of item %d by %s: %v", id, login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve review",
		})
	}
	if review == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "You have not reviewed this item",
		})
	}
	return c.JSON(review)
}

// ReviewRequest represents the request body for writing a review.
type ReviewRequest struct {
	Text   string `json:"text" validate:"required,max=1000"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// HandleCreateReview stores a new review by the current user.
func (h *ItemHandler) HandleCreateReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Item id must be numeric",
		})
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrors(err),
		})
	}

	login := middleware.Login(c)
	if err := h.reviewService.Create(id, login, req.Text, req.Rating); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		log.Printf("Error creating review of item %d by %s: %v", id, login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create review",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review created successfully",
	})
}

// HandleUpdateReview rewrites one of the current user's reviews.
func (h *ItemHandler) HandleUpdateReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Item id must be numeric",
		})
	}
	reviewID, err := paramID(c, "reviewID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Review id must be numeric",
		})
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrors(err),
		})
	}

	login := middleware.Login(c)
	if err := h.reviewService.Update(id, reviewID, login, req.Text, req.Rating); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Review not found",
			})
		}
		log.Printf("Error updating review %d by %s: %v", reviewID, login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update review",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Review updated successfully",
	})
}
