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

// CartHandler handles the authenticated user's cart.
type CartHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the cart routes; the router is expected to be
// behind the auth middleware.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Delete("/items/:itemID", h.HandleRemoveItem)
}

// HandleGetCart returns the aggregated cart with line totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	login := middleware.Login(c)
	cart, err := h.cartService.CartWithItems(login)
	if err != nil {
		log.Printf("Error loading cart of %s: %v", login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load cart",
		})
	}
	return c.JSON(cart)
}

// AddToCartRequest represents the request body for adding an item.
type AddToCartRequest struct {
	ItemID   int64 `json:"item_id" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}

// HandleAddItem adds an item to the cart, incrementing on repeat add.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddToCartRequest
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
	if err := h.cartService.AddItem(login, req.ItemID, req.Quantity); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		log.Printf("Error adding item %d to cart of %s: %v", req.ItemID, login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add item to cart",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item added to cart",
	})
}

// HandleRemoveItem removes an item from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	itemID, err := paramID(c, "itemID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Item id must be numeric",
		})
	}

	login := middleware.Login(c)
	if err := h.cartService.RemoveItem(login, itemID); err != nil {
		log.Printf("Error removing item %d from cart of %s: %v", itemID, login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove item from cart",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}
