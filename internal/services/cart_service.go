package services

import (
	"fmt"

	"lavka/internal/models"
	"lavka/internal/store"

	"github.com/shopspring/decimal"
)

// CartService manages per-user cart lines and the aggregated cart view.
type CartService struct {
	gw *store.Gateway
}

// NewCartService creates a new CartService.
func NewCartService(gw *store.Gateway) *CartService {
	return &CartService{gw: gw}
}

// AddItem puts quantity units of an item into the user's cart: a new line on
// first add, an increment on repeat add. The item must exist.
func (s *CartService) AddItem(login string, itemID, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if _, err := s.gw.FetchOne("items", map[string]any{"id": itemID}); err != nil {
		return err
	}

	match := map[string]any{"user_login": login, "item_id": itemID}
	existing, err := s.gw.FetchRows("cart", match)
	if err != nil {
		return fmt.Errorf("failed to read cart line: %w", err)
	}

	if len(existing) > 0 {
		newQuantity := existing[0].Int("quantity") + quantity
		if err := s.gw.UpdateRows("cart", map[string]any{"quantity": newQuantity}, match); err != nil {
			return fmt.Errorf("failed to increment cart line: %w", err)
		}
		return nil
	}

	err = s.gw.InsertRow("cart", map[string]any{
		"user_login": login,
		"item_id":    itemID,
		"quantity":   quantity,
	})
	if err != nil {
		return fmt.Errorf("failed to add cart line: %w", err)
	}
	return nil
}

// RemoveItem deletes the user's cart line for an item. Removing an item that
// is not in the cart is a no-op.
func (s *CartService) RemoveItem(login string, itemID int64) error {
	err := s.gw.DeleteRows("cart", map[string]any{"user_login": login, "item_id": itemID})
	if err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

// CartWithItems returns the user's aggregated cart: every cart line joined
// with its item, line totals computed. An empty cart is an empty slice.
func (s *CartService) CartWithItems(login string) ([]models.CartItem, error) {
	return fetchCartWithItems(s.gw, login)
}

// fetchCartWithItems is the cart aggregation shared by CartService and the
// order placement transaction, which runs it on a transaction-scoped gateway.
func fetchCartWithItems(gw *store.Gateway, login string) ([]models.CartItem, error) {
	rows, err := gw.FetchJoined(
		[]string{"cart", "items"},
		[][]string{{"cart.item_id = items.id"}},
		map[string]any{"user_login": login},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart of %s: %w", login, err)
	}

	cart := make([]models.CartItem, 0, len(rows))
	for _, row := range rows {
		price, err := decimal.NewFromString(row.String("price"))
		if err != nil {
			return nil, fmt.Errorf("malformed price %q on item %d: %w",
				row.String("price"), row.Int("item_id"), err)
		}
		quantity := row.Int("quantity")
		cart = append(cart, models.CartItem{
			ItemID:    row.Int("item_id"),
			Name:      row.String("name"),
			Quantity:  quantity,
			LineTotal: price.Mul(decimal.NewFromInt(quantity)),
		})
	}
	return cart, nil
}
