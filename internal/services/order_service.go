package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"lavka/internal/models"
	"lavka/internal/store"
	"lavka/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// placementRetries bounds how often a placement is re-run after losing the
// order-id allocation race to a concurrent placement.
const placementRetries = 3

// EventPublisher publishes order events. Satisfied by *rabbitmq.Client; a nil
// publisher disables events without affecting order placement.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderService converts carts into orders.
type OrderService struct {
	gw        *store.Gateway
	publisher EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(gw *store.Gateway, publisher EventPublisher) *OrderService {
	return &OrderService{
		gw:        gw,
		publisher: publisher,
	}
}

// PlaceOrder converts the user's cart into an order and returns the new order
// id. The whole workflow runs in one transaction: snapshot the cart, sum the
// line totals, allocate order_id = MAX(order_id)+1, insert the order, and per
// cart line delete the cart row and insert one order_items row. Any failure
// rolls everything back and surfaces as ErrOrderPlacementFailed; an order is
// never persisted while its source cart lines remain, and vice versa.
// An empty cart is rejected with ErrEmptyCart before any write.
//
// Under read-committed isolation two concurrent placements can read the same
// maximum; the loser then trips the orders primary key and its transaction is
// re-run with a fresh maximum, up to placementRetries times.
func (s *OrderService) PlaceOrder(login, address string) (int64, error) {
	var (
		orderID int64
		total   decimal.Decimal
		lines   int
	)

	attempt := func() error {
		return s.gw.Atomic(func(tx *store.Gateway) error {
			cart, err := fetchCartWithItems(tx, login)
			if err != nil {
				return err
			}
			if len(cart) == 0 {
				return ErrEmptyCart
			}

			total = decimal.Zero
			for _, line := range cart {
				total = total.Add(line.LineTotal)
			}

			// The max+1 read shares the transaction with the insert below, and
			// the orders primary key catches any identifier handed out twice.
			maxID, err := tx.MaxInt("orders", "order_id")
			if err != nil {
				return err
			}
			orderID = maxID + 1

			err = tx.InsertRow("orders", map[string]any{
				"order_id":          orderID,
				"user_login":        login,
				"order_total_price": total.StringFixed(2),
				"address":           address,
				"status":            models.StatusPlaced,
			})
			if err != nil {
				return err
			}

			for _, line := range cart {
				lineKey := map[string]any{"item_id": line.ItemID, "user_login": login}
				if err := tx.DeleteRows("cart", lineKey); err != nil {
					return err
				}
				err := tx.InsertRow("order_items", map[string]any{
					"order_id":   orderID,
					"item_id":    line.ItemID,
					"quantity":   line.Quantity,
					"user_login": login,
				})
				if err != nil {
					return err
				}
			}
			lines = len(cart)
			return nil
		})
	}

	var err error
	for try := 0; try < placementRetries; try++ {
		if err = attempt(); err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", ErrOrderPlacementFailed, err)
	}

	s.publishOrderCreated(orderID, login, total, lines)
	return orderID, nil
}

// ListOrders returns the user's orders.
func (s *OrderService) ListOrders(login string) ([]models.Order, error) {
	rows, err := s.gw.FetchRows("orders", map[string]any{"user_login": login})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of %s: %w", login, err)
	}
	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, orderFromRow(row))
	}
	return orders, nil
}

// Order returns one of the user's orders with its lines. Unknown order ids
// and other users' orders both surface as store.ErrNotFound.
func (s *OrderService) Order(login string, orderID int64) (*models.Order, []models.OrderLine, error) {
	row, err := s.gw.FetchOne("orders", map[string]any{"order_id": orderID, "user_login": login})
	if err != nil {
		return nil, nil, err
	}
	order := orderFromRow(row)

	lineRows, err := s.gw.FetchRows("order_items", map[string]any{"order_id": orderID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch lines of order %d: %w", orderID, err)
	}
	lines := make([]models.OrderLine, 0, len(lineRows))
	for _, lr := range lineRows {
		lines = append(lines, models.OrderLine{
			OrderID:   lr.Int("order_id"),
			ItemID:    lr.Int("item_id"),
			Quantity:  lr.Int("quantity"),
			UserLogin: lr.String("user_login"),
		})
	}
	return &order, lines, nil
}

// publishOrderCreated emits an order.created event. Publish failures are
// logged and never fail the already-committed order.
func (s *OrderService) publishOrderCreated(orderID int64, login string, total decimal.Decimal, lines int) {
	if s.publisher == nil {
		log.Println("Event publisher is not configured. Skipping order.created event.")
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event_id":   uuid.New().String(),
		"event":      "order.created",
		"order_id":   orderID,
		"user_login": login,
		"total":      total.StringFixed(2),
		"lines":      lines,
	})
	if err != nil {
		log.Printf("Failed to marshal order.created event for order %d: %v", orderID, err)
		return
	}

	if err := s.publisher.Publish("", rabbitmq.OrderEventsQueue, body); err != nil {
		log.Printf("Warning: failed to publish order.created event for order %d: %v", orderID, err)
	} else {
		log.Printf("Published order.created event for order %d", orderID)
	}
}

func orderFromRow(row store.Row) models.Order {
	return models.Order{
		OrderID:         row.Int("order_id"),
		UserLogin:       row.String("user_login"),
		OrderTotalPrice: row.String("order_total_price"),
		Address:         row.String("address"),
		Status:          int(row.Int("status")),
	}
}
