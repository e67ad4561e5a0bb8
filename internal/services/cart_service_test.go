package services_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lavka/internal/models"
	"lavka/internal/services"
	"lavka/internal/store"
)

// newTestStore opens a per-test in-memory SQLite database with the shop
// schema migrated and returns both the gateway and the raw gorm handle.
func newTestStore(t *testing.T) (*store.Gateway, *gorm.DB) {
	t.Helper()
	return newNamedTestStore(t, t.Name())
}

// newNamedTestStore is newTestStore with an explicit database name, for tests
// that need more than one fresh store.
func newNamedTestStore(t *testing.T, name string) (*store.Gateway, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Item{}, &models.Feedback{},
		&models.CartLine{}, &models.Order{}, &models.OrderLine{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return store.NewGateway(db), db
}

// seedCatalog inserts the two items used across cart and order tests.
func seedCatalog(t *testing.T, gw *store.Gateway) {
	t.Helper()
	items := []map[string]any{
		{"id": 1, "name": "Teapot", "description": "Cast iron teapot", "price": "10.00", "category": "kitchen", "status": "available"},
		{"id": 2, "name": "Cup", "description": "Porcelain cup", "price": "5.50", "category": "kitchen", "status": "available"},
	}
	for _, item := range items {
		if err := gw.InsertRow("items", item); err != nil {
			t.Fatalf("failed to seed item: %v", err)
		}
	}
}

func TestCartAddItem(t *testing.T) {
	gw, _ := newTestStore(t)
	seedCatalog(t, gw)
	cartService := services.NewCartService(gw)

	// First add inserts a line.
	assert.NoError(t, cartService.AddItem("ivan", 1, 2))
	row, err := gw.FetchOne("cart", map[string]any{"user_login": "ivan", "item_id": 1})
	assert.NoError(t, err)
	assert.EqualValues(t, 2, row.Int("quantity"))

	// Repeat add increments the same line.
	assert.NoError(t, cartService.AddItem("ivan", 1, 3))
	row, err = gw.FetchOne("cart", map[string]any{"user_login": "ivan", "item_id": 1})
	assert.NoError(t, err)
	assert.EqualValues(t, 5, row.Int("quantity"))

	rows, err := gw.FetchRows("cart", map[string]any{"user_login": "ivan"})
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCartAddUnknownItem(t *testing.T) {
	gw, _ := newTestStore(t)
	cartService := services.NewCartService(gw)

	err := cartService.AddItem("ivan", 99, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCartAddNonPositiveQuantity(t *testing.T) {
	gw, _ := newTestStore(t)
	seedCatalog(t, gw)
	cartService := services.NewCartService(gw)

	assert.Error(t, cartService.AddItem("ivan", 1, 0))
	assert.Error(t, cartService.AddItem("ivan", 1, -2))
}

func TestCartRemoveItem(t *testing.T) {
	gw, _ := newTestStore(t)
	seedCatalog(t, gw)
	cartService := services.NewCartService(gw)

	assert.NoError(t, cartService.AddItem("ivan", 1, 2))
	assert.NoError(t, cartService.AddItem("ivan", 2, 1))

	assert.NoError(t, cartService.RemoveItem("ivan", 1))
	rows, err := gw.FetchRows("cart", map[string]any{"user_login": "ivan"})
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].Int("item_id"))

	// Removing an absent line is a no-op.
	assert.NoError(t, cartService.RemoveItem("ivan", 99))
}

func TestCartWithItemsComputesLineTotals(t *testing.T) {
	gw, _ := newTestStore(t)
	seedCatalog(t, gw)
	cartService := services.NewCartService(gw)

	assert.NoError(t, cartService.AddItem("ivan", 1, 2)) // 2 x 10.00
	assert.NoError(t, cartService.AddItem("ivan", 2, 1)) // 1 x 5.50
	assert.NoError(t, cartService.AddItem("olga", 1, 7)) // someone else's cart

	cart, err := cartService.CartWithItems("ivan")
	assert.NoError(t, err)
	assert.Len(t, cart, 2)

	byItem := map[int64]models.CartItem{}
	for _, line := range cart {
		byItem[line.ItemID] = line
		// Internal item fields are not part of the projection; what is
		// exposed is exactly item id, name, quantity and line total.
		assert.NotEmpty(t, line.Name)
	}
	assert.Equal(t, "20", byItem[1].LineTotal.String())
	assert.EqualValues(t, 2, byItem[1].Quantity)
	assert.Equal(t, "5.5", byItem[2].LineTotal.String())
	assert.EqualValues(t, 1, byItem[2].Quantity)
}

func TestCartWithItemsEmptyCart(t *testing.T) {
	gw, _ := newTestStore(t)
	cartService := services.NewCartService(gw)

	cart, err := cartService.CartWithItems("ivan")
	assert.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartWithItemsMalformedPrice(t *testing.T) {
	gw, _ := newTestStore(t)
	assert.NoError(t, gw.InsertRow("items", map[string]any{"id": 3, "name": "Broken", "price": "not-a-number"}))
	assert.NoError(t, gw.InsertRow("cart", map[string]any{"user_login": "ivan", "item_id": 3, "quantity": 1}))

	cartService := services.NewCartService(gw)
	_, err := cartService.CartWithItems("ivan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "malformed price")
}
