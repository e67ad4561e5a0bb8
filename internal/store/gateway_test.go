package store_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lavka/internal/models"
	"lavka/internal/store"
)

// newTestGateway opens a per-test in-memory SQLite database with the shop
// schema migrated. The database name is derived from the test name so
// parallel tests never share state through the shared cache.
func newTestGateway(t *testing.T) *store.Gateway {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
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
	return store.NewGateway(db)
}

func TestInsertFetchRoundTrip(t *testing.T) {
	gw := newTestGateway(t)

	inserted := map[string]any{
		"login":        "ivan",
		"password":     "hash",
		"phone_number": "+495551234",
		"name":         "Ivan",
		"surname":      "Petrov",
	}
	assert.NoError(t, gw.InsertRow("users", inserted))

	rows, err := gw.FetchRows("users", map[string]any{"login": "ivan"})
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	for col, want := range inserted {
		assert.Equal(t, want, rows[0].String(col), "column %s", col)
	}
}

func TestInsertDuplicateKeySurfacesAsDuplicatedKey(t *testing.T) {
	gw := newTestGateway(t)

	row := map[string]any{
		"order_id": 1, "user_login": "ivan", "order_total_price": "10.00",
		"address": "Nevsky 1", "status": models.StatusPlaced,
	}
	assert.NoError(t, gw.InsertRow("orders", row))

	// A second insert with the same primary key must come back as the
	// translated gorm error, so callers can detect lost allocation races.
	err := gw.InsertRow("orders", row)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestFetchIsIdempotent(t *testing.T) {
	gw := newTestGateway(t)

	assert.NoError(t, gw.InsertRow("items", map[string]any{"id": 1, "name": "Teapot", "price": "10.00"}))
	assert.NoError(t, gw.InsertRow("items", map[string]any{"id": 2, "name": "Cup", "price": "5.50"}))

	first, err := gw.FetchRows("items", nil)
	assert.NoError(t, err)
	second, err := gw.FetchRows("items", nil)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFetchEmptyTableReturnsEmptySequence(t *testing.T) {
	gw := newTestGateway(t)

	rows, err := gw.FetchRows("items", map[string]any{"id": 7})
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchOneNotFound(t *testing.T) {
	gw := newTestGateway(t)

	_, err := gw.FetchOne("users", map[string]any{"login": "ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateRows(t *testing.T) {
	gw := newTestGateway(t)

	assert.NoError(t, gw.InsertRow("cart", map[string]any{"user_login": "ivan", "item_id": 3, "quantity": 1}))
	assert.NoError(t, gw.InsertRow("cart", map[string]any{"user_login": "olga", "item_id": 3, "quantity": 1}))

	err := gw.UpdateRows("cart",
		map[string]any{"quantity": 5},
		map[string]any{"user_login": "ivan", "item_id": 3},
	)
	assert.NoError(t, err)

	row, err := gw.FetchOne("cart", map[string]any{"user_login": "ivan"})
	assert.NoError(t, err)
	assert.EqualValues(t, 5, row.Int("quantity"))

	// The other user's line must be untouched.
	row, err = gw.FetchOne("cart", map[string]any{"user_login": "olga"})
	assert.NoError(t, err)
	assert.EqualValues(t, 1, row.Int("quantity"))
}

func TestUpdateKeepsHostileValuesLiteral(t *testing.T) {
	gw := newTestGateway(t)

	assert.NoError(t, gw.InsertRow("users", map[string]any{"login": "ivan", "name": "Ivan"}))

	hostile := "x'; DELETE FROM users; --"
	err := gw.UpdateRows("users", map[string]any{"name": hostile}, map[string]any{"login": "ivan"})
	assert.NoError(t, err)

	row, err := gw.FetchOne("users", map[string]any{"login": "ivan"})
	assert.NoError(t, err)
	assert.Equal(t, hostile, row.String("name"))
}

func TestDeleteRows(t *testing.T) {
	gw := newTestGateway(t)

	assert.NoError(t, gw.InsertRow("cart", map[string]any{"user_login": "ivan", "item_id": 1, "quantity": 2}))
	assert.NoError(t, gw.InsertRow("cart", map[string]any{"user_login": "ivan", "item_id": 2, "quantity": 1}))

	assert.NoError(t, gw.DeleteRows("cart", map[string]any{"user_login": "ivan", "item_id": 1}))

	rows, err := gw.FetchRows("cart", map[string]any{"user_login": "ivan"})
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].Int("item_id"))
}

func TestFetchJoined(t *testing.T) {
	gw := newTestGateway(t)

	assert.NoError(t, gw.InsertRow("items", map[string]any{"id": 1, "name": "Teapot", "price": "10.00"}))
	assert.NoError(t, gw.InsertRow("cart", map[string]any{"user_login": "ivan", "item_id": 1, "quantity": 2}))
	assert.NoError(t, gw.InsertRow("cart", map[string]any{"user_login": "olga", "item_id": 1, "quantity": 1}))

	rows, err := gw.FetchJoined(
		[]string{"cart", "items"},
		[][]string{{"cart.item_id = items.id"}},
		map[string]any{"user_login": "ivan"},
	)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "Teapot", rows[0].String("name"))
	assert.EqualValues(t, 2, rows[0].Int("quantity"))
	assert.Equal(t, "10.00", rows[0].String("price"))
}

func TestMaxInt(t *testing.T) {
	gw := newTestGateway(t)

	max, err := gw.MaxInt("orders", "order_id")
	assert.NoError(t, err)
	assert.EqualValues(t, 0, max)

	assert.NoError(t, gw.InsertRow("orders", map[string]any{"order_id": 4, "user_login": "ivan", "status": 1}))
	assert.NoError(t, gw.InsertRow("orders", map[string]any{"order_id": 9, "user_login": "olga", "status": 1}))

	max, err = gw.MaxInt("orders", "order_id")
	assert.NoError(t, err)
	assert.EqualValues(t, 9, max)
}

func TestAtomicCommitsOnSuccess(t *testing.T) {
	gw := newTestGateway(t)

	err := gw.Atomic(func(tx *store.Gateway) error {
		return tx.InsertRow("users", map[string]any{"login": "ivan", "name": "Ivan"})
	})
	assert.NoError(t, err)

	_, err = gw.FetchOne("users", map[string]any{"login": "ivan"})
	assert.NoError(t, err)
}

func TestAtomicRollsBackOnError(t *testing.T) {
	gw := newTestGateway(t)

	boom := fmt.Errorf("boom")
	err := gw.Atomic(func(tx *store.Gateway) error {
		if err := tx.InsertRow("users", map[string]any{"login": "ivan", "name": "Ivan"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := gw.FetchRows("users", nil)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}
