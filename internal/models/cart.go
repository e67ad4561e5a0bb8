package models

import "github.com/shopspring/decimal"

// CartLine is one (user, item, quantity) record pending order placement.
// Created on first add, quantity incremented on repeat add, deleted on removal
// or when the cart is converted into an order.
type CartLine struct {
	UserLogin string `json:"user_login" gorm:"primaryKey;type:varchar(100)"`
	ItemID    int64  `json:"item_id" gorm:"primaryKey"`
	Quantity  int64  `json:"quantity"`
}

// TableName maps CartLine onto the cart table.
func (CartLine) TableName() string { return "cart" }

// CartItem is one aggregated cart row as shown to the user: the cart line
// joined with its item, with the line total already computed. Internal item
// fields (description, raw price, status, category) are deliberately absent.
type CartItem struct {
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}
