package models

// Order statuses. Orders are created in StatusPlaced (unpaid) and move forward
// from there; nothing in this service moves them back.
const (
	StatusPlaced    = 1
	StatusPaid      = 2
	StatusShipped   = 3
	StatusDelivered = 4
)

// Order is a placed customer order. OrderID is allocated sequentially inside
// the placement transaction; OrderTotalPrice is decimal text, like Item.Price.
type Order struct {
	OrderID         int64  `json:"order_id" gorm:"primaryKey"`
	UserLogin       string `json:"user_login" gorm:"type:varchar(100)"`
	OrderTotalPrice string `json:"order_total_price" gorm:"type:varchar(32)"`
	Address         string `json:"address" gorm:"type:varchar(500)"`
	Status          int    `json:"status"`
}

// TableName maps Order onto the orders table.
func (Order) TableName() string { return "orders" }

// OrderLine is one item position of a placed order, copied from the cart at
// placement time and immutable afterward.
type OrderLine struct {
	OrderID   int64  `json:"order_id" gorm:"primaryKey"`
	ItemID    int64  `json:"item_id" gorm:"primaryKey"`
	Quantity  int64  `json:"quantity"`
	UserLogin string `json:"user_login" gorm:"type:varchar(100)"`
}

// TableName maps OrderLine onto the order_items table.
func (OrderLine) TableName() string { return "order_items" }
