package models

// Item represents a product in the catalog. Items are read-only from the
// shop's point of view; the table is seeded at startup.
// Price is stored as decimal text ("10.00") and parsed with shopspring/decimal
// wherever arithmetic happens, so 2-decimal currency values never lose precision.
type Item struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	Description string `json:"description" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Price       string `json:"price" gorm:"type:varchar(32)" validate:"required"`
	Category    string `json:"category" gorm:"type:varchar(100)"`
	Status      string `json:"status" gorm:"type:varchar(32)"`
}

// TableName maps Item onto the items table.
func (Item) TableName() string { return "items" }
