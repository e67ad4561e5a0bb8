package models

// User represents a registered shop customer. Login is the natural key;
// Password always holds a bcrypt hash, never plaintext.
type User struct {
	Login       string `json:"login" gorm:"primaryKey;type:varchar(100)" validate:"required,min=3,max=100"`
	Password    string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	PhoneNumber string `json:"phone_number" gorm:"type:varchar(32)" validate:"omitempty,max=32"`
	Name        string `json:"name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Surname     string `json:"surname" gorm:"type:varchar(100)" validate:"required,max=100"`
}

// TableName maps User onto the users table used by the generic data layer.
func (User) TableName() string { return "users" }
