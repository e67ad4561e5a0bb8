package models

// Feedback is a user review of an item. There is no uniqueness constraint on
// (item_id, user_login): repeated creation accumulates rows, matching the
// behavior the shop has always had.
type Feedback struct {
	FeedbackID int64  `json:"feedback_id" gorm:"primaryKey;autoIncrement"`
	ItemID     int64  `json:"item_id" validate:"required"`
	UserLogin  string `json:"user_login" gorm:"type:varchar(100)" validate:"required"`
	Text       string `json:"text" gorm:"type:varchar(1000)" validate:"required,max=1000"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
}

// TableName maps Feedback onto the feedbacks table.
func (Feedback) TableName() string { return "feedbacks" }
