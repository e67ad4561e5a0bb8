package services

import (
	"fmt"

	"lavka/internal/models"
	"lavka/internal/store"
)

// ReviewService manages item feedback. Repeated creation by the same user for
// the same item accumulates rows; there is no uniqueness constraint on
// (item_id, user_login).
type ReviewService struct {
	gw *store.Gateway
}

// NewReviewService creates a new ReviewService.
func NewReviewService(gw *store.Gateway) *ReviewService {
	return &ReviewService{gw: gw}
}

// ListForItem returns every review of an item.
func (s *ReviewService) ListForItem(itemID int64) ([]models.Feedback, error) {
	rows, err := s.gw.FetchRows("feedbacks", map[string]any{"item_id": itemID})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for item %d: %w", itemID, err)
	}
	reviews := make([]models.Feedback, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, feedbackFromRow(row))
	}
	return reviews, nil
}

// UserReview returns the user's first review of an item, or nil when they
// have not reviewed it.
func (s *ReviewService) UserReview(itemID int64, login string) (*models.Feedback, error) {
	rows, err := s.gw.FetchRows("feedbacks", map[string]any{"item_id": itemID, "user_login": login})
	if err != nil {
		return nil, fmt.Errorf("failed to look up review of item %d by %s: %w", itemID, login, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	review := feedbackFromRow(rows[0])
	return &review, nil
}

// Create stores a new review. The item must exist.
func (s *ReviewService) Create(itemID int64, login, text string, rating int) error {
	if _, err := s.gw.FetchOne("items", map[string]any{"id": itemID}); err != nil {
		return err
	}
	err := s.gw.InsertRow("feedbacks", map[string]any{
		"item_id":    itemID,
		"user_login": login,
		"text":       text,
		"rating":     rating,
	})
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// Update rewrites the text and rating of a user's own review. Updating a
// review that does not exist or belongs to someone else is store.ErrNotFound.
func (s *ReviewService) Update(itemID, feedbackID int64, login, text string, rating int) error {
	match := map[string]any{
		"item_id":     itemID,
		"feedback_id": feedbackID,
		"user_login":  login,
	}
	if _, err := s.gw.FetchOne("feedbacks", match); err != nil {
		return err
	}
	err := s.gw.UpdateRows("feedbacks", map[string]any{"text": text, "rating": rating}, match)
	if err != nil {
		return fmt.Errorf("failed to update review %d: %w", feedbackID, err)
	}
	return nil
}

func feedbackFromRow(row store.Row) models.Feedback {
	return models.Feedback{
		FeedbackID: row.Int("feedback_id"),
		ItemID:     row.Int("item_id"),
		UserLogin:  row.String("user_login"),
		Text:       row.String("text"),
		Rating:     int(row.Int("rating")),
	}
}
