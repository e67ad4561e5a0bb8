package services

import (
	"fmt"

	"lavka/internal/models"
	"lavka/internal/store"
)

// CatalogService serves item browsing. The catalog is read-only here; items
// are seeded or managed outside the shop surface.
type CatalogService struct {
	gw *store.Gateway
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(gw *store.Gateway) *CatalogService {
	return &CatalogService{gw: gw}
}

// ListItems returns every catalog item.
func (s *CatalogService) ListItems() ([]models.Item, error) {
	rows, err := s.gw.FetchRows("items", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromRow(row))
	}
	return items, nil
}

// GetItem returns one item by id, or store.ErrNotFound.
func (s *CatalogService) GetItem(id int64) (*models.Item, error) {
	row, err := s.gw.FetchOne("items", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	item := itemFromRow(row)
	return &item, nil
}

func itemFromRow(row store.Row) models.Item {
	return models.Item{
		ID:          row.Int("id"),
		Name:        row.String("name"),
		Description: row.String("description"),
		Price:       row.String("price"),
		Category:    row.String("category"),
		Status:      row.String("status"),
	}
}
