package store

import (
	"database/sql"
	"fmt"

	"blogicum/internal/models"
)

// LocationStore handles location lookups for the post form.
type LocationStore struct {
	db *sql.DB
}

// NewLocationStore creates a new LocationStore with the given database connection.
func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{db: db}
}

// FindPublishedByID retrieves a published location by ID. Returns nil if
// missing or unpublished.
func (s *LocationStore) FindPublishedByID(id int64) (*models.Location, error) {
	l := &models.Location{}
	err := s.db.QueryRow(`
		SELECT id, name, is_published, created_at
		FROM locations WHERE id = $1 AND is_published = TRUE
	`, id).Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location by id: %w", err)
	}
	return l, nil
}

// ListPublished returns all published locations ordered by name.
func (s *LocationStore) ListPublished() ([]models.Location, error) {
	rows, err := s.db.Query(`
		SELECT id, name, is_published, created_at
		FROM locations WHERE is_published = TRUE ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}
