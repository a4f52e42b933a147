// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"blogicum/internal/models"
)

// CategoryStore handles category lookups. Categories are managed
// operationally (seed/SQL), not through the web UI.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore creates a new CategoryStore with the given database connection.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// FindPublishedBySlug retrieves a published category by its slug.
// Returns nil if the category is missing or unpublished; the category
// feed treats both the same way (404).
func (s *CategoryStore) FindPublishedBySlug(slug string) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.QueryRow(`
		SELECT id, title, slug, description, is_published, created_at
		FROM categories WHERE slug = $1 AND is_published = TRUE
	`, slug).Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsPublished, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// FindPublishedByID retrieves a published category by ID. Post forms only
// offer published categories, so selection of a hidden one is rejected.
func (s *CategoryStore) FindPublishedByID(id int64) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.QueryRow(`
		SELECT id, title, slug, description, is_published, created_at
		FROM categories WHERE id = $1 AND is_published = TRUE
	`, id).Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsPublished, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// ListPublished returns all published categories ordered by title, for the
// post form's category dropdown.
func (s *CategoryStore) ListPublished() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, title, slug, description, is_published, created_at
		FROM categories WHERE is_published = TRUE ORDER BY title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsPublished, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
