package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"blogicum/internal/slug"
)

// Seed populates the database with initial development data: a default
// author account, a couple of categories and locations, and a few posts.
// It is a no-op when users already exist.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("blogger"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var authorID int64
	err = db.QueryRow(`
		INSERT INTO users (username, email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "blogger", "blogger@blogicum.local", "Demo", "Blogger", string(hash)).Scan(&authorID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	categories := []struct {
		title, description string
	}{
		{"Travel", "Trips, routes, and places worth writing about."},
		{"Food", "Recipes and restaurant notes."},
	}
	var categoryID int64
	for _, c := range categories {
		err = db.QueryRow(`
			INSERT INTO categories (title, slug, description)
			VALUES ($1, $2, $3)
			RETURNING id
		`, c.title, slug.Generate(c.title), c.description).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("seed insert category: %w", err)
		}
	}

	var locationID int64
	err = db.QueryRow(`
		INSERT INTO locations (name) VALUES ($1) RETURNING id
	`, "Lisbon").Scan(&locationID)
	if err != nil {
		return fmt.Errorf("seed insert location: %w", err)
	}

	// A published post and an unpublished draft, so the owner-preview
	// behavior is observable right after first start.
	_, err = db.Exec(`
		INSERT INTO posts (title, body, pub_date, is_published, author_id, category_id, location_id)
		VALUES
			('Hello, Blogicum', 'First post. **Markdown** works here.', NOW() - INTERVAL '1 hour', TRUE, $1, $2, $3),
			('Unfinished draft', 'Only the author can see this one.', NOW() - INTERVAL '1 hour', FALSE, $1, $2, NULL)
	`, authorID, categoryID, locationID)
	if err != nil {
		return fmt.Errorf("seed insert posts: %w", err)
	}

	slog.Info("database seeded with demo data",
		"username", "blogger",
		"password", "blogger",
	)

	return nil
}
