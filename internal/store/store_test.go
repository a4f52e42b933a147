// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogicum/internal/database"
	"blogicum/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogicum")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogicum")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// newTestUser inserts a user with a unique username and registers cleanup.
// Cleanup removes the user's comments and posts first to satisfy FKs.
func newTestUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	s := NewUserStore(db)
	u, err := s.Create("tester-"+suffix, "tester-"+suffix+"@example.com", "Test", "User", "secret123")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM comments WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = $1)", u.ID)
		db.Exec("DELETE FROM posts WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// newTestCategory inserts a category and registers cleanup.
func newTestCategory(t *testing.T, db *sql.DB, published bool) *models.Category {
	t.Helper()

	suffix := uuid.NewString()[:8]
	c := &models.Category{}
	err := db.QueryRow(`
		INSERT INTO categories (title, slug, description, is_published)
		VALUES ($1, $2, '', $3)
		RETURNING id, title, slug, description, is_published, created_at
	`, "Test Category "+suffix, "test-cat-"+suffix, published).Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsPublished, &c.CreatedAt)
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// newTestPost inserts a post directly and returns its ID. Post rows are
// removed by the owning test user's cleanup.
func newTestPost(t *testing.T, db *sql.DB, authorID int64, categoryID *int64, pubDate time.Time, published bool) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(`
		INSERT INTO posts (title, body, pub_date, is_published, author_id, category_id)
		VALUES ($1, 'body', $2, $3, $4, $5)
		RETURNING id
	`, "Test Post "+uuid.NewString()[:8], pubDate, published, authorID, categoryID).Scan(&id)
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return id
}
