// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"blogicum/internal/database"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/render"
	"blogicum/internal/session"
	"blogicum/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogicum")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogicum")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Renderer      *render.Renderer
	Sessions      *session.Store
	UserStore     *store.UserStore
	CategoryStore *store.CategoryStore
	LocationStore *store.LocationStore
	PostStore     *store.PostStore
	CommentStore  *store.CommentStore
	Feeds         *Feeds
	Posts         *Posts
	Auth          *Auth
	Profile       *Profile
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	locationStore := store.NewLocationStore(db)
	postStore := store.NewPostStore(db)
	commentStore := store.NewCommentStore(db)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Renderer:      renderer,
		Sessions:      sessions,
		UserStore:     userStore,
		CategoryStore: categoryStore,
		LocationStore: locationStore,
		PostStore:     postStore,
		CommentStore:  commentStore,
		Feeds:         NewFeeds(renderer, postStore, categoryStore, userStore, nil, 10),
		Posts:         NewPosts(renderer, postStore, categoryStore, locationStore, commentStore, nil, true),
		Auth:          NewAuth(renderer, sessions, userStore),
		Profile:       NewProfile(renderer, sessions, userStore),
	}
}

// newTestUser creates a user row and registers cleanup of the user and
// everything they authored.
func (e *testEnv) newTestUser(t *testing.T) *models.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	user, err := e.UserStore.Create("author_"+suffix, "author_"+suffix+"@example.com", "Test", "Author", "test-password-1")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}

	t.Cleanup(func() {
		e.DB.Exec("DELETE FROM comments WHERE author_id = $1 OR post_id IN (SELECT id FROM posts WHERE author_id = $1)", user.ID)
		e.DB.Exec("DELETE FROM posts WHERE author_id = $1", user.ID)
		e.DB.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})
	return user
}

// newTestPost creates a post row for the given author.
func (e *testEnv) newTestPost(t *testing.T, authorID int64, published bool, pubDate time.Time) *models.Post {
	t.Helper()

	post, err := e.PostStore.Create(&models.Post{
		Title:       "Test post " + uuid.NewString()[:8],
		Body:        "Test body.",
		PubDate:     pubDate,
		IsPublished: published,
		AuthorID:    authorID,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return post
}

// testSession creates a fully authenticated session.Data for a user.
func testSession(user *models.User) *session.Data {
	return &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		TwoFADone: true,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withChiURLParams adds chi URL parameters and an optional session to a request.
func withChiURLParams(r *http.Request, params map[string]string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = ctxWithSession(ctx, sess)
	}
	return r.WithContext(ctx)
}
