// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/render"
	"blogicum/internal/storage"
	"blogicum/internal/store"
)

// Pagination describes the current position in a paginated feed.
type Pagination struct {
	Page       int
	TotalPages int
	PrevPage   int
	NextPage   int
	HasPrev    bool
	HasNext    bool
}

// paginate builds a Pagination for the given page and total row count.
// Pages are 1-based; out-of-range pages are clamped.
func paginate(page, perPage, total int) *Pagination {
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return &Pagination{
		Page:       page,
		TotalPages: totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// pageParam reads the ?page= query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// attachImageURLs fills in the derived ImageURL field for posts that have
// an image key. No-op when object storage is not configured.
func attachImageURLs(posts []models.Post, st *storage.Client) {
	if st == nil {
		return
	}
	for i := range posts {
		if posts[i].ImageKey != nil {
			posts[i].ImageURL = st.FileURL(*posts[i].ImageKey)
		}
	}
}

// Feeds groups handlers for the three paginated post listings: the home
// feed, category feeds, and author profile feeds.
type Feeds struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	userStore     *store.UserStore
	storageClient *storage.Client
	perPage       int
}

// NewFeeds creates a new Feeds handler group. storageClient may be nil if
// S3 is not configured.
func NewFeeds(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, userStore *store.UserStore, storageClient *storage.Client, perPage int) *Feeds {
	return &Feeds{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		userStore:     userStore,
		storageClient: storageClient,
		perPage:       perPage,
	}
}

// Home renders the public home feed: publicly visible posts, newest first.
func (f *Feeds) Home(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	total, err := f.postStore.CountPublic(now)
	if err != nil {
		slog.Error("count public posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pg := paginate(pageParam(r), f.perPage, total)
	posts, err := f.postStore.ListPublic(now, f.perPage, (pg.Page-1)*f.perPage)
	if err != nil {
		slog.Error("list public posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	attachImageURLs(posts, f.storageClient)

	f.renderer.Page(w, r, "index", &render.PageData{
		Title: "Latest posts",
		Data: map[string]any{
			"Posts":      posts,
			"Pagination": pg,
		},
	})
}

// Category renders the feed of publicly visible posts in one published
// category. Unpublished or unknown categories yield a 404.
func (f *Feeds) Category(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	category, err := f.categoryStore.FindPublishedBySlug(slugParam)
	if err != nil {
		slog.Error("find category failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		f.renderer.NotFound(w, r)
		return
	}

	now := time.Now()
	total, err := f.postStore.CountByCategory(category.ID, now)
	if err != nil {
		slog.Error("count category posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pg := paginate(pageParam(r), f.perPage, total)
	posts, err := f.postStore.ListByCategory(category.ID, now, f.perPage, (pg.Page-1)*f.perPage)
	if err != nil {
		slog.Error("list category posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	attachImageURLs(posts, f.storageClient)

	f.renderer.Page(w, r, "category", &render.PageData{
		Title: category.Title,
		Data: map[string]any{
			"Category":   category,
			"Posts":      posts,
			"Pagination": pg,
		},
	})
}

// Profile renders an author's post feed. The owner sees all of their own
// posts, drafts and scheduled ones included; everyone else sees only the
// publicly visible subset.
func (f *Feeds) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := f.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("find profile user failed", "error", err, "username", username)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		f.renderer.NotFound(w, r)
		return
	}

	now := time.Now()
	viewerID := middleware.ViewerID(r.Context())
	includeHidden := viewerID == user.ID

	total, err := f.postStore.CountByAuthor(user.ID, includeHidden, now)
	if err != nil {
		slog.Error("count author posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pg := paginate(pageParam(r), f.perPage, total)
	posts, err := f.postStore.ListByAuthor(user.ID, includeHidden, now, f.perPage, (pg.Page-1)*f.perPage)
	if err != nil {
		slog.Error("list author posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	attachImageURLs(posts, f.storageClient)

	f.renderer.Page(w, r, "profile", &render.PageData{
		Title: user.FullName(),
		Data: map[string]any{
			"Profile":    user,
			"IsOwner":    includeHidden,
			"Posts":      posts,
			"Pagination": pg,
		},
	})
}
