// Package router sets up all HTTP routes and middleware chains for the
// blog. It organizes routes into public and authenticated groups with
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogicum/internal/handlers"
	"blogicum/internal/middleware"
	"blogicum/internal/render"
	"blogicum/internal/session"
	"blogicum/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. loginLimiter throttles credential endpoints;
// secureCookies controls the CSRF cookie's Secure flag.
func New(sessionStore *session.Store, loginLimiter *middleware.RateLimiter, secureCookies bool, renderer *render.Renderer, feeds *handlers.Feeds, posts *handlers.Posts, auth *handlers.Auth, profile *handlers.Profile) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.NewCSRF(secureCookies))
	r.Use(middleware.LoadSession(sessionStore))

	r.NotFound(renderer.NotFound)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	// Embedded static assets.
	r.Handle("/static/*", http.FileServer(http.FS(web.Static)))

	// Public feeds and post pages.
	r.Get("/", feeds.Home)
	r.Get("/category/{slug}", feeds.Category)
	r.Get("/profile/{username}", feeds.Profile)
	r.Get("/posts/{id}", posts.Detail)

	// Account pages. Credential submissions are rate limited per IP.
	r.Get("/register", auth.RegisterPage)
	r.Get("/login", auth.LoginPage)
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Middleware)
		r.Post("/register", auth.RegisterSubmit)
		r.Post("/login", auth.LoginSubmit)
	})
	r.Get("/login/2fa", auth.TwoFAVerifyPage)
	r.Post("/login/2fa", auth.TwoFAVerifySubmit)
	r.Post("/logout", auth.Logout)

	// Everything below requires a fully authenticated session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/posts/new", posts.NewForm)
		r.Post("/posts/new", posts.Create)
		r.Get("/posts/{id}/edit", posts.EditForm)
		r.Post("/posts/{id}/edit", posts.Update)
		r.Get("/posts/{id}/delete", posts.DeleteConfirm)
		r.Post("/posts/{id}/delete", posts.Delete)

		r.Post("/posts/{id}/comments/new", posts.CommentCreate)
		r.Get("/posts/{id}/comments/{cid}/edit", posts.CommentEditForm)
		r.Post("/posts/{id}/comments/{cid}/edit", posts.CommentUpdate)
		r.Get("/posts/{id}/comments/{cid}/delete", posts.CommentDeleteConfirm)
		r.Post("/posts/{id}/comments/{cid}/delete", posts.CommentDelete)

		r.Get("/profile/edit", profile.EditForm)
		r.Post("/profile/edit", profile.EditSubmit)
		r.Get("/profile/security", profile.SecurityPage)
		r.Post("/profile/security", profile.SecuritySubmit)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
