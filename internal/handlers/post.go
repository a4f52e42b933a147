// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/render"
	"blogicum/internal/storage"
	"blogicum/internal/store"
)

// maxUploadSize is the maximum allowed post image size (10 MB).
const maxUploadSize = 10 << 20

// pubDateLayout matches the browser's datetime-local input format.
const pubDateLayout = "2006-01-02T15:04"

// allowedImageTypes defines MIME types accepted for post images.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Posts groups handlers for post pages and post/comment mutations.
type Posts struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	locationStore *store.LocationStore
	commentStore  *store.CommentStore
	storageClient *storage.Client
	autoDraft     bool
}

// NewPosts creates a new Posts handler group. storageClient may be nil if
// S3 is not configured; image uploads are then silently skipped.
func NewPosts(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, locationStore *store.LocationStore, commentStore *store.CommentStore, storageClient *storage.Client, autoDraft bool) *Posts {
	return &Posts{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		locationStore: locationStore,
		commentStore:  commentStore,
		storageClient: storageClient,
		autoDraft:     autoDraft,
	}
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// Detail renders a single post with its comments. Posts the viewer is not
// allowed to see render the 404 page, indistinguishable from missing ones.
func (h *Posts) Detail(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadVisiblePost(w, r)
	if !ok {
		return
	}
	h.renderDetail(w, r, post, "", nil)
}

// renderDetail renders the detail page for a post, optionally with a
// rejected comment body and its validation errors.
func (h *Posts) renderDetail(w http.ResponseWriter, r *http.Request, post *models.Post, commentBody string, errs []string) {
	comments, err := h.commentStore.ListByPost(post.ID)
	if err != nil {
		slog.Error("list comments failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	viewerID := middleware.ViewerID(r.Context())
	if h.storageClient != nil && post.ImageKey != nil {
		post.ImageURL = h.storageClient.FileURL(*post.ImageKey)
	}

	h.renderer.Page(w, r, "detail", &render.PageData{
		Title: post.Title,
		Data: map[string]any{
			"Post":        post,
			"Comments":    comments,
			"CanEdit":     policy.CanMutate(post.AuthorID, viewerID),
			"ViewerID":    viewerID,
			"CommentBody": commentBody,
			"Errors":      errs,
		},
	})
}

// loadVisiblePost fetches the post from the URL and applies the view
// policy. On failure it has already written the 404 or error response.
func (h *Posts) loadVisiblePost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	post, err := h.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "post_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if post == nil || !policy.CanView(post, middleware.ViewerID(r.Context()), time.Now()) {
		h.renderer.NotFound(w, r)
		return nil, false
	}
	return post, true
}

// loadOwnPost fetches the post and enforces the mutation policy: only the
// author may proceed. Other viewers are redirected to the detail page
// (which itself applies the view policy).
func (h *Posts) loadOwnPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	post, err := h.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "post_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if post == nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}
	if !policy.CanMutate(post.AuthorID, middleware.ViewerID(r.Context())) {
		http.Redirect(w, r, "/posts/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
		return nil, false
	}
	return post, true
}

// NewForm renders the empty post creation form.
func (h *Posts) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, map[string]string{
		"pub_date":     time.Now().Format(pubDateLayout),
		"is_published": "true",
	}, nil, false)
}

// Create handles the post creation form submission.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	form, post, errs := h.parsePostForm(w, r)
	if len(errs) > 0 {
		h.renderForm(w, r, form, errs, false)
		return
	}

	imageKey, errMsg := h.uploadImage(r)
	if errMsg != "" {
		h.renderForm(w, r, form, []string{errMsg}, false)
		return
	}
	post.ImageKey = imageKey
	post.AuthorID = middleware.ViewerID(r.Context())

	created, err := h.postStore.Create(post)
	if err != nil {
		slog.Error("create post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(created.ID, 10), http.StatusSeeOther)
}

// EditForm renders the post edit form pre-filled with the current values.
func (h *Posts) EditForm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}

	form := map[string]string{
		"title":    post.Title,
		"body":     post.Body,
		"pub_date": post.PubDate.Format(pubDateLayout),
	}
	if post.IsPublished {
		form["is_published"] = "true"
	}
	if post.CategoryID != nil {
		form["category_id"] = strconv.FormatInt(*post.CategoryID, 10)
	}
	if post.LocationID != nil {
		form["location_id"] = strconv.FormatInt(*post.LocationID, 10)
	}

	h.renderForm(w, r, form, nil, true)
}

// Update handles the post edit form submission. The publish state is
// re-derived on every save: rescheduling a post into the future puts it
// back into draft when auto-draft is on.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}

	form, updated, errs := h.parsePostForm(w, r)
	if len(errs) > 0 {
		h.renderForm(w, r, form, errs, true)
		return
	}

	imageKey, errMsg := h.uploadImage(r)
	if errMsg != "" {
		h.renderForm(w, r, form, []string{errMsg}, true)
		return
	}

	updated.ID = post.ID
	updated.AuthorID = post.AuthorID
	updated.ImageKey = post.ImageKey
	if imageKey != nil {
		// Replace the old image; removal failures only cost storage space.
		if post.ImageKey != nil && h.storageClient != nil {
			if err := h.storageClient.Delete(r.Context(), *post.ImageKey); err != nil {
				slog.Warn("delete replaced image failed", "error", err, "key", *post.ImageKey)
			}
		}
		updated.ImageKey = imageKey
	}

	if err := h.postStore.Update(updated); err != nil {
		slog.Error("update post failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
}

// DeleteConfirm renders the post deletion confirmation page.
func (h *Posts) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "confirm_delete", &render.PageData{
		Title: "Delete post",
		Data:  map[string]any{"Post": post},
	})
}

// Delete removes a post together with its comments and its stored image.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}

	if post.ImageKey != nil && h.storageClient != nil {
		if err := h.storageClient.Delete(r.Context(), *post.ImageKey); err != nil {
			slog.Warn("delete post image failed", "error", err, "key", *post.ImageKey)
		}
	}

	if err := h.postStore.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderForm renders the post form with the given values and errors.
func (h *Posts) renderForm(w http.ResponseWriter, r *http.Request, form map[string]string, errs []string, isEdit bool) {
	categories, err := h.categoryStore.ListPublished()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	locations, err := h.locationStore.ListPublished()
	if err != nil {
		slog.Error("list locations failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	title := "New post"
	if isEdit {
		title = "Edit post"
	}
	h.renderer.Page(w, r, "post_form", &render.PageData{
		Title: title,
		Data: map[string]any{
			"Form":       form,
			"Errors":     errs,
			"Categories": categories,
			"Locations":  locations,
			"IsEdit":     isEdit,
		},
	})
}

// parsePostForm parses and validates the post form. It returns the raw
// form values for re-rendering, the post assembled from them, and any
// validation errors. The publish state is derived via the policy rules.
func (h *Posts) parsePostForm(w http.ResponseWriter, r *http.Request) (map[string]string, *models.Post, []string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+10*1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return map[string]string{}, nil, []string{"Upload too large. Maximum image size is 10 MB."}
	}

	form := map[string]string{
		"title":        r.FormValue("title"),
		"body":         r.FormValue("body"),
		"pub_date":     r.FormValue("pub_date"),
		"category_id":  r.FormValue("category_id"),
		"location_id":  r.FormValue("location_id"),
		"is_published": r.FormValue("is_published"),
	}

	errs := validatePost(form["title"], form["body"])

	now := time.Now()
	pubDate := now
	if form["pub_date"] != "" {
		parsed, err := time.ParseInLocation(pubDateLayout, form["pub_date"], time.Local)
		if err != nil {
			errs = append(errs, "Publish date is not valid.")
		} else {
			pubDate = parsed
		}
	}

	var categoryID *int64
	if form["category_id"] != "" {
		id, err := strconv.ParseInt(form["category_id"], 10, 64)
		if err != nil {
			errs = append(errs, "Category is not valid.")
		} else {
			category, err := h.categoryStore.FindPublishedByID(id)
			if err != nil {
				slog.Error("find category failed", "error", err, "category_id", id)
				errs = append(errs, "Category is not valid.")
			} else if category == nil {
				errs = append(errs, "Category is not valid.")
			} else {
				categoryID = &category.ID
			}
		}
	}

	var locationID *int64
	if form["location_id"] != "" {
		id, err := strconv.ParseInt(form["location_id"], 10, 64)
		if err != nil {
			errs = append(errs, "Location is not valid.")
		} else {
			location, err := h.locationStore.FindPublishedByID(id)
			if err != nil {
				slog.Error("find location failed", "error", err, "location_id", id)
				errs = append(errs, "Location is not valid.")
			} else if location == nil {
				errs = append(errs, "Location is not valid.")
			} else {
				locationID = &location.ID
			}
		}
	}

	if len(errs) > 0 {
		return form, nil, errs
	}

	wantPublished := form["is_published"] == "true"
	post := &models.Post{
		Title:       strings.TrimSpace(form["title"]),
		Body:        form["body"],
		PubDate:     pubDate,
		IsPublished: policy.PublishState(wantPublished, pubDate, now, h.autoDraft),
		CategoryID:  categoryID,
		LocationID:  locationID,
	}
	return form, post, nil
}

// uploadImage stores an uploaded post image in object storage and returns
// its key. Returns (nil, "") when no image was submitted or storage is not
// configured, and a user-facing message when the upload is rejected.
func (h *Posts) uploadImage(r *http.Request) (*string, string) {
	if h.storageClient == nil {
		return nil, ""
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, ""
		}
		return nil, "Failed to read the uploaded image."
	}
	defer file.Close()

	// Browsers submit an empty part when no file is chosen.
	if header.Filename == "" || header.Size == 0 {
		return nil, ""
	}
	if header.Size > maxUploadSize {
		return nil, "Image too large. Maximum size is 10 MB."
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		return nil, "Failed to read the uploaded image."
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, "Only JPEG, PNG, GIF, and WebP images are allowed."
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "Failed to process the uploaded image."
	}

	key := "posts/" + uuid.NewString() + ext
	if err := h.storageClient.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		slog.Error("image upload failed", "error", err, "key", key)
		return nil, "Failed to store the uploaded image."
	}
	return &key, ""
}
