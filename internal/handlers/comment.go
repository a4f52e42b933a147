// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/render"
)

// CommentCreate attaches a new comment to a post. Commenting follows the
// view policy: posts the viewer cannot see cannot be commented on either.
func (h *Posts) CommentCreate(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadVisiblePost(w, r)
	if !ok {
		return
	}

	body := r.FormValue("body")
	if msg := validateComment(body); msg != "" {
		h.renderDetail(w, r, post, body, []string{msg})
		return
	}

	viewerID := middleware.ViewerID(r.Context())
	if _, err := h.commentStore.Create(post.ID, viewerID, body); err != nil {
		slog.Error("create comment failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
}

// loadOwnComment fetches the comment addressed by the URL and enforces the
// mutation policy: only the comment's author may proceed. Other viewers
// are redirected to the post detail page.
func (h *Posts) loadOwnComment(w http.ResponseWriter, r *http.Request) (*models.Post, *models.Comment, bool) {
	post, ok := h.loadVisiblePost(w, r)
	if !ok {
		return nil, nil, false
	}

	commentID, ok := idParam(r, "cid")
	if !ok {
		h.renderer.NotFound(w, r)
		return nil, nil, false
	}

	comment, err := h.commentStore.FindByID(post.ID, commentID)
	if err != nil {
		slog.Error("find comment failed", "error", err, "comment_id", commentID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, nil, false
	}
	if comment == nil {
		h.renderer.NotFound(w, r)
		return nil, nil, false
	}
	if comment.AuthorID != middleware.ViewerID(r.Context()) {
		http.Redirect(w, r, "/posts/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
		return nil, nil, false
	}
	return post, comment, true
}

// CommentEditForm renders the comment edit form.
func (h *Posts) CommentEditForm(w http.ResponseWriter, r *http.Request) {
	post, comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "comment_form", &render.PageData{
		Title: "Edit comment",
		Data: map[string]any{
			"Post":    post,
			"Comment": comment,
		},
	})
}

// CommentUpdate handles the comment edit form submission.
func (h *Posts) CommentUpdate(w http.ResponseWriter, r *http.Request) {
	post, comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}

	body := r.FormValue("body")
	if msg := validateComment(body); msg != "" {
		comment.Body = body
		h.renderer.Page(w, r, "comment_form", &render.PageData{
			Title: "Edit comment",
			Data: map[string]any{
				"Post":    post,
				"Comment": comment,
				"Errors":  []string{msg},
			},
		})
		return
	}

	if err := h.commentStore.Update(comment.ID, body); err != nil {
		slog.Error("update comment failed", "error", err, "comment_id", comment.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
}

// CommentDeleteConfirm renders the comment deletion confirmation page.
func (h *Posts) CommentDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	post, comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "confirm_delete", &render.PageData{
		Title: "Delete comment",
		Data: map[string]any{
			"Post":    post,
			"Comment": comment,
		},
	})
}

// CommentDelete removes a comment.
func (h *Posts) CommentDelete(w http.ResponseWriter, r *http.Request) {
	post, comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}

	if err := h.commentStore.Delete(comment.ID); err != nil {
		slog.Error("delete comment failed", "error", err, "comment_id", comment.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
}
