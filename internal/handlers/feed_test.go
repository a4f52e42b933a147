package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHomeFeedFiltersHidden(t *testing.T) {
	env := newTestEnv(t)
	author := env.newTestUser(t)

	visible := env.newTestPost(t, author.ID, true, time.Now().Add(-time.Hour))
	draft := env.newTestPost(t, author.ID, false, time.Now().Add(-time.Hour))
	scheduled := env.newTestPost(t, author.ID, true, time.Now().Add(24*time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	env.Feeds.Home(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, visible.Title) {
		t.Error("home feed should contain the visible post")
	}
	if strings.Contains(body, draft.Title) {
		t.Error("home feed should not contain drafts")
	}
	if strings.Contains(body, scheduled.Title) {
		t.Error("home feed should not contain scheduled posts")
	}
}

func TestProfileFeedOwnerPreview(t *testing.T) {
	env := newTestEnv(t)
	author := env.newTestUser(t)
	stranger := env.newTestUser(t)

	draft := env.newTestPost(t, author.ID, false, time.Now().Add(-time.Hour))

	// The owner sees their drafts on their own profile.
	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/profile/"+author.Username, nil),
		map[string]string{"username": author.Username}, testSession(author))
	w := httptest.NewRecorder()
	env.Feeds.Profile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("owner: status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), draft.Title) {
		t.Error("owner should see their draft on their profile")
	}

	// A stranger sees only the public subset.
	req = withChiURLParams(httptest.NewRequest(http.MethodGet, "/profile/"+author.Username, nil),
		map[string]string{"username": author.Username}, testSession(stranger))
	w = httptest.NewRecorder()
	env.Feeds.Profile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("stranger: status %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), draft.Title) {
		t.Error("stranger should not see drafts on another profile")
	}
}

func TestProfileUnknownUser404(t *testing.T) {
	env := newTestEnv(t)

	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/profile/nobody-here", nil),
		map[string]string{"username": "nobody-here"}, nil)
	w := httptest.NewRecorder()
	env.Feeds.Profile(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}

func TestCategoryFeed(t *testing.T) {
	env := newTestEnv(t)
	author := env.newTestUser(t)

	suffix := uuid.NewString()[:8]
	var categoryID int64
	err := env.DB.QueryRow(
		`INSERT INTO categories (title, slug, description, is_published) VALUES ($1, $2, '', TRUE) RETURNING id`,
		"Travel "+suffix, "travel-"+suffix,
	).Scan(&categoryID)
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM categories WHERE id = $1", categoryID)
	})

	post := env.newTestPost(t, author.ID, true, time.Now().Add(-time.Hour))
	if _, err := env.DB.Exec("UPDATE posts SET category_id = $1 WHERE id = $2", categoryID, post.ID); err != nil {
		t.Fatalf("assign category: %v", err)
	}

	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/category/travel-"+suffix, nil),
		map[string]string{"slug": "travel-" + suffix}, nil)
	w := httptest.NewRecorder()
	env.Feeds.Category(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), post.Title) {
		t.Error("category feed should contain the post")
	}
}

func TestCategoryFeedHiddenCategory404(t *testing.T) {
	env := newTestEnv(t)

	suffix := uuid.NewString()[:8]
	var categoryID int64
	err := env.DB.QueryRow(
		`INSERT INTO categories (title, slug, description, is_published) VALUES ($1, $2, '', FALSE) RETURNING id`,
		"Hidden "+suffix, "hidden-"+suffix,
	).Scan(&categoryID)
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM categories WHERE id = $1", categoryID)
	})

	// An unpublished category's feed is a 404, same as a missing one.
	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/category/hidden-"+suffix, nil),
		map[string]string{"slug": "hidden-" + suffix}, nil)
	w := httptest.NewRecorder()
	env.Feeds.Category(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name           string
		page, perPage  int
		total          int
		wantPage       int
		wantTotalPages int
		wantHasPrev    bool
		wantHasNext    bool
	}{
		{"first of three", 1, 10, 25, 1, 3, false, true},
		{"middle page", 2, 10, 25, 2, 3, true, true},
		{"last page", 3, 10, 25, 3, 3, true, false},
		{"page clamped high", 99, 10, 25, 3, 3, true, false},
		{"page clamped low", 0, 10, 25, 1, 3, false, true},
		{"empty feed", 1, 10, 0, 1, 1, false, false},
		{"exact multiple", 2, 10, 20, 2, 2, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := paginate(tt.page, tt.perPage, tt.total)
			if pg.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pg.Page, tt.wantPage)
			}
			if pg.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages: got %d, want %d", pg.TotalPages, tt.wantTotalPages)
			}
			if pg.HasPrev != tt.wantHasPrev {
				t.Errorf("HasPrev: got %v, want %v", pg.HasPrev, tt.wantHasPrev)
			}
			if pg.HasNext != tt.wantHasNext {
				t.Errorf("HasNext: got %v, want %v", pg.HasNext, tt.wantHasNext)
			}
		})
	}
}
