package handlers

import (
	"strings"
	"testing"
)

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		confirm  string
		wantErr  string // substring of an expected error, "" for valid
	}{
		{"valid", "newuser", "new@example.com", "longenough", "longenough", ""},
		{"empty username", "", "new@example.com", "longenough", "longenough", "Username is required"},
		{"bad username chars", "no spaces!", "new@example.com", "longenough", "longenough", "may only contain"},
		{"empty email", "newuser", "", "longenough", "longenough", "Email is required"},
		{"bad email", "newuser", "not-an-email", "longenough", "longenough", "not valid"},
		{"short password", "newuser", "new@example.com", "short", "short", "at least 8"},
		{"mismatched passwords", "newuser", "new@example.com", "longenough", "different", "do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateRegistration(tt.username, tt.email, "", "", tt.password, tt.confirm)
			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if !containsSubstring(errs, tt.wantErr) {
				t.Errorf("expected an error containing %q, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		body    string
		wantErr string
	}{
		{"valid", "A title", "A body.", ""},
		{"empty title", "", "A body.", "Title is required"},
		{"whitespace title", "   ", "A body.", "Title is required"},
		{"empty body", "A title", "", "Body is required"},
		{"title too long", strings.Repeat("x", 300), "A body.", "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validatePost(tt.title, tt.body)
			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if !containsSubstring(errs, tt.wantErr) {
				t.Errorf("expected an error containing %q, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	if msg := validateComment("Looks good."); msg != "" {
		t.Errorf("valid comment rejected: %q", msg)
	}
	if msg := validateComment("   "); msg == "" {
		t.Error("blank comment should be rejected")
	}
	if msg := validateComment(strings.Repeat("x", maxCommentLen+1)); msg == "" {
		t.Error("oversized comment should be rejected")
	}
}

func TestValidateProfile(t *testing.T) {
	if errs := validateProfile("ok@example.com", "First", "Last"); len(errs) != 0 {
		t.Errorf("valid profile rejected: %v", errs)
	}
	if errs := validateProfile("broken", "First", "Last"); len(errs) == 0 {
		t.Error("invalid email should be rejected")
	}
	if errs := validateProfile("ok@example.com", strings.Repeat("x", maxNameLen+1), ""); len(errs) == 0 {
		t.Error("oversized first name should be rejected")
	}
}

func containsSubstring(errs []string, sub string) bool {
	for _, e := range errs {
		if strings.Contains(e, sub) {
			return true
		}
	}
	return false
}
