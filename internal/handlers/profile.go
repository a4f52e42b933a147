// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"blogicum/internal/middleware"
	"blogicum/internal/render"
	"blogicum/internal/session"
	"blogicum/internal/store"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "Blogicum"

// Profile groups handlers for the logged-in user's own account pages.
type Profile struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewProfile creates a new Profile handler group.
func NewProfile(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Profile {
	return &Profile{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// EditForm renders the profile edit form pre-filled with current values.
func (p *Profile) EditForm(w http.ResponseWriter, r *http.Request) {
	user, err := p.userStore.FindByID(middleware.ViewerID(r.Context()))
	if err != nil || user == nil {
		slog.Error("profile user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "profile_form", &render.PageData{
		Title: "Edit profile",
		Data: map[string]any{
			"Form": map[string]string{
				"email":      user.Email,
				"first_name": user.FirstName,
				"last_name":  user.LastName,
			},
		},
	})
}

// EditSubmit processes the profile edit form.
func (p *Profile) EditSubmit(w http.ResponseWriter, r *http.Request) {
	user, err := p.userStore.FindByID(middleware.ViewerID(r.Context()))
	if err != nil || user == nil {
		slog.Error("profile user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	form := map[string]string{
		"email":      strings.TrimSpace(r.FormValue("email")),
		"first_name": strings.TrimSpace(r.FormValue("first_name")),
		"last_name":  strings.TrimSpace(r.FormValue("last_name")),
	}

	errs := validateProfile(form["email"], form["first_name"], form["last_name"])

	if len(errs) == 0 && form["email"] != user.Email {
		existing, err := p.userStore.FindByEmail(form["email"])
		if err != nil {
			slog.Error("profile email lookup failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			errs = append(errs, "An account with this email already exists.")
		}
	}

	if len(errs) > 0 {
		p.renderer.Page(w, r, "profile_form", &render.PageData{
			Title: "Edit profile",
			Data:  map[string]any{"Form": form, "Errors": errs},
		})
		return
	}

	if err := p.userStore.UpdateProfile(user.ID, user.Username, form["email"], form["first_name"], form["last_name"]); err != nil {
		slog.Error("update profile failed", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/profile/"+user.Username, http.StatusSeeOther)
}

// SecurityPage renders the 2FA setup page. For accounts without 2FA a
// fresh TOTP secret is generated and shown as a QR code; enabling it
// requires confirming a valid code.
func (p *Profile) SecurityPage(w http.ResponseWriter, r *http.Request) {
	user, err := p.userStore.FindByID(middleware.ViewerID(r.Context()))
	if err != nil || user == nil {
		slog.Error("security user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPEnabled {
		p.renderer.Page(w, r, "twofa_setup", &render.PageData{
			Title: "Two-factor authentication",
			Data:  map[string]any{"Enabled": true},
		})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := p.userStore.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qr, err := qrDataURI(key.URL())
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "twofa_setup", &render.PageData{
		Title: "Two-factor authentication",
		Data: map[string]any{
			"QRCode": qr,
			"Secret": key.Secret(),
		},
	})
}

// SecuritySubmit validates the confirmation code and enables 2FA.
func (p *Profile) SecuritySubmit(w http.ResponseWriter, r *http.Request) {
	user, err := p.userStore.FindByID(middleware.ViewerID(r.Context()))
	if err != nil || user == nil {
		slog.Error("security user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPEnabled {
		http.Redirect(w, r, "/profile/security", http.StatusSeeOther)
		return
	}
	if user.TOTPSecret == nil {
		// No pending secret: start over via the setup page.
		http.Redirect(w, r, "/profile/security", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		// Re-render the setup page with the same secret.
		qr, err := qrDataURI(otpauthURL(user.Username, *user.TOTPSecret))
		if err != nil {
			slog.Error("qr code generation failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		p.renderer.Page(w, r, "twofa_setup", &render.PageData{
			Title: "Two-factor authentication",
			Data: map[string]any{
				"QRCode": qr,
				"Secret": *user.TOTPSecret,
				"Error":  "Invalid code. Please try again.",
			},
		})
		return
	}

	if err := p.userStore.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/profile/security", http.StatusSeeOther)
}

// qrDataURI encodes an otpauth URL as a PNG QR code data URI suitable for
// an <img> src attribute.
func qrDataURI(otpauth string) (template.URL, error) {
	png, err := qrcode.Encode(otpauth, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

// otpauthURL rebuilds the provisioning URL for an existing secret.
func otpauthURL(account, secret string) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s", totpIssuer, account, secret, totpIssuer)
}
