package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for form fields.
const (
	maxUsernameLen = 150
	maxEmailLen    = 254
	maxNameLen     = 150
	maxTitleLen    = 256
	maxBodyLen     = 100_000
	maxCommentLen  = 10_000
	minPasswordLen = 8
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// validateRegistration checks registration form inputs and returns all
// errors found, in field order.
func validateRegistration(username, email, firstName, lastName, password, passwordConfirm string) []string {
	var errs []string

	username = strings.TrimSpace(username)
	switch {
	case username == "":
		errs = append(errs, "Username is required.")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		errs = append(errs, "Username is too long (max 150 characters).")
	case !usernameRe.MatchString(username):
		errs = append(errs, "Username may only contain letters, digits, and _ . -")
	}

	if msg := validateEmail(email); msg != "" {
		errs = append(errs, msg)
	}
	if utf8.RuneCountInString(firstName) > maxNameLen {
		errs = append(errs, "First name is too long (max 150 characters).")
	}
	if utf8.RuneCountInString(lastName) > maxNameLen {
		errs = append(errs, "Last name is too long (max 150 characters).")
	}

	switch {
	case password == "":
		errs = append(errs, "Password is required.")
	case utf8.RuneCountInString(password) < minPasswordLen:
		errs = append(errs, "Password must be at least 8 characters.")
	case password != passwordConfirm:
		errs = append(errs, "Passwords do not match.")
	}

	return errs
}

// validateEmail checks a single email field and returns the error, if any.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long (max 254 characters)."
	}
	// Structural check only; a confirmation mail is the real validator.
	at := strings.IndexByte(email, '@')
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return "Email address is not valid."
	}
	return ""
}

// validatePost checks post form inputs and returns all errors found.
func validatePost(title, body string) []string {
	var errs []string

	title = strings.TrimSpace(title)
	switch {
	case title == "":
		errs = append(errs, "Title is required.")
	case utf8.RuneCountInString(title) > maxTitleLen:
		errs = append(errs, "Title is too long (max 256 characters).")
	}

	body = strings.TrimSpace(body)
	switch {
	case body == "":
		errs = append(errs, "Body is required.")
	case utf8.RuneCountInString(body) > maxBodyLen:
		errs = append(errs, "Body is too long (max 100,000 characters).")
	}

	return errs
}

// validateComment checks a comment body and returns the error, if any.
func validateComment(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return "Comment must not be empty."
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return "Comment is too long (max 10,000 characters)."
	}
	return ""
}

// validateProfile checks profile edit form inputs.
func validateProfile(email, firstName, lastName string) []string {
	var errs []string
	if msg := validateEmail(email); msg != "" {
		errs = append(errs, msg)
	}
	if utf8.RuneCountInString(firstName) > maxNameLen {
		errs = append(errs, "First name is too long (max 150 characters).")
	}
	if utf8.RuneCountInString(lastName) > maxNameLen {
		errs = append(errs, "Last name is too long (max 150 characters).")
	}
	return errs
}
