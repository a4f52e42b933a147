// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Post represents a blog post. PubDate may be in the future (scheduled
// publishing); IsPublished together with the category's publish state and
// PubDate decides public visibility, see the policy package.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	ImageKey    *string    `json:"image_key,omitempty"` // S3 object key, nil when no image
	PubDate     time.Time  `json:"pub_date"`
	IsPublished bool       `json:"is_published"`
	AuthorID    int64      `json:"author_id"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	LocationID  *int64     `json:"location_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Joined fields populated by store queries.
	AuthorUsername string    `json:"author_username,omitempty"`
	Category       *Category `json:"category,omitempty"`
	Location       *Location `json:"location,omitempty"`

	// CommentCount is a derived attribute recomputed per listing query,
	// never stored.
	CommentCount int `json:"comment_count"`

	// ImageURL is derived from ImageKey by the handlers when object
	// storage is configured. Never stored.
	ImageURL string `json:"image_url,omitempty"`
}

// Scheduled returns true if the post's publish date has not elapsed yet
// relative to now.
func (p *Post) Scheduled(now time.Time) bool {
	return p.PubDate.After(now)
}
