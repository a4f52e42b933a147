// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policy implements the visibility and authorization rules applied
// to posts and comments. All functions are pure predicates: the viewer
// identity and the current time are passed in explicitly, and no state is
// read or written. Store listing queries mirror PubliclyVisible in SQL;
// when the rule changes, both places must change together.
package policy

import (
	"time"

	"blogicum/internal/models"
)

// Anonymous is the viewer ID of an unauthenticated visitor. It never
// equals a real author ID (user IDs start at 1).
const Anonymous int64 = 0

// PubliclyVisible reports whether a post may be shown to the general
// public at the given instant. A post is publicly visible iff it is
// published, its category (if any) is published, and its publish date has
// elapsed. Evaluated at call time: a scheduled post flips visible once
// now passes PubDate.
func PubliclyVisible(p *models.Post, now time.Time) bool {
	if !p.IsPublished {
		return false
	}
	if p.Category != nil && !p.Category.IsPublished {
		return false
	}
	return !p.PubDate.After(now)
}

// CanView reports whether the given viewer may see the post. Authors
// always see their own posts regardless of publish state (owner preview);
// everyone else sees only publicly visible posts.
func CanView(p *models.Post, viewerID int64, now time.Time) bool {
	if viewerID != Anonymous && viewerID == p.AuthorID {
		return true
	}
	return PubliclyVisible(p, now)
}

// CanMutate reports whether the viewer may edit or delete an entity owned
// by authorID. The rule is identical for posts and comments: only the
// owning author, never an anonymous viewer. Handlers that fail this check
// redirect to the entity's detail view rather than erroring, so a denied
// request is indistinguishable from a voluntary navigation.
func CanMutate(authorID, viewerID int64) bool {
	return viewerID != Anonymous && viewerID == authorID
}

// PublishState derives the stored is_published flag from the requested
// value and the publish date. When autoDraft is on, a future publish date
// forces the post into draft regardless of what was requested; the post
// stays hidden until an edit re-saves it after the date has passed.
// Nothing re-publishes scheduled posts automatically.
func PublishState(wantPublished bool, pubDate, now time.Time, autoDraft bool) bool {
	if autoDraft && pubDate.After(now) {
		return false
	}
	return wantPublished
}
