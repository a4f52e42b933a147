// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"blogicum/internal/models"
)

// PostStore handles all post-related database operations, including the
// filtered listing queries behind the three feeds.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postColumns selects a post with its author username, joined category and
// location, and the per-query comment count. Every listing and detail query
// shares this shape.
const postColumns = `
	p.id, p.title, p.body, p.image_key, p.pub_date, p.is_published,
	p.author_id, p.category_id, p.location_id, p.created_at, p.updated_at,
	u.username,
	c.id, c.title, c.slug, c.description, c.is_published, c.created_at,
	l.id, l.name, l.is_published, l.created_at,
	(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id)`

const postJoins = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN locations l ON l.id = p.location_id`

// visibleCond mirrors policy.PubliclyVisible as a WHERE fragment: published,
// category published or absent, publish date elapsed. $N is the `now`
// placeholder position. Keep in sync with the policy package.
const visibleCond = `p.is_published = TRUE
	AND (p.category_id IS NULL OR c.is_published = TRUE)
	AND p.pub_date <= `

// feedOrder gives listings a stable total order so pagination stays
// deterministic when publish timestamps tie.
const feedOrder = ` ORDER BY p.pub_date DESC, p.id DESC`

// scanPost reads one row of the postColumns shape.
func scanPost(rows interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	var (
		catID    sql.NullInt64
		catTitle, catSlug, catDesc sql.NullString
		catPub   sql.NullBool
		catAt    sql.NullTime
		locID    sql.NullInt64
		locName  sql.NullString
		locPub   sql.NullBool
		locAt    sql.NullTime
	)

	err := rows.Scan(
		&p.ID, &p.Title, &p.Body, &p.ImageKey, &p.PubDate, &p.IsPublished,
		&p.AuthorID, &p.CategoryID, &p.LocationID, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorUsername,
		&catID, &catTitle, &catSlug, &catDesc, &catPub, &catAt,
		&locID, &locName, &locPub, &locAt,
		&p.CommentCount,
	)
	if err != nil {
		return nil, err
	}

	if catID.Valid {
		p.Category = &models.Category{
			ID:          catID.Int64,
			Title:       catTitle.String,
			Slug:        catSlug.String,
			Description: catDesc.String,
			IsPublished: catPub.Bool,
			CreatedAt:   catAt.Time,
		}
	}
	if locID.Valid {
		p.Location = &models.Location{
			ID:          locID.Int64,
			Name:        locName.String,
			IsPublished: locPub.Bool,
			CreatedAt:   locAt.Time,
		}
	}
	return p, nil
}

func (s *PostStore) queryPosts(query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// FindByID retrieves one post with its joined category, location, author
// username, and comment count. Returns nil if not found. No visibility
// filter here; the handler decides via policy.CanView.
func (s *PostStore) FindByID(id int64) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT`+postColumns+postJoins+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// ListPublic returns one page of the global feed: publicly visible posts
// at the given instant, newest first.
func (s *PostStore) ListPublic(now time.Time, limit, offset int) ([]models.Post, error) {
	posts, err := s.queryPosts(
		`SELECT`+postColumns+postJoins+` WHERE `+visibleCond+`$1`+feedOrder+` LIMIT $2 OFFSET $3`,
		now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public posts: %w", err)
	}
	return posts, nil
}

// CountPublic returns the number of publicly visible posts at the given instant.
func (s *PostStore) CountPublic(now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*)`+postJoins+` WHERE `+visibleCond+`$1`, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count public posts: %w", err)
	}
	return count, nil
}

// ListByCategory returns one page of publicly visible posts in a category.
func (s *PostStore) ListByCategory(categoryID int64, now time.Time, limit, offset int) ([]models.Post, error) {
	posts, err := s.queryPosts(
		`SELECT`+postColumns+postJoins+` WHERE p.category_id = $1 AND `+visibleCond+`$2`+feedOrder+` LIMIT $3 OFFSET $4`,
		categoryID, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return posts, nil
}

// CountByCategory returns the number of publicly visible posts in a category.
func (s *PostStore) CountByCategory(categoryID int64, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*)`+postJoins+` WHERE p.category_id = $1 AND `+visibleCond+`$2`,
		categoryID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts by category: %w", err)
	}
	return count, nil
}

// ListByAuthor returns one page of an author's posts. When includeHidden
// is true (the profile owner viewing their own feed) the visibility filter
// is bypassed entirely: drafts, scheduled posts, and posts in hidden
// categories are all listed.
func (s *PostStore) ListByAuthor(authorID int64, includeHidden bool, now time.Time, limit, offset int) ([]models.Post, error) {
	var (
		posts []models.Post
		err   error
	)
	if includeHidden {
		posts, err = s.queryPosts(
			`SELECT`+postColumns+postJoins+` WHERE p.author_id = $1`+feedOrder+` LIMIT $2 OFFSET $3`,
			authorID, limit, offset)
	} else {
		posts, err = s.queryPosts(
			`SELECT`+postColumns+postJoins+` WHERE p.author_id = $1 AND `+visibleCond+`$2`+feedOrder+` LIMIT $3 OFFSET $4`,
			authorID, now, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return posts, nil
}

// CountByAuthor returns the number of an author's posts visible to the
// current viewer (all of them when includeHidden is true).
func (s *PostStore) CountByAuthor(authorID int64, includeHidden bool, now time.Time) (int, error) {
	var (
		count int
		err   error
	)
	if includeHidden {
		err = s.db.QueryRow(
			`SELECT COUNT(*) FROM posts p WHERE p.author_id = $1`, authorID).Scan(&count)
	} else {
		err = s.db.QueryRow(
			`SELECT COUNT(*)`+postJoins+` WHERE p.author_id = $1 AND `+visibleCond+`$2`,
			authorID, now).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count posts by author: %w", err)
	}
	return count, nil
}

// Create inserts a new post and returns it fully loaded.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO posts (title, body, image_key, pub_date, is_published, author_id, category_id, location_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Title, p.Body, p.ImageKey, p.PubDate, p.IsPublished, p.AuthorID, p.CategoryID, p.LocationID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(id)
}

// Update modifies an existing post's editable fields.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, body = $2, image_key = $3, pub_date = $4,
			is_published = $5, category_id = $6, location_id = $7,
			updated_at = NOW()
		WHERE id = $8
	`, p.Title, p.Body, p.ImageKey, p.PubDate, p.IsPublished, p.CategoryID, p.LocationID, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post and all its comments in a single transaction.
// The comment cascade is explicit: the schema deliberately has no
// ON DELETE CASCADE on comments.post_id.
func (s *PostStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete post begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM comments WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete post commit: %w", err)
	}
	return nil
}
