package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/dunn/stacks/internal/collab"
)

// GetActivity retrieves one user's activity for one book. Returns
// sql.ErrNoRows if the pair has no recorded activity.
func (d *DB) GetActivity(userID, bookID int) (catalog.Activity, error) {
	row := d.db.QueryRow(`
		SELECT user_id, book_id, view_count, is_favorite, interaction_score, last_viewed
		FROM user_activities
		WHERE user_id = ? AND book_id = ?`,
		userID, bookID)
	return scanActivity(row)
}

// RecordView increments the view count for a (user, book) pair, creating
// the activity row on first view, and recomputes the interaction score.
func (d *DB) RecordView(userID, bookID int, now time.Time) (catalog.Activity, error) {
	a, err := d.GetActivity(userID, bookID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return catalog.Activity{}, err
	}
	a.UserID = userID
	a.BookID = bookID
	a.ViewCount++
	a.LastViewed = now
	a.InteractionScore = a.Score()
	if err := d.putActivity(a); err != nil {
		return catalog.Activity{}, err
	}
	return a, nil
}

// ToggleFavorite flips the favorite flag for a (user, book) pair, creating
// the activity row (favorited) if absent, and recomputes the interaction
// score.
func (d *DB) ToggleFavorite(userID, bookID int, now time.Time) (catalog.Activity, error) {
	a, err := d.GetActivity(userID, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		a = catalog.Activity{UserID: userID, BookID: bookID, IsFavorite: true}
	} else if err != nil {
		return catalog.Activity{}, err
	} else {
		a.IsFavorite = !a.IsFavorite
	}
	a.LastViewed = now
	a.InteractionScore = a.Score()
	if err := d.putActivity(a); err != nil {
		return catalog.Activity{}, err
	}
	return a, nil
}

// PutActivity stores an activity row verbatim, replacing any existing row
// for the same (user, book) pair. Used by importers.
func (d *DB) PutActivity(a catalog.Activity) error {
	return d.putActivity(a)
}

func (d *DB) putActivity(a catalog.Activity) error {
	_, err := d.db.Exec(`
		INSERT OR REPLACE INTO user_activities
			(user_id, book_id, view_count, is_favorite, interaction_score, last_viewed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.BookID, a.ViewCount, boolToInt(a.IsFavorite), a.InteractionScore, a.LastViewed.Unix())
	if err != nil {
		return fmt.Errorf("storing activity (%d, %d): %w", a.UserID, a.BookID, err)
	}
	return nil
}

// ListActivities returns a user's activity rows, most recently viewed
// first. favoriteOnly restricts the result to favorited books.
func (d *DB) ListActivities(userID int, favoriteOnly bool, limit int) ([]catalog.Activity, error) {
	query := `
		SELECT user_id, book_id, view_count, is_favorite, interaction_score, last_viewed
		FROM user_activities
		WHERE user_id = ?`
	if favoriteOnly {
		query += ` AND is_favorite = 1`
	}
	query += ` ORDER BY last_viewed DESC LIMIT ?`

	rows, err := d.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var activities []catalog.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

// AllInteractions returns the full (user, book, score) training snapshot,
// ordered by user then book so fits are repeatable.
func (d *DB) AllInteractions() ([]collab.Interaction, error) {
	rows, err := d.db.Query(`
		SELECT user_id, book_id, interaction_score
		FROM user_activities
		ORDER BY user_id, book_id`)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var interactions []collab.Interaction
	for rows.Next() {
		var in collab.Interaction
		if err := rows.Scan(&in.UserID, &in.BookID, &in.Score); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interactions: %w", err)
	}
	return interactions, nil
}

func scanActivity(row rowScanner) (catalog.Activity, error) {
	var a catalog.Activity
	var fav int
	var lastViewed int64
	err := row.Scan(&a.UserID, &a.BookID, &a.ViewCount, &fav, &a.InteractionScore, &lastViewed)
	if err != nil {
		return catalog.Activity{}, err
	}
	a.IsFavorite = fav != 0
	a.LastViewed = time.Unix(lastViewed, 0).UTC()
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
