package store

import (
	"database/sql"
	"time"
)

// Clip records metadata for one recorded output video.
type Clip struct {
	ID            string
	Path          string
	TargetID      string
	FramesDropped int64
	CreatedAt     time.Time
}

// ClipRepository provides access to recorded clip metadata.
type ClipRepository struct {
	db *sql.DB
}

// Clips returns the clip repository for this store.
func (s *Store) Clips() *ClipRepository {
	return &ClipRepository{db: s.db}
}

// Create inserts a new clip record.
func (r *ClipRepository) Create(c *Clip) error {
	c.CreatedAt = time.Now()

	var targetID any
	if c.TargetID != "" {
		targetID = c.TargetID
	}

	_, err := r.db.Exec(
		`INSERT INTO clips (id, path, target_id, frames_dropped, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Path, targetID, c.FramesDropped, c.CreatedAt,
	)
	return err
}

// List retrieves all clips, newest first.
func (r *ClipRepository) List() ([]*Clip, error) {
	rows, err := r.db.Query(
		`SELECT id, path, target_id, frames_dropped, created_at
		 FROM clips ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []*Clip
	for rows.Next() {
		c := &Clip{}
		var targetID sql.NullString
		if err := rows.Scan(&c.ID, &c.Path, &targetID, &c.FramesDropped, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.TargetID = targetID.String
		clips = append(clips, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return clips, nil
}

// Delete removes a clip record by its ID.
func (r *ClipRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM clips WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
