package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Target represents a registered morph target. The image and landmark files
// live on disk; the database keeps their paths plus display metadata.
type Target struct {
	ID            string
	Name          string
	ImagePath     string
	LandmarksPath string
	Width         int
	Height        int
	LandmarkCount int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TargetRepository provides CRUD operations for morph targets.
type TargetRepository struct {
	db *sql.DB
}

// Targets returns the target repository for this store.
func (s *Store) Targets() *TargetRepository {
	return &TargetRepository{db: s.db}
}

// Create inserts a new target into the database.
func (r *TargetRepository) Create(t *Target) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO targets (id, name, image_path, landmarks_path, width, height, landmark_count, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.ImagePath, t.LandmarksPath, t.Width, t.Height, t.LandmarkCount, boolToInt(t.Active), t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetByID retrieves a target by its ID.
func (r *TargetRepository) GetByID(id string) (*Target, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, image_path, landmarks_path, width, height, landmark_count, active, created_at, updated_at
		 FROM targets WHERE id = ?`, id))
}

// GetByName retrieves a target by its name.
func (r *TargetRepository) GetByName(name string) (*Target, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, image_path, landmarks_path, width, height, landmark_count, active, created_at, updated_at
		 FROM targets WHERE name = ?`, name))
}

// Active retrieves the currently active target, or ErrNotFound when no
// target is selected.
func (r *TargetRepository) Active() (*Target, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, image_path, landmarks_path, width, height, landmark_count, active, created_at, updated_at
		 FROM targets WHERE active = 1`))
}

// List retrieves all targets ordered by name.
func (r *TargetRepository) List() ([]*Target, error) {
	rows, err := r.db.Query(
		`SELECT id, name, image_path, landmarks_path, width, height, landmark_count, active, created_at, updated_at
		 FROM targets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []*Target
	for rows.Next() {
		t := &Target{}
		var active int
		err := rows.Scan(&t.ID, &t.Name, &t.ImagePath, &t.LandmarksPath, &t.Width, &t.Height,
			&t.LandmarkCount, &active, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		t.Active = active != 0
		targets = append(targets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return targets, nil
}

// SetActive marks one target active and clears the flag on all others, so
// at most one target is ever active.
func (r *TargetRepository) SetActive(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE targets SET active = 0 WHERE active = 1`); err != nil {
		return err
	}

	result, err := tx.Exec(`UPDATE targets SET active = 1, updated_at = ? WHERE id = ?`, time.Now(), id)
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

	return tx.Commit()
}

// ClearActive deselects any active target.
func (r *TargetRepository) ClearActive() error {
	_, err := r.db.Exec(`UPDATE targets SET active = 0 WHERE active = 1`)
	return err
}

// Update updates an existing target in the database.
func (r *TargetRepository) Update(t *Target) error {
	t.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE targets SET name = ?, image_path = ?, landmarks_path = ?, width = ?, height = ?, landmark_count = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.ImagePath, t.LandmarksPath, t.Width, t.Height, t.LandmarkCount, t.UpdatedAt, t.ID,
	)
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

// Delete removes a target from the database by its ID.
func (r *TargetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM targets WHERE id = ?`, id)
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

func (r *TargetRepository) scanOne(row *sql.Row) (*Target, error) {
	t := &Target{}
	var active int

	err := row.Scan(&t.ID, &t.Name, &t.ImagePath, &t.LandmarksPath, &t.Width, &t.Height,
		&t.LandmarkCount, &active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	t.Active = active != 0
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
