package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Targets table - stores registered morph targets
		`CREATE TABLE IF NOT EXISTS targets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			image_path TEXT NOT NULL,
			landmarks_path TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			landmark_count INTEGER NOT NULL,
			active INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Clips table - stores metadata for recorded output clips
		`CREATE TABLE IF NOT EXISTS clips (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			target_id TEXT REFERENCES targets(id) ON DELETE SET NULL,
			frames_dropped INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_targets_active ON targets(active)`,
		`CREATE INDEX IF NOT EXISTS idx_clips_target_id ON clips(target_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
