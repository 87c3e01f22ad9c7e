package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// schemaMigrations is the ordered list of schema migrations, embedded so a
// fresh deployment needs no migration directory on disk.
var schemaMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_cameras",
		SQL: `
			CREATE TABLE IF NOT EXISTS cameras (
				camera_id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				location_x REAL NOT NULL,
				location_y REAL NOT NULL
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_student_records",
		SQL: `
			CREATE TABLE IF NOT EXISTS student_records (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				student_id TEXT,
				camera_id INTEGER NOT NULL,
				timestamp TIMESTAMP NOT NULL,
				location_x REAL NOT NULL,
				location_y REAL NOT NULL,
				has_backpack INTEGER,
				has_umbrella INTEGER,
				has_bicycle INTEGER,
				clothing_color TEXT,
				attributes TEXT,
				feature_vector TEXT,
				FOREIGN KEY (camera_id) REFERENCES cameras(camera_id)
			);
			CREATE INDEX IF NOT EXISTS idx_student_records_student ON student_records(student_id);
			CREATE INDEX IF NOT EXISTS idx_student_records_time ON student_records(timestamp);
			CREATE INDEX IF NOT EXISTS idx_student_records_camera ON student_records(camera_id)
		`,
	},
	{
		Version: 3,
		Name:    "create_campus_paths",
		SQL: `
			CREATE TABLE IF NOT EXISTS campus_paths (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				from_camera_id INTEGER NOT NULL,
				to_camera_id INTEGER NOT NULL,
				distance REAL NOT NULL,
				FOREIGN KEY (from_camera_id) REFERENCES cameras(camera_id),
				FOREIGN KEY (to_camera_id) REFERENCES cameras(camera_id)
			)
		`,
	},
	{
		Version: 4,
		Name:    "create_student_trajectories",
		SQL: `
			CREATE TABLE IF NOT EXISTS student_trajectories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				student_id TEXT NOT NULL,
				tracking_session_id TEXT NOT NULL,
				start_time TIMESTAMP,
				end_time TIMESTAMP,
				path_points TEXT,
				camera_sequence TEXT,
				total_distance REAL,
				average_speed REAL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_trajectories_student ON student_trajectories(student_id)
		`,
	},
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db         *sql.DB
	migrations []Migration
}

// NewMigrationManager creates a new migration manager over the embedded
// schema migrations.
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{
		db:         db,
		migrations: schemaMigrations,
	}
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns a list of applied migration versions
func (m *MigrationManager) GetAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, nil
}

// ApplyMigration applies a single migration
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	// Execute migration SQL
	_, err = tx.Exec(migration.SQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
	}

	// Record migration
	_, err = tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}

	log.Printf("Applied migration %d: %s", migration.Version, migration.Name)
	return nil
}

// RunMigrations runs all pending migrations
func (m *MigrationManager) RunMigrations() error {
	// Initialize migrations table
	if err := m.InitMigrationsTable(); err != nil {
		return err
	}

	// Get applied migrations
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	// Apply pending migrations
	for _, migration := range m.migrations {
		if applied[migration.Version] {
			log.Printf("Skipping already applied migration %d: %s", migration.Version, migration.Name)
			continue
		}

		if err := m.ApplyMigration(migration); err != nil {
			return err
		}
	}

	log.Println("All migrations applied successfully")
	return nil
}
