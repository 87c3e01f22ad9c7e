package repository

import (
	"database/sql"
	"fmt"

	"github.com/campustrack/trajectory-backend-go/internal/models"
)

// CameraRepository handles database operations for cameras
type CameraRepository struct {
	db *sql.DB
}

// NewCameraRepository creates a new camera repository
func NewCameraRepository(db *sql.DB) *CameraRepository {
	return &CameraRepository{db: db}
}

// ListCameras returns all cameras ordered by ID.
func (r *CameraRepository) ListCameras() ([]models.Camera, error) {
	rows, err := r.db.Query("SELECT camera_id, name, location_x, location_y FROM cameras ORDER BY camera_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		var cam models.Camera
		if err := rows.Scan(&cam.CameraID, &cam.Name, &cam.LocationX, &cam.LocationY); err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cameras = append(cameras, cam)
	}
	return cameras, rows.Err()
}

// GetCameraByID returns one camera, nil when absent.
func (r *CameraRepository) GetCameraByID(id int64) (*models.Camera, error) {
	var cam models.Camera
	err := r.db.QueryRow("SELECT camera_id, name, location_x, location_y FROM cameras WHERE camera_id = ?", id).
		Scan(&cam.CameraID, &cam.Name, &cam.LocationX, &cam.LocationY)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camera: %w", err)
	}
	return &cam, nil
}

// CreateCamera inserts a camera and returns its ID.
func (r *CameraRepository) CreateCamera(req models.CameraRequest) (int64, error) {
	res, err := r.db.Exec("INSERT INTO cameras (name, location_x, location_y) VALUES (?, ?, ?)",
		req.Name, req.LocationX, req.LocationY)
	if err != nil {
		return 0, fmt.Errorf("failed to create camera: %w", err)
	}
	return res.LastInsertId()
}

// UpdateCamera updates a camera's metadata.
func (r *CameraRepository) UpdateCamera(id int64, req models.CameraRequest) error {
	res, err := r.db.Exec("UPDATE cameras SET name = ?, location_x = ?, location_y = ? WHERE camera_id = ?",
		req.Name, req.LocationX, req.LocationY, id)
	if err != nil {
		return fmt.Errorf("failed to update camera: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("camera %d not found", id)
	}
	return nil
}

// DeleteCamera removes a camera.
func (r *CameraRepository) DeleteCamera(id int64) error {
	res, err := r.db.Exec("DELETE FROM cameras WHERE camera_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete camera: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("camera %d not found", id)
	}
	return nil
}
