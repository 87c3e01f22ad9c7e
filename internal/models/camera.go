package models

// Camera represents a fixed campus camera. Static reference data owned by
// the record store; the core reads it for distance calculations and for
// enriching filter results.
type Camera struct {
	CameraID  int64   `json:"cameraId" db:"camera_id"`
	Name      string  `json:"name" db:"name"`
	LocationX float64 `json:"locationX" db:"location_x"`
	LocationY float64 `json:"locationY" db:"location_y"`
}

// CampusPath is a traversable path between two cameras with a measured
// walking distance in meters. Used to build the campus graph; when no paths
// are recorded the graph falls back to fully-connected direct distances.
type CampusPath struct {
	ID           int64   `json:"id" db:"id"`
	FromCameraID int64   `json:"fromCameraId" db:"from_camera_id"`
	ToCameraID   int64   `json:"toCameraId" db:"to_camera_id"`
	Distance     float64 `json:"distance" db:"distance"`
}

// CameraRequest is the payload for creating or updating a camera.
type CameraRequest struct {
	Name      string  `json:"name" binding:"required"`
	LocationX float64 `json:"locationX"`
	LocationY float64 `json:"locationY"`
}
