package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campustrack/trajectory-backend-go/internal/models"
)

// TrajectoryRepository persists reconstructed trajectories.
type TrajectoryRepository struct {
	db *sql.DB
}

// NewTrajectoryRepository creates a new trajectory repository
func NewTrajectoryRepository(db *sql.DB) *TrajectoryRepository {
	return &TrajectoryRepository{db: db}
}

// SaveTrajectory stores a reconstructed trajectory. A fresh tracking
// session ID is generated per save; camera sequence, total distance and
// average speed are derived from the key points.
func (r *TrajectoryRepository) SaveTrajectory(req models.SaveTrajectoryRequest, totalDistance float64) (int64, error) {
	sessionID := "track_" + uuid.NewString()

	points, err := json.Marshal(req.Points)
	if err != nil {
		return 0, fmt.Errorf("failed to encode path points: %w", err)
	}

	cameraSeq := make([]string, 0, len(req.Points))
	for _, p := range req.Points {
		if p.CameraName != "" {
			cameraSeq = append(cameraSeq, fmt.Sprintf("%d(%s)", p.CameraID, p.CameraName))
		} else {
			cameraSeq = append(cameraSeq, fmt.Sprintf("%d", p.CameraID))
		}
	}

	averageSpeed := 0.0
	if d := req.EndTime.Sub(req.StartTime); d > 0 {
		averageSpeed = totalDistance / d.Minutes()
	}

	res, err := r.db.Exec(`
		INSERT INTO student_trajectories
		(student_id, tracking_session_id, start_time, end_time, path_points,
		 camera_sequence, total_distance, average_speed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.StudentID, sessionID, req.StartTime.UTC(), req.EndTime.UTC(),
		string(points), strings.Join(cameraSeq, ","), totalDistance, averageSpeed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save trajectory: %w", err)
	}
	return res.LastInsertId()
}

// ListByStudent returns a student's persisted trajectories, newest first.
func (r *TrajectoryRepository) ListByStudent(studentID string) ([]models.StoredTrajectory, error) {
	rows, err := r.db.Query(`
		SELECT id, student_id, tracking_session_id, start_time, end_time,
		       path_points, camera_sequence, total_distance, average_speed, created_at
		FROM student_trajectories
		WHERE student_id = ?
		ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trajectories: %w", err)
	}
	defer rows.Close()

	var out []models.StoredTrajectory
	for rows.Next() {
		var t models.StoredTrajectory
		var start, end, created time.Time
		var points, seq sql.NullString
		if err := rows.Scan(&t.ID, &t.StudentID, &t.TrackingSessionID, &start, &end,
			&points, &seq, &t.TotalDistance, &t.AverageSpeed, &created); err != nil {
			return nil, fmt.Errorf("failed to scan trajectory: %w", err)
		}
		t.StartTime = start.UTC()
		t.EndTime = end.UTC()
		t.CreatedAt = created.UTC()
		t.PathPoints = points.String
		t.CameraSequence = seq.String
		out = append(out, t)
	}
	return out, rows.Err()
}
