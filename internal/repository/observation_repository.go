package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/campustrack/trajectory-backend-go/internal/models"
)

// ObservationRepository handles database operations for appearance records.
// It implements the record-store contract the query/filter service consumes.
type ObservationRepository struct {
	db *sql.DB
}

// NewObservationRepository creates a new observation repository
func NewObservationRepository(db *sql.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

const observationColumns = `id, student_id, camera_id, timestamp, location_x, location_y,
	has_backpack, has_umbrella, has_bicycle, clothing_color, attributes, feature_vector`

// QueryObservations retrieves observation records matching the filter.
func (r *ObservationRepository) QueryObservations(filter models.ObservationFilter) ([]models.Observation, error) {
	query := "SELECT " + observationColumns + " FROM student_records"

	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.HasBackpack != nil {
		conditions = append(conditions, "has_backpack = ?")
		args = append(args, boolToInt(*filter.HasBackpack))
	}
	if filter.HasUmbrella != nil {
		conditions = append(conditions, "has_umbrella = ?")
		args = append(args, boolToInt(*filter.HasUmbrella))
	}
	if filter.HasBicycle != nil {
		conditions = append(conditions, "has_bicycle = ?")
		args = append(args, boolToInt(*filter.HasBicycle))
	}
	if filter.ClothingColor != "" {
		conditions = append(conditions, "clothing_color = ?")
		args = append(args, filter.ClothingColor)
	}
	if filter.TimeRange != nil {
		if !filter.TimeRange.Start.IsZero() {
			conditions = append(conditions, "timestamp >= ?")
			args = append(args, filter.TimeRange.Start)
		}
		if !filter.TimeRange.End.IsZero() {
			conditions = append(conditions, "timestamp <= ?")
			args = append(args, filter.TimeRange.End)
		}
	}
	if len(filter.CameraIDs) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.CameraIDs))
		conditions = append(conditions, fmt.Sprintf("camera_id IN (%s)", strings.TrimSuffix(placeholders, ", ")))
		for _, id := range filter.CameraIDs {
			args = append(args, id)
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var records []models.Observation
	for rows.Next() {
		rec, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetObservationByID retrieves a single observation, nil when absent.
func (r *ObservationRepository) GetObservationByID(id int64) (*models.Observation, error) {
	row := r.db.QueryRow("SELECT "+observationColumns+" FROM student_records WHERE id = ?", id)
	rec, err := scanObservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CameraLocations returns all cameras for enrichment and distance
// calculations.
func (r *ObservationRepository) CameraLocations() ([]models.Camera, error) {
	rows, err := r.db.Query("SELECT camera_id, name, location_x, location_y FROM cameras")
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

// CampusPaths returns the recorded walkable paths between cameras.
func (r *ObservationRepository) CampusPaths() ([]models.CampusPath, error) {
	rows, err := r.db.Query("SELECT id, from_camera_id, to_camera_id, distance FROM campus_paths")
	if err != nil {
		return nil, fmt.Errorf("failed to query campus paths: %w", err)
	}
	defer rows.Close()

	var paths []models.CampusPath
	for rows.Next() {
		var p models.CampusPath
		if err := rows.Scan(&p.ID, &p.FromCameraID, &p.ToCameraID, &p.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan campus path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// UpdateStudentID backfills the student identity on a record once it has
// been re-identified. The only mutation the core performs on stored
// observations.
func (r *ObservationRepository) UpdateStudentID(recordID int64, studentID string) error {
	res, err := r.db.Exec("UPDATE student_records SET student_id = ? WHERE id = ?", studentID, recordID)
	if err != nil {
		return fmt.Errorf("failed to update student id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("record %d not found", recordID)
	}
	return nil
}

// InsertObservation stores a new appearance record and returns its ID.
func (r *ObservationRepository) InsertObservation(rec *models.Observation) (int64, error) {
	attrs, err := marshalOrNil(rec.Attributes)
	if err != nil {
		return 0, fmt.Errorf("failed to encode attributes: %w", err)
	}
	vec, err := marshalOrNil(rec.FeatureVector)
	if err != nil {
		return 0, fmt.Errorf("failed to encode feature vector: %w", err)
	}

	res, err := r.db.Exec(`
		INSERT INTO student_records
		(student_id, camera_id, timestamp, location_x, location_y,
		 has_backpack, has_umbrella, has_bicycle, clothing_color, attributes, feature_vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StudentID, rec.CameraID, rec.Timestamp.UTC(), rec.LocationX, rec.LocationY,
		nullableBool(rec.HasBackpack), nullableBool(rec.HasUmbrella), nullableBool(rec.HasBicycle),
		rec.ClothingColor, attrs, vec,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert observation: %w", err)
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanObservation(row rowScanner) (*models.Observation, error) {
	var rec models.Observation
	var studentID, clothingColor, attrs, vec sql.NullString
	var backpack, umbrella, bicycle sql.NullBool
	var ts time.Time

	err := row.Scan(&rec.ID, &studentID, &rec.CameraID, &ts, &rec.LocationX, &rec.LocationY,
		&backpack, &umbrella, &bicycle, &clothingColor, &attrs, &vec)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan observation: %w", err)
	}

	rec.Timestamp = ts.UTC()
	if studentID.Valid {
		rec.StudentID = &studentID.String
	}
	if clothingColor.Valid {
		rec.ClothingColor = &clothingColor.String
	}
	if backpack.Valid {
		rec.HasBackpack = &backpack.Bool
	}
	if umbrella.Valid {
		rec.HasUmbrella = &umbrella.Bool
	}
	if bicycle.Valid {
		rec.HasBicycle = &bicycle.Bool
	}
	if attrs.Valid && attrs.String != "" {
		if err := json.Unmarshal([]byte(attrs.String), &rec.Attributes); err != nil {
			// A corrupt attribute blob degrades to no extension attributes
			// rather than failing the whole query.
			rec.Attributes = nil
		}
	}
	if vec.Valid && vec.String != "" {
		if err := json.Unmarshal([]byte(vec.String), &rec.FeatureVector); err != nil {
			rec.FeatureVector = nil
		}
	}
	return &rec, nil
}

func marshalOrNil(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			return nil, nil
		}
	case []float64:
		if len(val) == 0 {
			return nil, nil
		}
	default:
		if v == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return boolToInt(*b)
}
