package models

import "time"

// Anomaly types reported by the spatiotemporal analyzer.
const (
	AnomalyHighSpeed = "high_speed"
	AnomalyLowSpeed  = "low_speed"
)

// Anomaly flags a consecutive pair of observations whose timing is
// implausible for the estimated travel between their locations.
//
// SpeedRatio is deliberately asymmetric per type: estimated/elapsed for
// high_speed, elapsed/estimated for low_speed, so the ratio always reads as
// "how far past the trigger" regardless of direction.
type Anomaly struct {
	Type                string  `json:"type"`
	PrevRecordID        int64   `json:"prevRecordId"`
	CurrRecordID        int64   `json:"currRecordId"`
	TimeDiff            float64 `json:"timeDiff"`
	EstimatedTravelTime float64 `json:"estimatedTravelTime"`
	SpeedRatio          float64 `json:"speedRatio"`
}

// TrajectorySegment is a camera-to-camera transition between two
// consecutive observations. Consecutive records at the same camera do not
// form a segment.
type TrajectorySegment struct {
	StartRecordID int64     `json:"startRecordId"`
	EndRecordID   int64     `json:"endRecordId"`
	StartCamera   int64     `json:"startCamera"`
	EndCamera     int64     `json:"endCamera"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	TimeDiff      float64   `json:"timeDiff"`
	StartX        float64   `json:"startLocationX"`
	StartY        float64   `json:"startLocationY"`
	EndX          float64   `json:"endLocationX"`
	EndY          float64   `json:"endLocationY"`
}

// Trajectory is the assembled result of a reconstruction request.
type Trajectory struct {
	OrderedRecords []Observation       `json:"orderedRecords"`
	Segments       []TrajectorySegment `json:"segments"`
	Anomalies      []Anomaly           `json:"anomalies"`

	// PathRecordIDs is the most-likely path through the trajectory graph,
	// as ordered record IDs. Empty when no path exists.
	PathRecordIDs []int64 `json:"pathRecordIds"`
}

// StoredTrajectory is a persisted reconstruction, one row in
// student_trajectories.
type StoredTrajectory struct {
	ID                int64     `json:"id" db:"id"`
	StudentID         string    `json:"studentId" db:"student_id"`
	TrackingSessionID string    `json:"trackingSessionId" db:"tracking_session_id"`
	StartTime         time.Time `json:"startTime" db:"start_time"`
	EndTime           time.Time `json:"endTime" db:"end_time"`
	PathPoints        string    `json:"pathPoints" db:"path_points"` // JSON array of key points
	CameraSequence    string    `json:"cameraSequence" db:"camera_sequence"`
	TotalDistance     float64   `json:"totalDistance" db:"total_distance"`
	AverageSpeed      float64   `json:"averageSpeed" db:"average_speed"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// TrajectoryPoint is one key point of a persisted trajectory, serialized
// into StoredTrajectory.PathPoints.
type TrajectoryPoint struct {
	CameraID   int64     `json:"cameraId"`
	CameraName string    `json:"cameraName"`
	Timestamp  time.Time `json:"timestamp"`
	LocationX  float64   `json:"locationX"`
	LocationY  float64   `json:"locationY"`
	Confidence float64   `json:"confidence"`
}
