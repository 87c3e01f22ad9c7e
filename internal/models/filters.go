package models

import (
	"errors"
	"time"
)

// ErrInvalidTimeRange reports a time range whose start is after its end.
// Surfaced to the caller as an input error, never silently swapped.
var ErrInvalidTimeRange = errors.New("invalid time range: start after end")

// TimeRange is an inclusive [Start, End] window on observation timestamps.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks the range ordering. Zero values are allowed on either
// side (open-ended range).
func (r *TimeRange) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return ErrInvalidTimeRange
	}
	return nil
}

// ObservationFilter holds the predicates pushed down to the record store.
type ObservationFilter struct {
	StudentID     string
	HasBackpack   *bool
	HasUmbrella   *bool
	HasBicycle    *bool
	ClothingColor string
	TimeRange     *TimeRange
	CameraIDs     []int64
}

// FilterRequest is the payload of POST /records/filter.
type FilterRequest struct {
	StudentID  string         `json:"studentId"`
	Attributes map[string]any `json:"attributes"`
	StartTime  string         `json:"startTime"`
	EndTime    string         `json:"endTime"`
	CameraIDs  []int64        `json:"cameraIds"`
}

// MatchRequest is the payload of POST /analysis/match. Either QueryImage
// (base64) or QueryFeature must be provided; candidates come from the
// record store via the embedded filter.
type MatchRequest struct {
	FilterRequest
	QueryImage   string    `json:"queryImage"`
	QueryFeature []float64 `json:"queryFeature"`
	Algorithm    string    `json:"algorithm"`
	Threshold    *float64  `json:"threshold"`
}

// AnalyzeRequest is the payload of POST /analysis/spatiotemporal.
type AnalyzeRequest struct {
	FilterRequest
	ThresholdMultiplier float64 `json:"thresholdMultiplier"`
}

// SaveTrajectoryRequest is the payload of POST /trajectories.
type SaveTrajectoryRequest struct {
	StudentID string            `json:"studentId" binding:"required"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	Points    []TrajectoryPoint `json:"points"`
}
