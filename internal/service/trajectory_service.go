package service

import (
	"fmt"
	"log"
	"time"

	"github.com/campustrack/trajectory-backend-go/internal/analysis/spatiotemporal"
	"github.com/campustrack/trajectory-backend-go/internal/models"
	"github.com/campustrack/trajectory-backend-go/internal/queryfilter"
	"github.com/campustrack/trajectory-backend-go/internal/repository"
	"github.com/campustrack/trajectory-backend-go/internal/spatial"
)

// TrajectoryService assembles full trajectories from filtered observations:
// plausibility filter, segment extraction, anomaly extraction and
// most-likely-path search, in that order. Each call works on its own
// snapshot; the service holds no per-call state.
type TrajectoryService struct {
	filter   *queryfilter.Service
	analyzer *spatiotemporal.Analyzer
	trajRepo *repository.TrajectoryRepository
	cs       spatial.CoordinateSystem
}

// NewTrajectoryService creates a new trajectory service
func NewTrajectoryService(filter *queryfilter.Service, analyzer *spatiotemporal.Analyzer, trajRepo *repository.TrajectoryRepository, cs spatial.CoordinateSystem) *TrajectoryService {
	return &TrajectoryService{
		filter:   filter,
		analyzer: analyzer,
		trajRepo: trajRepo,
		cs:       cs,
	}
}

// Analyze runs the reconstruction pipeline for the request. An empty
// candidate set yields an empty trajectory, not an error.
func (s *TrajectoryService) Analyze(req models.AnalyzeRequest) (*models.Trajectory, error) {
	timeRange, err := s.filter.ParseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	result, err := s.filter.Process(req.StudentID, req.Attributes, timeRange, req.CameraIDs)
	if err != nil {
		return nil, err
	}

	candidates := result.SortedByTime
	log.Printf("[TrajectoryService] analyzing %d candidate records", len(candidates))

	plausible := s.analyzer.FilterByConstraints(candidates, req.ThresholdMultiplier)

	var start, end *time.Time
	if timeRange != nil {
		if !timeRange.Start.IsZero() {
			start = &timeRange.Start
		}
		if !timeRange.End.IsZero() {
			end = &timeRange.End
		}
	}

	return &models.Trajectory{
		OrderedRecords: plausible,
		Segments:       s.analyzer.Segments(plausible),
		Anomalies:      s.analyzer.AnalyzeAnomalies(plausible),
		// Path search runs over the unpruned candidates: the graph keeps
		// more options open than the greedy filter, per the search's
		// looser transit bound.
		PathRecordIDs: s.analyzer.FindMostLikelyTrajectory(candidates, start, end),
	}, nil
}

// Save persists a reconstructed trajectory, deriving its total walking
// distance from the key points.
func (s *TrajectoryService) Save(req models.SaveTrajectoryRequest) (int64, error) {
	if req.StudentID == "" {
		return 0, fmt.Errorf("student id is required")
	}
	total := 0.0
	for i := 1; i < len(req.Points); i++ {
		a := spatial.Point{X: req.Points[i-1].LocationX, Y: req.Points[i-1].LocationY}
		b := spatial.Point{X: req.Points[i].LocationX, Y: req.Points[i].LocationY}
		total += spatial.Distance(s.cs, a, b)
	}
	id, err := s.trajRepo.SaveTrajectory(req, total)
	if err != nil {
		return 0, err
	}
	log.Printf("[TrajectoryService] saved trajectory %d for student %s (%.1fm over %d points)",
		id, req.StudentID, total, len(req.Points))
	return id, nil
}

// ListByStudent returns a student's persisted trajectories.
func (s *TrajectoryService) ListByStudent(studentID string) ([]models.StoredTrajectory, error) {
	if studentID == "" {
		return nil, fmt.Errorf("student id is required")
	}
	return s.trajRepo.ListByStudent(studentID)
}
