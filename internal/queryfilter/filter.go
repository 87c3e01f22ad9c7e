package queryfilter

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/campustrack/trajectory-backend-go/internal/models"
)

// RecordStore is the narrow interface to the external record store.
type RecordStore interface {
	QueryObservations(filter models.ObservationFilter) ([]models.Observation, error)
	CameraLocations() ([]models.Camera, error)
}

// Result bundles the three views of a filter run.
type Result struct {
	// All is the enriched record set, camera metadata joined in.
	All []models.Observation
	// SortedByTime is All in stable ascending timestamp order.
	SortedByTime []models.Observation
	// CameraGroups partitions SortedByTime by camera, each partition
	// independently time-sorted.
	CameraGroups map[int64][]models.Observation
}

// Service filters observation records by user criteria and enriches them
// with camera metadata.
type Service struct {
	store RecordStore
	loc   *time.Location
}

// NewService creates a query/filter service. loc is the zone applied to
// naive timestamps; nil means UTC.
func NewService(store RecordStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, loc: loc}
}

// ParseTimeRange parses request time strings into a validated range.
// Timestamps without zone information are interpreted in the configured
// zone rather than silently compared against aware ones.
func (s *Service) ParseTimeRange(start, end string) (*models.TimeRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	tr := &models.TimeRange{}
	var err error
	if start != "" {
		if tr.Start, err = s.parseTime(start); err != nil {
			return nil, fmt.Errorf("invalid start time %q: %w", start, err)
		}
	}
	if end != "" {
		if tr.End, err = s.parseTime(end); err != nil {
			return nil, fmt.Errorf("invalid end time %q: %w", end, err)
		}
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

func (s *Service) parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", v, s.loc)
}

// FilterByCriteria pushes predicates down to the record store and applies
// in-memory matching for extension attributes the store does not index.
// Attribute predicates apply only to booleans and single discrete string
// values; other value types are ignored rather than erroring.
func (s *Service) FilterByCriteria(studentID string, attrs map[string]any, timeRange *models.TimeRange, cameraIDs []int64) ([]models.Observation, error) {
	if timeRange != nil {
		if err := timeRange.Validate(); err != nil {
			return nil, err
		}
	}

	filter := models.ObservationFilter{
		StudentID: studentID,
		TimeRange: timeRange,
		CameraIDs: cameraIDs,
	}

	// Known columns go to the store; the rest is matched in memory.
	residual := make(map[string]any)
	for key, value := range attrs {
		switch v := value.(type) {
		case bool:
			b := v
			switch key {
			case "has_backpack":
				filter.HasBackpack = &b
			case "has_umbrella":
				filter.HasUmbrella = &b
			case "has_bicycle":
				filter.HasBicycle = &b
			default:
				residual[key] = v
			}
		case string:
			if key == "clothing_color" {
				filter.ClothingColor = v
			} else {
				residual[key] = v
			}
		default:
			// Not a boolean or discrete value; ignored.
		}
	}

	records, err := s.store.QueryObservations(filter)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}

	if len(residual) > 0 {
		records = matchResidual(records, residual)
	}

	log.Printf("[QueryFilter] criteria matched %d records", len(records))
	return records, nil
}

func matchResidual(records []models.Observation, attrs map[string]any) []models.Observation {
	out := make([]models.Observation, 0, len(records))
	for _, rec := range records {
		ok := true
		for key, want := range attrs {
			got, present := rec.AttributeValue(key)
			if !present || got != want {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

// Enrich left-joins camera name and location onto the records. Records
// whose camera_id has no matching camera keep nil enrichment fields and are
// not filtered out.
func (s *Service) Enrich(records []models.Observation) ([]models.Observation, error) {
	if len(records) == 0 {
		return records, nil
	}
	cameras, err := s.store.CameraLocations()
	if err != nil {
		return nil, fmt.Errorf("load camera locations: %w", err)
	}
	byID := make(map[int64]models.Camera, len(cameras))
	for _, cam := range cameras {
		byID[cam.CameraID] = cam
	}

	out := make([]models.Observation, len(records))
	copy(out, records)
	for i := range out {
		if cam, ok := byID[out[i].CameraID]; ok {
			name := cam.Name
			x := cam.LocationX
			y := cam.LocationY
			out[i].CameraName = &name
			out[i].CameraX = &x
			out[i].CameraY = &y
		}
	}
	return out, nil
}

// SortByTime returns the records in stable ascending timestamp order.
func (s *Service) SortByTime(records []models.Observation) []models.Observation {
	out := make([]models.Observation, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// GroupByCamera partitions records by camera, each partition time-sorted.
func (s *Service) GroupByCamera(records []models.Observation) map[int64][]models.Observation {
	groups := make(map[int64][]models.Observation)
	for _, rec := range records {
		groups[rec.CameraID] = append(groups[rec.CameraID], rec)
	}
	for id := range groups {
		groups[id] = s.SortByTime(groups[id])
	}
	return groups
}

// Process runs the full filter pipeline: criteria filter, camera
// enrichment, time sort, camera grouping. An empty result is not an error.
func (s *Service) Process(studentID string, attrs map[string]any, timeRange *models.TimeRange, cameraIDs []int64) (*Result, error) {
	records, err := s.FilterByCriteria(studentID, attrs, timeRange, cameraIDs)
	if err != nil {
		return nil, err
	}
	enriched, err := s.Enrich(records)
	if err != nil {
		return nil, err
	}
	sorted := s.SortByTime(enriched)
	return &Result{
		All:          enriched,
		SortedByTime: sorted,
		CameraGroups: s.GroupByCamera(sorted),
	}, nil
}
