package queryfilter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustrack/trajectory-backend-go/internal/models"
)

// fakeStore serves canned records and captures the filter pushed down to it.
type fakeStore struct {
	records    []models.Observation
	cameras    []models.Camera
	lastFilter models.ObservationFilter
	queryErr   error
}

func (f *fakeStore) QueryObservations(filter models.ObservationFilter) ([]models.Observation, error) {
	f.lastFilter = filter
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.records, nil
}

func (f *fakeStore) CameraLocations() ([]models.Camera, error) {
	return f.cameras, nil
}

var filterBase = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

func testRecords() []models.Observation {
	return []models.Observation{
		{ID: 1, CameraID: 1, Timestamp: filterBase.Add(2 * time.Minute)},
		{ID: 2, CameraID: 2, Timestamp: filterBase},
		{ID: 3, CameraID: 1, Timestamp: filterBase.Add(time.Minute)},
	}
}

func TestParseTimeRange(t *testing.T) {
	s := NewService(&fakeStore{}, time.UTC)

	tr, err := s.ParseTimeRange("2024-05-20T08:00:00Z", "2024-05-20T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, filterBase, tr.Start)

	// Naive timestamps are interpreted in the configured zone.
	tr, err = s.ParseTimeRange("2024-05-20 08:00:00", "")
	require.NoError(t, err)
	assert.Equal(t, filterBase, tr.Start)
	assert.True(t, tr.End.IsZero())

	tr, err = s.ParseTimeRange("", "")
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestParseTimeRangeZone(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	s := NewService(&fakeStore{}, loc)

	tr, err := s.ParseTimeRange("2024-05-20 16:00:00", "")
	require.NoError(t, err)
	assert.True(t, tr.Start.Equal(filterBase))
}

func TestParseTimeRangeInvalid(t *testing.T) {
	s := NewService(&fakeStore{}, time.UTC)

	_, err := s.ParseTimeRange("not a time", "")
	assert.Error(t, err)

	// Start after end is an input error, never silently swapped.
	_, err = s.ParseTimeRange("2024-05-20T09:00:00Z", "2024-05-20T08:00:00Z")
	assert.ErrorIs(t, err, models.ErrInvalidTimeRange)
}

func TestFilterByCriteriaPushdown(t *testing.T) {
	store := &fakeStore{records: testRecords()}
	s := NewService(store, time.UTC)

	attrs := map[string]any{
		"has_backpack":   true,
		"has_umbrella":   false,
		"clothing_color": "red",
	}
	_, err := s.FilterByCriteria("S001", attrs, nil, []int64{1, 2})
	require.NoError(t, err)

	// Indexed columns reach the store as typed predicates.
	assert.Equal(t, "S001", store.lastFilter.StudentID)
	require.NotNil(t, store.lastFilter.HasBackpack)
	assert.True(t, *store.lastFilter.HasBackpack)
	require.NotNil(t, store.lastFilter.HasUmbrella)
	assert.False(t, *store.lastFilter.HasUmbrella)
	assert.Equal(t, "red", store.lastFilter.ClothingColor)
	assert.Equal(t, []int64{1, 2}, store.lastFilter.CameraIDs)
}

func TestFilterByCriteriaResidualAttributes(t *testing.T) {
	records := []models.Observation{
		{ID: 1, Attributes: map[string]any{"has_hat": true}},
		{ID: 2, Attributes: map[string]any{"has_hat": false}},
		{ID: 3}, // attribute absent, does not match
	}
	s := NewService(&fakeStore{records: records}, time.UTC)

	out, err := s.FilterByCriteria("", map[string]any{"has_hat": true}, nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
}

func TestFilterByCriteriaIgnoresNonDiscreteValues(t *testing.T) {
	store := &fakeStore{records: testRecords()}
	s := NewService(store, time.UTC)

	// Numeric and structured values are not valid predicates; they are
	// ignored rather than erroring.
	out, err := s.FilterByCriteria("", map[string]any{"height": 1.8, "tags": []string{"x"}}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestFilterByCriteriaInvalidRange(t *testing.T) {
	s := NewService(&fakeStore{}, time.UTC)

	tr := &models.TimeRange{Start: filterBase.Add(time.Hour), End: filterBase}
	_, err := s.FilterByCriteria("", nil, tr, nil)
	assert.ErrorIs(t, err, models.ErrInvalidTimeRange)
}

func TestFilterByCriteriaStoreError(t *testing.T) {
	s := NewService(&fakeStore{queryErr: errors.New("db closed")}, time.UTC)
	_, err := s.FilterByCriteria("", nil, nil, nil)
	assert.Error(t, err)
}

func TestEnrichLeftJoin(t *testing.T) {
	store := &fakeStore{
		records: testRecords(),
		cameras: []models.Camera{
			{CameraID: 1, Name: "gate", LocationX: 10, LocationY: 20},
		},
	}
	s := NewService(store, time.UTC)

	out, err := s.Enrich(store.records)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// Camera 1 records gain name and location.
	require.NotNil(t, out[0].CameraName)
	assert.Equal(t, "gate", *out[0].CameraName)
	assert.Equal(t, 10.0, *out[0].CameraX)
	assert.Equal(t, 20.0, *out[0].CameraY)

	// Camera 2 has no metadata; the record survives with nil enrichment.
	assert.Nil(t, out[1].CameraName)
	assert.Nil(t, out[1].CameraX)
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	store := &fakeStore{
		records: testRecords(),
		cameras: []models.Camera{{CameraID: 1, Name: "gate"}},
	}
	s := NewService(store, time.UTC)

	in := testRecords()
	_, err := s.Enrich(in)
	require.NoError(t, err)
	assert.Nil(t, in[0].CameraName)
}

func TestSortByTimeStable(t *testing.T) {
	s := NewService(&fakeStore{}, time.UTC)

	same := filterBase
	records := []models.Observation{
		{ID: 5, Timestamp: same.Add(time.Minute)},
		{ID: 1, Timestamp: same},
		{ID: 2, Timestamp: same}, // equal timestamps keep input order
	}
	out := s.SortByTime(records)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(2), out[1].ID)
	assert.Equal(t, int64(5), out[2].ID)

	// Input order untouched.
	assert.Equal(t, int64(5), records[0].ID)
}

func TestGroupByCamera(t *testing.T) {
	s := NewService(&fakeStore{}, time.UTC)

	groups := s.GroupByCamera(testRecords())
	require.Len(t, groups, 2)
	require.Len(t, groups[1], 2)

	// Each partition is time-sorted.
	assert.Equal(t, int64(3), groups[1][0].ID)
	assert.Equal(t, int64(1), groups[1][1].ID)
	assert.Equal(t, int64(2), groups[2][0].ID)
}

func TestProcessPipeline(t *testing.T) {
	store := &fakeStore{
		records: testRecords(),
		cameras: []models.Camera{{CameraID: 1, Name: "gate"}},
	}
	s := NewService(store, time.UTC)

	res, err := s.Process("", nil, nil, nil)
	require.NoError(t, err)

	assert.Len(t, res.All, 3)
	require.Len(t, res.SortedByTime, 3)
	assert.Equal(t, int64(2), res.SortedByTime[0].ID)
	assert.Equal(t, int64(3), res.SortedByTime[1].ID)
	assert.Equal(t, int64(1), res.SortedByTime[2].ID)
	assert.Len(t, res.CameraGroups, 2)
}

func TestProcessEmptyResult(t *testing.T) {
	s := NewService(&fakeStore{}, time.UTC)

	res, err := s.Process("S404", nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.All)
	assert.Empty(t, res.SortedByTime)
	assert.Empty(t, res.CameraGroups)
}
