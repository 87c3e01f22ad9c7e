package service

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/campustrack/trajectory-backend-go/internal/models"
	"github.com/campustrack/trajectory-backend-go/internal/queryfilter"
	"github.com/campustrack/trajectory-backend-go/internal/reid"
)

// ReIDService runs re-identification matching over candidate records from
// the store. Matching itself is stateless; the per-algorithm model cache
// inside the processor is the only shared state.
type ReIDService struct {
	filter           *queryfilter.Service
	processor        *reid.Processor
	extractor        reid.FeatureExtractor
	defaultThreshold float64
	defaultAlgorithm reid.Algorithm
}

// NewReIDService creates a new re-identification service
func NewReIDService(filter *queryfilter.Service, processor *reid.Processor, extractor reid.FeatureExtractor, threshold float64, algorithm reid.Algorithm) *ReIDService {
	return &ReIDService{
		filter:           filter,
		processor:        processor,
		extractor:        extractor,
		defaultThreshold: threshold,
		defaultAlgorithm: algorithm,
	}
}

// MatchRecords finds candidate observations whose appearance matches the
// query. Candidates failing feature extraction are skipped with a reason;
// a failing query extraction is a hard error since nothing can be compared
// without it.
func (s *ReIDService) MatchRecords(req models.MatchRequest, onProgress reid.ProgressFunc) (*models.MatchResult, error) {
	alg := s.defaultAlgorithm
	if req.Algorithm != "" {
		var err error
		if alg, err = reid.ParseAlgorithm(req.Algorithm); err != nil {
			return nil, err
		}
	}
	threshold := s.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	query, err := s.queryFeature(req, alg)
	if err != nil {
		return nil, err
	}

	timeRange, err := s.filter.ParseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	result, err := s.filter.Process(req.StudentID, req.Attributes, timeRange, req.CameraIDs)
	if err != nil {
		return nil, err
	}

	samples := make([]reid.Sample, 0, len(result.SortedByTime))
	for _, rec := range result.SortedByTime {
		samples = append(samples, reid.Sample{
			ID:        rec.ID,
			StudentID: rec.StudentID,
			CameraID:  rec.CameraID,
			Timestamp: rec.Timestamp,
			LocationX: rec.LocationX,
			LocationY: rec.LocationY,
			Vector:    rec.FeatureVector,
		})
	}

	batch, err := s.processor.ExtractBatch(samples, reid.BatchOptions{
		Algorithm:  alg,
		OnProgress: onProgress,
	})
	if err != nil {
		return nil, err
	}

	matches, err := reid.MatchFeatures(query, batch.Samples, threshold, alg)
	if err != nil {
		return nil, err
	}

	log.Printf("[ReIDService] %d/%d candidates matched above %.2f (%d skipped)",
		len(matches), len(batch.Samples), threshold, len(batch.Skipped))

	return &models.MatchResult{
		Matches: matches,
		Skipped: batch.Skipped,
	}, nil
}

func (s *ReIDService) queryFeature(req models.MatchRequest, alg reid.Algorithm) ([]float64, error) {
	if len(req.QueryFeature) > 0 {
		return req.QueryFeature, nil
	}
	if req.QueryImage == "" {
		return nil, reid.ErrNoQueryFeature
	}

	// Tolerate a data:image prefix on the base64 payload.
	payload := req.QueryImage
	if idx := strings.IndexByte(payload, ','); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid query image encoding: %w", err)
	}

	vec, err := s.extractor.Extract(image, alg)
	if err != nil {
		return nil, fmt.Errorf("query feature extraction: %w", err)
	}
	return vec, nil
}
