package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/campustrack/trajectory-backend-go/internal/models"
	"github.com/campustrack/trajectory-backend-go/internal/reid"
	"github.com/campustrack/trajectory-backend-go/internal/service"
	"github.com/campustrack/trajectory-backend-go/pkg/response"
)

// AnalysisHandler handles spatiotemporal analysis and matching requests
type AnalysisHandler struct {
	trajectoryService *service.TrajectoryService
	reidService       *service.ReIDService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(trajectoryService *service.TrajectoryService, reidService *service.ReIDService) *AnalysisHandler {
	return &AnalysisHandler{
		trajectoryService: trajectoryService,
		reidService:       reidService,
	}
}

// AnalyzeSpatiotemporal handles POST /api/v1/analysis/spatiotemporal
func (h *AnalysisHandler) AnalyzeSpatiotemporal(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid analysis request")
		return
	}

	trajectory, err := h.trajectoryService.Analyze(req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidTimeRange) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, trajectory)
}

// MatchFeatures handles POST /api/v1/analysis/match
func (h *AnalysisHandler) MatchFeatures(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid match request")
		return
	}

	progress := func(processed, total int) {
		log.Printf("[AnalysisHandler] feature matching progress: %d/%d", processed, total)
	}

	result, err := h.reidService.MatchRecords(req, progress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTimeRange),
			errors.Is(err, reid.ErrNoQueryFeature):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Success(c, result)
}
