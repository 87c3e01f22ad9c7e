package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/campustrack/trajectory-backend-go/internal/models"
	"github.com/campustrack/trajectory-backend-go/internal/queryfilter"
	"github.com/campustrack/trajectory-backend-go/pkg/response"
)

// RecordHandler handles HTTP requests for observation record queries
type RecordHandler struct {
	filter *queryfilter.Service
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(filter *queryfilter.Service) *RecordHandler {
	return &RecordHandler{filter: filter}
}

// FilterRecords handles POST /api/v1/records/filter
func (h *RecordHandler) FilterRecords(c *gin.Context) {
	var req models.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid filter request")
		return
	}

	timeRange, err := h.filter.ParseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.filter.Process(req.StudentID, req.Attributes, timeRange, req.CameraIDs)
	if err != nil {
		if errors.Is(err, models.ErrInvalidTimeRange) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"allRecords":    result.All,
		"sortedRecords": result.SortedByTime,
		"cameraGroups":  result.CameraGroups,
	})
}
