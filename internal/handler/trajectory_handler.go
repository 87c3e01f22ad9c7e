package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campustrack/trajectory-backend-go/internal/models"
	"github.com/campustrack/trajectory-backend-go/internal/service"
	"github.com/campustrack/trajectory-backend-go/pkg/response"
)

// TrajectoryHandler handles persisted trajectory requests
type TrajectoryHandler struct {
	trajectoryService *service.TrajectoryService
}

// NewTrajectoryHandler creates a new trajectory handler
func NewTrajectoryHandler(trajectoryService *service.TrajectoryService) *TrajectoryHandler {
	return &TrajectoryHandler{trajectoryService: trajectoryService}
}

// SaveTrajectory handles POST /api/v1/trajectories
func (h *TrajectoryHandler) SaveTrajectory(c *gin.Context) {
	var req models.SaveTrajectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid trajectory payload")
		return
	}

	id, err := h.trajectoryService.Save(req)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"trajectoryId": id})
}

// GetStudentTrajectories handles GET /api/v1/students/:studentId/trajectories
func (h *TrajectoryHandler) GetStudentTrajectories(c *gin.Context) {
	studentID := c.Param("studentId")
	if studentID == "" {
		response.BadRequest(c, "Student ID is required")
		return
	}

	trajectories, err := h.trajectoryService.ListByStudent(studentID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, trajectories)
}
