package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campustrack/trajectory-backend-go/internal/models"
	"github.com/campustrack/trajectory-backend-go/internal/repository"
	"github.com/campustrack/trajectory-backend-go/pkg/response"
)

// CameraHandler handles HTTP requests for camera metadata
type CameraHandler struct {
	cameraRepo *repository.CameraRepository
}

// NewCameraHandler creates a new camera handler
func NewCameraHandler(cameraRepo *repository.CameraRepository) *CameraHandler {
	return &CameraHandler{cameraRepo: cameraRepo}
}

// ListCameras handles GET /api/v1/cameras
func (h *CameraHandler) ListCameras(c *gin.Context) {
	cameras, err := h.cameraRepo.ListCameras()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, cameras)
}

// GetCamera handles GET /api/v1/cameras/:id
func (h *CameraHandler) GetCamera(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid camera ID")
		return
	}

	camera, err := h.cameraRepo.GetCameraByID(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if camera == nil {
		response.NotFound(c, "Camera not found")
		return
	}
	response.Success(c, camera)
}

// CreateCamera handles POST /api/v1/cameras
func (h *CameraHandler) CreateCamera(c *gin.Context) {
	var req models.CameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid camera payload")
		return
	}

	id, err := h.cameraRepo.CreateCamera(req)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"cameraId": id})
}

// UpdateCamera handles PUT /api/v1/cameras/:id
func (h *CameraHandler) UpdateCamera(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid camera ID")
		return
	}

	var req models.CameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid camera payload")
		return
	}

	if err := h.cameraRepo.UpdateCamera(id, req); err != nil {
		response.NotFound(c, err.Error())
		return
	}
	response.Success(c, gin.H{"cameraId": id})
}

// DeleteCamera handles DELETE /api/v1/cameras/:id
func (h *CameraHandler) DeleteCamera(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid camera ID")
		return
	}

	if err := h.cameraRepo.DeleteCamera(id); err != nil {
		response.NotFound(c, err.Error())
		return
	}
	response.Success(c, gin.H{"cameraId": id})
}
