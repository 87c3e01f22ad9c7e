package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campustrack/trajectory-backend-go/internal/handler"
	"github.com/campustrack/trajectory-backend-go/internal/middleware"
)

// Handlers groups the handlers wired into the router.
type Handlers struct {
	Record     *handler.RecordHandler
	Analysis   *handler.AnalysisHandler
	Camera     *handler.CameraHandler
	Trajectory *handler.TrajectoryHandler
}

// SetupRouter 设置路由
func SetupRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Trajectory Backend API is running",
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	{
		records := api.Group("/records")
		{
			records.POST("/filter", h.Record.FilterRecords)
		}

		// 分析接口：特征匹配和时空分析开销较大，加限流
		analysis := api.Group("/analysis")
		analysis.Use(middleware.RateLimit(30, time.Minute))
		{
			analysis.POST("/spatiotemporal", h.Analysis.AnalyzeSpatiotemporal)
			analysis.POST("/match", h.Analysis.MatchFeatures)
		}

		cameras := api.Group("/cameras")
		{
			cameras.GET("", h.Camera.ListCameras)
			cameras.GET("/:id", h.Camera.GetCamera)
			cameras.POST("", h.Camera.CreateCamera)
			cameras.PUT("/:id", h.Camera.UpdateCamera)
			cameras.DELETE("/:id", h.Camera.DeleteCamera)
		}

		api.POST("/trajectories", h.Trajectory.SaveTrajectory)
		api.GET("/students/:studentId/trajectories", h.Trajectory.GetStudentTrajectories)
	}

	return r
}
