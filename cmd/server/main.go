package main

import (
	"fmt"
	"log"

	"github.com/campustrack/trajectory-backend-go/internal/analysis/spatiotemporal"
	"github.com/campustrack/trajectory-backend-go/internal/api"
	"github.com/campustrack/trajectory-backend-go/internal/config"
	"github.com/campustrack/trajectory-backend-go/internal/database"
	"github.com/campustrack/trajectory-backend-go/internal/handler"
	"github.com/campustrack/trajectory-backend-go/internal/queryfilter"
	"github.com/campustrack/trajectory-backend-go/internal/reid"
	"github.com/campustrack/trajectory-backend-go/internal/repository"
	"github.com/campustrack/trajectory-backend-go/internal/service"
	"github.com/campustrack/trajectory-backend-go/internal/spatial"
)

func main() {
	// 加载配置
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	obsRepo := repository.NewObservationRepository(db)
	camRepo := repository.NewCameraRepository(db)
	trajRepo := repository.NewTrajectoryRepository(db)

	cs := spatial.CoordinateSystem(cfg.CoordinateSystem)

	// 构建校园地图图形：摄像头节点 + 可选路径数据
	graph, err := buildCampusGraph(obsRepo, cs)
	if err != nil {
		log.Fatal("Failed to build campus graph:", err)
	}

	estimator, err := spatiotemporal.NewEstimator(cs, cfg.WalkingSpeed, graph)
	if err != nil {
		log.Fatal("Invalid analyzer configuration:", err)
	}
	analyzer := spatiotemporal.NewAnalyzer(estimator)

	filter := queryfilter.NewService(obsRepo, cfg.Location())

	// The inference backend is an external collaborator. Without one,
	// matching runs on stored feature vectors only and query requests must
	// carry a pre-extracted feature.
	extractor := reid.ExtractorFunc(func(image []byte, alg reid.Algorithm) ([]float64, error) {
		return nil, fmt.Errorf("%w: no inference backend configured", reid.ErrExtraction)
	})
	cache := reid.NewModelCache(func(alg reid.Algorithm) (any, error) {
		return alg, nil
	})
	processor := reid.NewProcessor(extractor, cache)

	algorithm, err := reid.ParseAlgorithm(cfg.ReIDAlgorithm)
	if err != nil {
		log.Fatal("Invalid reid configuration:", err)
	}

	trajectoryService := service.NewTrajectoryService(filter, analyzer, trajRepo, cs)
	reidService := service.NewReIDService(filter, processor, extractor, cfg.MatchThreshold, algorithm)

	router := api.SetupRouter(api.Handlers{
		Record:     handler.NewRecordHandler(filter),
		Analysis:   handler.NewAnalysisHandler(trajectoryService, reidService),
		Camera:     handler.NewCameraHandler(camRepo),
		Trajectory: handler.NewTrajectoryHandler(trajectoryService),
	})

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// buildCampusGraph loads camera locations and recorded paths into the
// static campus graph. Nil when no cameras exist yet; the estimator then
// falls back to direct distances.
func buildCampusGraph(obsRepo *repository.ObservationRepository, cs spatial.CoordinateSystem) (*spatial.CampusGraph, error) {
	cameras, err := obsRepo.CameraLocations()
	if err != nil {
		return nil, err
	}
	if len(cameras) == 0 {
		return nil, nil
	}
	paths, err := obsRepo.CampusPaths()
	if err != nil {
		return nil, err
	}

	nodes := make([]spatial.CameraNode, 0, len(cameras))
	for _, cam := range cameras {
		nodes = append(nodes, spatial.CameraNode{
			ID:   cam.CameraID,
			Name: cam.Name,
			Pos:  spatial.Point{X: cam.LocationX, Y: cam.LocationY},
		})
	}
	edges := make([]spatial.PathEdge, 0, len(paths))
	for _, p := range paths {
		edges = append(edges, spatial.PathEdge{
			From:     p.FromCameraID,
			To:       p.ToCameraID,
			Distance: p.Distance,
		})
	}

	log.Printf("Campus graph built: %d cameras, %d recorded paths", len(nodes), len(edges))
	return spatial.BuildCampusGraph(cs, nodes, edges), nil
}
