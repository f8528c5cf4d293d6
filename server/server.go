package server

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"solarfarm-server/confs"
	"solarfarm-server/db"
	"solarfarm-server/entities"
	"solarfarm-server/fleet"
	"solarfarm-server/handlers"
	httpHandler "solarfarm-server/handlers/http"
	"solarfarm-server/imagestore"
	"solarfarm-server/repositories"
	"solarfarm-server/status"
	"solarfarm-server/usecases"
	"solarfarm-server/ws"
)

type Server struct {
	app     *gin.Engine
	db      db.Database
	cfg     *confs.Config
	mapping *fleet.Mapping
}

func NewServer(database db.Database, cfg *confs.Config, mapping *fleet.Mapping) *Server {
	return &Server{
		app:     gin.Default(),
		db:      database,
		cfg:     cfg,
		mapping: mapping,
	}
}

func (s *Server) Start() error {
	// Setup CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(corsConfig))

	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	thresholds := status.Thresholds{
		FaultVolts:   s.cfg.FaultVolts,
		HealthyVolts: s.cfg.HealthyVolts,
		OnlineWindow: s.cfg.OnlineWindow,
	}

	// Initialize repositories
	deviceRepo := repositories.NewDevicePgRepository(s.db)
	readingRepo := repositories.NewReadingPgRepository(s.db)
	panelRepo := repositories.NewPanelPgRepository(s.db)
	scanRepo := repositories.NewScanPgRepository(s.db)
	generationRepo := repositories.NewGenerationPgRepository(s.db)
	captureRepo := repositories.NewCaptureCommandPgRepository(s.db)

	// Seed panel rows for every configured panel so fleet counts cover
	// panels that have never reported.
	if err := seedPanels(panelRepo, s.mapping); err != nil {
		return fmt.Errorf("seed panels: %w", err)
	}

	images, err := imagestore.New(s.cfg.ImageDir)
	if err != nil {
		return err
	}

	// Broadcast hub for dashboard observers
	hub := ws.NewHub(s.cfg.BacklogCap)
	go hub.Run()
	deviceConns := ws.NewDeviceManager()

	// Initialize use cases
	telemetryUC := usecases.NewTelemetryUseCase(deviceRepo, panelRepo, generationRepo, s.mapping, thresholds)
	statusUC := usecases.NewStatusUseCase(deviceRepo, readingRepo, panelRepo, s.mapping, thresholds, s.cfg.BucketWidth, s.cfg.HistoryLookback)
	scanUC := usecases.NewScanUseCase(scanRepo, images, hub)
	capturesUC := usecases.NewCapturesUseCase(captureRepo)

	// Initialize handlers
	readingsHandler := httpHandler.NewReadingsHandler(telemetryUC)
	statusHandler := httpHandler.NewStatusHandler(statusUC)
	scansHandler := httpHandler.NewScansHandler(scanUC)
	fleetHandler := httpHandler.NewFleetHandler(deviceRepo, panelRepo)
	capturesHandler := httpHandler.NewCapturesHandler(deviceConns, capturesUC)
	visionHandler := handlers.NewVisionHandler(deviceConns, scanUC)
	dashboardHandler := handlers.NewDashboardHandler(hub)

	// Setup API routes
	api := s.app.Group("/api/v1")
	{
		api.POST("/readings", readingsHandler.CreateReading)
		api.GET("/status/live", statusHandler.GetLiveStatus)

		api.GET("/devices", fleetHandler.GetDevices)
		api.GET("/panels", fleetHandler.GetPanels)

		scans := api.Group("/scans")
		{
			scans.GET("", scansHandler.GetScans)
			scans.GET("/:id", scansHandler.GetScan)
			scans.PUT("/:id/status", scansHandler.UpdateScanStatus)
		}

		api.POST("/captures", capturesHandler.Enqueue)
		api.GET("/captures/poll", capturesHandler.Poll)
		api.POST("/capture-responses", capturesHandler.Ack)

		api.GET("/dashboard/connected", dashboardHandler.GetConnected)
	}

	s.app.GET("/ws/vision", visionHandler.HandleVisionWS)
	s.app.GET("/ws/dashboard", dashboardHandler.HandleDashboardWS)

	return s.app.Run(s.cfg.ServerAddr)
}

func seedPanels(panels repositories.PanelRepository, mapping *fleet.Mapping) error {
	for _, deviceID := range mapping.DeviceIDs() {
		for _, spec := range mapping.PanelsFor(deviceID) {
			panel := &entities.Panel{
				PanelID:    spec.PanelID,
				DeviceID:   deviceID,
				Row:        spec.Row,
				Col:        spec.Col,
				Zone:       spec.Zone,
				MaxOutputW: spec.MaxOutputW,
				Status:     string(status.Offline),
			}
			if err := panels.Ensure(panel); err != nil {
				return err
			}
		}
	}
	return nil
}
