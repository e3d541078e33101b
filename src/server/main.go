package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"breaktime-service/src/config"
	"breaktime-service/src/controller"
	"breaktime-service/src/db"
	"breaktime-service/src/rabbitmq"
	"breaktime-service/src/repository"
	"breaktime-service/src/router"
	"breaktime-service/src/service"

	_ "breaktime-service/src/docs"

	_ "github.com/swaggo/files"
	_ "github.com/swaggo/gin-swagger"
)

// Server represents the HTTP server and its background workers.
type Server struct {
	config          *config.GlobalConfig
	database        *db.DB
	store           *repository.Store
	catalogue       *repository.Catalogue
	publisher       *rabbitmq.AMQPPublisher
	mirror          *service.Mirror
	importer        *service.Importer
	evaluator       *service.AlertEvaluator
	http            *http.Server
	shutdownHandler ShutdownHandlerInterface

	workersCancel context.CancelFunc
	workersDone   sync.WaitGroup
}

// NewServer creates a new server instance
func NewServer(cfg *config.GlobalConfig) (*Server, error) {
	// Initialize database connection
	database, err := db.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := repository.NewStore(database)

	catalogue, err := store.LoadCatalogue(context.Background())
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load break type catalogue: %w", err)
	}

	// The broker is optional. Without it lifecycle writes and alerts
	// still work; only the fan-out is lost.
	var publisher *rabbitmq.AMQPPublisher
	if p, err := rabbitmq.NewAMQPPublisher(cfg.AMQPURL(), cfg.MirrorExchange, cfg.AlertExchange); err != nil {
		slog.Warn("RabbitMQ unavailable, continuing without fan-out", "error", err)
	} else {
		publisher = p
	}

	var pub rabbitmq.Publisher
	if publisher != nil {
		pub = publisher
	}

	server := &Server{
		config:    cfg,
		database:  database,
		store:     store,
		catalogue: catalogue,
		publisher: publisher,
		mirror:    service.NewMirror(pub, cfg.MirrorExchange, cfg.MirrorQueueSize),
		importer:  service.NewImporter(store, catalogue, cfg.SnapshotDir, cfg.GraceWindow, cfg.StaleAfter, cfg.ImportInterval, cfg.Location),
		evaluator: service.NewAlertEvaluator(store, pub, cfg.AlertExchange, cfg.AlertInterval, cfg.Location),
	}

	// Create and assign shutdown handler
	server.shutdownHandler = NewShutdownHandler(server)

	return server, nil
}

// Run starts the server with graceful shutdown using ShutdownHandler
func (s *Server) Run() error {
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	s.startWorkers()
	serverDone := s.startServerGoroutine()

	return s.shutdownHandler.HandleShutdown(serverDone, osSignals)
}

// startWorkers launches the mirror publisher, the snapshot importer and
// the alert evaluator.
func (s *Server) startWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.workersCancel = cancel

	for _, run := range []func(context.Context){
		s.mirror.Run,
		s.importer.Run,
		s.evaluator.Run,
	} {
		run := run
		s.workersDone.Add(1)
		go func() {
			defer s.workersDone.Done()
			run(ctx)
		}()
	}
}

// startServerGoroutine starts the HTTP server in a goroutine and returns a channel for errors
func (s *Server) startServerGoroutine() chan error {
	serverDone := make(chan error, 1)

	go func() {
		breakService := service.NewBreakService(s.store, s.catalogue, s.mirror, s.config.Location)
		dashboardService := service.NewDashboardService(s.store, s.config.Location)
		summaryService := service.NewSummaryService(s.store, s.config.Location)

		r := router.NewRouter(router.Controllers{
			Breaks:    controller.NewBreakController(breakService),
			Dashboard: controller.NewDashboardController(dashboardService, s.catalogue),
			Alerts:    controller.NewAlertController(s.evaluator, dashboardService),
			Admin:     controller.NewAdminController(summaryService, s.importer),
		})

		// Create HTTP server
		httpServer := &http.Server{
			Addr:    fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
			Handler: r,
		}
		s.http = httpServer

		slog.Info("Starting breaktime service",
			"host", s.config.Host,
			"port", s.config.Port)

		serverDone <- s.startServer()
	}()

	return serverDone
}

// startServer starts the HTTP server and handles errors
func (s *Server) startServer() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
