package bootstrap

import (
	"log"

	"rickshaw-client/internal/config"
	"rickshaw-client/internal/controller"
	"rickshaw-client/internal/handler"
	"rickshaw-client/internal/mapper"
	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/internal/repository/memory"
	"rickshaw-client/internal/service"
	"rickshaw-client/internal/view"
	"rickshaw-client/internal/websocket"
	"rickshaw-client/pkg/detection"
	"rickshaw-client/pkg/events"
	"rickshaw-client/pkg/intake"
	"rickshaw-client/pkg/state"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	AnalysisController controller.IAnalysisController

	// Services
	SubmissionService service.ISubmissionService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Page & WebSockets
	PageHandler  *handler.PageHandler
	LiveHandler  *handler.LiveHandler
	WebSocketHub *websocket.Hub

	Sessions *memory.SessionRepository
	Logger   logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	if warning := cfg.Warning(); warning != "" {
		sysLogger.Warn("Bootstrap", warning, map[string]interface{}{"endpoint": cfg.Detection.Endpoint})
	}

	// 2. Event Bus
	// Blocking until ack keeps a session's events in the order they were published.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)

	// 3. Storage & Domain
	sessions := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval)
	states := state.NewManager(sysLogger)
	analyzer := detection.NewClient(cfg.Detection.Endpoint, cfg.Detection.Timeout)
	sessionMapper := mapper.NewSessionMapper(cfg.Warning())

	// 4. Services
	publisherService := service.NewPublisherService(events.TopicAnalysis, pubSub, sysLogger)
	submissionService := service.NewSubmissionService(
		sessions,
		states,
		intake.NewBase64Reader(),
		analyzer,
		publisherService,
		sessionMapper,
		sysLogger,
	)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.LiveLogFilePath)
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	consumerService := service.NewConsumerService(pubSub, events.TopicAnalysis, wsHub, wsLogger)

	page, err := view.NewPage()
	if err != nil {
		log.Panicf("Unable to parse page templates: %v", err)
	}

	return &Container{
		AnalysisController: controller.NewAnalysisController(submissionService),
		SubmissionService:  submissionService,
		ConsumerService:    consumerService,
		PageHandler:        handler.NewPageHandler(submissionService, page, sysLogger),
		LiveHandler:        handler.NewLiveHandler(submissionService, wsHub, wsLogger),
		WebSocketHub:       wsHub,
		Sessions:           sessions,
		Logger:             sysLogger,
	}
}
