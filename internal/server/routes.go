package server

import (
	"github.com/courtscribe/courtscribe/internal/config"
	"github.com/courtscribe/courtscribe/internal/handlers"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/gin-gonic/gin"
)

// Dependencies carries the handlers the route table needs.
type Dependencies struct {
	RecordingHandler *handlers.RecordingHandler
	BriefHandler     *handlers.BriefHandler
	StatusHandler    *handlers.StatusStreamHandler
	Logger           *Logger.Logger
	Configs          *config.Settings
}

func NewServerDependencies(
	recordingHandler *handlers.RecordingHandler,
	briefHandler *handlers.BriefHandler,
	statusHandler *handlers.StatusStreamHandler,
	logger *Logger.Logger,
	cfg *config.Settings,
) Dependencies {
	return Dependencies{
		RecordingHandler: recordingHandler,
		BriefHandler:     briefHandler,
		StatusHandler:    statusHandler,
		Logger:           logger,
		Configs:          cfg,
	}
}

func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.Use(handlers.CORSMiddleware())
	r.Use(handlers.RequestLoggerMiddleware(dep.Logger))
	r.Use(handlers.ErrorHandlerMiddleware(dep.Logger))

	r.GET("/", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"message": "Server healthy"}) })
	r.GET("/health", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"status": "ok"}) })

	// Live status stream; clients pass the bearer token as a query
	// parameter-free upgrade, so this stays outside the auth group.
	r.GET("/ws/status", dep.StatusHandler.Stream)

	api := r.Group("/api/v1")
	api.Use(handlers.AuthMiddleware(dep.Configs.Auth.JWTSecret, dep.Logger))
	{
		api.POST("/recordings", dep.RecordingHandler.CreateRecording)
		api.GET("/recordings", dep.RecordingHandler.ListRecordings)
		api.GET("/recordings/:id", dep.RecordingHandler.GetRecording)
		api.GET("/recordings/:id/transcript", dep.RecordingHandler.GetTranscript)
		api.GET("/recordings/:id/diarization", dep.RecordingHandler.GetDiarization)
		api.POST("/recordings/:id/brief", dep.BriefHandler.GenerateBrief)
		api.GET("/recordings/:id/brief", dep.BriefHandler.GetBrief)
	}
}
