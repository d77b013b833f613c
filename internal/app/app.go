package app

import (
	"context"
	"time"

	"github.com/courtscribe/courtscribe/internal/config"
	"github.com/courtscribe/courtscribe/internal/domains/brief"
	"github.com/courtscribe/courtscribe/internal/domains/pipeline"
	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/internal/handlers"
	briefRepo "github.com/courtscribe/courtscribe/internal/repository/brief"
	recordingRepo "github.com/courtscribe/courtscribe/internal/repository/recording"
	"github.com/courtscribe/courtscribe/internal/server"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/courtscribe/courtscribe/pkg/assets"
	"github.com/courtscribe/courtscribe/pkg/diarize"
	"github.com/courtscribe/courtscribe/pkg/diarize/pyannote"
	"github.com/courtscribe/courtscribe/pkg/retry"
	"github.com/courtscribe/courtscribe/pkg/stt"
	"github.com/courtscribe/courtscribe/pkg/stt/openaistt"
	"github.com/go-redis/redis"
	"github.com/openai/openai-go"
	"gorm.io/gorm"
)

// App represents the application with all its dependencies
type App struct {
	Config *config.Settings
	Logger *Logger.Logger
	DB     *gorm.DB
	RC     *redis.Client

	Store         *assets.Store
	RecordingRepo recording.RecordingRepository
	BriefRepo     brief.BriefRepository
	Pipeline      *pipeline.Service
	ServerDeps    server.Dependencies
}

// NewApp creates a new application instance with all dependencies properly wired
func NewApp(cfg *config.Settings, logger *Logger.Logger, db *gorm.DB, rc *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		RC:     rc,
	}

	if err := app.setupDependencies(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupDependencies initializes all application dependencies
func (a *App) setupDependencies() error {
	mediaDir := a.Config.Storage.MediaDir
	if mediaDir == "" {
		mediaDir = "media"
	}
	a.Store = assets.New(mediaDir)

	a.RecordingRepo = recordingRepo.NewGormRecordingRepo(a.DB, a.RC, a.Logger)
	a.BriefRepo = briefRepo.NewGormBriefRepo(a.DB)

	policy := retry.Default()
	if a.Config.Pipeline.RetryAttempts > 0 {
		policy.Attempts = a.Config.Pipeline.RetryAttempts
	}
	if a.Config.Pipeline.RetryBase > 0 {
		policy.Base = float64(a.Config.Pipeline.RetryBase)
	}

	whisper := openaistt.New(openaistt.Config{
		APIKey:   a.Config.STT.OpenAiApiKey,
		Model:    openai.AudioModel(a.Config.STT.Model),
		Language: a.Config.STT.Language,
	})
	transcriber := stt.NewClient(whisper, a.Store, policy, a.Logger)

	diarizerTimeout := time.Duration(a.Config.Diarizer.TimeoutSeconds) * time.Second
	pyannoteClient := pyannote.New(a.Config.Diarizer.BaseURL, diarizerTimeout, a.Logger)
	diarizer := diarize.NewClient(pyannoteClient, whisper, a.Store, policy, a.Logger)

	extractor := brief.NewOpenAIExtractor(a.Config.STT.OpenAiApiKey, openai.ChatModel(a.Config.Brief.Model))
	briefService := brief.NewBriefService(a.BriefRepo, a.RecordingRepo, extractor, a.Logger)

	chunkDuration := time.Duration(a.Config.Pipeline.ChunkSeconds) * time.Second
	chunker := pipeline.NewChunker(a.Store, chunkDuration, a.Logger)

	concurrency := a.Config.Pipeline.Concurrency
	if concurrency == 0 {
		concurrency = 10
	}
	a.Pipeline = pipeline.NewService(
		pipeline.Config{
			RedisAddr:     a.Config.Redis.Addr,
			RedisPassword: a.Config.Redis.Pass,
			RedisDB:       a.Config.Redis.DB,
			Concurrency:   concurrency,
			Queues:        map[string]int{"default": 1},
		},
		a.Logger,
		a.RecordingRepo,
		chunker,
		transcriber,
		diarizer,
		briefService,
	)

	recordingService := recording.NewRecordingService(a.RecordingRepo, a.Store, a.Pipeline, a.Logger)

	a.ServerDeps = server.NewServerDependencies(
		handlers.NewRecordingHandler(recordingService, a.Logger),
		handlers.NewBriefHandler(briefService, a.Logger),
		handlers.NewStatusStreamHandler(a.RC, a.Logger),
		a.Logger,
		a.Config,
	)

	return nil
}

// Start runs the background pipeline consumer.
func (a *App) Start(ctx context.Context) error {
	return a.Pipeline.Start(ctx)
}

// Stop shuts the pipeline down.
func (a *App) Stop(ctx context.Context) error {
	return a.Pipeline.Stop(ctx)
}

// GetServerDependencies returns the server dependencies
func (a *App) GetServerDependencies() server.Dependencies {
	return a.ServerDeps
}
