package app

import (
	"fmt"
	"log/slog"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"video-subtitler/internal/api/server"
	"video-subtitler/internal/app/api/botnoi"
	"video-subtitler/internal/app/api/openai"
	"video-subtitler/internal/app/api/provider"
	appconfig "video-subtitler/internal/app/config"
	"video-subtitler/internal/app/pipeline"
	"video-subtitler/internal/app/quota"
	"video-subtitler/internal/app/render"
	"video-subtitler/internal/app/repository"
	"video-subtitler/internal/app/repository/pg"
	"video-subtitler/internal/app/repository/sqlite"
	"video-subtitler/internal/app/util/files"
	"video-subtitler/internal/config"
)

// Application bundles the wired object graph for the CLI entry points.
type Application struct {
	Config      *config.Config
	Logger      *slog.Logger
	Coordinator *pipeline.Coordinator
	Ledger      *quota.Ledger
	Limits      *appconfig.LimitsStore
	Server      *server.Server
}

func newApplication(cfg *config.Config, logger *slog.Logger, coord *pipeline.Coordinator, ledger *quota.Ledger, limits *appconfig.LimitsStore, srv *server.Server) *Application {
	return &Application{
		Config:      cfg,
		Logger:      logger,
		Coordinator: coord,
		Ledger:      ledger,
		Limits:      limits,
		Server:      srv,
	}
}

func provideLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func provideUploadDAO(cfg *config.Config) (repository.UploadDAO, func(), error) {
	var dao repository.UploadDAO
	var err error
	switch cfg.DBDriver {
	case "postgres":
		dao, err = pg.NewPostgresDB(cfg.PostgresDSN)
	default:
		dao, err = sqlite.NewSQLiteDB(cfg.SQLitePath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s ledger: %w", cfg.DBDriver, err)
	}
	return dao, func() { dao.Close() }, nil
}

func provideLimitsStore(cfg *config.Config) (*appconfig.LimitsStore, error) {
	return appconfig.NewLimitsStore(cfg.LimitsPath)
}

func provideLedger(dao repository.UploadDAO, limits *appconfig.LimitsStore, cfg *config.Config, logger *slog.Logger) *quota.Ledger {
	return quota.NewLedger(dao, limits,
		quota.WithActivityDebounce(cfg.ActivityDebounce),
		quota.WithLogger(logger))
}

// provideRegistry registers one provider per configured credential. At least
// one backend must be configured or the process has nothing to transcribe with.
func provideRegistry(cfg *config.Config, logger *slog.Logger) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	if cfg.OpenAIKey != "" {
		p := openai.NewProvider(goopenai.NewClient(cfg.OpenAIKey))
		if err := registry.Register("openai", p); err != nil {
			return nil, err
		}
	}
	if cfg.BotnoiToken != "" {
		p := botnoi.NewProvider(cfg.BotnoiToken, botnoi.WithLogger(logger))
		if err := registry.Register("botnoi", p); err != nil {
			return nil, err
		}
	}

	names := registry.List()
	if len(names) == 0 {
		return nil, fmt.Errorf("no subtitle provider configured: set OPENAI_API_KEY or BOTNOI_API_TOKEN")
	}
	logger.Info("subtitle providers registered", "providers", names)
	return registry, nil
}

func provideWorkspace(cfg *config.Config) (*files.Workspace, error) {
	return files.NewWorkspace(cfg.UploadDir)
}

func provideRenderer(logger *slog.Logger) *render.Renderer {
	return render.NewRenderer(render.WithRendererLogger(logger))
}

func provideCoordinator(ws *files.Workspace, ledger *quota.Ledger, registry *provider.Registry, renderer *render.Renderer, logger *slog.Logger) *pipeline.Coordinator {
	return pipeline.NewCoordinator(ws, ledger, registry, renderer, pipeline.WithLogger(logger))
}

func provideServer(cfg *config.Config, coord *pipeline.Coordinator, ledger *quota.Ledger, limits *appconfig.LimitsStore, logger *slog.Logger) *server.Server {
	return server.NewServer(server.DefaultConfig(cfg.ListenAddr), coord, ledger, limits, logger)
}
