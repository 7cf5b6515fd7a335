// Package wire provides dependency injection for the boxforge application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/boxforge/internal/adapters/cli"
	"github.com/example/boxforge/internal/adapters/sqlite"
	"github.com/example/boxforge/internal/app"
	"github.com/example/boxforge/internal/config"
	"github.com/example/boxforge/internal/db"
	"github.com/example/boxforge/internal/logging"
	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/provider"
)

var (
	workspaceService  primary.WorkspaceService
	generationService *app.GenerationServiceImpl
	configService     primary.ConfigService
	host              *app.Host
	database          *sql.DB
	logger            = zap.NewNop()
	projectDir        string

	verbose bool
	once    sync.Once
	initErr error
)

// SetVerbose forces debug logging. It must be called before the first
// service is requested.
func SetVerbose(v bool) {
	verbose = v
}

// Init finds the project and builds every service. It is safe to call
// more than once; the first error is returned on every call.
func Init() error {
	once.Do(initServices)
	return initErr
}

// ProjectDir returns the root of the current project.
func ProjectDir() string {
	return projectDir
}

// ProjectConfig reads the current project configuration from disk.
func ProjectConfig() (*config.Config, error) {
	if projectDir == "" {
		return nil, config.ErrNoProject
	}
	return config.LoadConfig(projectDir)
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	return logger
}

// WorkspaceService returns the singleton WorkspaceService instance.
func WorkspaceService() primary.WorkspaceService {
	once.Do(initServices)
	return workspaceService
}

// GenerationService returns the singleton GenerationService instance.
func GenerationService() primary.GenerationService {
	once.Do(initServices)
	return generationService
}

// ConfigService returns the singleton ConfigService instance.
func ConfigService() primary.ConfigService {
	once.Do(initServices)
	return configService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cwd, err := os.Getwd()
	if err != nil {
		initErr = fmt.Errorf("failed to get working directory: %w", err)
		return
	}
	projectDir, err = config.FindProjectDir(cwd)
	if err != nil {
		initErr = fmt.Errorf("%w\nHint: run `boxforge init` in your project root", err)
		return
	}

	cfg, err := config.LoadConfig(projectDir)
	if err != nil {
		initErr = err
		return
	}
	logger, err = logging.New(logging.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON, Verbose: verbose})
	if err != nil {
		initErr = err
		return
	}

	database, err = db.Open(config.DBPath(projectDir))
	if err != nil {
		initErr = fmt.Errorf("failed to initialize database: %w", err)
		return
	}

	keyPath, err := config.UserKeyPath()
	if err != nil {
		initErr = err
		return
	}
	key, err := config.LoadOrCreateKey(keyPath)
	if err != nil {
		initErr = err
		return
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	projects := sqlite.NewProjectRepository(database)
	versions := sqlite.NewVersionRepository(database)
	secrets, err := sqlite.NewSecretStore(database, key, sqlite.WithEnvFallback(envKey))
	if err != nil {
		initErr = err
		return
	}
	settings := config.NewFileStore(projectDir)
	registry := provider.NewRegistry(cfg.ProviderConfigs(), logger.Named("provider"))

	// The host and the session talk only through encoded protocol messages.
	host = app.NewHost(app.HostOptions{
		Generator: registry,
		Secrets:   secrets,
		Config:    settings,
		Send:      func(data []byte) { generationService.Deliver(data) },
		Logger:    logger.Named("host"),
	})
	generationService = app.NewGenerationService(app.GenerationServiceDeps{
		Projects: projects,
		Versions: versions,
		Config:   settings,
		Post:     host.Post,
		Logger:   logger.Named("generation"),
	})

	// Create services (primary ports implementation)
	workspaceService = app.NewWorkspaceService(projects, versions, nil, logger.Named("workspace"))
	configService = app.NewConfigService(generationService.Session(), secrets, registry)
}

func envKey(providerID string) (string, bool) {
	v, ok := os.LookupEnv(config.EnvKeyName(providerID))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Close stops running generations and releases the database.
func Close() {
	if host != nil {
		host.Close()
	}
	if generationService != nil {
		generationService.Close()
	}
	if database != nil {
		_ = database.Close()
	}
	_ = logger.Sync()
}

// WorkspaceAdapter returns a new WorkspaceAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func WorkspaceAdapter() *cliadapter.WorkspaceAdapter {
	return WorkspaceAdapterWithOutput(os.Stdout)
}

// WorkspaceAdapterWithOutput returns a new WorkspaceAdapter writing to the given output.
func WorkspaceAdapterWithOutput(out io.Writer) *cliadapter.WorkspaceAdapter {
	return cliadapter.NewWorkspaceAdapter(WorkspaceService(), out)
}

// GenerationAdapter returns a new GenerationAdapter writing to stdout.
func GenerationAdapter() *cliadapter.GenerationAdapter {
	return cliadapter.NewGenerationAdapter(GenerationService(), os.Stdout)
}

// ConfigAdapter returns a new ConfigAdapter writing to stdout.
func ConfigAdapter() *cliadapter.ConfigAdapter {
	return cliadapter.NewConfigAdapter(ConfigService(), os.Stdout)
}
