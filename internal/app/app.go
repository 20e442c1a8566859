// Package app wires Kotoba's configuration, storage, clients, session
// state, and services into one shared core.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/kotoba/internal/clients/gemini"
	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/interfaces"
	"github.com/bobmcallan/kotoba/internal/services/lookup"
	"github.com/bobmcallan/kotoba/internal/services/media"
	"github.com/bobmcallan/kotoba/internal/services/story"
	"github.com/bobmcallan/kotoba/internal/session"
	"github.com/bobmcallan/kotoba/internal/storage"
)

// App holds all initialized services, clients, and session state.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Storage       interfaces.StorageManager
	GeminiClient  interfaces.GeminiClient
	Session       *session.Store
	LookupService interfaces.LookupService
	MediaService  interfaces.MediaService
	StoryService  interfaces.StoryService
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, the Gemini client, the session
// store (seeded from persisted state), and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, KOTOBA_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("KOTOBA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "kotoba.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/kotoba.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	geminiKey, err := common.ResolveAPIKey(ctx, storageManager.KV(), "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - lookups will be unavailable")
	}

	var geminiClient interfaces.GeminiClient
	if geminiKey != "" {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithImageModel(config.Clients.Gemini.ImageModel),
			gemini.WithSpeechModel(config.Clients.Gemini.SpeechModel),
			gemini.WithSpeechVoice(config.Clients.Gemini.SpeechVoice),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = client
		}
	}

	// Seed session state from the durable store. A malformed wordbook or
	// profile degrades to empty and never blocks startup.
	initial := session.State{
		Wordbook: storageManager.Wordbook().Load(ctx),
	}
	if profile, ok := storageManager.Profile().GetProfile(ctx); ok {
		initial.Profile = profile
	}
	sessionStore := session.NewStore(initial, logger)

	lookupService := lookup.NewService(storageManager, geminiClient, sessionStore, logger)
	mediaService := media.NewService(geminiClient, sessionStore, logger)
	storyService := story.NewService(geminiClient, sessionStore, logger)

	a := &App{
		Config:        config,
		Logger:        logger,
		Storage:       storageManager,
		GeminiClient:  geminiClient,
		Session:       sessionStore,
		LookupService: lookupService,
		MediaService:  mediaService,
		StoryService:  storyService,
		StartupTime:   startupStart,
	}

	logger.Info().
		Int("wordbook_entries", len(initial.Wordbook)).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
