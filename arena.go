package arena

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lborres/arena/core"
	"github.com/lborres/arena/pkg/cache"
	"github.com/lborres/arena/pkg/crypto"
	"github.com/lborres/arena/services"
)

// interfaces
type (
	StorageAdapter = core.StorageAdapter
	Cache          = core.Cache
	EventPublisher = core.EventPublisher
	HTTPAdapter    = core.HTTPAdapter
	AccountService = core.AccountService

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Arena         = core.Arena
	Environment   = core.Environment
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
	Endpoint      = core.Endpoint
)

type (
	User             = core.User
	Submission       = core.Submission
	Session          = core.Session
	LeaderboardEntry = core.LeaderboardEntry
	CacheStats       = core.CacheStats
)

const (
	defaultBasePath  = "/users"
	defaultSecretLen = 32

	// defaultCacheTTL bounds how long a session revoked by another instance
	// stays valid in this instance's in-memory cache
	defaultCacheTTL = 30 * time.Second
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = cache.NewInMemoryCache
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
	ParseEnvironment     = core.ParseEnvironment
)

var (
	ErrUserExists   = core.ErrUserExists
	ErrUserNotFound = core.ErrUserNotFound
	ErrInvalidInput = core.ErrInvalidInput
)

var (
	ErrMissingAccessToken  = core.ErrMissingAccessToken
	ErrInvalidToken        = core.ErrInvalidToken
	ErrSessionNotFound     = core.ErrSessionNotFound
	ErrSessionExpired      = core.ErrSessionExpired
	ErrInvalidRefreshToken = core.ErrInvalidRefreshToken
	ErrForbidden           = core.ErrForbidden
	ErrCacheNotFound       = core.ErrCacheNotFound
)

var (
	ErrMalformedResult = core.ErrMalformedResult
	ErrDomainRequired  = core.ErrDomainRequired
)

var (
	ErrDBAdapterRequired   = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

type Config struct {
	// Secret signs access tokens; at least 32 characters
	Secret      string
	Database    StorageAdapter
	HTTP        HTTPAdapter
	Environment Environment

	// CacheAdapter overrides the default in-memory session cache
	CacheAdapter Cache
	DisableCache bool

	SessionConfig  *SessionConfig
	PasswordHasher PasswordHandler
	// Events receives domain events; nil disables publishing
	Events EventPublisher

	LeaderboardSize int
	BasePath        string
	Logger          *slog.Logger
}

// App is an assembled arena server. The embedded Arena is what the HTTP
// adapter registered its routes from.
type App struct {
	*Arena
	Users    *services.UserService
	Sessions *services.SessionManager
	Cache    Cache
}

func New(config Config) (*App, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = NewInMemoryCache(CacheConfig{
			TTL:     defaultCacheTTL,
			MaxSize: 500,
		})
	}

	sessionConfig := DefaultSessionConfig()
	if config.SessionConfig != nil {
		sessionConfig = *config.SessionConfig
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	issuer, err := core.NewCredentialIssuer(config.Environment)
	if err != nil {
		return nil, err
	}

	sessionManager := services.NewSessionManager(sessionConfig, config.Database, cacheAdapter, logger)
	tokens := services.NewAccessTokenSigner(config.Secret, sessionConfig.AccessTokenTTL)

	opts := []services.UserServiceOption{services.WithLogger(logger)}
	if config.Events != nil {
		opts = append(opts, services.WithEvents(config.Events))
	}
	if config.LeaderboardSize > 0 {
		opts = append(opts, services.WithLeaderboardSize(config.LeaderboardSize))
	}
	users := services.NewUserService(config.Database, passwordHasher, sessionManager, tokens, opts...)

	registry := services.NewEndpointRegistry()

	app := &App{
		Arena: &Arena{
			Accounts:  users,
			Issuer:    issuer,
			Guards:    services.DefaultGuards(tokens, sessionManager),
			Endpoints: registry.Endpoints(),
			BasePath:  basePath,
			Logger:    logger,
		},
		Users:    users,
		Sessions: sessionManager,
		Cache:    cacheAdapter,
	}

	if err := config.HTTP.RegisterRoutes(app.Arena); err != nil {
		return nil, err
	}

	return app, nil
}
