// Package app wires the session store, platform clients, caches and services
// shared by the HTTP gateway and the command line client.
package app

import (
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/cache"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/config"
	"hoainiem-portal/internal/database"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/job"
	"hoainiem-portal/internal/metrics"
	"hoainiem-portal/internal/repository"
	"hoainiem-portal/internal/router"
	"hoainiem-portal/internal/service"
	"hoainiem-portal/internal/validation"
)

// App holds every long-lived component
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// DB and Redis are set only for the matching session store
	DB    *gorm.DB
	Redis *redis.Client

	KV       repository.KeyValueStore
	Tokens   auth.TokenStore
	Uploader client.ImageUploader

	Threads  *cache.Store[domain.Thread]
	Menu     *cache.Store[[]domain.MenuNode]
	Sidebar  *cache.Store[[]domain.SidebarCategory]
	Metadata *cache.Store[domain.SiteMetadata]

	AuthService     service.AuthService
	CategoryService service.CategoryService
	MetadataService service.MetadataService
	FeedService     service.FeedService
	ThreadService   service.ThreadService
	PostService     service.PostService
	ProfileService  service.ProfileService
}

// New builds the application. m may be nil.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Metrics: m}

	if err := a.openSessionStore(); err != nil {
		return nil, err
	}
	if cfg.Session.Shared {
		a.Tokens = auth.NewTokenStore(a.KV, logger)
	} else {
		a.Tokens = auth.NewScopedTokenStore(a.KV, logger)
	}

	v, err := validation.New(cfg.PortalAPI.Locale)
	if err != nil {
		a.Close()
		return nil, err
	}

	api, err := client.NewAPIClient(cfg.PortalAPI.BaseURL, cfg.PortalAPI.Timeout, logger, m)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.S3.Enabled() {
		uploader, err := client.NewS3ImageUploader(&cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 uploader, images are sent to the platform directly", zap.Error(err))
		} else {
			a.Uploader = uploader
			logger.Info("S3 uploader initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region))
		}
	}

	a.Threads = cache.New[domain.Thread]("threads", m, logger)
	a.Menu = cache.New[[]domain.MenuNode]("menu", m, logger)
	a.Sidebar = cache.New[[]domain.SidebarCategory]("sidebar", m, logger)
	a.Metadata = cache.New[domain.SiteMetadata]("metadata", m, logger)

	a.AuthService = service.NewAuthService(client.NewAuthClient(api), a.Tokens, a.KV, v, m, logger)
	a.CategoryService = service.NewCategoryService(client.NewCategoryClient(api), a.Menu, a.Sidebar, logger)
	a.MetadataService = service.NewMetadataService(client.NewMetadataClient(api), a.Metadata)
	a.FeedService = service.NewFeedService(client.NewPostClient(api), logger)
	a.ThreadService = service.NewThreadService(client.NewCommentClient(api), a.Tokens, a.Threads, m, logger)
	a.PostService = service.NewPostService(client.NewPostClient(api), a.Tokens, a.Uploader, v, logger)
	a.ProfileService = service.NewProfileService(client.NewProfileClient(api), a.Tokens, a.Uploader, v, logger)

	return a, nil
}

func (a *App) openSessionStore() error {
	cfg := a.Config
	switch cfg.Session.Store {
	case "database":
		db, err := database.New(database.Config{
			DSN:             cfg.Session.DSN,
			MaxOpenConns:    cfg.Session.MaxOpenConns,
			MaxIdleConns:    cfg.Session.MaxIdleConns,
			ConnMaxLifetime: cfg.Session.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			database.Close(db)
			return err
		}
		if a.Metrics != nil {
			if err := database.RegisterMetricsCallbacks(db, a.Metrics); err != nil {
				a.Logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
			}
		}
		a.DB = db
		a.KV = repository.NewGormKeyValueStore(db)
		a.Logger.Info("Session store: database", zap.Bool("postgres", database.IsPostgres(cfg.Session.DSN)))
	case "redis":
		rdb, err := database.NewRedis(cfg.Redis, a.Logger)
		if err != nil {
			return err
		}
		a.Redis = rdb
		a.KV = repository.NewRedisKeyValueStore(rdb, cfg.Redis.KeyPrefix)
		a.Logger.Info("Session store: redis")
	case "memory":
		a.KV = repository.NewMemoryKeyValueStore()
		a.Logger.Info("Session store: memory")
	default:
		return fmt.Errorf("unknown session store: %q", cfg.Session.Store)
	}
	return nil
}

// NewCollector returns a metrics collector sampling the session store and
// every cache, or nil without metrics
func (a *App) NewCollector() *metrics.Collector {
	if a.Metrics == nil {
		return nil
	}
	c := metrics.NewCollector(a.DB, domain.KeyValueEntry{}.TableName(), a.Metrics, a.Logger, 0)
	c.TrackCache("threads", a.Threads.Len)
	c.TrackCache("menu", a.Menu.Len)
	c.TrackCache("sidebar", a.Sidebar.Len)
	c.TrackCache("metadata", a.Metadata.Len)
	return c
}

// Schedules returns the background jobs of the gateway
func (a *App) Schedules() []job.Schedule {
	cleanup := job.NewCleanupJob(a.Tokens, a.Config.Session.IdleTimeout, a.Config.Jobs.StateIdleTimeout, a.Logger).
		Track("feeds", a.FeedService).
		Track("thread_models", a.ThreadService).
		Track("threads", a.Threads).
		Track("metadata", a.Metadata)

	return []job.Schedule{
		{Name: "session check", Spec: a.Config.Jobs.SessionCheckSpec, Job: job.NewSessionKeeper(a.Tokens, a.AuthService, a.Logger)},
		{Name: "cleanup", Spec: a.Config.Jobs.CleanupSpec, Job: cleanup},
	}
}

// RouterConfig returns the router configuration of the gateway
func (a *App) RouterConfig() router.Config {
	return router.Config{
		Logger:          a.Logger,
		BasePath:        a.Config.Server.BasePath,
		AllowedOrigins:  a.Config.CORS.Origins(),
		Metrics:         a.Metrics,
		DB:              a.DB,
		Redis:           a.Redis,
		Tokens:          a.Tokens,
		AuthService:     a.AuthService,
		CategoryService: a.CategoryService,
		MetadataService: a.MetadataService,
		FeedService:     a.FeedService,
		ThreadService:   a.ThreadService,
		PostService:     a.PostService,
		ProfileService:  a.ProfileService,
	}
}

// Close releases the session store connections
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, database.Close(a.DB))
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
