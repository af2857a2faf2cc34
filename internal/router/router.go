package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/handler"
	"hoainiem-portal/internal/metrics"
	"hoainiem-portal/internal/middleware"
	"hoainiem-portal/internal/service"
)

// Config holds router configuration
type Config struct {
	Logger         *zap.Logger
	BasePath       string
	AllowedOrigins []string
	Metrics        *metrics.Metrics

	// DB and Redis back the readiness check; both may be nil
	DB    *gorm.DB
	Redis *redis.Client

	Tokens          auth.TokenStore
	AuthService     service.AuthService
	CategoryService service.CategoryService
	MetadataService service.MetadataService
	FeedService     service.FeedService
	ThreadService   service.ThreadService
	PostService     service.PostService
	ProfileService  service.ProfileService
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.SessionScope())

	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)
	metricsHandler := gin.WrapH(promhttp.Handler())

	// Health checks and metrics at the root for the cluster, and under the base path
	// for the ingress
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metricsHandler)

	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	categoryHandler := handler.NewCategoryHandler(cfg.CategoryService, cfg.MetadataService, cfg.FeedService, cfg.Logger)
	feedHandler := handler.NewFeedHandler(cfg.FeedService, cfg.Logger)
	threadHandler := handler.NewThreadHandler(cfg.ThreadService, cfg.Logger)
	postHandler := handler.NewPostHandler(cfg.PostService, cfg.ProfileService, cfg.Logger)

	api := r.Group(cfg.BasePath)
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)
		api.GET("/metrics", metricsHandler)
	}
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireUser := middleware.RequireSession(cfg.Tokens, true, cfg.Logger)
	requireToken := middleware.RequireSession(cfg.Tokens, false, cfg.Logger)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/status", authHandler.Status)
	}

	categories := api.Group("/categories")
	{
		categories.GET("/menu", categoryHandler.Menu)
		categories.GET("/sidebar", categoryHandler.Sidebar)
		categories.GET("/:slug/posts", categoryHandler.CategoryPosts)
	}

	api.GET("/metadata", categoryHandler.Metadata)

	posts := api.Group("/posts")
	{
		posts.GET("/latest", categoryHandler.Latest)
		posts.GET("/draft", requireUser, postHandler.Draft)
		posts.POST("", requireUser, postHandler.SubmitPost)
	}

	api.PUT("/profile", requireUser, postHandler.UpdateProfile)

	feeds := api.Group("/feeds")
	{
		feeds.POST("", feedHandler.Open)
		feeds.POST("/:feedId/next", feedHandler.Next)
		feeds.DELETE("/:feedId", feedHandler.Close)
	}

	threads := api.Group("/threads/:postId", requireToken)
	{
		threads.GET("", threadHandler.GetThread)
		threads.GET("/stream", threadHandler.Stream)
		threads.POST("/comments", threadHandler.AddComment)
		threads.POST("/comments/:id/reply-box", threadHandler.ToggleReplyBox)
		threads.PUT("/comments/:id/draft", threadHandler.SetDraft)
		threads.POST("/comments/:id/replies", threadHandler.SubmitReply)
		threads.POST("/comments/:id/like", threadHandler.ToggleLike)
	}

	return r
}
