package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/pengaduan/internal/config"
	"anoa.com/pengaduan/internal/middleware"
	"anoa.com/pengaduan/internal/scheduler"
	"anoa.com/pengaduan/pkg/logger"
	"anoa.com/pengaduan/pkg/ratelimiter"
	"anoa.com/pengaduan/pkg/storage"

	pengaduanHttp "anoa.com/pengaduan/internal/modules/pengaduan/delivery/http"
	pengaduanRepo "anoa.com/pengaduan/internal/modules/pengaduan/repository"
	pengaduanService "anoa.com/pengaduan/internal/modules/pengaduan/service"

	registryHttp "anoa.com/pengaduan/internal/modules/registry/delivery/http"
	registryRepo "anoa.com/pengaduan/internal/modules/registry/repository"
	registryService "anoa.com/pengaduan/internal/modules/registry/service"

	tokenRepo "anoa.com/pengaduan/internal/modules/token/repository"
	tokenService "anoa.com/pengaduan/internal/modules/token/service"

	userHttp "anoa.com/pengaduan/internal/modules/user/delivery/http"
	userRepo "anoa.com/pengaduan/internal/modules/user/repository"
	userService "anoa.com/pengaduan/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
	log         *zap.Logger
}

// NewServer wires repositories, services and routes. redisClient may be nil,
// in which case login throttling is kept in process memory.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	imageStorage, err := storage.New(storage.Options{
		Driver:       cfg.StorageDriver,
		PublicDir:    cfg.StoragePublicDir,
		PublicURL:    cfg.StoragePublicURL,
		CloudName:    cfg.CloudinaryCloudName,
		APIKey:       cfg.CloudinaryAPIKey,
		APISecret:    cfg.CloudinaryAPISecret,
		UploadFolder: cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	userRepo := userRepo.NewUserRepository(db)
	tokenRepo := tokenRepo.NewTokenRepository(db)
	tokenSvc := tokenService.NewService(tokenRepo, cfg.JWTSecret, cfg.TokenTTL)

	jobs := scheduler.New(time.Minute)
	if err := jobs.Register(cfg.TokenPruneSchedule, tokenService.NewPruneJob(tokenSvc)); err != nil {
		return nil, err
	}

	loginLimiter := ratelimiter.New(redisClient, "login", cfg.LoginMaxAttempts, cfg.LoginDecay)
	authSvc := userService.NewAuthService(userRepo, tokenSvc, loginLimiter)
	authHandler := userHttp.NewAuthHandler(authSvc)

	registryRepo := registryRepo.NewRegistryRepository(db)
	registrySvc := registryService.NewRegistryService(registryRepo)
	registryHandler := registryHttp.NewRegistryHandler(registrySvc)

	pengaduanRepo := pengaduanRepo.NewPengaduanRepository(db)
	pengaduanSvc := pengaduanService.NewService(pengaduanRepo, registryRepo, imageStorage, cfg.MaxPhotoSizeKB*1024)
	pengaduanHandler := pengaduanHttp.NewPengaduanHandler(pengaduanSvc)

	log := logger.Named("http")

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log, "/healthz"))

	// Multipart bodies above this are spooled to disk by net/http.
	router.MaxMultipartMemory = cfg.MaxPhotoSizeKB*1024 + 1<<20

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.StorageDriver == config.StorageDriverLocal {
		router.Static(cfg.StoragePublicURL, cfg.StoragePublicDir)
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/pengaduan", pengaduanHandler.List)
		protected.POST("/pengaduan", pengaduanHandler.Create)
		protected.GET("/pengaduan/:id", pengaduanHandler.Show)
		protected.DELETE("/pengaduan/:id", pengaduanHandler.Destroy)

		protected.GET("/lokasi", registryHandler.GetAllLokasi)
		protected.GET("/items", registryHandler.GetAllItems)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   jobs,
		log:         log,
	}, nil
}

// Scheduler exposes background jobs for on-demand runs.
func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.scheduler.Stop(stopCtx)
	}()

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.log.Info("starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("could not gracefully shutdown the server", zap.Error(err))
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not close server: %w", err)
			}
		}
		s.log.Info("server gracefully stopped")
		return nil
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
