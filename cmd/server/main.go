package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/config"
	"taskify/backend/internal/database"
	"taskify/backend/internal/handlers"
	"taskify/backend/internal/middleware"
	"taskify/backend/internal/models"
	"taskify/backend/internal/monitoring"
	"taskify/backend/internal/services"
	"taskify/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logLevel := logger.Warn
	if !cfg.IsProduction() {
		logLevel = logger.Info
	}

	db, err := database.NewDatabasePool(&database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logLevel,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisCache.Close()

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return redisCache.Health()
	})

	jobQueue := worker.NewJobQueue(redisCache.Client())

	taskService := services.NewReminderTaskService(
		services.NewCachedTaskService(services.NewTaskService(), redisCache),
		jobQueue,
	)
	authService := services.NewAuthService(cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	registerService := services.NewRegisterService()
	userService := services.NewUserService()

	jobWorker := startWorker(cfg, db, jobQueue, redisCache)
	defer jobWorker.Stop()

	router := buildRouter(cfg, db, taskService, authService, registerService, userService)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("server listening on %s (%s)", cfg.GetServerAddr(), cfg.Server.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

func buildRouter(
	cfg *config.Config,
	db *gorm.DB,
	taskService services.TaskService,
	authService services.AuthService,
	registerService services.RegisterService,
	userService services.UserService,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerMin:  cfg.RateLimit.RequestsPerMin,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})
		router.Use(limiter.Middleware())
	}

	taskHandler := handlers.NewTaskHandler(db, taskService)
	authHandler := handlers.NewAuthHandler(db, authService, userService)
	registerHandler := handlers.NewRegisterHandler(db, registerService, authService)
	refreshHandler := handlers.NewRefreshHandler(db, authService)
	logoutHandler := handlers.NewLogoutHandler(db, authService)
	userHandler := handlers.NewUserHandler(db, userService)

	router.GET("/health", monitoring.HealthHandler(cfg.Server.Environment))
	router.GET("/metrics", monitoring.MetricsHandler())

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", registerHandler.Registration)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", refreshHandler.Refresh)
		auth.POST("/logout", logoutHandler.Logout)
		auth.GET("/me", middleware.AuthMiddleware(), authHandler.Me)
	}

	users := api.Group("/users", middleware.AuthMiddleware())
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.PUT("/change-password", userHandler.ChangePassword)
		users.DELETE("/account", userHandler.DeactivateAccount)
	}

	tasks := api.Group("/tasks", middleware.AuthMiddleware())
	{
		tasks.GET("", taskHandler.GetTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/stats/summary", taskHandler.GetTaskStats)
		tasks.GET("/:id", taskHandler.GetTaskByID)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	return router
}

func startWorker(cfg *config.Config, db *gorm.DB, queue *worker.JobQueue, redisCache *cache.RedisCache) *worker.Worker {
	jobWorker := worker.NewWorker(worker.WorkerConfig{
		RedisClient: redisCache.Client(),
		Queues:      cfg.Worker.Queues, // includes retry_queue so failed jobs get drained
	})

	jobWorker.RegisterHandler(worker.JobTypeTokenCleanup, func(ctx context.Context, job *worker.Job) error {
		return db.WithContext(ctx).
			Where("expires_at < ?", time.Now()).
			Delete(&models.Token{}).Error
	})

	jobWorker.RegisterHandler(worker.JobTypeDueReminder, func(ctx context.Context, job *worker.Job) error {
		taskID, _ := job.Payload["task_id"].(string)

		var task models.Task
		err := db.WithContext(ctx).First(&task, "id = ? AND state = ?", taskID, models.StateActive).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Archived or gone since the reminder was scheduled.
			return nil
		}
		if err != nil {
			return err
		}

		log.Printf("task %q (%s) is due", task.Title, task.ID)
		return nil
	})

	jobWorker.Start(cfg.Worker.Concurrency)

	// Expired refresh tokens are swept periodically off the request path.
	go func() {
		ticker := time.NewTicker(cfg.Worker.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := queue.Enqueue("default", worker.JobTypeTokenCleanup, nil); err != nil {
				log.Printf("failed to enqueue token cleanup: %v", err)
			}
		}
	}()

	return jobWorker
}
