package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"content-engine/config"
	"content-engine/models"
	"content-engine/platforms"
	"content-engine/publishers"
	"content-engine/services"
	"content-engine/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	postsPublishedCounter    prometheus.Counter
	publishFailuresCounter   prometheus.Counter
	analyticsSamplesCounter  prometheus.Counter
	prioritiesUpdatedCounter prometheus.Counter
)

func init() {
	postsPublishedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_published_total",
			Help: "Total number of content pieces published to platforms.",
		},
	)
	publishFailuresCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publish_failures_total",
			Help: "Total number of failed publish attempts.",
		},
	)
	analyticsSamplesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_samples_fetched_total",
			Help: "Total number of analytics samples ingested.",
		},
	)
	prioritiesUpdatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "research_priorities_updated_total",
			Help: "Total number of keyword priority updates.",
		},
	)
	prometheus.MustRegister(postsPublishedCounter, publishFailuresCounter, analyticsSamplesCounter, prioritiesUpdatedCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup store
	var store *storage.Store
	if cfg.DBHost == "" {
		logging.Info("No database configured, running on the in-memory store.")
		store = storage.NewMemoryStore()
	} else {
		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			logging.Fatal("Failed to connect to database", zap.Error(err))
		}
		logging.Info("Successfully connected to content database.")

		logging.Info("Running database auto-migration...")
		if err := storage.AutoMigrate(db); err != nil {
			logging.Fatal("Auto-migration failed", zap.Error(err))
		}
		store = storage.NewGormStore(db)
	}

	// Setup publishers and metrics source. Real platform APIs are not wired
	// yet, so both modes use the mock implementations.
	if !cfg.UseMockData {
		logging.Warn("USE_MOCK_DATA is false but no platform credentials are wired, using mocks.")
	}
	registry := publishers.NewMockRegistry(logging)
	fetcher := services.NewMockMetricsFetcher()

	// Setup S3 (optional, media uploads)
	if cfg.S3Configured() {
		if _, err := storage.NewS3Client(cfg); err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		logging.Info("S3 media bucket configured", zap.String("bucket", cfg.StratoS3Bucket))
	}

	// Setup services
	executor := services.NewExecutor(store, registry, logging)
	scheduler := services.NewScheduler(cfg, store, executor, logging)
	analytics := services.NewAnalytics(store, fetcher, logging)
	repurposer := services.NewRepurposer(store, nil, logging)
	videoGen := services.NewVideoGenerator(store, logging)

	// Setup router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupPieceRoutes(router, store, scheduler, executor, logging)
	setupQueueRoutes(router, scheduler, logging)
	setupAnalyticsRoutes(router, analytics, logging)
	setupTopicRoutes(router, store, logging)
	setupScriptRoutes(router, store, repurposer, logging)
	setupVideoRoutes(router, store, videoGen, repurposer, logging)
	setupPlatformRoutes(router)

	// Setup cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.DueSweepSchedule, func() {
		summary, err := scheduler.ProcessDuePosts(context.Background())
		if err != nil {
			logging.Error("Due sweep failed", zap.Error(err))
			return
		}
		postsPublishedCounter.Add(float64(summary.Published))
		publishFailuresCounter.Add(float64(summary.Failed))
	})
	cronScheduler.AddFunc(cfg.AnalyticsSchedule, func() {
		logging.Info("Running scheduled analytics job...")
		fetched, err := analytics.FetchAllAnalytics(context.Background())
		if err != nil {
			logging.Error("Analytics job failed", zap.Error(err))
			return
		}
		analyticsSamplesCounter.Add(float64(fetched))

		updated, err := analytics.UpdateResearchPriorities(context.Background())
		if err != nil {
			logging.Error("Priority update failed", zap.Error(err))
			return
		}
		prioritiesUpdatedCounter.Add(float64(len(updated)))
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupPieceRoutes(router *gin.Engine, store *storage.Store, scheduler *services.Scheduler, executor *services.Executor, log *zap.Logger) {
	rg := router.Group("/pieces")

	rg.GET("/", func(c *gin.Context) {
		pieces, err := store.Pieces.List(c.Request.Context(), storage.ContentPieceFilter{})
		if err != nil {
			log.Error("Database query for all pieces failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, pieces)
	})

	rg.POST("/query", func(c *gin.Context) {
		type PieceQuery struct {
			Platform models.Platform      `json:"platform"`
			Status   models.ContentStatus `json:"status"`
			Limit    int                  `json:"limit"`
		}

		var req PieceQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		pieces, err := store.Pieces.List(c.Request.Context(), storage.ContentPieceFilter{
			Platform: req.Platform,
			Status:   req.Status,
			Limit:    req.Limit,
		})
		if err != nil {
			log.Error("Database query for pieces failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, pieces)
	})

	rg.GET("/:id", func(c *gin.Context) {
		piece, err := store.Pieces.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "piece not found"})
				return
			}
			log.Error("DB error fetching piece", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, piece)
	})

	rg.POST("/", func(c *gin.Context) {
		var piece models.ContentPiece
		if err := c.ShouldBindJSON(&piece); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if piece.Platform == "" || piece.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "platform and title are required"})
			return
		}
		if err := store.Pieces.Create(c.Request.Context(), &piece); err != nil {
			log.Error("DB error creating piece", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create piece"})
			return
		}
		c.JSON(http.StatusCreated, piece)
	})

	rg.POST("/:id/schedule", func(c *gin.Context) {
		type ScheduleRequest struct {
			At             *time.Time `json:"at"`
			UseOptimalTime *bool      `json:"use_optimal_time"`
		}
		// An empty body means "use the platform's optimal window".
		var req ScheduleRequest
		_ = c.ShouldBindJSON(&req)

		piece, err := scheduler.Schedule(c.Request.Context(), c.Param("id"), services.ScheduleOptions{
			At:             req.At,
			UseOptimalTime: req.UseOptimalTime,
		})
		if err != nil {
			respondScheduleError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, piece)
	})

	rg.PUT("/:id/schedule", func(c *gin.Context) {
		type RescheduleRequest struct {
			At time.Time `json:"at" binding:"required"`
		}
		var req RescheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		piece, err := scheduler.Reschedule(c.Request.Context(), c.Param("id"), req.At)
		if err != nil {
			respondScheduleError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, piece)
	})

	rg.DELETE("/:id/schedule", func(c *gin.Context) {
		piece, err := scheduler.Cancel(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondScheduleError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, piece)
	})

	rg.POST("/schedule/bulk", func(c *gin.Context) {
		type BulkRequest struct {
			PieceIDs []string `json:"piece_ids" binding:"required"`
		}
		var req BulkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		scheduled, err := scheduler.BulkSchedule(c.Request.Context(), req.PieceIDs)
		if err != nil {
			log.Error("Bulk schedule failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk schedule failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"scheduled": scheduled, "count": len(scheduled)})
	})

	rg.POST("/:id/post", func(c *gin.Context) {
		piece, err := executor.PostNow(c.Request.Context(), c.Param("id"))
		if err != nil {
			publishFailuresCounter.Inc()
			var transitionErr *models.InvalidStateTransitionError
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "piece not found"})
				return
			}
			if errors.As(err, &transitionErr) {
				c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
				return
			}
			// The piece is on failed with the reason recorded; surface both.
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "piece": piece})
			return
		}
		postsPublishedCounter.Inc()
		c.JSON(http.StatusOK, piece)
	})

	rg.POST("/:id/retry", func(c *gin.Context) {
		piece, err := executor.RetryFailed(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondScheduleError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, piece)
	})

	rg.POST("/:id/archive", func(c *gin.Context) {
		piece, err := executor.Archive(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondScheduleError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, piece)
	})
}

func respondScheduleError(c *gin.Context, log *zap.Logger, err error) {
	var transitionErr *models.InvalidStateTransitionError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "piece not found"})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
	case errors.Is(err, services.ErrConflictResolutionExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("Piece operation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func setupQueueRoutes(router *gin.Engine, scheduler *services.Scheduler, log *zap.Logger) {
	rg := router.Group("/queue")

	rg.GET("/stats", func(c *gin.Context) {
		stats, err := scheduler.Stats(c.Request.Context())
		if err != nil {
			log.Error("Queue stats failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	rg.GET("/upcoming", func(c *gin.Context) {
		limit := 20
		upcoming, err := scheduler.Upcoming(c.Request.Context(), limit)
		if err != nil {
			log.Error("Upcoming query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, upcoming)
	})

	// Manual trigger for the due sweep, useful in ops and tests.
	rg.POST("/process", func(c *gin.Context) {
		summary, err := scheduler.ProcessDuePosts(c.Request.Context())
		if err != nil {
			log.Error("Due sweep failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "due sweep failed"})
			return
		}
		postsPublishedCounter.Add(float64(summary.Published))
		publishFailuresCounter.Add(float64(summary.Failed))
		c.JSON(http.StatusOK, summary)
	})
}

func setupAnalyticsRoutes(router *gin.Engine, analytics *services.Analytics, log *zap.Logger) {
	rg := router.Group("/analytics")

	rg.POST("/fetch", func(c *gin.Context) {
		fetched, err := analytics.FetchAllAnalytics(c.Request.Context())
		if err != nil {
			log.Error("Analytics fetch failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics fetch failed"})
			return
		}
		analyticsSamplesCounter.Add(float64(fetched))
		c.JSON(http.StatusOK, gin.H{"fetched": fetched})
	})

	rg.POST("/fetch/:id", func(c *gin.Context) {
		sample, err := analytics.FetchAnalytics(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "piece not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		analyticsSamplesCounter.Inc()
		c.JSON(http.StatusOK, sample)
	})

	rg.GET("/history/:id", func(c *gin.Context) {
		samples, err := analytics.GetContentHistory(c.Request.Context(), c.Param("id"))
		if err != nil {
			log.Error("Analytics history failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, samples)
	})

	rg.POST("/priorities/update", func(c *gin.Context) {
		updated, err := analytics.UpdateResearchPriorities(c.Request.Context())
		if err != nil {
			log.Error("Priority update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "priority update failed"})
			return
		}
		prioritiesUpdatedCounter.Add(float64(len(updated)))
		c.JSON(http.StatusOK, updated)
	})

	rg.GET("/keywords/top", func(c *gin.Context) {
		keywords, err := analytics.TopKeywords(c.Request.Context(), 10)
		if err != nil {
			log.Error("Top keywords failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, keywords)
	})

	rg.POST("/keywords/block", func(c *gin.Context) {
		type BlockRequest struct {
			Keyword string `json:"keyword" binding:"required"`
		}
		var req BlockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := analytics.BlockKeyword(c.Request.Context(), req.Keyword); err != nil {
			log.Error("Block keyword failed", zap.String("keyword", req.Keyword), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "block failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"blocked": req.Keyword})
	})

	rg.POST("/keywords/boost", func(c *gin.Context) {
		type BoostRequest struct {
			Keyword string  `json:"keyword" binding:"required"`
			Boost   float64 `json:"boost"`
		}
		var req BoostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		entry, err := analytics.BoostKeyword(c.Request.Context(), req.Keyword, req.Boost)
		if err != nil {
			log.Error("Boost keyword failed", zap.String("keyword", req.Keyword), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boost failed"})
			return
		}
		c.JSON(http.StatusOK, entry)
	})

	rg.GET("/report", func(c *gin.Context) {
		end := time.Now()
		start := end.AddDate(0, 0, -30)
		if v := c.Query("start"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD"})
				return
			}
			start = parsed
		}
		if v := c.Query("end"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD"})
				return
			}
			end = parsed.Add(24*time.Hour - time.Second)
		}

		report, err := analytics.GenerateReport(c.Request.Context(), start, end)
		if err != nil {
			log.Error("Report generation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
			return
		}
		c.JSON(http.StatusOK, report)
	})
}

func setupTopicRoutes(router *gin.Engine, store *storage.Store, log *zap.Logger) {
	rg := router.Group("/topics")

	rg.GET("/", func(c *gin.Context) {
		var approved *bool
		if v := c.Query("approved"); v == "true" || v == "false" {
			b := v == "true"
			approved = &b
		}
		topics, err := store.Topics.List(c.Request.Context(), storage.TopicFilter{Approved: approved})
		if err != nil {
			log.Error("Database query for topics failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, topics)
	})

	rg.POST("/", func(c *gin.Context) {
		var topic models.ResearchTopic
		if err := c.ShouldBindJSON(&topic); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if topic.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		if err := store.Topics.Create(c.Request.Context(), &topic); err != nil {
			log.Error("DB error creating topic", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create topic"})
			return
		}
		c.JSON(http.StatusCreated, topic)
	})

	rg.POST("/:id/approve", func(c *gin.Context) {
		topic, err := store.Topics.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
				return
			}
			log.Error("DB error fetching topic", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		now := time.Now()
		topic.IsApproved = true
		topic.ApprovedAt = &now
		if err := store.Topics.Update(c.Request.Context(), topic); err != nil {
			log.Error("DB error approving topic", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve topic"})
			return
		}
		c.JSON(http.StatusOK, topic)
	})
}

func setupScriptRoutes(router *gin.Engine, store *storage.Store, repurposer *services.Repurposer, log *zap.Logger) {
	rg := router.Group("/scripts")

	rg.GET("/", func(c *gin.Context) {
		scripts, err := store.Scripts.List(c.Request.Context(), storage.ScriptFilter{})
		if err != nil {
			log.Error("Database query for scripts failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, scripts)
	})

	rg.POST("/", func(c *gin.Context) {
		var script models.Script
		if err := c.ShouldBindJSON(&script); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if script.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		if err := store.Scripts.Create(c.Request.Context(), &script); err != nil {
			log.Error("DB error creating script", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create script"})
			return
		}
		c.JSON(http.StatusCreated, script)
	})

	rg.POST("/:id/approve", func(c *gin.Context) {
		script, err := store.Scripts.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
				return
			}
			log.Error("DB error fetching script", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		now := time.Now()
		script.IsApproved = true
		script.ApprovedAt = &now
		if err := store.Scripts.Update(c.Request.Context(), script); err != nil {
			log.Error("DB error approving script", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve script"})
			return
		}
		c.JSON(http.StatusOK, script)
	})

	rg.POST("/:id/thread", func(c *gin.Context) {
		piece, err := repurposer.GenerateThread(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
				return
			}
			log.Error("Thread generation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "thread generation failed"})
			return
		}
		c.JSON(http.StatusCreated, piece)
	})

	rg.POST("/:id/carousel", func(c *gin.Context) {
		type CarouselRequest struct {
			Platform models.Platform `json:"platform" binding:"required"`
		}
		var req CarouselRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		piece, err := repurposer.GenerateCarousel(c.Request.Context(), c.Param("id"), req.Platform)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, piece)
	})
}

func setupVideoRoutes(router *gin.Engine, store *storage.Store, videoGen *services.VideoGenerator, repurposer *services.Repurposer, log *zap.Logger) {
	rg := router.Group("/videos")

	rg.GET("/", func(c *gin.Context) {
		videos, err := store.Videos.List(c.Request.Context(), storage.VideoFilter{})
		if err != nil {
			log.Error("Database query for videos failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, videos)
	})

	rg.POST("/", func(c *gin.Context) {
		type CreateVideoRequest struct {
			ScriptID   string `json:"script_id" binding:"required"`
			Resolution string `json:"resolution"`
		}
		var req CreateVideoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		video, err := videoGen.CreateVideo(c.Request.Context(), req.ScriptID, req.Resolution)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
				return
			}
			log.Error("Video creation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "video creation failed"})
			return
		}
		c.JSON(http.StatusCreated, video)
	})

	rg.GET("/:id", func(c *gin.Context) {
		video, err := store.Videos.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
				return
			}
			log.Error("DB error fetching video", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, video)
	})

	rg.GET("/:id/job", func(c *gin.Context) {
		job, ok := videoGen.GetJobStatus(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no job for video"})
			return
		}
		c.JSON(http.StatusOK, job)
	})

	rg.POST("/:id/retry", func(c *gin.Context) {
		video, err := videoGen.RetryVideo(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, video)
	})

	rg.POST("/:id/cancel", func(c *gin.Context) {
		video, err := videoGen.CancelVideo(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
				return
			}
			log.Error("Video cancel failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
			return
		}
		c.JSON(http.StatusOK, video)
	})

	rg.POST("/:id/repurpose", func(c *gin.Context) {
		result, err := repurposer.RepurposeVideo(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

func setupPlatformRoutes(router *gin.Engine) {
	rg := router.Group("/platforms")

	rg.GET("/", func(c *gin.Context) {
		out := make(map[models.Platform]platforms.Profile, len(models.AllPlatforms))
		for _, p := range models.AllPlatforms {
			out[p] = platforms.ProfileFor(p)
		}
		c.JSON(http.StatusOK, out)
	})

	rg.GET("/:name/next-slot", func(c *gin.Context) {
		platform := models.Platform(c.Param("name"))
		profile := platforms.ProfileFor(platform)
		if profile.Name == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown platform"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"platform":  platform,
			"next_slot": platforms.NextOptimalPostTime(platform, time.Now()),
		})
	})
}
