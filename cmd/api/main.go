package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mingle/mingle-backend/internal/config"
	"github.com/mingle/mingle-backend/internal/handler"
	"github.com/mingle/mingle-backend/internal/middleware"
	"github.com/mingle/mingle-backend/internal/migration"
	"github.com/mingle/mingle-backend/internal/repository"
	"github.com/mingle/mingle-backend/internal/routes"
	"github.com/mingle/mingle-backend/internal/service"
	"github.com/mingle/mingle-backend/internal/ws"
	pkges "github.com/mingle/mingle-backend/pkg/elasticsearch"
	"github.com/mingle/mingle-backend/pkg/jwt"
	"github.com/mingle/mingle-backend/pkg/logger"
	pkgredis "github.com/mingle/mingle-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

// @title Mingle Chat API
// @version 1.0
// @description Real-time conversation backend for the Mingle app
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	logger.Init(env)
	log := logger.GetLogger()

	cfg, err := config.Load(fmt.Sprintf("configs/config.%s.yaml", env))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := migration.Run(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	// Redis only backs the rate limiter; the API stays up without it
	var redisClient *redislib.Client
	redisClient, err = pkgredis.NewClient(
		cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize,
	)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		redisClient = nil
	}

	// Elasticsearch is optional; user search falls back to the database
	var esClient *pkges.Client
	if cfg.Elasticsearch.Enabled {
		esClient, err = pkges.NewClient(
			cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password,
		)
		if err != nil {
			log.Warn().Err(err).Msg("elasticsearch unavailable, using database search")
			esClient = nil
		}
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWTExpiresIn())

	hub := ws.NewHub()
	go hub.Run()

	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := service.NewNotifier(notificationRepo, hub)
	conversationSvc := service.NewConversationService(conversationRepo, messageRepo, userRepo, blockRepo)
	messageSvc := service.NewMessageService(messageRepo, conversationRepo, userRepo, giftRepo, hub, notifier)
	recommender := service.NewRecommender(userRepo)
	searcher := service.NewUserSearcher(esClient, cfg.Elasticsearch.UserIndex, userRepo)
	contactSvc := service.NewContactService(conversationRepo, messageRepo, userRepo, recommender, searcher)
	notificationSvc := service.NewNotificationService(notificationRepo)

	allowOrigins := strings.Split(cfg.CORS.AllowOrigins, ",")

	handlers := &routes.Handlers{
		Conversations: handler.NewConversationHandler(conversationSvc),
		Messages:      handler.NewMessageHandler(messageSvc),
		Contacts:      handler.NewContactHandler(contactSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		WS:            handler.NewWSHandler(hub, jwtManager, allowOrigins),
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "online_users": hub.OnlineCount()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.IsDevelopment() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes.Register(r, handlers, jwtManager, redisClient)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: r,
	}

	go func() {
		log.Info().Int("port", cfg.App.Port).Str("env", env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
