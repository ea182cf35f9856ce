package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beslove/backend/internal/config"
	"github.com/beslove/backend/internal/handlers"
	"github.com/beslove/backend/internal/middleware"
	"github.com/beslove/backend/internal/models"
	"github.com/beslove/backend/internal/services"
	"github.com/beslove/backend/internal/store"
	"github.com/beslove/backend/pkg/crypto"
	"github.com/beslove/backend/pkg/sensitive"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Phone codec and content filter
	codec, err := crypto.NewCodec(cfg.AESKey, cfg.AESIV)
	if err != nil {
		log.Fatalf("Failed to init phone codec: %v", err)
	}
	filter := sensitive.NewFilter(cfg.SensitiveWords)

	// Initialize services
	st := store.New(db)
	smsService := services.NewSMSService(cfg)
	wechatService := services.NewWechatService(cfg)
	userService := services.NewUserService(st, codec)
	authService := services.NewAuthService(wechatService, userService, cfg)
	riskService := services.NewRiskService(st, cfg)
	blessingService := services.NewBlessingService(st, cfg, codec, filter, riskService, smsService)
	verificationService := services.NewVerificationService(st, codec, smsService, cfg)

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	blessingHandler := handlers.NewBlessingHandler(blessingService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup routes
	api := router.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/wx/openid", authHandler.WxOpenID)
			auth.POST("/wx/login", authHandler.WxLogin)
			auth.POST("/wx/phone", middleware.Auth(authService), authHandler.WxPhone)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		// Blessing routes
		blessings := api.Group("/blessings")
		{
			blessings.GET("/templates", blessingHandler.Templates)
			blessings.POST("", middleware.Auth(authService), blessingHandler.Send)
			blessings.GET("", middleware.Auth(authService), blessingHandler.List)
			blessings.DELETE("/:id", middleware.Auth(authService), blessingHandler.Delete)
		}

		// User routes
		user := api.Group("/user")
		user.Use(middleware.Auth(authService))
		{
			user.GET("/phone", userHandler.GetPhone)
		}

		// Phone verification codes
		verification := api.Group("/verification")
		{
			verification.POST("/send", verificationHandler.SendCode)
			verification.POST("/verify", verificationHandler.VerifyCode)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
