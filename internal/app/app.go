package app

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"givehub/internal/config"
	"givehub/internal/handlers"
	"givehub/internal/middleware"
	"givehub/internal/pdf"
	"givehub/internal/repositories"
	"givehub/internal/routes"
	"givehub/internal/services"
	"givehub/internal/storage"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "givehub/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Review.AdminEmail,
	)
	userService := services.NewUserService(userRepo, orgRepo, emailService, authService)

	docStore := storage.NewDiskStore(cfg.Files.RootDir)
	certGen := pdf.NewCertificateGenerator(cfg.Files.RootDir)

	// Telegram reviewer alerts are optional
	telegramService, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		log.Printf("[tg] disabled: %v", err)
	}
	var alerts services.ReviewerAlerter
	if telegramService != nil {
		alerts = telegramService
	}

	verificationService := services.NewVerificationService(
		verificationRepo,
		orgRepo,
		docStore,
		emailService,
		certGen,
		alerts,
		cfg.Review.BaseURL,
	)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(
		userService,
		authService,
		time.Duration(cfg.Auth.AccessTTLMin)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	reviewHandler := handlers.NewReviewHandler(verificationService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, authHandler, verificationHandler, reviewHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
