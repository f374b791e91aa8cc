package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"core/internal/config"
	"core/internal/handler"
	"core/internal/repository"
	"core/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("Huancayo Places Chat")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Initialize model client
	llmClient := service.NewLLMClient(&cfg.Model)
	if cfg.Model.Enabled {
		log.Printf("✅ Model client initialized")
		log.Printf("   - API Base: %s", cfg.Model.APIBase)
		log.Printf("   - Chat model: %s", cfg.Model.ChatModel)
		log.Printf("   - Embedding model: %s", cfg.Model.EmbeddingModel)
		log.Printf("   - Chat Temperature: %.2f", cfg.Model.ChatTemperature)
		log.Printf("   - Chat TopP: %.2f", cfg.Model.ChatTopP)
		log.Printf("   - Chat MaxTokens: %d", cfg.Model.ChatMaxTokens)
	} else {
		log.Println("⚠️  Model API is disabled - chat requests will fall back to canned replies")
		log.Println("   Set MODEL_API_KEY or GEMINI_API_KEY to enable generation")
	}

	// Initialize services
	chatService := service.NewChatService(repo, llmClient, &cfg.Pipeline)

	log.Println("✅ Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)
	placesHandler := handler.NewPlacesHandler(repo)
	adminHandler := handler.NewAdminHandler(repo, chatService)
	embeddingHandler := handler.NewEmbeddingHandler(repo, llmClient, cfg.Model.EmbeddingDimensions)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "huancayo-places-chat",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	api := router.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)
		api.GET("/places", placesHandler.List)
		api.GET("/stats", adminHandler.Stats)

		api.POST("/admin/clear-cache", adminHandler.ClearCache)
		api.POST("/admin/test-connection", adminHandler.TestConnection)

		api.POST("/embeddings/batch", embeddingHandler.BatchUpdate)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
