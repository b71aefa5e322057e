package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"innova/config"
	"innova/database"
	"innova/handlers"
	"innova/middleware"
	"innova/models"
	"innova/services"
	"innova/store"
)

func main() {
	cfg := config.Load()

	// Database and lockout counters
	database.Connect(cfg)
	database.Migrate()
	database.ConnectRedis(cfg)

	// Conversation document lives next to the binary unless configured
	if dir := filepath.Dir(cfg.ConversationsFile); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	log.Printf("Conversations document: %s", cfg.ConversationsFile)

	// Stores
	conversations := store.NewConversationStore(cfg.ConversationsFile)
	plates := store.NewPlateStore(database.DB)
	if err := plates.SeedPlates(); err != nil {
		log.Fatalf("Failed to seed plate catalog: %v", err)
	}

	// Seed dev user
	seedAdminUser(cfg)

	// Services
	sessionManager := services.NewSessionManager()
	defer sessionManager.Close()

	responder := services.NewResponder()
	chatbot := services.NewChatbotService(conversations, cfg.ChatbotURL, cfg.HTTPTimeout)
	ocrClient := services.NewOCRClient(cfg.OCRBaseURL, cfg.ExternalSinkURL, cfg.ExternalSinkKey, cfg.HTTPTimeout)
	lockout := services.NewLoginLockout(database.RDB)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, sessionManager, lockout)
	chatbotHandler := handlers.NewChatbotHandler(responder)
	chatSessions := handlers.NewChatSessionsHandler(cfg, chatbot, sessionManager)
	defer chatSessions.Close()
	ocrHandler := handlers.NewOCRHandler(cfg, plates)
	recognitionHandler := handlers.NewRecognitionHandler(cfg, ocrClient, sessionManager)
	defer recognitionHandler.Close()
	carouselHandler := handlers.NewCarouselHandler(cfg, ocrClient, recognitionHandler)

	// Router
	r := gin.Default()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	// Public routes
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", authHandler.Login)

	// The chat completion endpoint the conversation facade talks to
	r.POST("/chatbot/message", chatbotHandler.Message)

	// Recognition catalog
	ocr := r.Group("/ocr")
	{
		ocr.POST("/recognize", ocrHandler.Recognize)
		ocr.POST("/recognize/detailed", ocrHandler.RecognizeDetailed)
		ocr.GET("/exists/:image", ocrHandler.Exists)
		ocr.GET("/plates", ocrHandler.Plates)
		ocr.GET("/image/:image", ocrHandler.Image)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)

		// Chat screen state machine
		protected.GET("/chat/state", chatSessions.State)
		protected.POST("/chat/conversations", chatSessions.Create)
		protected.POST("/chat/conversations/:id/select", chatSessions.Select)
		protected.DELETE("/chat/conversations/:id", chatSessions.Delete)
		protected.DELETE("/chat/conversations", chatSessions.Clear)
		protected.POST("/chat/messages", chatSessions.Send)
		protected.POST("/chat/language", chatSessions.SetLanguage)

		// Recognition session
		protected.POST("/recognition/shots", recognitionHandler.Shoot)
		protected.GET("/recognition/state", recognitionHandler.State)
		protected.POST("/recognition/reset", recognitionHandler.Reset)
		protected.DELETE("/recognition/history", recognitionHandler.ClearHistory)
		protected.GET("/recognition/history/:id", recognitionHandler.HistoryEntry)
	}

	// WebSocket routes (auth via query param)
	r.GET("/ws/carousel", carouselHandler.HandleWebSocket)

	fmt.Printf("Server starting on :%s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func seedAdminUser(cfg *config.Config) {
	if cfg.AdminPassword == "" {
		return
	}

	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	user := models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminUsername + "@innova.local",
		PasswordHash: string(hash),
	}

	if err := database.DB.Create(&user).Error; err != nil {
		log.Printf("Failed to create admin user: %v", err)
		return
	}

	fmt.Printf("Admin user '%s' created\n", cfg.AdminUsername)
}
