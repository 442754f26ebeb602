package server

import (
	"log"
	"strings"
	"time"

	"anoa.com/kirimpesan/internal/config"
	"anoa.com/kirimpesan/internal/handler"
	"anoa.com/kirimpesan/internal/middleware"
	"anoa.com/kirimpesan/internal/repository"
	"anoa.com/kirimpesan/internal/service"
	"anoa.com/kirimpesan/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	mediaStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	// Initialize Meilisearch
	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := service.NewSearchService(meiliClient)

	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	authSvc := service.NewAuthService(userRepo, searchSvc, cfg.JWTSecret)
	authHandler := handler.NewAuthHandler(authSvc)

	profileSvc := service.NewProfileService(userRepo, friendshipRepo, mediaStorage, searchSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)

	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)

	friendshipSvc := service.NewFriendshipService(friendshipRepo, conversationRepo, notificationSvc, redisClient, cfg.RateLimitFriendRequest)
	friendshipHandler := handler.NewFriendshipHandler(friendshipSvc)

	conversationSvc := service.NewConversationService(conversationRepo, messageRepo, mediaStorage, redisClient)
	conversationHandler := handler.NewConversationHandler(conversationSvc, redisClient)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Profile routes
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.GET("/profile/:username", profileHandler.GetProfileByUsername)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.GET("/profiles/search", profileHandler.SearchProfiles)

		// Friendship routes
		protected.POST("/friends/requests", friendshipHandler.SendRequest)
		protected.GET("/friends/requests", friendshipHandler.ListRequests)
		protected.PUT("/friends/requests/:id", friendshipHandler.Respond)
		protected.GET("/friends", friendshipHandler.ListFriends)
		protected.DELETE("/friends/:user_id", friendshipHandler.Remove)
		protected.POST("/friends/:user_id/block", friendshipHandler.Block)

		// Conversation routes
		protected.POST("/conversations", conversationHandler.GetOrCreate)
		protected.GET("/conversations", conversationHandler.List)
		protected.DELETE("/conversations/:id", conversationHandler.Delete)
		protected.POST("/conversations/:id/messages", conversationHandler.SendMessage)
		protected.GET("/conversations/:id/messages", conversationHandler.ListMessages)
		protected.GET("/conversations/:id/ws", conversationHandler.HandleWebSocket)

		// Message routes
		protected.PUT("/messages/:id", conversationHandler.EditMessage)
		protected.PUT("/messages/:id/read", conversationHandler.MarkMessageRead)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetUnread)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
