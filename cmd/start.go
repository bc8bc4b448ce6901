/*
Copyright © 2025 openkms
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/openkms/docchat-be/database"
	"github.com/openkms/docchat-be/handler"
	"github.com/openkms/docchat-be/middleware"
	"github.com/openkms/docchat-be/repository"
	"github.com/openkms/docchat-be/service"
	"github.com/spf13/cobra"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document chat server",
	Long:  `Starts a server that answers questions about indexed Word documents`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		// Initialize services
		indexer, weaviateDb, openaiService, err := buildIndexer(cfg)
		if err != nil {
			log.Fatalf("Failed to build indexing pipeline: %v", err)
		}
		aiService, err := buildAIService(cfg, openaiService)
		if err != nil {
			log.Fatalf("Failed to create AI service: %v", err)
		}

		ragService := service.NewRAGService(weaviateDb, openaiService, aiService, cfg.TopK)
		if err := openaiService.RegisterRAGFunctionCall(ragService); err != nil {
			log.Fatalf("Failed to register RAG function call: %v", err)
		}

		mongoClient := database.DefaultMongoClient
		if err := mongoClient.Ping(context.Background(), nil); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database("docchat")

		//init repo
		userRepo := repository.NewUserRepo(mongoDb.Collection("users"))
		chatRepo := repository.NewChatRepo(mongoDb.Collection("chats"), mongoDb.Collection("messages"))
		//init service
		userService := service.NewUserService(userRepo)
		uploadService := service.NewFileService(cfg.UploadDir, indexer)
		wsService := service.NewWebSocketService(ragService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(uploadService)
		chatHandler := handler.NewChatHandler(ragService, chatRepo)
		searchHandler := handler.NewSearchHandler(ragService)
		indexHandler := handler.NewIndexHandler(indexer)
		docHandler := handler.NewDocumentHandler(cfg.UploadDir)
		loginHandler := handler.NewLoginHandler(userService)
		userMngHandler := handler.NewUserManageHandler(userService)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)

		// API v1 routes - require authentication
		apiV1 := router.Group("/api/v1")
		apiV1.POST("/login", loginHandler.HandleLogin)

		// Protected user routes
		userRoutes := apiV1.Group("/")
		userRoutes.Use(middleware.AuthMiddleware)
		{
			userRoutes.POST("/chat", chatHandler.HandleChat)
			userRoutes.GET("/chats", chatHandler.HandleListChats)
			userRoutes.GET("/chats/messages", chatHandler.HandleGetMessages)
			userRoutes.DELETE("/chats", chatHandler.HandleDeleteChat)
			userRoutes.POST("/documents/search", searchHandler.HandleSearch)
			userRoutes.GET("/stats", indexHandler.HandleStats)
			userRoutes.POST("/documents/ask", searchHandler.HandleAskAI)
			userRoutes.GET("/documents/file", gin.WrapH(docHandler.ServeDocument()))
			userRoutes.GET("/ws", func(c *gin.Context) {
				wsService.HandleChat(c.Writer, c.Request)
			})
		}

		// Admin routes - require admin authentication
		adminRoutes := router.Group("/admin/api/v1")
		adminRoutes.Use(middleware.AdminAuthMiddleware)
		{
			adminRoutes.POST("/upload", uploadHandler.UploadDocumentHandler)
			adminRoutes.POST("/index", indexHandler.HandleIndex)
			adminRoutes.GET("/index/stats", indexHandler.HandleStats)
			adminRoutes.POST("/index/reset", indexHandler.HandleReset)
			adminRoutes.POST("/users/create", userMngHandler.HandleCreateUser)
			adminRoutes.POST("/users/batch-create", userMngHandler.HandlerBatchCreateUser)
			adminRoutes.GET("/users/paginate", userMngHandler.HandlePaginateUser)
			adminRoutes.GET("/users/get", userMngHandler.HandleGetUser)
			adminRoutes.PUT("/users/update", userMngHandler.HandleUpdateUser)
			adminRoutes.DELETE("/users/delete", userMngHandler.HandleDeleteUser)
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
