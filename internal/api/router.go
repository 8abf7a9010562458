package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vibhu2208/Aadhar-Homes/internal/api/handlers"
	"github.com/vibhu2208/Aadhar-Homes/internal/api/middleware"
	"github.com/vibhu2208/Aadhar-Homes/internal/config"
	"github.com/vibhu2208/Aadhar-Homes/internal/services"
	"github.com/vibhu2208/Aadhar-Homes/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskEnqueuer handlers.TaskEnqueuer) *gin.Engine {
	listingService := services.NewListingService(db, rdb, cfg)
	accountService := services.NewAccountService(db, cfg)
	mediaStorage, err := storage.NewMediaStorage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize media storage for API: %v", err)
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	projectHandler := handlers.NewProjectHandler(listingService, cfg, taskEnqueuer)
	launchHandler := handlers.NewLaunchHandler(listingService, cfg, taskEnqueuer)
	authHandler := handlers.NewAuthHandler(accountService, cfg)
	uploadHandler := handlers.NewUploadHandler(mediaStorage)

	authRequired := middleware.AuthMiddleware(cfg.JwtSecret)
	adminRequired := middleware.AdminMiddleware()

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", middleware.OptionalAuth(cfg.JwtSecret), authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authRequired, authHandler.Me)
			authGroup.POST("/logout", authRequired, authHandler.Logout)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.List)
			projects.GET("/search", projectHandler.Search)
			projects.GET("/admin/stats", authRequired, adminRequired, projectHandler.Stats)
			projects.GET("/:id", projectHandler.GetByID)
			projects.POST("", authRequired, adminRequired, projectHandler.Create)
			projects.PUT("/:id", authRequired, adminRequired, projectHandler.Update)
			projects.DELETE("/:id", authRequired, adminRequired, projectHandler.Delete)
		}

		newlaunch := api.Group("/newlaunch")
		{
			newlaunch.GET("", launchHandler.List)
			newlaunch.GET("/search", launchHandler.Search)
			newlaunch.GET("/upcoming", launchHandler.Upcoming)
			newlaunch.GET("/admin/stats", authRequired, adminRequired, launchHandler.Stats)
			newlaunch.GET("/:id", launchHandler.GetByID)
			newlaunch.POST("", authRequired, adminRequired, launchHandler.Create)
			newlaunch.PUT("/:id", authRequired, adminRequired, launchHandler.Update)
			newlaunch.DELETE("/:id", authRequired, adminRequired, launchHandler.Delete)
		}

		uploads := api.Group("/uploads")
		uploads.Use(authRequired, adminRequired)
		{
			uploads.POST("/presign", uploadHandler.Presign)
		}
	}

	return r
}
