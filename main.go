package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/controllers"
	"github.com/grange-pets/pet-market-api/middleware"
	"github.com/grange-pets/pet-market-api/models"
	"github.com/grange-pets/pet-market-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Pet Market API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Species{},
		&models.Item{},
		&models.Order{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Bootstrap the admin account if configured
	if err := ensureAdmin(cfg); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	// Initialize services
	initServices(cfg)

	// Initialize Gin router
	router := setupRouter(cfg)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initServices wires the external collaborators: geo directory, payment
// provider, SMTP, and image storage.
func initServices(cfg *config.Config) {
	services.InitGeoService(cfg)
	services.InitPaymentService(cfg)
	services.InitMailService(cfg)

	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set, image uploads disabled")
	}
}

// setupRouter builds the full route table.
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientOrigin, "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		// Health check endpoints
		api.GET("/health", healthCheck)
		api.GET("/database/status", databaseStatus)

		// Payment confirmation webhook. The handler reads the raw body
		// itself for signature verification; no body parsing middleware
		// may run ahead of it.
		api.POST("/stripe/webhook", controllers.StripeWebhook)

		// Public auth + catalogue
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/logout", controllers.Logout)
		}
		api.GET("/categories", controllers.ListCategories)
		api.GET("/species", controllers.ListSpecies)
		api.GET("/items", controllers.ListItems)

		// Authenticated routes
		authed := api.Group("")
		authed.Use(middleware.RequireAuth(cfg))
		{
			authed.GET("/account/me", controllers.GetMyAccount)
			authed.PUT("/account/me", controllers.UpdateMyAccount)
			authed.GET("/orders", controllers.ListMyOrders)
			authed.POST("/orders", controllers.CreateOrder)
			authed.POST("/orders/:id/cancel", controllers.CancelOrder)
			authed.POST("/checkout", controllers.Checkout)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(cfg), middleware.RequireAdmin())
		{
			admin.POST("/categories", controllers.CreateCategory)
			admin.DELETE("/categories/:id", controllers.DeleteCategory)
			admin.POST("/species", controllers.CreateSpecies)
			admin.DELETE("/species/:id", controllers.DeleteSpecies)
			admin.POST("/items", controllers.UpsertItem)
			admin.DELETE("/items/:id", controllers.DeleteItem)
			admin.POST("/upload", controllers.UploadImage)
		}
	}

	return router
}

// ensureAdmin creates or promotes the configured admin account at startup.
func ensureAdmin(cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	db := config.GetDB()
	var existing models.User
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		if existing.Role != "admin" {
			if err := db.Model(&existing).Update("role", "admin").Error; err != nil {
				return err
			}
			log.Printf("Promoted %s to admin", cfg.AdminEmail)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Admin",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Admin account created")
	return nil
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Pet Market API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
