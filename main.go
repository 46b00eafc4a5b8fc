// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/medibook/medibook/config"
	"github.com/medibook/medibook/endpoint"
	"github.com/medibook/medibook/middleware"
	"github.com/medibook/medibook/model"
	"github.com/medibook/medibook/util"
	"gorm.io/gorm"
)

func main() {
	// Load the configuration
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Availability{},
		&model.Appointment{},
		&model.Treatment{},
		&model.SecurityLog{},
	); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	// Optional bootstrap admin account, controlled by environment.
	if email := os.Getenv("SUPERUSER_EMAIL"); email != "" {
		if err := seedSuperuserFromEnv(db, email, os.Getenv("SUPERUSER_PASSWORD")); err != nil {
			log.Printf("Superuser seeding skipped: %v", err)
		}
	}

	// Security logging and its supporting caches
	util.SetSecurityLoggerDB(db)
	util.InitUserEmailCacheFromEnv()
	if err := util.InitGeoIP(""); err != nil {
		log.Printf("GeoIP disabled: %v", err)
	}

	// Redis is optional; rate limiting and session mirroring degrade
	// gracefully without it.
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable: %v", err)
	}

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	// Public routes
	loginLimiter := middleware.RateLimiter(middleware.RateLimitConfig{})
	router.POST("/register/", loginLimiter, endpoint.Register)
	router.POST("/login/", loginLimiter, endpoint.Login)
	router.POST("/token/refresh/", endpoint.RefreshToken)

	// Bearer-authenticated routes
	auth := router.Group("/")
	auth.Use(middleware.BearerAuth())
	{
		auth.DELETE("/logout/", endpoint.Logout)

		auth.GET("/profile/", endpoint.GetPatientProfile)
		auth.PUT("/profile/", endpoint.UpdatePatientProfile)
		auth.GET("/doctor/profile/", endpoint.GetDoctorProfile)
		auth.PUT("/doctor/profile/", endpoint.UpdateDoctorProfile)

		auth.GET("/availability/", endpoint.ListAvailabilities)
		auth.POST("/availability/", middleware.RequireRole(model.RoleDoctor), endpoint.CreateAvailability)

		auth.POST("/book-appointment/", endpoint.BookAppointment)
		auth.PATCH("/appointments/validate/:appointment_id/", endpoint.ValidateAppointment)
		auth.POST("/add-treatments/:appointment_id/", endpoint.AddTreatments)
		auth.GET("/patient/:appointment_id/", endpoint.GetPatientInfo)
		auth.GET("/treatments/", endpoint.ListPatientTreatments)
	}

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func seedSuperuserFromEnv(db *gorm.DB, email, password string) error {
	if password == "" {
		return fmt.Errorf("SUPERUSER_PASSWORD is not set")
	}
	salt, err := util.GenerateSalt()
	if err != nil {
		return err
	}
	hashed, err := util.HashPasswordArgon2(password, salt)
	if err != nil {
		return err
	}
	return model.SeedSuperuser(db, util.NormalizeEmail(email), hashed, salt)
}
