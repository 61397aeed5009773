package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rakibhasan/carebook/config"
	_ "github.com/rakibhasan/carebook/docs"
	"github.com/rakibhasan/carebook/endpoint"
	"github.com/rakibhasan/carebook/middleware"
	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/scheduler"
	"github.com/rakibhasan/carebook/util"
)

// @title           CareBook API
// @version         1.0
// @description     Healthcare appointment booking API with double-booking prevention and a doctor approval workflow.
// @BasePath        /
// @securityDefinitions.apikey SessionToken
// @in header
// @name session-token
func main() {
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Role{},
		&model.Doctor{},
		&model.Appointment{},
		&model.Specialization{},
		&model.SecurityLog{},
	); err != nil {
		log.Fatalf("error migrating schema: %v", err)
	}
	if err := model.SeedRoles(db); err != nil {
		log.Fatalf("error seeding roles: %v", err)
	}

	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("redis unavailable, session cache and rate limiting degrade: %v", err)
	}

	util.SetJWTSecret(os.Getenv("JWTSECRET"))
	util.SetSecurityLoggerDB(db)
	util.InitMailer(cfg)
	util.InitUserEmailCacheFromEnv()
	if err := util.InitGeoIP(os.Getenv("GEOIP_DB_PATH")); err != nil {
		log.Printf("geoip disabled: %v", err)
	}
	defer util.CloseGeoIP()

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
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes. Login and signup are rate limited per client IP.
	loginLimit := middleware.RateLimiter(middleware.RateLimitConfig{})
	router.POST("/signup", loginLimit, endpoint.Signup)
	router.POST("/login", loginLimit, endpoint.Login)
	router.GET("/token/validate", endpoint.ValidateToken)
	router.GET("/doctor", endpoint.ListDoctors)
	router.GET("/doctor/:id", endpoint.GetDoctorInfo)
	router.GET("/doctor/:id/slots", endpoint.DoctorSlots)
	router.GET("/specialization", endpoint.ListSpecializations)

	// Authenticated routes.
	auth := router.Group("/", middleware.ValidateLoginToken())
	auth.DELETE("/logout", endpoint.Logout)
	auth.POST("/verify-password", endpoint.VerifyPassword)
	auth.GET("/user", endpoint.GetProfile)
	auth.PATCH("/user", endpoint.UpdateUser)

	auth.POST("/appointment", endpoint.BookAppointment)
	auth.GET("/appointment", endpoint.ListAppointments)
	auth.GET("/appointment/:id", endpoint.GetAppointment)
	auth.PATCH("/appointment/:id", endpoint.RescheduleAppointment)
	auth.PATCH("/appointment/:id/status", endpoint.UpdateAppointmentStatus)
	auth.DELETE("/appointment/:id", endpoint.CancelAppointment)

	// Doctors manage their own profile.
	doctorOrAdmin := auth.Group("/", middleware.RequireRole(model.RoleDoctor, model.RoleAdmin))
	doctorOrAdmin.PATCH("/doctor/:id", endpoint.UpdateDoctor)

	// Admin-only management surface.
	admin := auth.Group("/", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/doctor", endpoint.CreateDoctor)
	admin.PATCH("/doctor/:id/approve", endpoint.ApproveDoctor)
	admin.GET("/appointment/stats", endpoint.AppointmentStats)
	admin.GET("/report/monthly", endpoint.MonthlyReports)
	admin.GET("/user/list", endpoint.ListUsers)
	admin.GET("/user/:id", endpoint.GetUserInfo)
	admin.PATCH("/user/:id", endpoint.AdminUpdateUser)
	admin.DELETE("/user/:id", endpoint.DeleteUser)
	admin.POST("/specialization", endpoint.CreateSpecialization)
	admin.PATCH("/specialization/:id", endpoint.UpdateSpecialization)
	admin.DELETE("/specialization/:id", endpoint.DeleteSpecialization)

	// Reminder scheduler runs until the process exits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched := scheduler.New(db, time.Duration(cfg.ReminderInterval)*time.Minute)
	go sched.Run(ctx)

	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
