package routes

import (
	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

// SetupRoutes configures the application routes. limiter guards the
// credential endpoints and may be nil.
func SetupRoutes(router *gin.Engine, svc *services.Services, cfg *config.Config, limiter *middleware.RateLimiter) {
	codec := utils.NewTokenCodec(cfg.SessionSecret)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc, cfg, codec)
	userHandler := handlers.NewUserHandler(svc)
	doctorHandler := handlers.NewDoctorHandler(svc)
	packageHandler := handlers.NewPackageHandler(svc)
	appointmentHandler := handlers.NewAppointmentHandler(svc)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			credentials := authRoutes.Group("")
			if limiter != nil {
				credentials.Use(limiter.Middleware())
			}
			credentials.POST("/register", authHandler.Register)
			credentials.POST("/login", authHandler.Login)

			// Logout works with a dead or missing session too
			authRoutes.POST("/logout", authHandler.Logout)
		}

		public.GET("/doctors", doctorHandler.ListDoctors)
		public.GET("/doctors/:id", doctorHandler.GetDoctor)
		public.GET("/doctors/:id/slots", doctorHandler.ListSlots)

		public.GET("/packages", packageHandler.ListPackages)
		public.GET("/packages/:id", packageHandler.GetPackage)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.SessionAuth(svc.Gate, codec, cfg.CookieName))
	{
		private.GET("/auth/me", authHandler.GetProfile)
		private.PUT("/auth/me", authHandler.UpdateProfile)

		doctorRoutes := private.Group("/doctor")
		{
			profileRoutes := doctorRoutes.Group("/profile")
			profileRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
			{
				profileRoutes.GET("", doctorHandler.GetOwnProfile)
				profileRoutes.POST("", doctorHandler.CreateOwnProfile)
				profileRoutes.PUT("", doctorHandler.UpdateOwnProfile)
			}
			doctorRoutes.POST("/slots", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), doctorHandler.AddSlot)
		}

		// Ownership is checked by the ledger
		private.DELETE("/slots/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), doctorHandler.RemoveSlot)

		// Appointment routes. Party checks happen in the engine.
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.POST("/:id/approve", appointmentHandler.Approve)
			appointmentRoutes.POST("/:id/reject", appointmentHandler.Reject)
			appointmentRoutes.POST("/:id/cancel", appointmentHandler.Cancel)
			appointmentRoutes.POST("/:id/complete", appointmentHandler.Complete)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin)) // Only Admins
		{
			adminRoutes.GET("/users", userHandler.GetUsers)
			adminRoutes.GET("/users/:id", userHandler.GetUserByID)
			adminRoutes.PUT("/users/:id", userHandler.UpdateUser)
			adminRoutes.DELETE("/users/:id", userHandler.DeleteUser)

			adminRoutes.GET("/doctors", doctorHandler.ListAllProfiles)
			adminRoutes.POST("/doctors/:id/approve", doctorHandler.ApproveProfile)
			adminRoutes.POST("/doctors/:id/reject", doctorHandler.RejectProfile)

			adminRoutes.POST("/packages", packageHandler.CreatePackage)
			adminRoutes.PUT("/packages/:id", packageHandler.UpdatePackage)
			adminRoutes.DELETE("/packages/:id", packageHandler.DeletePackage)

			adminRoutes.GET("/appointments", appointmentHandler.ListAllAppointments)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
