package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/handlers"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/middleware"
)

// SetupRouter wires every route onto a gin engine.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// --- CORS ---
	// Origins come from the environment so staging and production can
	// differ without a rebuild.
	origins := []string{"http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// --- Uploaded Files (Public) ---
	router.Static("/uploads", "./uploads")

	api := router.Group("/api")
	{
		// --- Ping Route (Public) ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		api.POST("/register", h.RegisterStudent)
		api.POST("/register-employer", h.RegisterEmployer)
		api.POST("/login", h.LoginStudent)
		api.POST("/login-employer", h.LoginEmployer)
		api.POST("/verify-otp", h.VerifyOTP)
		api.POST("/resend-otp", h.ResendOTP)
		api.POST("/admin/login", h.AdminLogin)

		// --- Public Browse Routes ---
		api.GET("/jobs", h.ListJobs)
		api.GET("/plans", h.GetPlans)

		// --- Protected Routes (Login Required) ---
		auth := api.Group("/")
		auth.Use(middleware.AuthMiddleware())
		{
			// --- Profile Routes ---
			auth.GET("/profile", h.GetProfile)
			auth.PUT("/profile", h.UpdateStudentProfile)
			auth.PUT("/employer-profile", h.UpdateEmployerProfile)
			auth.DELETE("/profile/photo", h.DeletePhoto)
			auth.DELETE("/profile/cv", h.DeleteCV)
			auth.POST("/update-email", h.UpdateEmail)

			// --- Notification Routes ---
			auth.GET("/notifications", h.ListNotifications)
			auth.POST("/notifications/:id/read", h.MarkNotificationRead)

			// --- Employer Job Routes ---
			auth.POST("/jobs", h.PostJob)
			auth.GET("/my-jobs", h.MyJobs)
			auth.PUT("/jobs/:id", h.UpdateJob)
			auth.DELETE("/jobs/:id", h.DeleteJob)
			auth.POST("/jobs/:id/promote", h.PromoteJob)

			// --- Application Routes ---
			auth.POST("/jobs/:id/apply", h.ApplyToJob)
			auth.GET("/my-applications", h.MyApplications)
			auth.GET("/applications", h.EmployerApplications)
			auth.GET("/applications/download-cvs", h.DownloadCVs)

			// --- Subscription Routes ---
			auth.GET("/subscription", h.GetSubscription)
			auth.POST("/subscription/payment", h.SubmitPayment)
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/data", h.AdminData)
			admin.GET("/employers/:id", h.EmployerDetails)
			admin.POST("/employers/:id/verify", h.VerifyEmployer)
			admin.POST("/students/:id/suspend", h.SuspendStudent)
			admin.GET("/suspended", h.ListSuspended)
			admin.DELETE("/users/:type/:id", h.DeleteAccount)

			admin.GET("/payments", h.ListPayments)
			admin.POST("/payments/:id/approve", h.ApprovePayment)
			admin.POST("/payments/:id/decline", h.DeclinePayment)
		}
	}

	return router
}
