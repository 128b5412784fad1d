package router

import (
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/config"
	"github.com/onegreenvn/student-campaigns-backend/internal/handlers"
	"github.com/onegreenvn/student-campaigns-backend/internal/middleware"
	"github.com/onegreenvn/student-campaigns-backend/internal/services"
	"github.com/onegreenvn/student-campaigns-backend/internal/services/auth"
	"github.com/onegreenvn/student-campaigns-backend/internal/services/excel"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services bundles everything the HTTP layer calls into
type Services struct {
	Auth          *auth.AuthService
	Campaign      *services.CampaignService
	Eligibility   *services.EligibilityService
	Participation *services.ParticipationService
	Submission    *services.SubmissionService
	Excel         *excel.Service
}

// SetupRouter configures the Gin router with all API routes
func SetupRouter(cfg config.ServerConfig, svc Services) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	allowOrigins := cfg.CORSAllowedOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: len(cfg.CORSAllowedOrigins) > 0,
		MaxAge:           12 * time.Hour,
	}))

	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(svc.Auth)

	authHandler := handlers.NewAuthHandler(svc.Auth)
	adminHandler := handlers.NewAdminHandler(svc.Auth)
	campaignHandler := handlers.NewCampaignHandler(svc.Campaign, svc.Eligibility, svc.Submission)
	participationHandler := handlers.NewParticipationHandler(svc.Participation)
	submissionHandler := handlers.NewSubmissionHandler(svc.Submission)
	excelHandler := handlers.NewExcelHandler(svc.Excel)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logrus.Info("Swagger UI endpoint registered at /swagger/index.html")

	api := r.Group(cfg.BasePath)
	RegisterRoutes(api, bearerTokenMiddleware, Handlers{
		Auth:          authHandler,
		Admin:         adminHandler,
		Campaign:      campaignHandler,
		Participation: participationHandler,
		Submission:    submissionHandler,
		Excel:         excelHandler,
	})

	return r
}

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Auth          *handlers.AuthHandler
	Admin         *handlers.AdminHandler
	Campaign      *handlers.CampaignHandler
	Participation *handlers.ParticipationHandler
	Submission    *handlers.SubmissionHandler
	Excel         *handlers.ExcelHandler
}

// RegisterRoutes mounts every API route on api
func RegisterRoutes(api *gin.RouterGroup, authMiddleware *middleware.BearerTokenMiddleware, h Handlers) {
	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Auth routes (public)
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.Auth.Register)
		authPublic.POST("/login", h.Auth.Login)
		authPublic.POST("/refresh", h.Auth.RefreshToken)
	}

	// Public campaign routes; the decision endpoint reads the caller when a token is sent
	public := api.Group("/campaigns")
	public.Use(authMiddleware.OptionalAuthMiddleware())
	{
		public.GET("", h.Campaign.GetCampaigns)
		public.GET("/:id", h.Campaign.GetCampaignByID)
		public.GET("/:id/decision", h.Campaign.GetDecision)
		public.GET("/:id/leaderboard", h.Campaign.GetLeaderboard)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.BearerTokenAuthMiddleware())
	{
		authProtected := protected.Group("/auth")
		{
			authProtected.POST("/logout", h.Auth.Logout)
			authProtected.GET("/profile", h.Auth.GetProfile)
		}

		campaigns := protected.Group("/campaigns")
		{
			campaigns.POST("/:id/participations", h.Participation.Register)
			campaigns.GET("/:id/participations/me", h.Participation.GetMine)
			campaigns.POST("/:id/submissions", h.Submission.Submit)

			reviewer := campaigns.Group("", middleware.RequireReviewer())
			reviewer.GET("/:id/participations", h.Participation.GetByCampaign)
			reviewer.GET("/:id/submissions", h.Submission.GetByCampaign)

			admin := campaigns.Group("", middleware.RequireAdmin())
			admin.POST("", h.Campaign.CreateCampaign)
			admin.POST("/validate-timeline", h.Campaign.ValidateTimeline)
			admin.PUT("/:id", h.Campaign.UpdateCampaign)
			admin.PUT("/:id/status", h.Campaign.UpdateCampaignStatus)
		}

		participations := protected.Group("/participations", middleware.RequireReviewer())
		{
			participations.PUT("/:id/review", h.Participation.Review)
			participations.GET("/:id/history", h.Participation.GetHistory)
		}

		submissions := protected.Group("/submissions")
		{
			submissions.GET("/:id", h.Submission.GetSubmissionByID)

			reviewer := submissions.Group("", middleware.RequireReviewer())
			reviewer.POST("/:id/start-review", h.Submission.StartReview)
			reviewer.PUT("/:id/grade", h.Submission.Grade)
			reviewer.GET("/:id/history", h.Submission.GetHistory)
		}

		// Admin routes (requires admin privileges)
		admin := protected.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/users", h.Admin.GetAllUsers)
			admin.PUT("/users/:id/verification", h.Admin.SetVerification)
			admin.PUT("/users/:id/role", h.Admin.SetRole)
			admin.PUT("/users/:id/status", h.Admin.SetUserStatus)
			admin.GET("/campaigns/:id/export", h.Excel.ExportCampaign)
		}
	}
}
