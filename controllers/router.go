package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rahel786/QuickHire-sub000/middleware"
	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/services"
)

// Deps is everything the router needs.
type Deps struct {
	Auth           *services.AuthService
	Credentials    *services.Credentials
	Colleges       *services.CollegeService
	Experiences    *services.ExperienceService
	Plans          *services.PlanService
	Tokens         middleware.TokenVerifier
	Metrics        *middleware.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.CORS(d.AllowedOrigins), middleware.Logger(logger))
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "QuickHire API",
			"routes":  []string{"/api/auth", "/api/colleges", "/api/experiences", "/api/learning-plans"},
		})
	})

	authHandler := NewAuthHandler(d.Auth, logger)
	collegeHandler := NewCollegeHandler(d.Colleges, logger)
	experienceHandler := NewExperienceHandler(d.Experiences, logger)
	planHandler := NewPlanHandler(d.Plans, logger)

	requireAuth := middleware.Auth(d.Tokens)
	requireAdmin := middleware.RequireRole(d.Credentials, models.RoleAdmin)
	resolveRole := middleware.ResolveRole(d.Credentials)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/send-otp", authHandler.SendOTP)
			auth.POST("/verify-otp-register", authHandler.VerifyOTPRegister)
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", requireAuth, authHandler.Me)
			auth.PUT("/me", requireAuth, authHandler.UpdateMe)
		}

		colleges := api.Group("/colleges")
		{
			colleges.GET("", collegeHandler.List)
			colleges.GET("/:id", collegeHandler.Get)
			colleges.POST("", requireAuth, requireAdmin, collegeHandler.Create)
			colleges.PUT("/:id", requireAuth, requireAdmin, collegeHandler.Update)
			colleges.DELETE("/:id", requireAuth, requireAdmin, collegeHandler.Delete)
		}

		experiences := api.Group("/experiences")
		{
			experiences.GET("", middleware.OptionalAuth(d.Tokens), experienceHandler.List)
			experiences.GET("/mine", requireAuth, experienceHandler.Mine)
			experiences.GET("/:id", middleware.OptionalAuth(d.Tokens), experienceHandler.Get)
			experiences.POST("", requireAuth, experienceHandler.Create)
			experiences.PUT("/:id", requireAuth, resolveRole, experienceHandler.Update)
			experiences.DELETE("/:id", requireAuth, resolveRole, experienceHandler.Delete)
		}

		plans := api.Group("/learning-plans", requireAuth)
		{
			plans.POST("/generate", planHandler.Generate)
			plans.GET("", planHandler.List)
			plans.GET("/:id", planHandler.Get)
			plans.PUT("/:id", planHandler.Update)
			plans.DELETE("/:id", planHandler.Delete)
		}
	}

	return router
}
