package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/daily-pulse/controllers"
	"github.com/vnkhanh/daily-pulse/middleware"
	"github.com/vnkhanh/daily-pulse/questionnaire"
)

type Handlers struct {
	Auth          *controllers.AuthController
	Questionnaire *controllers.QuestionnaireController
	Health        *controllers.HealthController
	Sessions      middleware.SessionSource
	Registry      *questionnaire.Registry
	AuthLimiter   *middleware.IPRateLimiter
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", h.Health.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/status", h.Health.Status)

		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimitByIP(h.AuthLimiter), h.Auth.Login)
			auth.POST("/signup", middleware.RateLimitByIP(h.AuthLimiter), h.Auth.Signup)
			auth.POST("/logout", middleware.RequireSession(h.Sessions), h.Auth.Logout)
		}

		protected := api.Group("/")
		protected.Use(middleware.RequireSession(h.Sessions))
		{
			protected.GET("/me", h.Auth.Me)
		}

		questionnaires := api.Group("/questionnaires")
		questionnaires.Use(middleware.RequireSession(h.Sessions))
		{
			questionnaires.POST("", h.Questionnaire.Start)
			questionnaires.DELETE("/:id", h.Questionnaire.Discard)

			loaded := questionnaires.Group("/:id")
			loaded.Use(middleware.LoadQuestionnaire(h.Registry))
			{
				loaded.GET("", h.Questionnaire.Get)
				loaded.PUT("/answers/:questionId/text", h.Questionnaire.SetText)
				loaded.PUT("/answers/:questionId/choice", h.Questionnaire.SetChoice)
				loaded.POST("/answers/:questionId/toggle", h.Questionnaire.Toggle)
				loaded.POST("/save", h.Questionnaire.Save)
			}
		}
	}
}
