package routes

import (
	"os"
	"strings"

	"greetbot-backend/controllers"
	"greetbot-backend/middleware"
	"greetbot-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRouter(log *zap.Logger, pc *controllers.ParticipantController, ac *controllers.AdminController) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	auth := r.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
	}

	api := r.Group("/api")
	{
		participants := api.Group("/participants")
		{
			participants.POST("/:id/start", pc.Start)
			participants.POST("/:id/claims", pc.Claim)
			participants.GET("/:id/greetings", pc.Greetings)
		}
	}

	admin := r.Group("/admin")
	admin.Use(utils.AuthMiddleware())
	{
		admin.POST("/sweeps", ac.TriggerSweep)
		admin.GET("/participants", ac.ListParticipants)
		admin.GET("/notifications", ac.ListNotifications)
	}

	return r
}
