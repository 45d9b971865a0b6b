package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/homesync/homesync-backend/internal/handlers"
	"github.com/homesync/homesync-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware       *middleware.AuthMiddleware
	MembershipMiddleware *middleware.MembershipMiddleware
	TaskHandler          *handlers.TaskHandler
	ShoppingHandler      *handlers.ShoppingHandler
	HouseholdHandler     *handlers.HouseholdHandler
	ProfileHandler       *handlers.ProfileHandler
	EventsHandler        *handlers.EventsHandler
	AllowOrigins         []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/health", handlers.HealthCheck)

	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Me
	protected.GET("/me/profile", cfg.ProfileHandler.GetProfile)
	protected.PUT("/me/profile", cfg.ProfileHandler.UpsertProfile)
	protected.GET("/me/households", cfg.ProfileHandler.ListMyHouseholds)

	// Households
	protected.POST("/households", cfg.HouseholdHandler.Create)

	household := protected.Group("/households/:householdID")
	household.Use(cfg.MembershipMiddleware.RequireMember())
	household.GET("", cfg.HouseholdHandler.Get)
	household.POST("/members", cfg.HouseholdHandler.AddMember)
	household.GET("/tasks", cfg.TaskHandler.List)
	household.POST("/tasks", cfg.TaskHandler.Create)
	household.GET("/events", cfg.EventsHandler.Stream)
	household.GET("/shopping-list", cfg.ShoppingHandler.Get)
	household.POST("/shopping-list/sync", cfg.ShoppingHandler.Sync)

	// Entity-scoped routes; the services resolve household membership from
	// the entity itself.
	protected.PATCH("/tasks/:taskID", cfg.TaskHandler.Patch)
	protected.DELETE("/tasks/:taskID", cfg.TaskHandler.Delete)
	protected.PATCH("/shopping-list-items/:itemID", cfg.ShoppingHandler.Toggle)

	return router
}
