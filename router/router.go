package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-service/controllers"
	"restaurant-service/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middlewares.RequestLogger())

	restaurantCtrl := controllers.NewRestaurantController(db)
	categoryCtrl := controllers.NewCategoryController(db)
	itemCtrl := controllers.NewItemController(db)
	menuCtrl := controllers.NewMenuController(db)
	reviewCtrl := controllers.NewReviewController(db)
	statsCtrl := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	api.GET("/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "restaurant-service",
			"status":  "ok",
		})
	})

	// Public, customer-facing reads.
	restaurants := api.Group("/restaurants")
	{
		restaurants.GET("/search", restaurantCtrl.Search)
		restaurants.GET("/popular", restaurantCtrl.Popular)
		restaurants.GET("/nearby", restaurantCtrl.Nearby)
		restaurants.GET("/:uuid", restaurantCtrl.Get)
	}

	items := api.Group("/items")
	{
		items.GET("/search", itemCtrl.Search)
		items.GET("/popular", itemCtrl.Popular)
	}

	menus := api.Group("/menus")
	{
		menus.GET("/restaurant/:restaurantUuid", menuCtrl.PublicList)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categoryCtrl.List)
		categories.GET("/:uuid", categoryCtrl.Get)
		categories.GET("/restaurant/:restaurantUuid", categoryCtrl.ListForRestaurant)
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("/restaurant/:restaurantUuid", reviewCtrl.List)
	}

	// Everything below acts on behalf of an identified user.
	auth := api.Group("")
	auth.Use(middlewares.Identify())
	{
		auth.POST("/restaurants", restaurantCtrl.Create)
		auth.GET("/restaurants/owner/me", restaurantCtrl.GetMy)
		auth.PUT("/restaurants/owner/me", restaurantCtrl.Update)
		auth.PATCH("/restaurants/owner/status", restaurantCtrl.ToggleStatus)

		auth.POST("/items", itemCtrl.Create)
		auth.GET("/items/owner/restaurant", itemCtrl.List)
		auth.PUT("/items/:itemUuid", itemCtrl.Update)
		auth.DELETE("/items/:itemUuid", itemCtrl.Delete)
		auth.PATCH("/items/:itemUuid/availability", itemCtrl.ToggleAvailability)
		auth.PATCH("/items/bulk/update", middlewares.NewWriteRateLimiter(), itemCtrl.BulkUpdate)

		auth.POST("/menus", menuCtrl.Create)
		auth.GET("/menus/owner/restaurant", menuCtrl.List)
		auth.GET("/menus/owner/analytics", menuCtrl.Analytics)
		auth.GET("/menus/:menuUuid", menuCtrl.Get)
		auth.PUT("/menus/:menuUuid", menuCtrl.Update)
		auth.DELETE("/menus/:menuUuid", menuCtrl.Delete)
		auth.PATCH("/menus/:menuUuid/availability", menuCtrl.ToggleAvailability)
		auth.POST("/menus/:menuUuid/duplicate", menuCtrl.Duplicate)
		auth.PATCH("/menus/bulk/availability", middlewares.NewWriteRateLimiter(), menuCtrl.BulkSetAvailability)

		auth.POST("/categories", categoryCtrl.Create)
		auth.PUT("/categories/:uuid", categoryCtrl.Update)
		auth.DELETE("/categories/:uuid", categoryCtrl.Delete)
		auth.POST("/categories/reorder", categoryCtrl.Reorder)
		auth.POST("/categories/restaurant/:restaurantUuid/:categoryUuid", categoryCtrl.Attach)
		auth.DELETE("/categories/restaurant/:restaurantUuid/:categoryUuid", categoryCtrl.Detach)

		auth.POST("/reviews/restaurant/:restaurantUuid", reviewCtrl.Create)
		auth.POST("/reviews/:reviewUuid/response", reviewCtrl.Respond)
		auth.PATCH("/reviews/:reviewUuid/visibility", reviewCtrl.ToggleVisibility)

		auth.GET("/stats/restaurant", statsCtrl.Get)
		auth.POST("/stats/restaurant/daily", statsCtrl.UpsertDaily)
		auth.GET("/stats/restaurant/summary", statsCtrl.Summary)
		auth.GET("/stats/restaurant/report", middlewares.NewWriteRateLimiter(), statsCtrl.Report)
		auth.GET("/stats/restaurant/benchmarks", statsCtrl.Benchmarks)
	}

	return r
}
