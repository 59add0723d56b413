package routes

import (
	"time"

	"oseplatform/handlers"
	"oseplatform/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers operator session endpoints.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", hb.LoginHandler)
		auth.POST("/logout", hb.LogoutHandler)
	}
}

// RegisterSeriesNotificationRoutes registers the notification workflow endpoints. All require an operator token.
func RegisterSeriesNotificationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	sn := api.Group("/series-notifications")
	{
		sn.Use(middleware.OperatorAuthMiddleware(hb.OperatorService))
		sn.POST("/validate-bulk", hb.ValidateBulkHandler)
		sn.GET("/config/options", hb.ConfigOptionsHandler)
		sn.POST("/send", hb.SendHandler)

		sn.GET("/history", hb.HistoryHandler)
		sn.GET("/history/:id", hb.HistoryItemHandler)
		sn.GET("/history/:id/csv", hb.HistoryCSVHandler)

		search := sn.Group("/search")
		search.POST("/smart-scan", hb.SmartScanHandler)
		search.GET("/by-location/:location", hb.SearchByLocationHandler)
		search.GET("/by-carton/:id", hb.SearchByCartonHandler)
		search.GET("/by-pallet/:id", hb.SearchByPalletHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: !containsWildcard(allowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	api := r.Group("/api/v1")
	RegisterAuthRoutes(api, hb)
	RegisterSeriesNotificationRoutes(api, hb)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
