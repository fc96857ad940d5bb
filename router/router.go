// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m2m-works/scld/api/controller"
	"github.com/m2m-works/scld/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RequestID())
	router.Use(middleware.Identity())
	if rateLimitRequests > 0 {
		router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	}

	api := router.Group("/api/v1")

	controllers.Resource.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api)

	return router
}
