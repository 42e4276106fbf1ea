package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/controllers"
)

// Controllers các controller được gắn vào router
type Controllers struct {
	Listing   *controllers.ListingController
	Reference *controllers.ReferenceController
	Admin     *controllers.AdminController
}

// Options tham số middleware
type Options struct {
	RateLimit      float64 // request/giây mỗi IP, 0 = tắt
	Burst          int
	RequestTimeout time.Duration
	Version        string
}

// SetupAllRoutes thiết lập middleware và tất cả routes
func SetupAllRoutes(router *gin.Engine, ctl Controllers, opts Options, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	setupMiddleware(router, opts, logger)

	SetupWebRoutes(router, opts.Version)
	SetupHealthRoutes(router, ctl.Listing)
	SetupAPIRoutes(router, ctl, opts.RequestTimeout)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// setupMiddleware thiết lập middleware cho router
func setupMiddleware(router *gin.Engine, opts Options, logger *zap.Logger) {
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(logger))
	router.Use(rateLimit(opts.RateLimit, opts.Burst))
}
