package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/listing-cleaner/app/controllers"
)

// SetupAPIRoutes thiết lập tất cả API routes. timeout chỉ áp cho các request xử lý từng tin.
func SetupAPIRoutes(router *gin.Engine, ctl Controllers, timeout time.Duration) {
	v1 := router.Group("/v1")
	{
		listings := v1.Group("/listings")
		{
			listings.POST("/clean", requestTimeout(timeout), ctl.Listing.CleanListing)
			listings.POST("/batch", ctl.Listing.BatchClean)
			listings.GET("/jobs/:jobID", ctl.Listing.GetJobStatus)
			listings.GET("/jobs/:jobID/results", ctl.Listing.GetJobResults)
		}

		reference := v1.Group("/reference", requestTimeout(timeout))
		{
			reference.POST("/standardize", ctl.Reference.Standardize)
			reference.GET("/search", ctl.Reference.Search)
			reference.GET("/stats", ctl.Reference.Stats)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/cache/invalidate", ctl.Admin.InvalidateCache)
			admin.POST("/cache/clear", ctl.Admin.ClearCache)
			admin.GET("/cache/stats", ctl.Admin.CacheStats)
			admin.POST("/index/rebuild", ctl.Admin.RebuildIndex)
			admin.POST("/seed", ctl.Admin.SeedReference)
			admin.GET("/stats", ctl.Admin.GetStats)
		}

		v1.GET("/health", ctl.Listing.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, listingController *controllers.ListingController) {
	router.GET("/health", listingController.HealthCheck)
	router.GET("/ready", listingController.Ready)
	router.GET("/live", listingController.HealthCheck)
}
