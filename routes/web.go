package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupWebRoutes thiết lập trang chủ và mô tả API
func SetupWebRoutes(router *gin.Engine, version string) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":       "Listing Cleaner Service",
				"rules_version": version,
				"docs":          "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"api": "Listing Cleaner API v1",
				"endpoints": map[string]string{
					"clean":            "POST /v1/listings/clean",
					"batch":            "POST /v1/listings/batch",
					"job_status":       "GET /v1/listings/jobs/:jobID",
					"job_results":      "GET /v1/listings/jobs/:jobID/results?format=json|ndjson|csv",
					"standardize":      "POST /v1/reference/standardize",
					"search":           "GET /v1/reference/search?q=&level=&parent_code=&limit=",
					"reference_stats":  "GET /v1/reference/stats",
					"cache_invalidate": "POST /v1/admin/cache/invalidate",
					"cache_clear":      "POST /v1/admin/cache/clear",
					"cache_stats":      "GET /v1/admin/cache/stats",
					"index_rebuild":    "POST /v1/admin/index/rebuild",
					"seed":             "POST /v1/admin/seed",
					"stats":            "GET /v1/admin/stats",
					"health":           "GET /health",
				},
			})
		})
	}
}
