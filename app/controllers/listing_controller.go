package controllers

import (
	"compress/gzip"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/app/requests"
	"github.com/listing-cleaner/app/responses"
	"github.com/listing-cleaner/app/services"
	"github.com/listing-cleaner/internal/pipeline"
)

// ListingController controller xử lý các request làm sạch tin đăng
type ListingController struct {
	listingService *services.ListingService
	maxBatch       int
	logger         *zap.Logger
}

// NewListingController tạo mới ListingController; maxBatch <= 0 là không giới hạn
func NewListingController(listingService *services.ListingService, maxBatch int, logger *zap.Logger) *ListingController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingController{
		listingService: listingService,
		maxBatch:       maxBatch,
		logger:         logger,
	}
}

// CleanListing làm sạch một tin đăng
func (lc *ListingController) CleanListing(c *gin.Context) {
	var req requests.CleanListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}

	startTime := time.Now()
	out, err := lc.listingService.Clean(c.Request.Context(), req.Listing, req.Options.CacheEnabled())
	if eris.Is(err, services.ErrMissingURL) {
		abortWithError(c, http.StatusUnprocessableEntity, "MISSING_URL", "Tin đăng thiếu URL")
		return
	}
	if err != nil {
		lc.logger.Error("Lỗi làm sạch tin đăng", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "CLEAN_ERROR", "Lỗi làm sạch tin đăng: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.CleanListingResponse{
		RulesVersion:     out.Version,
		Result:           out.Result,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         out.CacheHit,
	})
}

// BatchClean làm sạch nhiều tin; async = true trả về job id
func (lc *ListingController) BatchClean(c *gin.Context) {
	var req requests.BatchCleanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}
	if lc.maxBatch > 0 && len(req.Listings) > lc.maxBatch {
		abortWithError(c, http.StatusBadRequest, "TOO_MANY_LISTINGS", "Số lượng tin vượt quá giới hạn")
		return
	}

	if req.Async {
		job := lc.listingService.StartBatchJob(req.Listings, req.Options.CacheEnabled())
		c.JSON(http.StatusAccepted, responses.BatchJobResponse{
			JobID:         job.ID,
			TotalListings: job.Total,
			StatusURL:     "/v1/listings/jobs/" + job.ID,
			Message:       "Job đã được tạo và đang xử lý",
		})
		return
	}

	startTime := time.Now()
	results, sum, err := lc.listingService.Batch(c.Request.Context(), req.Listings, req.Options.CacheEnabled())
	if err != nil {
		lc.logger.Error("Lỗi làm sạch hàng loạt", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "BATCH_ERROR", "Lỗi làm sạch hàng loạt: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.BatchCleanResponse{
		RulesVersion:     lc.listingService.Version(),
		Results:          results,
		Summary:          sum,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// GetJobStatus lấy trạng thái job
func (lc *ListingController) GetJobStatus(c *gin.Context) {
	job, err := lc.listingService.GetJob(c.Param("jobID"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "JOB_NOT_FOUND", "Không tìm thấy job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetJobResults lấy kết quả job: format=json (mặc định), ndjson (gzip=1 để nén) hoặc csv
func (lc *ListingController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")
	results, err := lc.listingService.GetJobResults(jobID)
	if eris.Is(err, services.ErrJobNotFound) {
		abortWithError(c, http.StatusNotFound, "JOB_NOT_FOUND", "Không tìm thấy job")
		return
	}
	if err != nil {
		abortWithError(c, http.StatusConflict, "JOB_NOT_READY", err.Error())
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "ndjson":
		lc.streamNDJSON(c, results, c.Query("gzip") == "1")
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="`+jobID+`.csv"`)
		c.Status(http.StatusOK)
		if err := pipeline.EncodeCSV(c.Writer, pipeline.CleanedRows(results)); err != nil {
			lc.logger.Error("Lỗi ghi CSV", zap.String("job_id", jobID), zap.Error(err))
		}
	default:
		c.JSON(http.StatusOK, responses.SuccessResponse{
			Success: true,
			Message: "Lấy kết quả thành công",
			Data:    results,
		})
	}
}

// streamNDJSON ghi từng kết quả một dòng JSON, có thể nén gzip
func (lc *ListingController) streamNDJSON(c *gin.Context, results []models.CleanResult, gzipEnabled bool) {
	c.Header("Content-Type", "application/x-ndjson")
	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{ResponseWriter: c.Writer, gzWriter: gzWriter}
	}
	c.Status(http.StatusOK)

	encoder := json.NewEncoder(writer)
	for i := range results {
		if err := encoder.Encode(&results[i]); err != nil {
			lc.logger.Error("Lỗi encode NDJSON", zap.Error(err))
			return
		}
		writer.Flush()
	}
}

// HealthCheck kiểm tra sức khỏe service
func (lc *ListingController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(lc.listingService.GetStartTime()).Round(time.Second).String(),
		Version:   lc.listingService.Version(),
		Services: map[string]string{
			"listing_cleaner": "healthy",
		},
	})
}

// Ready kiểm tra cache còn truy cập được
func (lc *ListingController) Ready(c *gin.Context) {
	status, state := http.StatusOK, "ready"
	deps := map[string]string{"listing_cleaner": "healthy", "cache": "healthy"}
	if _, err := lc.listingService.CacheStats(c.Request.Context()); err != nil {
		lc.logger.Warn("Cache chưa sẵn sàng", zap.Error(err))
		status, state = http.StatusServiceUnavailable, "not_ready"
		deps["cache"] = "unavailable"
	}
	c.JSON(status, responses.HealthCheckResponse{
		Status:    state,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(lc.listingService.GetStartTime()).Round(time.Second).String(),
		Version:   lc.listingService.Version(),
		Services:  deps,
	})
}

// gzipResponseWriter wrapper cho gzip writer
type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}
