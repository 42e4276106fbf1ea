package responses

import (
	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/pipeline"
)

// CleanListingResponse response làm sạch một tin đăng
type CleanListingResponse struct {
	RulesVersion     string             `json:"rules_version"`
	Result           models.CleanResult `json:"result"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	CacheHit         bool               `json:"cache_hit"`
}

// BatchCleanResponse response làm sạch đồng bộ nhiều tin
type BatchCleanResponse struct {
	RulesVersion     string               `json:"rules_version"`
	Results          []models.CleanResult `json:"results"`
	Summary          pipeline.Summary     `json:"summary"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
}

// BatchJobResponse response tạo job chạy nền
type BatchJobResponse struct {
	JobID         string `json:"job_id"`
	TotalListings int    `json:"total_listings"`
	StatusURL     string `json:"status_url"`
	Message       string `json:"message"`
}

// SearchResponse response tra cứu dữ liệu hành chính
type SearchResponse struct {
	Query   string             `json:"query"`
	Level   int                `json:"level,omitempty"`
	Results []models.AdminUnit `json:"results"`
	Total   int                `json:"total"`
}

// InvalidateCacheResponse response invalidate cache
type InvalidateCacheResponse struct {
	RulesVersion string `json:"rules_version"`
	Cleared      bool   `json:"cleared"`
	Message      string `json:"message"`
}

// RebuildIndexResponse response nạp lại index tìm kiếm
type RebuildIndexResponse struct {
	Documents        int   `json:"documents"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}
