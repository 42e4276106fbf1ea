package requests

import "github.com/listing-cleaner/app/models"

// CleanOptions tùy chọn làm sạch
type CleanOptions struct {
	UseCache *bool `json:"use_cache,omitempty"` // mặc định true
}

// CacheEnabled cache được dùng trừ khi tắt rõ ràng
func (o CleanOptions) CacheEnabled() bool {
	return o.UseCache == nil || *o.UseCache
}

// CleanListingRequest request làm sạch một tin đăng
type CleanListingRequest struct {
	Listing models.RawListing `json:"listing"` // Tin đăng thô từ scraper
	Options CleanOptions      `json:"options,omitempty"`
}

// BatchCleanRequest request làm sạch nhiều tin đăng
type BatchCleanRequest struct {
	Listings []models.RawListing `json:"listings" binding:"required,min=1"`
	Async    bool                `json:"async,omitempty"` // true: tạo job chạy nền
	Options  CleanOptions        `json:"options,omitempty"`
}

// StandardizeRequest request chuẩn hóa bộ địa chỉ
type StandardizeRequest struct {
	Province     *string `json:"province"`
	District     *string `json:"district"`
	Ward         *string `json:"ward"`
	ShortAddress *string `json:"short_address"`
}

// SearchQuery query string của /v1/reference/search
type SearchQuery struct {
	Query      string `form:"q" binding:"required"`
	Level      string `form:"level"` // province|district|ward hoặc 2|3|4
	ParentCode string `form:"parent_code"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SeedRequest request đẩy dữ liệu tham chiếu
type SeedRequest struct {
	Mongo bool `json:"mongo"`
	Index bool `json:"index"`
}
