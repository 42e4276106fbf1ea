package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CleanResult kết quả làm sạch một tin đăng
type CleanResult struct {
	Fingerprint string              `bson:"fingerprint" json:"fingerprint"`           // Fingerprint của tin đăng
	URL         string              `bson:"url" json:"url"`                           // Nguồn thông tin
	Attributes  ExtractedAttributes `bson:"attributes" json:"attributes"`             // Thuộc tính trích xuất
	Features    *EngineeredFeatures `bson:"features,omitempty" json:"features"`       // Đặc trưng định giá
	Row         OutputRow           `bson:"row" json:"row"`                           // Dòng đầu ra
	Status      string              `bson:"status" json:"status"`                     // Trạng thái xử lý
	Flags       []string            `bson:"flags,omitempty" json:"flags,omitempty"`   // Cờ chất lượng dữ liệu
	Reason      string              `bson:"reason,omitempty" json:"reason,omitempty"` // Lý do bị loại
}

// Status constants
const (
	StatusCleaned = "cleaned"
	StatusDropped = "dropped"
)

// Quality flags
const (
	FlagMissingPrice      = "MISSING_PRICE"
	FlagMissingArea       = "MISSING_AREA"
	FlagMissingLocation   = "MISSING_LOCATION"
	FlagUnmatchedDistrict = "UNMATCHED_DISTRICT"
	FlagUnmatchedWard     = "UNMATCHED_WARD"
	FlagImputedDistance   = "IMPUTED_DISTANCE"
)

// IsValidStatus kiểm tra status có hợp lệ không
func (r *CleanResult) IsValidStatus() bool {
	return r.Status == StatusCleaned || r.Status == StatusDropped
}

// HasFlag kiểm tra kết quả có cờ tương ứng
func (r *CleanResult) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// CleanCache bản ghi cache kết quả làm sạch (Mongo/Redis)
type CleanCache struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint  string             `bson:"fingerprint" json:"fingerprint"`     // Fingerprint của tin đăng
	URL          string             `bson:"url" json:"url"`                     // Nguồn thông tin
	Result       CleanResult        `bson:"result" json:"result"`               // Kết quả làm sạch
	RulesVersion string             `bson:"rules_version" json:"rules_version"` // Phiên bản bảng luật + dữ liệu tham chiếu
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`       // Thời gian tạo
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"` // Lần truy cập cuối
	AccessCount  int                `bson:"access_count" json:"access_count"`   // Số lần truy cập
}

// NewCleanCache tạo mới một CleanCache
func NewCleanCache(result CleanResult, rulesVersion string) *CleanCache {
	now := time.Now()
	return &CleanCache{
		Fingerprint:  result.Fingerprint,
		URL:          result.URL,
		Result:       result,
		RulesVersion: rulesVersion,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
	}
}

// UpdateAccess cập nhật thông tin truy cập
func (c *CleanCache) UpdateAccess() {
	c.LastAccessed = time.Now()
	c.AccessCount++
}

// IsExpired kiểm tra cache có hết hạn không (dựa trên thời gian tạo)
func (c *CleanCache) IsExpired(ttlHours int) bool {
	return time.Since(c.CreatedAt) > time.Duration(ttlHours)*time.Hour
}

// IsValidRulesVersion kiểm tra phiên bản luật có khớp không
func (c *CleanCache) IsValidRulesVersion(current string) bool {
	return c.RulesVersion == current
}
