package models

// Giá trị hình dạng mặc định khi không có từ khóa nào khớp
const DefaultLandShape = "Chữ nhật"

// Các mức chất lượng còn lại hợp lệ
var QualityLevels = []float64{0.0, 0.5, 0.75, 0.85, 1.0}

// ExtractedAttributes thuộc tính trích xuất từ một tin đăng. nil nghĩa là không xác định được.
type ExtractedAttributes struct {
	Province           *string  `json:"province"`              // Tỉnh/Thành phố
	District           *string  `json:"district"`              // Quận/Huyện/Thị xã
	Ward               *string  `json:"ward"`                  // Xã/Phường/Thị trấn
	Street             *string  `json:"street"`                // Đường phố
	AddressDetail      *string  `json:"address_detail"`        // Số nhà, ngõ... hoặc "Mặt phố"/"Mặt ngõ"
	URL                *string  `json:"url"`                   // Nguồn thông tin
	PublishedDate      *string  `json:"published_date"`        // dd/mm/yyyy
	Price              *float64 `json:"price"`                 // VND
	LandArea           *float64 `json:"land_area"`             // m²
	FacadeWidth        *float64 `json:"facade_width"`          // m
	LandLength         *float64 `json:"land_length"`           // m
	NumFloors          *int     `json:"num_floors"`            // Số tầng
	FacadeCount        *int     `json:"facade_count"`          // Số mặt tiền tiếp giáp
	LandShape          *string  `json:"land_shape"`            // Hình dạng
	AlleyWidth         *float64 `json:"alley_width"`           // m, 0 nếu mặt đường
	DistanceToMainRoad *float64 `json:"distance_to_main_road"` // m, 0 nếu mặt đường
	FloorArea          *float64 `json:"floor_area"`            // m², diện tích đất × số tầng
	RemainingQuality   *float64 `json:"remaining_quality"`     // 0..1
	ConstructionCost   *float64 `json:"construction_cost"`     // đ/m²
	OtherFeatures      []string `json:"other_features"`        // Các câu mô tả đặc điểm
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	ImageURLs          []string `json:"image_urls"`

	DistanceImputed bool `json:"distance_imputed,omitempty"` // Khoảng cách lấy từ chính sách ước lượng
}

// Vị trí (location tier)
const (
	TierVT1 = "VT1"
	TierVT2 = "VT2"
	TierVT3 = "VT3"
	TierVT4 = "VT4"
)

// Lợi thế kinh doanh
const (
	AdvantageGood    = "Tốt"
	AdvantageFair    = "Khá"
	AdvantageAverage = "Trung bình"
	AdvantagePoor    = "Kém"
)

// EngineeredFeatures đặc trưng định giá suy ra từ ExtractedAttributes
type EngineeredFeatures struct {
	EstimatedPrice    *float64 `json:"estimated_price"`    // Giá ước tính
	LocationTier      *string  `json:"location_tier"`      // VT1..VT4
	BusinessAdvantage string   `json:"business_advantage"` // Tốt/Khá/Trung bình/Kém
	LandUnitPrice     *float64 `json:"land_unit_price"`    // Đơn giá đất (đ/m²)
	FloorArea         *float64 `json:"floor_area"`         // Tổng diện tích sàn
}

// IsValidQuality kiểm tra mức chất lượng thuộc tập giá trị cho phép
func IsValidQuality(v float64) bool {
	for _, q := range QualityLevels {
		if q == v {
			return true
		}
	}
	return false
}

// StrPtr trả về con trỏ tới s, nil nếu s rỗng
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FloatPtr trả về con trỏ tới v
func FloatPtr(v float64) *float64 {
	return &v
}

// IntPtr trả về con trỏ tới v
func IntPtr(v int) *int {
	return &v
}
