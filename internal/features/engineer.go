// Package features suy ra các đặc trưng định giá từ thuộc tính đã làm sạch:
// vị trí VT1-VT4, lợi thế kinh doanh, giá ước tính và đơn giá đất.
package features

import (
	"fmt"
	"strings"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/numeric"
)

// Ngưỡng độ rộng ngõ (m)
const (
	WideAlley   = 3.5
	NarrowAlley = 2.0
)

// Hệ số mặc định
const (
	DefaultEstimateFactor = 0.98
	DefaultLandDiscount   = 1.0
)

// Engineer tính đặc trưng định giá. Không có trạng thái, dùng chung được.
type Engineer struct {
	estimateFactor float64
	landDiscount   float64
}

// Option cấu hình Engineer
type Option func(*Engineer)

// WithLandDiscount hệ số chiết khấu áp cho đơn giá đất (ví dụ 0.98)
func WithLandDiscount(d float64) Option {
	return func(e *Engineer) {
		if d > 0 {
			e.landDiscount = d
		}
	}
}

// WithEstimateFactor hệ số giá ước tính so với giá rao bán
func WithEstimateFactor(f float64) Option {
	return func(e *Engineer) {
		if f > 0 {
			e.estimateFactor = f
		}
	}
}

// NewEngineer tạo mới Engineer
func NewEngineer(opts ...Option) *Engineer {
	e := &Engineer{
		estimateFactor: DefaultEstimateFactor,
		landDiscount:   DefaultLandDiscount,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engineer) String() string {
	return fmt.Sprintf("estimate=%g,land=%g", e.estimateFactor, e.landDiscount)
}

// Engineer tính toàn bộ đặc trưng của một bản ghi
func (e *Engineer) Engineer(a models.ExtractedAttributes) models.EngineeredFeatures {
	return models.EngineeredFeatures{
		EstimatedPrice:    e.EstimatedPrice(a.Price),
		LocationTier:      LocationTier(a.DistanceToMainRoad, a.AlleyWidth),
		BusinessAdvantage: BusinessAdvantage(a),
		LandUnitPrice:     e.LandUnitPrice(a),
		FloorArea:         FloorArea(a.LandArea, a.NumFloors),
	}
}

// LocationTier nil khi thiếu khoảng cách; 0m là VT1; còn lại phân theo độ rộng ngõ
func LocationTier(distance, alley *float64) *string {
	if distance == nil {
		return nil
	}
	var tier string
	switch {
	case *distance == 0:
		tier = models.TierVT1
	case alley == nil:
		return nil
	case *alley >= WideAlley:
		tier = models.TierVT2
	case *alley >= NarrowAlley:
		tier = models.TierVT3
	default:
		tier = models.TierVT4
	}
	return &tier
}

// isUrbanDistrict quận nội thành; thành phố, thị xã, huyện đều tính là ngoại thành
func isUrbanDistrict(district *string) bool {
	return district != nil && strings.Contains(strings.ToLower(*district), "quận")
}

// BusinessAdvantage bảng quyết định theo vị trí và loại quận/huyện, mặc định Kém
func BusinessAdvantage(a models.ExtractedAttributes) string {
	tier := LocationTier(a.DistanceToMainRoad, a.AlleyWidth)
	if tier == nil || a.District == nil {
		return models.AdvantagePoor
	}
	urban := isUrbanDistrict(a.District)

	switch {
	case (*tier == models.TierVT1 || *tier == models.TierVT2) && urban:
		return models.AdvantageGood
	case *tier == models.TierVT1:
		return models.AdvantageFair
	case *tier == models.TierVT2 || *tier == models.TierVT3:
		return models.AdvantageAverage
	}
	return models.AdvantagePoor
}

// EstimatedPrice giá rao bán × hệ số
func (e *Engineer) EstimatedPrice(price *float64) *float64 {
	if price == nil {
		return nil
	}
	return models.FloatPtr(numeric.Round2(*price * e.estimateFactor))
}

// FloorArea diện tích đất × số tầng
func FloorArea(area *float64, floors *int) *float64 {
	if area == nil || floors == nil || *area <= 0 || *floors <= 0 {
		return nil
	}
	return models.FloatPtr(numeric.Round2(*area * float64(*floors)))
}

// LandUnitPrice đơn giá đất = (giá - giá trị công trình) / diện tích × chiết khấu.
// Giá trị công trình = đơn giá xây dựng × diện tích sàn × chất lượng còn lại;
// khi giá trị công trình >= giá, toàn bộ giá được tính cho đất.
func (e *Engineer) LandUnitPrice(a models.ExtractedAttributes) *float64 {
	if a.Price == nil || a.ConstructionCost == nil || a.RemainingQuality == nil {
		return nil
	}
	floorArea := FloorArea(a.LandArea, a.NumFloors)
	if floorArea == nil {
		return nil
	}
	area := *a.LandArea
	building := *a.ConstructionCost * *floorArea * *a.RemainingQuality
	if building >= *a.Price {
		return models.FloatPtr(numeric.Round2(*a.Price / area))
	}
	return models.FloatPtr(numeric.Round2((*a.Price - building) / area * e.landDiscount))
}
