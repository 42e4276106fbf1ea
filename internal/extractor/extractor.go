// Package extractor trích xuất thuộc tính bất động sản từ tin đăng thô.
// Mỗi trường có một chuỗi nguồn theo thứ tự ưu tiên: main_info/other_info,
// văn bản tự do, địa chỉ ngắn, giá trị mặc định. Không hàm nào trả lỗi: thiếu
// hoặc hỏng dữ liệu đều cho kết quả nil.
package extractor

import (
	"strings"

	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/matcher"
	"github.com/listing-cleaner/internal/normalizer"
	"github.com/listing-cleaner/internal/numeric"
)

// Extractor trích xuất thuộc tính từ tin đăng. An toàn khi dùng chung giữa các goroutine.
type Extractor struct {
	rules    *matcher.Rules
	text     *normalizer.TextNormalizer
	fallback DistanceFallback
	logger   *zap.Logger
}

// Option cấu hình Extractor
type Option func(*Extractor)

// WithDistanceFallback đặt chính sách ước lượng khoảng cách khi không có tín hiệu nào
func WithDistanceFallback(f DistanceFallback) Option {
	return func(e *Extractor) {
		if f != nil {
			e.fallback = f
		}
	}
}

// NewExtractor tạo mới Extractor
func NewExtractor(rules *matcher.Rules, logger *zap.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		rules:    rules,
		text:     normalizer.NewTextNormalizer(),
		fallback: NoFallback{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules trả về bảng luật đang dùng
func (e *Extractor) Rules() *matcher.Rules {
	return e.rules
}

// Fallback trả về chính sách ước lượng khoảng cách đang dùng
func (e *Extractor) Fallback() DistanceFallback {
	return e.fallback
}

// Input là tin đăng kèm văn bản đã chuẩn hóa, tạo một lần và dùng cho mọi trường
type Input struct {
	Raw         *models.RawListing
	Title       string
	Description string
	Text        string // Title + "\n" + Description
	Doc         *matcher.Document
	ShortParts  []string
}

// NewInput chuẩn hóa văn bản của tin đăng (bỏ thông tin liên hệ, NFC, lowercase)
func (e *Extractor) NewInput(l *models.RawListing) *Input {
	if l == nil {
		l = &models.RawListing{}
	}
	lt := e.text.Normalize(l.Title, l.Description)
	in := &Input{
		Raw:         l,
		Title:       lt.Title,
		Description: lt.Description,
		Text:        lt.Combined,
		Doc:         matcher.NewDocument(lt.Combined),
	}
	for _, p := range strings.Split(l.ShortAddress, ",") {
		if p = strings.TrimSpace(p); p != "" {
			in.ShortParts = append(in.ShortParts, p)
		}
	}
	return in
}

// Extract trích xuất toàn bộ thuộc tính của một tin đăng
func (e *Extractor) Extract(l *models.RawListing) models.ExtractedAttributes {
	in := e.NewInput(l)
	a := models.ExtractedAttributes{
		URL:       models.StrPtr(in.Raw.URL),
		Province:  e.City(in),
		District:  e.District(in),
		Ward:      e.Ward(in),
		Street:    e.Street(in),
		Latitude:  in.Raw.Latitude,
		Longitude: in.Raw.Longitude,
		ImageURLs: in.Raw.ImageURLs,
	}
	a.AddressDetail = models.StrPtr(e.AddressDetail(in, a.Street))
	a.PublishedDate = e.PublishedDate(in)

	a.LandArea = e.TotalArea(in)
	a.Price = e.Price(in, a.LandArea)
	a.FacadeWidth, a.LandLength = e.Dimensions(in)
	a.FacadeCount = models.IntPtr(e.FacadeCount(in))
	a.LandShape = models.StrPtr(e.LandShape(in))

	floors := e.NumFloors(in)
	a.NumFloors = models.IntPtr(floors)
	if a.LandArea != nil {
		a.FloorArea = models.FloatPtr(numeric.Round2(*a.LandArea * float64(floors)))
	}

	onRoad := e.IsOnMainRoad(in.Text)
	a.AlleyWidth = e.alleyWidth(in, onRoad)
	a.DistanceToMainRoad, a.DistanceImputed = e.distanceToMainRoad(in, onRoad)

	a.RemainingQuality = models.FloatPtr(e.RemainingQuality(in))
	if cost, ok := e.ConstructionCost(in, floors); ok {
		a.ConstructionCost = models.FloatPtr(cost)
	}
	a.OtherFeatures = e.DirectFeatures(in)

	e.logger.Debug("Extracted listing",
		zap.String("url", in.Raw.URL),
		zap.Intp("floors", a.NumFloors),
		zap.Float64p("alley_width", a.AlleyWidth),
		zap.Float64p("distance", a.DistanceToMainRoad),
		zap.Float64p("quality", a.RemainingQuality))
	return a
}
