// Package pipeline đọc tin đăng, làm sạch từng dòng, tính đặc trưng và ghi kết quả.
// Lỗi ở một dòng không làm dừng các dòng khác; chỉ lỗi I/O và hủy context làm dừng cả lượt chạy.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/extractor"
	"github.com/listing-cleaner/internal/features"
	"github.com/listing-cleaner/internal/normalizer"
	"github.com/listing-cleaner/internal/standardizer"
)

// Processor làm sạch một tin đăng. Standardizer và Engineer có thể nil.
type Processor struct {
	extractor    *extractor.Extractor
	standardizer *standardizer.Standardizer
	engineer     *features.Engineer
	logger       *zap.Logger
}

// NewProcessor tạo mới Processor
func NewProcessor(ex *extractor.Extractor, std *standardizer.Standardizer, eng *features.Engineer, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		extractor:    ex,
		standardizer: std,
		engineer:     eng,
		logger:       logger,
	}
}

// Version phiên bản của mọi thứ quyết định kết quả làm sạch: bảng luật, chính sách
// ước lượng khoảng cách, dữ liệu tham chiếu và hệ số của Engineer. Dùng làm khóa hiệu lực của cache.
func (p *Processor) Version() string {
	parts := []string{
		p.extractor.Rules().Version,
		"fallback=" + fmt.Sprint(p.extractor.Fallback()),
	}
	if p.standardizer != nil {
		parts = append(parts, p.standardizer.Version())
	}
	if p.engineer != nil {
		parts = append(parts, p.engineer.String())
	}
	return normalizer.Fingerprint(parts...)
}

// Clean làm sạch một tin đăng. Panic trong quá trình trích xuất được chuyển thành dòng bị loại.
func (p *Processor) Clean(l models.RawListing) (res models.CleanResult) {
	res = models.CleanResult{
		Fingerprint: ListingFingerprint(l),
		URL:         l.URL,
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("Listing extraction panicked",
				zap.String("url", l.URL),
				zap.Any("panic", r))
			res.Status = models.StatusDropped
			res.Reason = fmt.Sprintf("extraction failed: %v", r)
			res.Flags = nil
		}
	}()

	a := p.extractor.Extract(&l)
	res.Flags = p.standardize(&a, l.ShortAddress)

	if a.Price == nil {
		res.Flags = append(res.Flags, models.FlagMissingPrice)
	}
	if a.LandArea == nil {
		res.Flags = append(res.Flags, models.FlagMissingArea)
	}
	if a.DistanceImputed {
		res.Flags = append(res.Flags, models.FlagImputedDistance)
	}

	res.Attributes = a
	if p.engineer != nil {
		f := p.engineer.Engineer(a)
		res.Features = &f
	}
	res.Row = models.NewOutputRow(a, res.Features)
	res.Status = models.StatusCleaned
	return res
}

// standardize chuẩn hóa tỉnh/quận/phường tại chỗ và trả về các cờ chất lượng địa chỉ
func (p *Processor) standardize(a *models.ExtractedAttributes, shortAddress string) []string {
	var flags []string
	if a.Province == nil && a.District == nil {
		flags = append(flags, models.FlagMissingLocation)
	}
	if p.standardizer == nil {
		return flags
	}

	loc := p.standardizer.Standardize(standardizer.Location{
		Province:     a.Province,
		District:     a.District,
		Ward:         a.Ward,
		ShortAddress: models.StrPtr(shortAddress),
	})
	if a.District != nil && loc.District == nil {
		flags = append(flags, models.FlagUnmatchedDistrict)
	}
	if (a.Ward != nil || shortAddress != "") && loc.Ward == nil {
		flags = append(flags, models.FlagUnmatchedWard)
	}
	a.Province, a.District, a.Ward = loc.Province, loc.District, loc.Ward
	return flags
}

// Feature tính lại các cột đặc trưng cho một dòng đã làm sạch
func (p *Processor) Feature(row models.OutputRow) models.OutputRow {
	eng := p.engineer
	if eng == nil {
		eng = features.NewEngineer()
	}
	row.ApplyFeatures(eng.Engineer(row.Attributes()))
	return row
}
