package pipeline

import (
	"regexp"
	"strings"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/normalizer"
)

// Lý do loại tin trước khi làm sạch
const (
	ReasonMissingURL   = "missing_url"
	ReasonDuplicateURL = "duplicate_url"
	ReasonMultiUnit    = "multi_unit"
	ReasonRental       = "rental"
)

var (
	// "bán 3 căn", "bán hai lô liền kề", "nhiều căn", "cả dãy"
	multiUnitPattern = regexp.MustCompile(
		`(?:^|[^\p{L}])(?:(?:bán|còn)\s+(?:\d+|hai|ba|bốn|năm|sáu|mấy)\s+(?:căn|lô|nền|nhà|suất)|nhiều\s+(?:căn|lô|nền|suất)|cả\s+dãy|dãy\s+nhà|cụm\s+\d+\s+căn)(?:$|[^\p{L}])`)
	// tiêu đề mở đầu bằng "cho thuê"; tin bán có câu "có thể cho thuê" vẫn được giữ
	rentalPattern = regexp.MustCompile(`^(?:cho|cần)\s+thuê(?:$|[^\p{L}])`)
)

// Dropped tin bị loại kèm lý do
type Dropped struct {
	Index   int
	Listing models.RawListing
	Reason  string
}

// FilterMixed loại tin thiếu URL, trùng URL (giữ tin đầu tiên) và tin có tiêu đề rao nhiều
// bất động sản hoặc cho thuê. Thứ tự tin được giữ nguyên.
func FilterMixed(listings []models.RawListing) ([]models.RawListing, []Dropped) {
	kept := make([]models.RawListing, 0, len(listings))
	var dropped []Dropped
	seen := make(map[string]struct{}, len(listings))

	for i, l := range listings {
		reason := mixedReason(l, seen)
		if reason != "" {
			dropped = append(dropped, Dropped{Index: i, Listing: l, Reason: reason})
			continue
		}
		kept = append(kept, l)
	}
	return kept, dropped
}

func mixedReason(l models.RawListing, seen map[string]struct{}) string {
	url := strings.TrimSpace(l.URL)
	if url == "" {
		return ReasonMissingURL
	}
	if _, ok := seen[url]; ok {
		return ReasonDuplicateURL
	}
	seen[url] = struct{}{}

	title := normalizer.Canonical(l.Title)
	switch {
	case rentalPattern.MatchString(title):
		return ReasonRental
	case multiUnitPattern.MatchString(title):
		return ReasonMultiUnit
	}
	return ""
}
