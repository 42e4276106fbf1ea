package numeric

import (
	"regexp"
	"strings"
)

// Hệ số quy đổi đơn vị giá
const (
	Billion  = 1e9
	Million  = 1e6
	Thousand = 1e3
)

var (
	// "3 tỷ 500 triệu", "2,5 tỷ", "850 tr"
	priceAmount = regexp.MustCompile(`(\d[\d.,]*)\s*(tỷ|tỉ|triệu|tr|nghìn|ngàn|k)?(?:$|[^\p{L}])`)
	// "85 triệu/m²", "85 tr/m2"
	unitPrice   = regexp.MustCompile(`(\d[\d.,]*)\s*(tỷ|tỉ|triệu|tr|nghìn|ngàn|k)?\s*/\s*m(?:²|2)`)
	perAreaMark = regexp.MustCompile(`/\s*m(?:²|2)`)
)

var negotiableMarkers = []string{"thỏa thuận", "thoả thuận", "liên hệ", "thương lượng"}

func scaleOf(word string) float64 {
	switch word {
	case "tỷ", "tỉ":
		return Billion
	case "triệu", "tr":
		return Million
	case "nghìn", "ngàn", "k":
		return Thousand
	}
	return 1
}

// IsNegotiable cho biết giá là "thỏa thuận"/"liên hệ"
func IsNegotiable(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range negotiableMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ParsePrice đọc tổng giá (VND) từ chuỗi như "3,2 tỷ" hoặc "3 tỷ 500 triệu".
// Giá thỏa thuận và giá theo m² trả về false.
func ParsePrice(text string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" || IsNegotiable(lower) || perAreaMark.MatchString(lower) {
		return 0, false
	}

	matches := priceAmount.FindAllStringSubmatch(lower, -1)
	if len(matches) == 0 {
		return 0, false
	}

	total := 0.0
	lastScale := 0.0
	for i, m := range matches {
		v, ok := parseVN(strings.TrimRight(m[1], ".,"))
		if !ok {
			if i == 0 {
				return 0, false
			}
			break
		}
		scale := scaleOf(m[2])
		// chỉ cộng dồn khi đơn vị giảm dần: "3 tỷ 500 triệu"
		if i > 0 && (m[2] == "" || scale >= lastScale) {
			break
		}
		total += v * scale
		lastScale = scale
		if m[2] == "" {
			break
		}
	}
	return Round2(total), true
}

// ParseUnitPrice đọc đơn giá theo m² (VND/m²) từ chuỗi như "85 triệu/m²"
func ParseUnitPrice(text string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" || IsNegotiable(lower) {
		return 0, false
	}
	m := unitPrice.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	v, ok := parseVN(strings.TrimRight(m[1], ".,"))
	if !ok {
		return 0, false
	}
	return Round2(v * scaleOf(m[2])), true
}
