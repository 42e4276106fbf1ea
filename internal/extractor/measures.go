package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/listing-cleaner/internal/numeric"
)

// Giới hạn hợp lý cho kích thước lô đất (m)
const (
	maxFacadeWidth = 100
	maxLandLength  = 200
)

var (
	areaInText      = regexp.MustCompile(`(?:^|[^\p{L}])(?:diện\s+tích|dt)(?:\s+đất|\s+sử\s+dụng|\s+sàn)?\s*:?\s*(?:khoảng\s+|tầm\s+|gần\s+)?(\d[\d.,]*)\s*m(?:²|2)`)
	priceInText     = regexp.MustCompile(`(?:^|[^\p{L}])giá(?:\s+bán|\s+chào)?\s*:?\s*(?:chỉ\s+|khoảng\s+|tầm\s+|nhỉnh\s+)?(\d[\d.,]*\s*(?:tỷ|tỉ|triệu|tr)(?:\s*\d[\d.,]*\s*(?:triệu|tr))?)(\s*/\s*m)?`)
	unitPriceInText = regexp.MustCompile(`\d[\d.,]*\s*(?:tỷ|tỉ|triệu|tr|nghìn|ngàn|k)?\s*/\s*m(?:²|2)`)
	widthInText     = regexp.MustCompile(`(?:^|[^\p{L}])(mặt\s+tiền|mt|chiều\s+rộng|chiều\s+ngang|rộng|ngang)\s*:?\s*(?:khoảng\s+|gần\s+)?(\d[\d.,]*)\s*(?:m|mét)?(?:$|[^\p{L}\p{N}²])`)
	lengthInText    = regexp.MustCompile(`(?:^|[^\p{L}])(chiều\s+dài|dài|sâu)\s*:?\s*(?:khoảng\s+|gần\s+)?(\d[\d.,]*)\s*(?:m|mét)?(?:$|[^\p{L}\p{N}²])`)
	dimensionPair   = regexp.MustCompile(`(\d[\d.,]*)\s*(?:m|mét)?\s*[x×*]\s*(\d[\d.,]*)`)
)

// Danh từ đứng trước "rộng"/"dài" cho biết đó là kích thước ngõ/đường chứ không phải lô đất
var roadNouns = map[string]struct{}{
	"ngõ": {}, "hẻm": {}, "đường": {}, "lối": {}, "sân": {}, "ngách": {}, "kiệt": {}, "vào": {},
}

// TotalArea diện tích đất (m²): main_info → other_info → "diện tích ... m²" trong văn bản
func (e *Extractor) TotalArea(in *Input) *float64 {
	return ResolvePtr(in,
		FromMainInfo("Diện tích", positive(numeric.ParseNumber)),
		FromOtherInfo("Diện tích", positive(numeric.ParseNumber)),
		FromText(areaFromText),
	)
}

func areaFromText(text string) (float64, bool) {
	m := areaInText.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return positive(numeric.ParseNumber)(m[1])
}

// Price tổng giá (VND). Giá theo m² được nhân với diện tích đất nếu có.
func (e *Extractor) Price(in *Input, area *float64) *float64 {
	return ResolvePtr(in,
		FromMainInfo("Mức giá", priceParser(area)),
		FromOtherInfo("Mức giá", priceParser(area)),
		FromText(func(text string) (float64, bool) {
			if area == nil {
				return 0, false
			}
			m := unitPriceInText.FindString(text)
			if m == "" {
				return 0, false
			}
			return priceParser(area)(m)
		}),
		FromText(priceFromText),
	)
}

func priceParser(area *float64) func(string) (float64, bool) {
	return func(s string) (float64, bool) {
		if v, ok := numeric.ParsePrice(s); ok && v > 0 {
			return v, true
		}
		if area == nil || *area <= 0 {
			return 0, false
		}
		if unit, ok := numeric.ParseUnitPrice(s); ok && unit > 0 {
			return numeric.Round2(unit * *area), true
		}
		return 0, false
	}
}

func priceFromText(text string) (float64, bool) {
	for _, m := range priceInText.FindAllStringSubmatch(text, -1) {
		// "giá 85 triệu/m²" là đơn giá, không phải tổng giá
		if m[2] != "" {
			continue
		}
		if v, ok := numeric.ParsePrice(m[1]); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// Dimensions trả về (mặt tiền, chiều dài). Cặp "A x B" bổ sung phần còn thiếu:
// đã biết mặt tiền thì số xa mặt tiền hơn là chiều dài, nếu không thì số nhỏ là mặt tiền.
func (e *Extractor) Dimensions(in *Input) (width, length *float64) {
	width = e.FacadeWidth(in)
	length = e.LandLength(in)
	if width != nil && length != nil {
		return width, length
	}
	a, b, ok := pairFromText(in)
	if !ok {
		return width, length
	}
	switch {
	case width != nil:
		v := farther(*width, a, b)
		length = &v
	case length != nil:
		v := farther(*length, a, b)
		width = &v
	default:
		w, l := min(a, b), max(a, b)
		width, length = &w, &l
	}
	return width, length
}

func farther(ref, a, b float64) float64 {
	da, db := a-ref, b-ref
	if da < 0 {
		da = -da
	}
	if db < 0 {
		db = -db
	}
	if db > da {
		return b
	}
	return a
}

// FacadeWidth mặt tiền (m): other_info "Mặt tiền" → ext của "Diện tích" → từ khóa + số
func (e *Extractor) FacadeWidth(in *Input) *float64 {
	return ResolvePtr(in,
		FromOtherInfo("Mặt tiền", inRange(numeric.ParseWidth, maxFacadeWidth)),
		FromMainInfoExt("Diện tích", func(s string) (float64, bool) {
			a, b, ok := parsePair(s)
			return min(a, b), ok
		}),
		FromText(func(text string) (float64, bool) {
			return keywordMeasure(widthInText, text, maxFacadeWidth)
		}),
	)
}

// LandLength chiều dài (m): other_info "Chiều dài" → ext của "Diện tích" → từ khóa + số
func (e *Extractor) LandLength(in *Input) *float64 {
	return ResolvePtr(in,
		FromOtherInfo("Chiều dài", inRange(numeric.ParseWidth, maxLandLength)),
		FromMainInfoExt("Diện tích", func(s string) (float64, bool) {
			a, b, ok := parsePair(s)
			return max(a, b), ok
		}),
		FromText(func(text string) (float64, bool) {
			return keywordMeasure(lengthInText, text, maxLandLength)
		}),
	)
}

func inRange(parse func(string) (float64, bool), limit float64) func(string) (float64, bool) {
	return func(s string) (float64, bool) {
		v, ok := parse(s)
		if !ok || v <= 0 || v > limit {
			return 0, false
		}
		return v, true
	}
}

// keywordMeasure tìm "<từ khóa> <số>", bỏ qua khi từ khóa đứng sau danh từ chỉ ngõ/đường ("ngõ rộng 3m")
func keywordMeasure(re *regexp.Regexp, text string, limit float64) (float64, bool) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if precededByRoadNoun(text[:loc[2]]) {
			continue
		}
		if v, ok := inRange(numeric.ParseWidth, limit)(text[loc[4]:loc[5]]); ok {
			return v, true
		}
	}
	return 0, false
}

func precededByRoadNoun(before string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimRight(fields[len(fields)-1], ",:")
	_, ok := roadNouns[last]
	return ok
}

func parsePair(s string) (float64, float64, bool) {
	m := dimensionPair.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, 0, false
	}
	a, okA := inRange(numeric.ParseWidth, maxLandLength)(m[1])
	b, okB := inRange(numeric.ParseWidth, maxLandLength)(m[2])
	if !okA || !okB {
		return 0, 0, false
	}
	return a, b, true
}

func pairFromText(in *Input) (float64, float64, bool) {
	for _, text := range []string{in.Description, in.Title} {
		if a, b, ok := parsePair(text); ok {
			return a, b, true
		}
	}
	return 0, 0, false
}

// FacadeCount số mặt tiền tiếp giáp: other_info "Số mặt tiền" → bảng regex → mặc định
func (e *Extractor) FacadeCount(in *Input) int {
	n, _ := Resolve(in,
		FromOtherInfo("Số mặt tiền", func(s string) (int, bool) {
			v, err := strconv.Atoi(strings.TrimSpace(s))
			return v, err == nil && v > 0
		}),
		func(in *Input) (int, bool) { return e.rules.FacadeCount.FirstMatch(in.Text) },
		Default(e.rules.DefaultFacades),
	)
	return n
}
