package extractor

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/matcher"
	"github.com/listing-cleaner/internal/numeric"
)

// Ngưỡng hợp lệ cho độ rộng ngõ và khoảng cách tới đường chính
const (
	maxAlleyWidth = 15
	maxDistance   = 1000
)

const (
	alleyKeyword = `(?:ngõ|hẻm|ngách|kiệt|đường\s+vào|lối\s+vào|trước\s+nhà)`
	alleyValue   = `(\d{1,2}(?:[.,]\d{1,2})?)\s*(?:m|mét)`
	alleyNumber  = alleyValue + `(?:$|[^²\p{L}\p{N}])`
	roadKeyword  = `(?:mặt\s+phố|mặt\s+đường|trục\s+chính|đường\s+lớn|đường\s+chính|(?:đường|phố)(?:\s+[\p{L}\p{N}/]+){1,4}?)`
	distNumber   = `(\d{1,3}(?:[.,]\d{1,2})?)\s*(km|mét|m)`
)

var (
	nearMainRoad = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|[^\p{L}])(?:cách|ra|gần|view|hướng\s+ra|đi\s+ra|sát|kế|kề|bên\s+cạnh)\s+mặt\s+(?:phố|đường|tiền)`),
		regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:m|mét)\s*(?:tới|ra|đến|cách)\s+(?:mặt\s+)?(?:phố|đường)`),
		regexp.MustCompile(`(?:^|[^\p{L}])(?:gần|kế|bên\s+cạnh|kề|sát)\s+(?:phố|đường)(?:$|[^\p{L}])`),
		regexp.MustCompile(`(?:^|[^\p{L}])(?:cách|ra|tới|đến)\s+(?:phố|đường|mặt\s+(?:phố|đường|tiền))[\p{L}\s]{0,30}?\d+(?:[.,]\d+)?\s*(?:m|mét)(?:$|[^²\p{L}\p{N}])`),
	}
	onMainRoad = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|[^\p{L}])mặt\s+(?:phố|đường)(?:$|[^\p{L}])`),
		regexp.MustCompile(`(?:^|[^\p{L}])trên\s+(?:phố|đường)(?:$|[^\p{L}])`),
		regexp.MustCompile(`(?:nằm|tọa\s+lạc|toạ\s+lạc|ở)\s+(?:trên|tại)\s+trục\s+(?:đường|phố)\s+(?:chính|lớn)`),
	}
	// "mặt tiền 4m" là kích thước, không phải vị trí
	frontage = regexp.MustCompile(`(?:^|[^\p{L}])mặt\s+tiền(\s*(?::|rộng|ngang|khoảng)?\s*\d)?`)

	alleyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|[^\p{L}])` + alleyKeyword + `\s*:?\s*` + alleyNumber),
		regexp.MustCompile(`(?:^|[^\p{N}.,])` + alleyValue + `\s*` + alleyKeyword),
		regexp.MustCompile(`(?:^|[^\p{L}])` + alleyKeyword + `[^.,;:\n\d]{0,20}?` + alleyNumber),
	}
	distancePatterns = []*regexp.Regexp{
		regexp.MustCompile(roadKeyword + `[^.\n;]{0,30}?(?:cách|khoảng)\s*` + distNumber),
		regexp.MustCompile(`(?:cách|khoảng)\s*` + distNumber + `\s*(?:ra|tới|đến|là)?\s*` + roadKeyword),
		regexp.MustCompile(distNumber + `\s*(?:đến|tới|ra|cách)\s*` + roadKeyword),
		regexp.MustCompile(`(?:cách|ra|tới|đến)\s+` + roadKeyword + `\s*(?:chỉ\s+|khoảng\s+|tầm\s+)?` + distNumber),
	}
)

// IsOnMainRoad nhà nằm mặt đường chính. Các cụm "gần/cách mặt phố" được xét trước và luôn cho false.
func (e *Extractor) IsOnMainRoad(text string) bool {
	for _, re := range nearMainRoad {
		if re.MatchString(text) {
			return false
		}
	}
	for _, re := range onMainRoad {
		if re.MatchString(text) {
			return true
		}
	}
	for _, m := range frontage.FindAllStringSubmatch(text, -1) {
		if m[1] == "" {
			return true
		}
	}
	return false
}

// AlleyWidth độ rộng ngõ nhỏ nhất (m), 0 nếu mặt đường
func (e *Extractor) AlleyWidth(in *Input) *float64 {
	return e.alleyWidth(in, e.IsOnMainRoad(in.Text))
}

func (e *Extractor) alleyWidth(in *Input, onRoad bool) *float64 {
	if onRoad {
		return models.FloatPtr(0)
	}
	return ResolvePtr(in,
		FromOtherInfo("Đường vào", inRange(numeric.ParseWidth, maxAlleyWidth)),
		alleyWidthFromText,
		func(in *Input) (float64, bool) { return e.rules.AlleyWidths.Lookup(in.Doc) },
	)
}

// alleyWidthFromText lấy giá trị nhỏ nhất trong các cụm "ngõ 3m", "3m ngõ", "hẻm xe hơi 5m"
func alleyWidthFromText(in *Input) (float64, bool) {
	best, found := 0.0, false
	for _, re := range alleyPatterns {
		for _, m := range re.FindAllStringSubmatch(in.Text, -1) {
			v, ok := numeric.ParseWidth(m[1])
			if !ok || v <= 0 || v >= maxAlleyWidth {
				continue
			}
			if !found || v < best {
				best, found = v, true
			}
		}
	}
	return best, found
}

// DistanceToMainRoad khoảng cách tới đường chính (m), 0 nếu mặt đường. imputed = true
// khi giá trị đến từ DistanceFallback.
func (e *Extractor) DistanceToMainRoad(in *Input) (d *float64, imputed bool) {
	return e.distanceToMainRoad(in, e.IsOnMainRoad(in.Text))
}

func (e *Extractor) distanceToMainRoad(in *Input, onRoad bool) (*float64, bool) {
	if onRoad {
		return models.FloatPtr(0), false
	}
	if d := ResolvePtr(in,
		e.distanceFromText,
		func(in *Input) (float64, bool) { return e.rules.DistancePhrases.Lookup(in.Doc) },
	); d != nil {
		return d, false
	}
	if d := e.fallback.Estimate(in); d != nil {
		return d, true
	}
	return nil, false
}

// distanceFromText lấy khoảng cách nhỏ nhất trong (0, 1000) m; câu nhắc tới chợ, trường... bị bỏ qua
func (e *Extractor) distanceFromText(in *Input) (float64, bool) {
	best, found := 0.0, false
	for _, re := range distancePatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(in.Text, -1) {
			if !unitBoundary(in.Text[loc[5]:]) {
				continue
			}
			match := in.Text[loc[0]:loc[1]]
			if matcher.NewDocument(match).ContainsAny(e.rules.Landmarks) {
				continue
			}
			v, ok := numeric.ParseDistance(in.Text[loc[2]:loc[3]], in.Text[loc[4]:loc[5]])
			if !ok || v <= 0 || v >= maxDistance {
				continue
			}
			if !found || v < best {
				best, found = v, true
			}
		}
	}
	return best, found
}

// unitBoundary đơn vị đo đứng riêng: "30m" nhưng không phải "30m²", "3 mẫu"
func unitBoundary(rest string) bool {
	r, size := utf8.DecodeRuneInString(rest)
	if size == 0 {
		return true
	}
	return r != '²' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// DistanceFallback chính sách ước lượng khoảng cách khi tin đăng không có tín hiệu nào
type DistanceFallback interface {
	Estimate(in *Input) *float64
}

// NoFallback để trống khoảng cách
type NoFallback struct{}

// Estimate implements DistanceFallback
func (NoFallback) Estimate(*Input) *float64 { return nil }

func (NoFallback) String() string { return "none" }

// RandomFallback sinh khoảng cách ngẫu nhiên trong [Min, Max]. Giá trị của mỗi tin
// chỉ phụ thuộc seed và URL nên không đổi theo thứ tự xử lý giữa các worker.
type RandomFallback struct {
	seed int64
	Min  float64
	Max  float64
}

// NewRandomFallback tạo mới RandomFallback
func NewRandomFallback(seed int64, lo, hi float64) *RandomFallback {
	if hi < lo {
		lo, hi = hi, lo
	}
	return &RandomFallback{seed: seed, Min: lo, Max: hi}
}

// Estimate implements DistanceFallback
func (f *RandomFallback) Estimate(in *Input) *float64 {
	h := fnv.New64a()
	if in != nil && in.Raw != nil {
		_, _ = h.Write([]byte(in.Raw.URL))
	}
	rnd := rand.New(rand.NewSource(f.seed ^ int64(h.Sum64())))
	v := f.Min + rnd.Float64()*(f.Max-f.Min)
	return models.FloatPtr(numeric.Round2(v))
}

func (f *RandomFallback) String() string {
	return fmt.Sprintf("random:%d:%g:%g", f.seed, f.Min, f.Max)
}
