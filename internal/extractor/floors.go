package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/listing-cleaner/internal/matcher"
)

const (
	minFloors     = 1
	maxFloors     = 20
	defaultFloors = 1
)

var (
	// "xin phép xây 7 tầng", "cải tạo lên 5 tầng": số tầng tương lai, không phải hiện trạng
	permitSpan     = regexp.MustCompile(`(?:xin\s+phép\s+xây|cải\s+tạo\s+lên|xây\s+lên|nâng\s+tầng\s+lên|giấy\s+phép\s+xây\s+dựng|được\s+phép\s+xây|gpxd)[^.\n;,]{0,25}`)
	explicitFloors = regexp.MustCompile(`(?:gồm|tổng\s+cộng|có\s+tất\s+cả)\s*:?\s*(\d{1,2})\s*(?:tầng|lầu|tấm|mê)(?:$|[^\p{L}])`)
	floorCandidate = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(\d{1,2}|một|hai|ba|bốn|năm|sáu|bảy|bẩy|tám|chín|mười)\s*(tầng|lầu|tấm|mê)(?:$|[^\p{L}])`)
	groundFloor    = regexp.MustCompile(`(?:^|[^\p{L}])(?:(\d)\s*)?trệt(?:$|[^\p{L}])`)
	mezzanineCount = regexp.MustCompile(`(?:^|[^\p{L}])(?:(\d)\s*)?(?:gác\s+)?lửng(?:$|[^\p{L}])`)
)

var wordNumbers = map[string]int{
	"một": 1, "hai": 2, "ba": 3, "bốn": 4, "năm": 5, "sáu": 6,
	"bảy": 7, "bẩy": 7, "tám": 8, "chín": 9, "mười": 10,
}

var (
	mezzaninePhrase = matcher.NewPhrase("lửng")
	rooftopPhrases  = matcher.NewPhrases([]string{"sân thượng", "tum"})
)

// NumFloors số tầng công trình, luôn >= 1
func (e *Extractor) NumFloors(in *Input) int {
	if n, ok := Resolve(in,
		FromOtherInfo("Số tầng", parseFloorCount),
		FromMainInfo("Số tầng", parseFloorCount),
	); ok {
		return n
	}

	text := matcher.Mask(in.Text, permitSpan.FindAllStringIndex(in.Text, -1))
	doc := matcher.NewDocument(text)

	if m := explicitFloors.FindStringSubmatch(text); m != nil {
		if n, ok := parseFloorCount(m[1]); ok {
			return n
		}
	}

	if base, composite, ok := e.floorCandidates(text); ok {
		return base + e.floorModifiers(doc, composite)
	}

	for _, p := range e.rules.SingleStorey {
		for _, span := range doc.Find(p, 0) {
			if !e.rules.Negation.IsNegatedSpan(doc, span, p) {
				return 1
			}
		}
	}
	return defaultFloors
}

func parseFloorCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if v, ok := wordNumbers[s]; ok {
		return v, true
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil || v < minFloors || v > maxFloors {
		return 0, false
	}
	return v, true
}

// floorCandidates trả về số tầng lớn nhất tìm thấy. "1 trệt 2 lầu" được cộng dồn
// thành 3 (composite = true, tầng lửng đã được tính).
func (e *Extractor) floorCandidates(text string) (int, bool, bool) {
	best, bestLau := 0, 0
	for _, m := range floorCandidate.FindAllStringSubmatch(text, -1) {
		n, ok := parseFloorCount(m[1])
		if !ok {
			continue
		}
		best = max(best, n)
		if m[2] == "lầu" {
			bestLau = max(bestLau, n)
		}
	}
	if best == 0 {
		return 0, false, false
	}

	if bestLau > 0 {
		if g := groundFloor.FindStringSubmatch(text); g != nil {
			total := bestLau + countOrOne(g[1])
			if l := mezzanineCount.FindStringSubmatch(text); l != nil {
				total += countOrOne(l[1])
			}
			return min(total, maxFloors), true, true
		}
	}
	return best, false, true
}

func countOrOne(s string) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return 1
}

// floorModifiers cộng thêm tầng hầm, tầng lửng, sân thượng (trừ khi bị phủ định)
func (e *Extractor) floorModifiers(doc *matcher.Document, composite bool) int {
	extra := 0
	if e.hasBasement(doc) {
		extra++
	}
	if !composite && e.hasPhrase(doc, mezzaninePhrase) {
		extra++
	}
	for _, p := range rooftopPhrases {
		if e.hasPhrase(doc, p) {
			extra++
			break
		}
	}
	return extra
}

// hasPhrase kiểm tra cụm từ xuất hiện liền mạch và không bị phủ định
func (e *Extractor) hasPhrase(doc *matcher.Document, p matcher.Phrase) bool {
	for _, span := range doc.Find(p, 0) {
		if !e.rules.Negation.IsNegatedSpan(doc, span, p) {
			return true
		}
	}
	return false
}
