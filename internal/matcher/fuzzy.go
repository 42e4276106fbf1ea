package matcher

import (
	"math"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// Scorer chấm điểm tương đồng 0-100 giữa hai chuỗi
type Scorer func(a, b string) int

// Ratio tính điểm tương đồng 0-100 dựa trên khoảng cách Levenshtein theo rune
func Ratio(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(maxLen))))
}

// PartialRatio là Ratio tốt nhất giữa chuỗi ngắn và mọi cửa sổ cùng độ dài của chuỗi dài
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	s := string(short)
	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		score := Ratio(s, string(long[i:i+len(short)]))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Similarity là điểm Jaro-Winkler (0..1), dùng để phân định khi Ratio bằng nhau
func Similarity(a, b string) float64 {
	return smetrics.JaroWinkler(a, b, 0.7, 4)
}
