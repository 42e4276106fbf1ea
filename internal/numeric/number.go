// Package numeric đọc số, diện tích, độ rộng và giá tiền từ văn bản tin đăng
// theo quy ước tiếng Việt: "." ngăn cách hàng nghìn, "," là dấu thập phân.
package numeric

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// widthIntegerThreshold: kết quả lớn hơn ngưỡng này mà chỉ có dấu phẩy thì coi
// dấu phẩy là ngăn cách hàng nghìn ("1,234" → 1234)
const widthIntegerThreshold = 20

var numberToken = regexp.MustCompile(`\d[\d.,]*`)

// firstToken trả về cụm số đầu tiên, bỏ dấu ngăn cách thừa ở cuối ("50m." → "50")
func firstToken(text string) (string, bool) {
	tok := numberToken.FindString(text)
	if tok == "" {
		return "", false
	}
	return strings.TrimRight(tok, ".,"), true
}

// Round2 làm tròn 2 chữ số thập phân
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// parseVN đọc cụm số theo quy ước Việt Nam
func parseVN(tok string) (float64, bool) {
	cleaned := strings.ReplaceAll(tok, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseNumber đọc số đầu tiên trong text ("1.234,5 m²" → 1234.5, "3,5" → 3.5)
func ParseNumber(text string) (float64, bool) {
	tok, ok := firstToken(text)
	if !ok {
		return 0, false
	}
	v, ok := parseVN(tok)
	if !ok {
		return 0, false
	}
	return Round2(v), true
}

// ParseWidth đọc số cho độ rộng/chiều dài, nơi "4.5m" và "4,5m" đều là 4.5
func ParseWidth(text string) (float64, bool) {
	tok, ok := firstToken(text)
	if !ok {
		return 0, false
	}

	hasComma := strings.Contains(tok, ",")
	hasDot := strings.Contains(tok, ".")

	var cleaned string
	switch {
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(tok, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		cleaned = strings.ReplaceAll(tok, ",", ".")
	default:
		cleaned = tok
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	// "5,5m" là 5.5 nhưng "1,234" là 1234
	if v > widthIntegerThreshold && hasComma && !hasDot {
		v, err = strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
		if err != nil {
			return 0, false
		}
	}
	return Round2(v), true
}

// ParseDistance đổi cặp (số, đơn vị) sang mét; đơn vị trống được hiểu là mét
func ParseDistance(num, unit string) (float64, bool) {
	v, ok := ParseWidth(num)
	if !ok {
		return 0, false
	}
	if strings.EqualFold(strings.TrimSpace(unit), "km") {
		v *= 1000
	}
	return Round2(v), true
}
