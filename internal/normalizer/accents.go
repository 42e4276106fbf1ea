package normalizer

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// oldToneReplacer đưa cách bỏ dấu kiểu cũ (hoà, thuý) về kiểu mới (hòa, thúy)
var oldToneReplacer = strings.NewReplacer(
	"oà", "òa", "oá", "óa", "oả", "ỏa", "oã", "õa", "oạ", "ọa",
	"oè", "òe", "oé", "óe", "oẻ", "ỏe", "oẽ", "õe", "oẹ", "ọe",
	"uỳ", "ùy", "uý", "úy", "uỷ", "ủy", "uỹ", "ũy", "uỵ", "ụy",
)

// StripDiacritics loại bỏ dấu tiếng Việt một cách an toàn
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	// đ/Đ không phải dấu kết hợp nên NFD không tách được
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
}

// isMn kiểm tra xem rune có phải là diacritic mark không
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// RemoveAccentsAndLowercase loại bỏ dấu và chuyển về lowercase
func RemoveAccentsAndLowercase(s string) string {
	return strings.ToLower(StripDiacritics(s))
}

// ToASCII chuyển chuỗi bất kỳ về ASCII (dùng cho index và cache key)
func ToASCII(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// Canonical đưa văn bản về NFC, lowercase, dấu kiểu mới và gộp khoảng trắng.
// Xuống dòng được giữ lại vì là ranh giới câu.
func Canonical(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = oldToneReplacer.Replace(s)

	lines := strings.Split(strings.ReplaceAll(s, "\r", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// FoldKey tạo khóa tra cứu cho tên địa danh: Canonical và bỏ dấu chấm câu thừa
func FoldKey(s string) string {
	s = Canonical(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '-', '_', '(', ')':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
