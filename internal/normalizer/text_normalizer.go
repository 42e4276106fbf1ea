package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// ListingText là văn bản tin đăng đã chuẩn hóa, sẵn sàng cho các rule trích xuất
type ListingText struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Combined = Title + "\n" + Description (đã chuẩn hóa)
	Combined string `json:"combined"`
}

// TextNormalizer làm sạch mô tả tin đăng: bỏ thông tin liên hệ, chuẩn hóa Unicode
type TextNormalizer struct {
	phonePattern   *regexp.Regexp
	emailPattern   *regexp.Regexp
	urlPattern     *regexp.Regexp
	contactPattern *regexp.Regexp
	maskedPattern  *regexp.Regexp
}

// NewTextNormalizer tạo mới TextNormalizer
func NewTextNormalizer() *TextNormalizer {
	tn := &TextNormalizer{}
	tn.initializePatterns()
	return tn
}

func (tn *TextNormalizer) initializePatterns() {
	// 0912 345 678, 0912.345.678, +84 912345678
	// ký tự trước/sau bị thay cùng bằng khoảng trắng để không cắt vào giữa một số tiền
	tn.phonePattern = regexp.MustCompile(`(?:^|[^\d.,])(?:\+84|84|0)\s?\d{2,3}[\s.\-]?\d{3}[\s.\-]?\d{3,4}(?:$|\D)`)
	tn.emailPattern = regexp.MustCompile(`[\w.+\-]+@[\w\-]+\.[\w.\-]+`)
	tn.urlPattern = regexp.MustCompile(`https?://\S+`)
	// "liên hệ: anh Nam", "zalo: ..." tới hết câu
	tn.contactPattern = regexp.MustCompile(`(?i)(?:liên hệ|lh|zalo|sđt|sdt|hotline|đt)\s*:\s*[^.\n]*`)
	// batdongsan che số điện thoại dạng "0912 345 ***"
	tn.maskedPattern = regexp.MustCompile(`\d[\d\s.]*\*{3,}`)
}

// StripContacts bỏ số điện thoại, email, link và đoạn "liên hệ: ..." khỏi mô tả
func (tn *TextNormalizer) StripContacts(text string) string {
	if text == "" {
		return ""
	}
	text = tn.urlPattern.ReplaceAllString(text, " ")
	text = tn.emailPattern.ReplaceAllString(text, " ")
	text = tn.contactPattern.ReplaceAllString(text, " ")
	text = tn.maskedPattern.ReplaceAllString(text, " ")
	text = tn.phonePattern.ReplaceAllString(text, " ")
	return text
}

// Normalize làm sạch và chuẩn hóa tiêu đề + mô tả của một tin đăng
func (tn *TextNormalizer) Normalize(title, description string) ListingText {
	t := Canonical(title)
	d := Canonical(tn.StripContacts(description))
	combined := strings.TrimSpace(t + "\n" + d)
	return ListingText{Title: t, Description: d, Combined: combined}
}

// Fingerprint tạo khóa ổn định từ các phần đầu vào (dùng làm cache key)
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0x1F})
		}
		h.Write([]byte(ToASCII(p)))
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}
