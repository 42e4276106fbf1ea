package extractor

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCase viết hoa chữ cái đầu mỗi từ; cases.Caser không dùng chung được giữa goroutine
func titleCase(s string) string {
	return cases.Title(language.Vietnamese).String(s)
}

var (
	wardInBreadcrumb   = regexp.MustCompile(`(?i)tại\s+((?:phường|xã|thị\s+trấn)\s+[\p{L}\p{N}\s\-()]+)`)
	streetInPart       = regexp.MustCompile(`(?:^|[^\p{L}])((?:đường|phố)\s+[^\d,]+)`)
	streetInBreadcrumb = regexp.MustCompile(`(?i)tại\s+(đường|phố)\s+([^,]+)`)
	streetInTitle      = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(đường|phố)\s+([\p{L}\p{N}\s\-]+?)(?:,|$|\s-|\(|\n)`)
	onStreetMention    = regexp.MustCompile(`(?:^|[^\p{L}])mặt\s+(?:phố|đường)(?:$|[^\p{L}])`)
	publishedDate      = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

var (
	wardPrefixes      = []string{"phường ", "xã ", "thị trấn "}
	streetPrefixes    = []string{"đường ", "phố "}
	nonStreetPrefixes = []string{"phường", "xã", "dự án", "quận", "huyện", "thị trấn", "số", "thôn", "xóm", "hẻm", "kiệt", "ngõ", "ngách"}
	detailPrefixes    = []string{"số", "ngõ", "ngách", "hẻm", "kiệt", "tổ", "thôn", "xóm", "lô"}
)

// Giá trị mặc định cho Chi tiết địa chỉ
const (
	DetailOnStreet = "Mặt phố"
	DetailInAlley  = "Mặt ngõ"
)

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

func breadcrumb(in *Input, idx int) (string, bool) {
	parts := in.Raw.AddressParts
	if idx < 0 {
		idx = len(parts) + idx
	}
	if idx < 0 || idx >= len(parts) {
		return "", false
	}
	v := strings.TrimSpace(parts[idx])
	return v, v != ""
}

func shortPart(in *Input, idx int) (string, bool) {
	if idx < 0 {
		idx = len(in.ShortParts) + idx
	}
	if idx < 0 || idx >= len(in.ShortParts) {
		return "", false
	}
	return in.ShortParts[idx], true
}

// City tỉnh/thành phố: breadcrumb thứ 2 → phần cuối của địa chỉ ngắn
func (e *Extractor) City(in *Input) *string {
	return ResolvePtr(in,
		func(in *Input) (string, bool) { return breadcrumb(in, 1) },
		func(in *Input) (string, bool) { return shortPart(in, -1) },
	)
}

// District quận/huyện: breadcrumb thứ 3 → phần áp chót của địa chỉ ngắn
func (e *Extractor) District(in *Input) *string {
	return ResolvePtr(in,
		func(in *Input) (string, bool) { return breadcrumb(in, 2) },
		func(in *Input) (string, bool) {
			if len(in.ShortParts) < 2 {
				return "", false
			}
			return shortPart(in, -2)
		},
	)
}

// Ward phường/xã: phần địa chỉ ngắn bắt đầu bằng phường/xã/thị trấn → "tại phường ..." trong breadcrumb cuối
func (e *Extractor) Ward(in *Input) *string {
	return ResolvePtr(in,
		func(in *Input) (string, bool) {
			for _, p := range in.ShortParts {
				if hasPrefixAny(strings.ToLower(p), wardPrefixes) {
					return p, true
				}
			}
			return "", false
		},
		func(in *Input) (string, bool) {
			last, ok := breadcrumb(in, -1)
			if !ok {
				return "", false
			}
			if m := wardInBreadcrumb.FindStringSubmatch(last); m != nil {
				return strings.TrimSpace(m[1]), true
			}
			return "", false
		},
	)
}

// Street tên đường
func (e *Extractor) Street(in *Input) *string {
	return ResolvePtr(in,
		streetFromShortAddress,
		streetFromBreadcrumb,
		streetFromTitle,
	)
}

func streetFromShortAddress(in *Input) (string, bool) {
	if len(in.ShortParts) == 0 {
		return "", false
	}
	for _, part := range in.ShortParts {
		if m := streetInPart.FindStringSubmatch(strings.ToLower(part)); m != nil {
			street := strings.TrimSpace(m[1])
			if wordCount(street) <= 5 {
				return titleCase(street), true
			}
		}
	}
	first := in.ShortParts[0]
	lower := strings.ToLower(first)
	if !hasPrefixAny(lower, nonStreetPrefixes) && hasLetter(first) && !hasDigit(first) && wordCount(first) <= 5 {
		// địa chỉ ngắn chỉ có 1-2 phần thường là tỉnh/quận chứ không phải tên đường
		if len(in.ShortParts) >= 3 {
			return first, true
		}
	}
	return "", false
}

func streetFromBreadcrumb(in *Input) (string, bool) {
	last, ok := breadcrumb(in, -1)
	if !ok {
		return "", false
	}
	m := streetInBreadcrumb.FindStringSubmatch(last)
	if m == nil || wordCount(m[0]) > 5 {
		return "", false
	}
	return capitalize(strings.ToLower(m[1])) + " " + strings.TrimSpace(m[2]), true
}

func streetFromTitle(in *Input) (string, bool) {
	if in.Title == "" {
		return "", false
	}
	m := streetInTitle.FindStringSubmatch(in.Title)
	if m == nil {
		return "", false
	}
	var words []string
	for _, w := range strings.Fields(m[2]) {
		if hasDigit(w) {
			break
		}
		words = append(words, w)
	}
	if len(words) == 0 || len(words)+1 > 5 {
		return "", false
	}
	return titleCase(m[1] + " " + strings.Join(words, " ")), true
}

// AddressDetail số nhà/ngõ từ địa chỉ ngắn, nếu không có thì "Mặt phố" hoặc "Mặt ngõ"
func (e *Extractor) AddressDetail(in *Input, street *string) string {
	if len(in.ShortParts) > 0 {
		first := strings.ToLower(in.ShortParts[0])
		if !hasPrefixAny(first, streetPrefixes) && (hasPrefixAny(first, detailPrefixes) || hasDigit(first)) {
			var detail []string
			for _, part := range in.ShortParts {
				if !hasPrefixAny(strings.ToLower(part), detailPrefixes) && !hasDigit(part) {
					break
				}
				detail = append(detail, part)
			}
			final := strings.ToLower(strings.Join(detail, ", "))
			if street != nil && *street != "" {
				final = strings.ReplaceAll(final, strings.ToLower(*street), "")
				final = strings.Trim(strings.TrimSpace(final), ",")
			}
			if final = strings.TrimSpace(final); final != "" {
				return titleCase(final)
			}
		}
	}
	if onStreetMention.MatchString(in.Text) {
		return DetailOnStreet
	}
	return DetailInAlley
}

// PublishedDate ngày đăng dd/mm/yyyy: main_info → other_info
func (e *Extractor) PublishedDate(in *Input) *string {
	return ResolvePtr(in,
		FromMainInfo("Ngày đăng", parseDate),
		FromOtherInfo("Ngày đăng", parseDate),
	)
}

func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !publishedDate.MatchString(s) {
		return "", false
	}
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return "", false
	}
	return t.Format("02/01/2006"), true
}
