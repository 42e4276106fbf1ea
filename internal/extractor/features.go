package extractor

import (
	"regexp"
	"strings"

	"github.com/listing-cleaner/internal/matcher"
)

var sentenceSplit = regexp.MustCompile(`[.\n!?;]+`)

// DirectFeatures các câu trong tin đăng nhắc tới đặc điểm nổi bật (sổ đỏ, kinh doanh, gần chợ...),
// giữ thứ tự xuất hiện, bỏ trùng
func (e *Extractor) DirectFeatures(in *Input) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range sentenceSplit.Split(in.Text, -1) {
		s = strings.Trim(strings.TrimSpace(s), ",-:")
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		if matcher.NewDocument(s).ContainsAny(e.rules.Features) {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
