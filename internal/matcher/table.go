package matcher

import (
	"math"
	"regexp"
)

// Ngưỡng và hằng số chấm điểm
const (
	AlleyFuzzyThreshold = 90
	ExtremeTierBonus    = 5
	DefaultQualityGap   = 2
	DefaultQuality      = 0.75
)

// Category là một nhóm từ khóa ứng với một nhãn
type Category struct {
	Name     string
	Keywords []Phrase
}

// CategoryTable là bảng nhãn có thứ tự: nhãn đầu tiên có từ khóa khớp (không bị phủ định) thắng
type CategoryTable struct {
	Categories []Category
	Negation   Negation
}

// FirstMatch trả về nhãn đầu tiên theo thứ tự bảng
func (t CategoryTable) FirstMatch(doc *Document) (string, bool) {
	for _, c := range t.Categories {
		for _, kw := range c.Keywords {
			for _, span := range doc.Find(kw, 0) {
				if !t.Negation.IsNegatedSpan(doc, span, kw) {
					return c.Name, true
				}
			}
		}
	}
	return "", false
}

// RegexRule là một mẫu regex và giá trị của nó
type RegexRule struct {
	Pattern *regexp.Regexp
	Value   int
}

// RegexTable: mẫu đầu tiên khớp thắng
type RegexTable struct {
	Rules []RegexRule
}

// CompileWordPattern bọc mẫu bởi ranh giới từ Unicode (RE2 chỉ hỗ trợ \b cho ASCII)
func CompileWordPattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?:^|[^\p{L}\p{N}])(?:` + pattern + `)(?:$|[^\p{L}\p{N}])`)
}

// FirstMatch trả về giá trị của mẫu đầu tiên khớp
func (t RegexTable) FirstMatch(text string) (int, bool) {
	for _, r := range t.Rules {
		if r.Pattern.MatchString(text) {
			return r.Value, true
		}
	}
	return 0, false
}

// ValueEntry là từ khóa ứng với một giá trị số
type ValueEntry struct {
	Keyword Phrase
	Value   float64
}

// ValueTable: khớp chính xác theo thứ tự bảng, sau đó khớp mờ với ngưỡng Threshold.
// Threshold = 0 tắt bước khớp mờ.
type ValueTable struct {
	Entries   []ValueEntry
	Threshold int
	Negation  Negation
}

// Lookup tìm giá trị ứng với từ khóa trong văn bản
func (t ValueTable) Lookup(doc *Document) (float64, bool) {
	for _, e := range t.Entries {
		for _, span := range doc.Find(e.Keyword, 0) {
			if !t.Negation.IsNegatedSpan(doc, span, e.Keyword) {
				return e.Value, true
			}
		}
	}
	if t.Threshold <= 0 {
		return 0, false
	}

	bestScore, bestIdx := 0, -1
	for i, e := range t.Entries {
		score := t.fuzzyScore(doc, e.Keyword)
		if score >= t.Threshold && score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return t.Entries[bestIdx].Value, true
}

// fuzzyScore là partial ratio trên các cửa sổ bắt đầu tại đầu token,
// độ dài bằng số token của từ khóa
func (t ValueTable) fuzzyScore(doc *Document, kw Phrase) int {
	n := len(kw.Tokens)
	best := 0
	for i := 0; i+n <= len(doc.Tokens); i++ {
		if doc.Tokens[i].Sentence != doc.Tokens[i+n-1].Sentence {
			continue
		}
		if t.Negation.IsNegated(doc, i) {
			continue
		}
		score := Ratio(kw.Text, JoinTokens(doc.Tokens[i:i+n]))
		if score > best {
			best = score
		}
	}
	return best
}

// QualityTier là một mức chất lượng còn lại cùng các từ khóa mô tả
type QualityTier struct {
	Value    float64
	Keywords []Phrase
}

// QualityTable chấm điểm mọi từ khóa, điểm cao nhất thắng
type QualityTable struct {
	Tiers    []QualityTier
	Default  float64
	Gap      int
	Bonus    int
	Negation Negation
}

// QualityMatch mô tả từ khóa thắng
type QualityMatch struct {
	Value   float64
	Keyword string
	Span    string
	Score   int
}

func extremeness(v, def float64) float64 {
	return math.Abs(v - def)
}

func isExtreme(v float64) bool {
	return v == 0 || v == 1
}

// Score trả về mức chất lượng. Hòa điểm thì ưu tiên mức xa mặc định hơn,
// sau đó theo thứ tự bảng.
func (t QualityTable) Score(doc *Document) (QualityMatch, bool) {
	best := QualityMatch{Value: t.Default, Score: -1}
	for _, tier := range t.Tiers {
		for _, kw := range tier.Keywords {
			for _, span := range doc.Find(kw, t.Gap) {
				if t.Negation.IsNegatedSpan(doc, span, kw) {
					continue
				}
				text := doc.SpanText(span)
				score := Ratio(kw.Text, JoinTokens(doc.Tokens[span.First:span.Last+1]))
				if isExtreme(tier.Value) {
					score += t.Bonus
				}
				if score > best.Score ||
					(score == best.Score && extremeness(tier.Value, t.Default) > extremeness(best.Value, t.Default)) {
					best = QualityMatch{Value: tier.Value, Keyword: kw.Text, Span: text, Score: score}
				}
			}
		}
	}
	if best.Score < 0 {
		return QualityMatch{Value: t.Default}, false
	}
	return best, true
}
