package extractor

import (
	"github.com/listing-cleaner/internal/matcher"
)

// PropertyType loại công trình cho bảng đơn giá: biệt thự, nhà cấp 4 hoặc nhà thông thường.
// "liền kề biệt thự", "gần biệt thự"... không tính là biệt thự.
func (e *Extractor) PropertyType(in *Input) string {
	doc := in.Doc
	var excluded []matcher.Span
	for _, p := range e.rules.VillaExclusions {
		excluded = append(excluded, doc.Find(p, 0)...)
	}
	for _, p := range e.rules.Villa {
		for _, span := range doc.Find(p, 0) {
			if covered(span, excluded) || e.rules.Negation.IsNegatedSpan(doc, span, p) {
				continue
			}
			return matcher.PropertyVilla
		}
	}
	for _, p := range e.rules.Level4 {
		if e.hasPhrase(doc, p) {
			return matcher.PropertyLevel4
		}
	}
	return matcher.PropertyStandard
}

func covered(s matcher.Span, by []matcher.Span) bool {
	for _, o := range by {
		if o.First <= s.First && s.Last <= o.Last {
			return true
		}
	}
	return false
}

// HasBasement nhà có tầng hầm: có "hầm" không bị phủ định, có từ xác nhận (tầng, ô tô,
// thang máy, để xe...) gần đó và không đứng sau cụm xin phép/dự kiến
func (e *Extractor) HasBasement(in *Input) bool {
	return e.hasBasement(in.Doc)
}

func (e *Extractor) hasBasement(doc *matcher.Document) bool {
	r := e.rules
	for _, span := range doc.Find(r.BasementKeyword, 0) {
		if r.Negation.IsNegatedSpan(doc, span, r.BasementKeyword) {
			continue
		}
		sentence := doc.Tokens[span.First].Sentence
		before := sameSentence(doc.Window(span.First-r.BasementWindow, span.First-1), sentence)
		if matcher.NewDocument(matcher.JoinTokens(before)).ContainsAny(r.PermitPhrases) {
			continue
		}
		around := sameSentence(doc.Window(span.First-r.BasementWindow, span.Last+r.BasementWindow), sentence)
		if matcher.NewDocument(matcher.JoinTokens(around)).ContainsAny(r.BasementCorroborators) {
			return true
		}
	}
	return false
}

func sameSentence(tokens []matcher.Token, sentence int) []matcher.Token {
	out := make([]matcher.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Sentence == sentence {
			out = append(out, t)
		}
	}
	return out
}

// ConstructionCost đơn giá xây dựng (đ/m²) theo loại công trình, số tầng và tầng hầm
func (e *Extractor) ConstructionCost(in *Input, floors int) (float64, bool) {
	rule, ok := e.rules.ConstructionCost(e.PropertyType(in), floors, e.HasBasement(in))
	if !ok {
		return 0, false
	}
	return rule.Cost, true
}

// RemainingQuality chất lượng còn lại theo bảng từ khóa, mặc định 0.75
func (e *Extractor) RemainingQuality(in *Input) float64 {
	m, _ := e.rules.Quality.Score(in.Doc)
	return m.Value
}

// LandShape hình dạng lô đất
func (e *Extractor) LandShape(in *Input) string {
	if shape, ok := e.rules.Shapes.FirstMatch(in.Doc); ok {
		return shape
	}
	return e.rules.DefaultShape
}
