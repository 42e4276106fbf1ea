package matcher

// DefaultNegationWindow số token tối đa giữa từ phủ định và cụm từ bị phủ định
const DefaultNegationWindow = 3

// Negation xác định một vị trí khớp có bị phủ định hay không
type Negation struct {
	Markers    map[string]struct{}
	Exceptions []Phrase // "không gian", "không khí" không mang nghĩa phủ định
	Window     int
}

// NewNegation tạo Negation từ danh sách từ phủ định và các cụm ngoại lệ
func NewNegation(markers, exceptions []string, window int) Negation {
	set := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		p := NewPhrase(m)
		if len(p.Tokens) == 1 {
			set[p.Tokens[0]] = struct{}{}
		}
	}
	if window <= 0 {
		window = DefaultNegationWindow
	}
	return Negation{Markers: set, Exceptions: NewPhrases(exceptions), Window: window}
}

// IsNegated kiểm tra có từ phủ định trong Window token đứng trước token at (cùng câu)
func (n Negation) IsNegated(doc *Document, at int) bool {
	if len(n.Markers) == 0 || at <= 0 || at >= len(doc.Tokens) {
		return false
	}
	sentence := doc.Tokens[at].Sentence
	for j := at - 1; j >= 0 && j >= at-n.Window; j-- {
		tok := doc.Tokens[j]
		if tok.Sentence != sentence {
			return false
		}
		if _, ok := n.Markers[tok.Text]; ok && !n.isException(doc, j) {
			return true
		}
	}
	return false
}

func (n Negation) isException(doc *Document, at int) bool {
	for _, ex := range n.Exceptions {
		if at+len(ex.Tokens) > len(doc.Tokens) {
			continue
		}
		match := true
		for k, w := range ex.Tokens {
			if doc.Tokens[at+k].Text != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// IsNegatedSpan kiểm tra phủ định trước span và trong các token chen giữa
// ("nhà không cũ"). Từ phủ định thuộc chính từ khóa ("nhiều năm chưa sửa") không tính.
func (n Negation) IsNegatedSpan(doc *Document, s Span, p Phrase) bool {
	if n.IsNegated(doc, s.First) {
		return true
	}
	inSpan := 0
	for j := s.First + 1; j < s.Last; j++ {
		if _, ok := n.Markers[doc.Tokens[j].Text]; ok && !n.isException(doc, j) {
			inSpan++
		}
	}
	if inSpan == 0 {
		return false
	}
	inPhrase := 0
	for _, w := range p.Tokens {
		if _, ok := n.Markers[w]; ok {
			inPhrase++
		}
	}
	return inSpan > inPhrase
}
