// Package matcher chứa các bảng từ khóa có thứ tự và bộ so khớp cụm từ có xử lý
// phủ định dùng cho việc phân loại văn bản tin đăng.
package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/listing-cleaner/internal/normalizer"
)

// Token là một cụm chữ/số liên tiếp trong văn bản, kèm vị trí byte
type Token struct {
	Text     string
	Start    int
	End      int
	Sentence int
}

// Span là vị trí một cụm từ khớp: chỉ số token đầu và cuối (bao gồm)
type Span struct {
	First int
	Last  int
}

// Document là văn bản đã chuẩn hóa và tách token, dùng chung cho nhiều bảng
type Document struct {
	Text   string
	Tokens []Token
}

// Phrase là từ khóa đã tách token sẵn
type Phrase struct {
	Text   string
	Tokens []string
}

// NewPhrase chuẩn hóa và tách token một từ khóa
func NewPhrase(s string) Phrase {
	text := normalizer.Canonical(s)
	toks := Tokenize(text)
	words := make([]string, len(toks))
	for i, t := range toks {
		words[i] = t.Text
	}
	return Phrase{Text: text, Tokens: words}
}

// NewPhrases chuẩn hóa danh sách từ khóa, bỏ qua từ khóa rỗng
func NewPhrases(list []string) []Phrase {
	out := make([]Phrase, 0, len(list))
	for _, s := range list {
		p := NewPhrase(s)
		if len(p.Tokens) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// NewDocument tạo Document từ văn bản đã chuẩn hóa (normalizer.Canonical)
func NewDocument(text string) *Document {
	return &Document{Text: text, Tokens: Tokenize(text)}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isSentenceBreak(r rune) bool {
	switch r {
	case '.', '!', '?', ';', '\n', '\r':
		return true
	}
	return false
}

// Tokenize tách văn bản thành các token chữ/số. Dấu chấm giữa hai chữ số
// ("4.5") không được xem là ngắt câu.
func Tokenize(text string) []Token {
	var tokens []Token
	sentence := 0
	start := -1
	prevDigit := false

	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			prevDigit = unicode.IsDigit(r)
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{Text: text[start:i], Start: start, End: i, Sentence: sentence})
			start = -1
		}
		if isSentenceBreak(r) {
			next, _ := utf8.DecodeRuneInString(text[i+utf8.RuneLen(r):])
			if r != '.' || !prevDigit || !unicode.IsDigit(next) {
				sentence++
			}
		}
		prevDigit = false
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: text[start:], Start: start, End: len(text), Sentence: sentence})
	}
	return tokens
}

// SpanText trả về đoạn văn bản gốc của span
func (d *Document) SpanText(s Span) string {
	return d.Text[d.Tokens[s.First].Start:d.Tokens[s.Last].End]
}

// Find tìm mọi vị trí khớp cụm từ, cho phép tối đa maxGap token chen giữa hai
// token liên tiếp của cụm từ. Không khớp qua ranh giới câu.
func (d *Document) Find(p Phrase, maxGap int) []Span {
	if len(p.Tokens) == 0 {
		return nil
	}
	var spans []Span
	for i, tok := range d.Tokens {
		if tok.Text != p.Tokens[0] {
			continue
		}
		pos := i
		ok := true
		for _, want := range p.Tokens[1:] {
			next := -1
			for j := pos + 1; j <= pos+1+maxGap && j < len(d.Tokens); j++ {
				if d.Tokens[j].Sentence != tok.Sentence {
					break
				}
				if d.Tokens[j].Text == want {
					next = j
					break
				}
			}
			if next < 0 {
				ok = false
				break
			}
			pos = next
		}
		if ok {
			spans = append(spans, Span{First: i, Last: pos})
		}
	}
	return spans
}

// Contains kiểm tra cụm từ xuất hiện liền mạch trong văn bản
func (d *Document) Contains(p Phrase) bool {
	return len(d.Find(p, 0)) > 0
}

// ContainsAny kiểm tra bất kỳ cụm từ nào xuất hiện liền mạch
func (d *Document) ContainsAny(ps []Phrase) bool {
	for _, p := range ps {
		if d.Contains(p) {
			return true
		}
	}
	return false
}

// Window trả về các token trong khoảng [from, to] đã được cắt theo biên
func (d *Document) Window(from, to int) []Token {
	if from < 0 {
		from = 0
	}
	if to >= len(d.Tokens) {
		to = len(d.Tokens) - 1
	}
	if from > to {
		return nil
	}
	return d.Tokens[from : to+1]
}

// Mask thay các đoạn byte [start, end) bằng khoảng trắng, giữ nguyên độ dài văn bản
func Mask(text string, ranges [][]int) string {
	if len(ranges) == 0 {
		return text
	}
	b := []byte(text)
	for _, r := range ranges {
		for i := r[0]; i < r[1] && i < len(b); i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// JoinTokens nối text các token bằng khoảng trắng
func JoinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
