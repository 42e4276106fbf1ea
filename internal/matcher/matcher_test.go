package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listing-cleaner/internal/normalizer"
)

func doc(text string) *Document {
	return NewDocument(normalizer.Canonical(text))
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("nhà 4.5m, mặt phố. ngõ ô tô")
	words := make([]string, len(toks))
	for i, tk := range toks {
		words[i] = tk.Text
	}
	assert.Equal(t, []string{"nhà", "4", "5m", "mặt", "phố", "ngõ", "ô", "tô"}, words)

	// "4.5" không ngắt câu, "phố." thì có
	assert.Equal(t, toks[1].Sentence, toks[2].Sentence)
	assert.NotEqual(t, toks[4].Sentence, toks[5].Sentence)
	assert.Equal(t, "mặt", "nhà 4.5m, mặt phố"[toks[3].Start:toks[3].End])
}

func TestDocumentFind(t *testing.T) {
	d := doc("Nhà cấp 4 cũ, bán gấp")

	spans := d.Find(NewPhrase("nhà cũ"), 2)
	require.Len(t, spans, 1)
	assert.Equal(t, "nhà cấp 4 cũ", d.SpanText(spans[0]))

	assert.Empty(t, d.Find(NewPhrase("nhà cũ"), 1))
	assert.Empty(t, doc("bán nhà. cũ").Find(NewPhrase("nhà cũ"), 2), "không khớp qua ranh giới câu")
}

func TestNegation(t *testing.T) {
	neg := NewNegation([]string{"không", "chưa"}, []string{"không gian"}, 3)

	d := doc("đất không méo mó")
	span := d.Find(NewPhrase("méo mó"), 0)
	require.Len(t, span, 1)
	assert.True(t, neg.IsNegated(d, span[0].First))

	d = doc("không gian thoáng mới xây")
	span = d.Find(NewPhrase("mới xây"), 0)
	require.Len(t, span, 1)
	assert.False(t, neg.IsNegated(d, span[0].First))

	d = doc("không có gì để chê, nhà rất đẹp mới xây")
	span = d.Find(NewPhrase("mới xây"), 0)
	require.Len(t, span, 1)
	assert.False(t, neg.IsNegated(d, span[0].First), "từ phủ định ngoài cửa sổ")
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, Ratio("hẻm ô tô", "hẻm ô tô"))
	assert.Equal(t, 100, Ratio("", ""))
	assert.Equal(t, 0, Ratio("abc", ""))
	// 1 ký tự khác trên 8 rune
	assert.Equal(t, 88, Ratio("hẻm ô tô", "hẽm ô tô"))
	assert.Equal(t, 100, PartialRatio("ô tô", "hẻm ô tô tránh"))
	assert.Greater(t, Similarity("pleiku", "plei ku"), Similarity("pleiku", "kon tum"))
}

func TestCategoryTable(t *testing.T) {
	rules, err := LoadRules()
	require.NoError(t, err)

	testCases := []struct {
		text     string
		expected string
		ok       bool
	}{
		{"Đất nở hậu, vuông vức", "Nở hậu", true},
		{"Lô đất chữ L hẹp ngang", "Chữ L hẹp ngang", true},
		{"Lô đất chữ L", "Chữ L", true},
		{"Đất không méo mó, sổ đẹp", "", false},
		{"Đất vuông vắn", "Chữ nhật", true},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			got, ok := rules.Shapes.FirstMatch(doc(tc.text))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRegexTable(t *testing.T) {
	rules, err := LoadRules()
	require.NoError(t, err)

	v, ok := rules.FacadeCount.FirstMatch(normalizer.Canonical("Nhà lô góc 3 mặt thoáng"))
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = rules.FacadeCount.FirstMatch("căn góc hai mặt tiền")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = rules.FacadeCount.FirstMatch("13 mặt tiền")
	assert.False(t, ok, "ranh giới từ")
}

func TestValueTable(t *testing.T) {
	table := ValueTable{
		Entries: []ValueEntry{
			{Keyword: NewPhrase("ô tô tránh"), Value: 5},
			{Keyword: NewPhrase("hẻm ô tô"), Value: 3},
		},
		Threshold: AlleyFuzzyThreshold,
		Negation:  NewNegation([]string{"không"}, nil, 3),
	}

	v, ok := table.Lookup(doc("Hẻm ô tô tránh nhau"))
	assert.True(t, ok)
	assert.Equal(t, 5.0, v, "cụm cụ thể đứng trước trong bảng")

	v, ok = table.Lookup(doc("nhà trong hẻm ô tô"))
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = table.Lookup(doc("không phải hẻm ô tô"))
	assert.False(t, ok)

	_, ok = table.Lookup(doc("gần chợ"))
	assert.False(t, ok)

	table.Threshold = 0
	_, ok = table.Lookup(doc("hẽm ô tô"))
	assert.False(t, ok, "tắt khớp mờ")
}

func TestQualityTable(t *testing.T) {
	rules, err := LoadRules()
	require.NoError(t, err)

	testCases := []struct {
		text     string
		expected float64
	}{
		{"Nhà đẹp, mới xây", 1.0},
		{"Hẻm ô tô 5m, nhà cấp 4 cũ", 0.5},
		{"Bán đất tặng nhà", 0.0},
		{"Nhà sạch sẽ, vào ở liền", 0.85},
		{"Nhà 3 tầng hướng nam", 0.75},
		{"Nhà không cũ", 0.75},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			m, _ := rules.Quality.Score(doc(tc.text))
			assert.Equal(t, tc.expected, m.Value)
		})
	}
}

func TestQualityTable_TieBreak(t *testing.T) {
	table := QualityTable{
		Tiers: []QualityTier{
			{Value: 0.85, Keywords: []Phrase{NewPhrase("nhà đẹp")}},
			{Value: 0.5, Keywords: []Phrase{NewPhrase("nhà cũ")}},
		},
		Default: DefaultQuality,
		Gap:     DefaultQualityGap,
	}
	// cùng điểm 100: mức xa mặc định hơn (0.5) thắng dù đứng sau trong bảng
	m, ok := table.Score(doc("nhà đẹp nhưng nhà cũ"))
	assert.True(t, ok)
	assert.Equal(t, 0.5, m.Value)

	table.Bonus = ExtremeTierBonus
	table.Tiers = append(table.Tiers, QualityTier{Value: 1.0, Keywords: []Phrase{NewPhrase("mới xây")}})
	m, _ = table.Score(doc("nhà đẹp mới xây"))
	assert.Equal(t, 1.0, m.Value)
	assert.Equal(t, 105, m.Score)
}

func TestConstructionCost(t *testing.T) {
	rules, err := LoadRules()
	require.NoError(t, err)

	testCases := []struct {
		ptype    string
		floors   int
		basement bool
		key      string
	}{
		{PropertyVilla, 3, true, "biệt_thự_có_hầm"},
		{PropertyVilla, 3, false, "biệt_thự"},
		{PropertyLevel4, 1, false, "nhà_cấp_4"},
		{PropertyStandard, 1, true, "nhà_1_tầng_btct"},
		{PropertyStandard, 4, true, "nhà_gte_2_tầng_có_hầm"},
		{PropertyStandard, 4, false, "nhà_gte_2_tầng_không_hầm"},
	}
	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			c, ok := rules.ConstructionCost(tc.ptype, tc.floors, tc.basement)
			require.True(t, ok)
			assert.Equal(t, tc.key, c.Key)
		})
	}
}

func TestLoadRules_NegationWindow(t *testing.T) {
	base, err := LoadRules()
	require.NoError(t, err)

	wide, err := LoadRules(WithNegationWindow(6))
	require.NoError(t, err)
	assert.Equal(t, 6, wide.Negation.Window)
	assert.NotEqual(t, base.Version, wide.Version)

	same, err := LoadRules(WithNegationWindow(0))
	require.NoError(t, err)
	assert.Equal(t, base.Negation.Window, same.Negation.Window)
	assert.Equal(t, base.Version, same.Version)
}
