package matcher

import (
	_ "embed"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/listing-cleaner/internal/normalizer"
)

//go:embed data/keywords.yaml
var keywordsYAML []byte

//go:embed data/tables.yaml
var tablesYAML []byte

// Loại công trình dùng cho bảng đơn giá xây dựng
const (
	PropertyVilla    = "villa"
	PropertyLevel4   = "level4"
	PropertyStandard = "standard"
)

// RulesConfig là cấu trúc YAML thô của các bảng từ khóa
type RulesConfig struct {
	Negation struct {
		Window     int      `yaml:"window"`
		Markers    []string `yaml:"markers"`
		Exceptions []string `yaml:"exceptions"`
	} `yaml:"negation"`

	Shapes struct {
		Default    string `yaml:"default"`
		Categories []struct {
			Name     string   `yaml:"name"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"categories"`
	} `yaml:"shapes"`

	Quality struct {
		Default      float64 `yaml:"default"`
		Gap          int     `yaml:"gap"`
		ExtremeBonus int     `yaml:"extreme_bonus"`
		Tiers        []struct {
			Value    float64  `yaml:"value"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"tiers"`
	} `yaml:"quality"`

	Features  []string `yaml:"features"`
	Landmarks []string `yaml:"landmarks"`

	PropertyTypes struct {
		Villa           []string `yaml:"villa"`
		VillaExclusions []string `yaml:"villa_exclusions"`
		Level4          []string `yaml:"level4"`
		SingleStorey    []string `yaml:"single_storey"`
	} `yaml:"property_types"`

	Basement struct {
		Keyword       string   `yaml:"keyword"`
		Window        int      `yaml:"window"`
		Corroborators []string `yaml:"corroborators"`
		PermitPhrases []string `yaml:"permit_phrases"`
	} `yaml:"basement"`

	FacadeCount struct {
		Default  int `yaml:"default"`
		Patterns []struct {
			Pattern string `yaml:"pattern"`
			Value   int    `yaml:"value"`
		} `yaml:"patterns"`
	} `yaml:"facade_count"`

	AlleyWidths struct {
		FuzzyThreshold int `yaml:"fuzzy_threshold"`
		Entries        []struct {
			Keyword string  `yaml:"keyword"`
			Width   float64 `yaml:"width"`
		} `yaml:"entries"`
	} `yaml:"alley_widths"`

	DistancePhrases []struct {
		Keyword string  `yaml:"keyword"`
		Meters  float64 `yaml:"meters"`
	} `yaml:"distance_phrases"`

	ConstructionCosts []CostRule `yaml:"construction_costs"`
}

// CostRule là một dòng bảng đơn giá xây dựng. MinFloors/MaxFloors = 0 và
// Basement = nil nghĩa là không ràng buộc.
type CostRule struct {
	Key       string  `yaml:"key"`
	Type      string  `yaml:"type"`
	MinFloors int     `yaml:"min_floors"`
	MaxFloors int     `yaml:"max_floors"`
	Basement  *bool   `yaml:"basement"`
	Cost      float64 `yaml:"cost"`
}

func (r CostRule) matches(ptype string, floors int, basement bool) bool {
	if r.Type != ptype {
		return false
	}
	if r.MinFloors > 0 && floors < r.MinFloors {
		return false
	}
	if r.MaxFloors > 0 && floors > r.MaxFloors {
		return false
	}
	if r.Basement != nil && *r.Basement != basement {
		return false
	}
	return true
}

// Rules là tập bảng đã biên dịch, bất biến sau khi tạo và dùng chung giữa các worker
type Rules struct {
	Negation        Negation
	Shapes          CategoryTable
	DefaultShape    string
	Quality         QualityTable
	FacadeCount     RegexTable
	DefaultFacades  int
	AlleyWidths     ValueTable
	DistancePhrases ValueTable

	Features  []Phrase
	Landmarks []Phrase

	Villa           []Phrase
	VillaExclusions []Phrase
	Level4          []Phrase
	SingleStorey    []Phrase

	BasementKeyword       Phrase
	BasementWindow        int
	BasementCorroborators []Phrase
	PermitPhrases         []Phrase

	Costs []CostRule

	Version string // dấu vân tay của YAML nguồn
}

// RulesOption ghi đè cấu hình YAML trước khi biên dịch
type RulesOption func(*RulesConfig)

// WithNegationWindow đổi số token tối đa giữa từ phủ định và cụm từ; n <= 0 giữ giá trị trong YAML
func WithNegationWindow(n int) RulesOption {
	return func(cfg *RulesConfig) {
		if n > 0 {
			cfg.Negation.Window = n
		}
	}
}

// LoadRules load các bảng từ YAML nhúng sẵn
func LoadRules(opts ...RulesOption) (*Rules, error) {
	cfg := &RulesConfig{}
	if err := yaml.Unmarshal(keywordsYAML, cfg); err != nil {
		return nil, eris.Wrap(err, "parse keywords.yaml")
	}
	if err := yaml.Unmarshal(tablesYAML, cfg); err != nil {
		return nil, eris.Wrap(err, "parse tables.yaml")
	}
	for _, opt := range opts {
		opt(cfg)
	}
	r, err := Compile(cfg)
	if err != nil {
		return nil, err
	}
	r.Version = normalizer.Fingerprint(string(keywordsYAML), string(tablesYAML),
		strconv.Itoa(r.Negation.Window))
	return r, nil
}

// Compile biên dịch cấu hình YAML thành các bảng
func Compile(cfg *RulesConfig) (*Rules, error) {
	neg := NewNegation(cfg.Negation.Markers, cfg.Negation.Exceptions, cfg.Negation.Window)

	r := &Rules{
		Negation:       neg,
		DefaultShape:   cfg.Shapes.Default,
		DefaultFacades: cfg.FacadeCount.Default,

		Features:        NewPhrases(cfg.Features),
		Landmarks:       NewPhrases(cfg.Landmarks),
		Villa:           NewPhrases(cfg.PropertyTypes.Villa),
		VillaExclusions: NewPhrases(cfg.PropertyTypes.VillaExclusions),
		Level4:          NewPhrases(cfg.PropertyTypes.Level4),
		SingleStorey:    NewPhrases(cfg.PropertyTypes.SingleStorey),

		BasementKeyword:       NewPhrase(cfg.Basement.Keyword),
		BasementWindow:        cfg.Basement.Window,
		BasementCorroborators: NewPhrases(cfg.Basement.Corroborators),
		PermitPhrases:         NewPhrases(cfg.Basement.PermitPhrases),

		Costs: cfg.ConstructionCosts,
	}
	if r.DefaultShape == "" {
		return nil, eris.New("shapes.default is empty")
	}
	if len(r.BasementKeyword.Tokens) == 0 {
		return nil, eris.New("basement.keyword is empty")
	}
	if r.DefaultFacades <= 0 {
		r.DefaultFacades = 1
	}

	r.Shapes = CategoryTable{Negation: neg}
	for _, c := range cfg.Shapes.Categories {
		r.Shapes.Categories = append(r.Shapes.Categories, Category{Name: c.Name, Keywords: NewPhrases(c.Keywords)})
	}

	r.Quality = QualityTable{
		Default:  cfg.Quality.Default,
		Gap:      cfg.Quality.Gap,
		Bonus:    cfg.Quality.ExtremeBonus,
		Negation: neg,
	}
	if r.Quality.Default == 0 {
		r.Quality.Default = DefaultQuality
	}
	if r.Quality.Gap <= 0 {
		r.Quality.Gap = DefaultQualityGap
	}
	for _, t := range cfg.Quality.Tiers {
		r.Quality.Tiers = append(r.Quality.Tiers, QualityTier{Value: t.Value, Keywords: NewPhrases(t.Keywords)})
	}

	for _, p := range cfg.FacadeCount.Patterns {
		re, err := CompileWordPattern(p.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "facade_count pattern %q", p.Pattern)
		}
		r.FacadeCount.Rules = append(r.FacadeCount.Rules, RegexRule{Pattern: re, Value: p.Value})
	}

	r.AlleyWidths = ValueTable{Threshold: cfg.AlleyWidths.FuzzyThreshold, Negation: neg}
	if r.AlleyWidths.Threshold <= 0 {
		r.AlleyWidths.Threshold = AlleyFuzzyThreshold
	}
	for _, e := range cfg.AlleyWidths.Entries {
		r.AlleyWidths.Entries = append(r.AlleyWidths.Entries, ValueEntry{Keyword: NewPhrase(e.Keyword), Value: e.Width})
	}

	r.DistancePhrases = ValueTable{Negation: neg}
	for _, e := range cfg.DistancePhrases {
		r.DistancePhrases.Entries = append(r.DistancePhrases.Entries, ValueEntry{Keyword: NewPhrase(e.Keyword), Value: e.Meters})
	}

	for _, c := range r.Costs {
		switch c.Type {
		case PropertyVilla, PropertyLevel4, PropertyStandard:
		default:
			return nil, eris.Errorf("construction cost %q: unknown type %q", c.Key, c.Type)
		}
	}
	return r, nil
}

// ConstructionCost tra đơn giá xây dựng (đ/m2) theo loại công trình, số tầng và tầng hầm
func (r *Rules) ConstructionCost(ptype string, floors int, basement bool) (CostRule, bool) {
	for _, c := range r.Costs {
		if c.matches(ptype, floors, basement) {
			return c, true
		}
	}
	return CostRule{}, false
}
