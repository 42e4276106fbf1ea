// Package standardizer chuẩn hóa tên tỉnh, quận/huyện, phường/xã về tên hành chính
// chính thức: khớp chính xác sau khi bỏ tiền tố, sau đó khớp mờ trong phạm vi đơn vị cha.
package standardizer

import (
	"context"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/matcher"
	"github.com/listing-cleaner/internal/normalizer"
)

// Ngưỡng khớp mờ (0-100)
const (
	DistrictFuzzyThreshold = 66
	WardFuzzyThreshold     = 66
)

const defaultMemoSize = 8192

// MatchStrategy cách một tên được chuẩn hóa
type MatchStrategy string

const (
	MatchStrategyNone     MatchStrategy = "none"
	MatchStrategyPrefixed MatchStrategy = "prefixed"
	MatchStrategyOverride MatchStrategy = "override"
	MatchStrategyExact    MatchStrategy = "exact"
	MatchStrategyFuzzy    MatchStrategy = "fuzzy"
)

// Các trường hợp đặc biệt do đổi tên/sáp nhập hành chính
var (
	provinceOverrides = map[string]string{
		"Bà Rịa Vũng Tàu": "Tỉnh Bà Rịa - Vũng Tàu",
	}
	districtOverrides = map[string]string{
		"Plei Ku":     "Thành phố Pleiku",
		"Tuy Hòa":     "Thành phố Tuy Hòa",
		"Đảo Phú Quý": "Thành phố Phan Thiết",
		"Việt Yên":    "Thị xã Việt Yên",
	}
)

// "phường Bến Nghé, quận 1" → "phường Bến Nghé"
var wardInAddress = regexp.MustCompile(`(?i)(?:^|[^\p{L}])((?:xã|phường|thị\s+trấn)\s+[^,;\n]+)`)

// entry là một đơn vị trong bảng tra cứu; ascii là khóa đã bỏ dấu
type entry struct {
	key   string
	ascii string
	unit  models.AdminUnit
}

// index bảng tra cứu của một cấp trong một phạm vi (một tỉnh hoặc một quận)
type index struct {
	byKey     map[string]models.AdminUnit
	ambiguous map[string]bool // khóa trỏ tới nhiều đơn vị còn hiệu lực
	entries   []entry
}

func newIndex() *index {
	return &index{byKey: make(map[string]models.AdminUnit), ambiguous: make(map[string]bool)}
}

// add thêm khóa cho đơn vị; khóa trùng thì đơn vị còn hiệu lực được giữ
func (ix *index) add(key string, u models.AdminUnit) {
	if key == "" {
		return
	}
	if old, ok := ix.byKey[key]; ok {
		if old.Code != u.Code && old.IsActive() && u.IsActive() {
			ix.ambiguous[key] = true
		}
		if old.IsActive() || !u.IsActive() {
			return
		}
	}
	ix.byKey[key] = u
	ix.entries = append(ix.entries, entry{key: key, ascii: normalizer.ToASCII(key), unit: u})
}

// get khớp chính xác; index nil không chứa khóa nào
func (ix *index) get(key string) (models.AdminUnit, bool) {
	if ix == nil {
		return models.AdminUnit{}, false
	}
	u, ok := ix.byKey[key]
	return u, ok
}

// Result kết quả chuẩn hóa một tên
type Result struct {
	Name     *string       `json:"name"`
	Code     string        `json:"code,omitempty"`
	Strategy MatchStrategy `json:"strategy"`
	Score    int           `json:"score,omitempty"`
}

// Location bộ địa chỉ cần chuẩn hóa
type Location struct {
	Province     *string `json:"province"`
	District     *string `json:"district"`
	Ward         *string `json:"ward"`
	ShortAddress *string `json:"short_address,omitempty"`
}

// Standardizer an toàn khi dùng chung giữa các goroutine: bảng tra cứu chỉ đọc sau khi tạo,
// cache kết quả khớp mờ là LRU có khóa.
type Standardizer struct {
	ref     *Reference
	version string

	provinces     map[string]string // khóa → tên chuẩn
	provinceCodes map[string]string // tên chuẩn → mã
	districts     map[string]*index // mã tỉnh → quận/huyện
	wardsByParent map[string]*index // mã quận → phường/xã
	wardsByProv   map[string]*index // mã tỉnh → phường/xã

	scorer            matcher.Scorer
	districtThreshold int
	wardThreshold     int
	memoSize          int
	memo              *lru.Cache[string, Result]
	logger            *zap.Logger
}

// Option cấu hình Standardizer
type Option func(*Standardizer)

// WithScorer thay hàm chấm điểm khớp mờ (mặc định matcher.Ratio)
func WithScorer(scorer matcher.Scorer) Option {
	return func(s *Standardizer) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithThresholds đổi ngưỡng khớp mờ cho quận và phường
func WithThresholds(district, ward int) Option {
	return func(s *Standardizer) {
		if district > 0 {
			s.districtThreshold = district
		}
		if ward > 0 {
			s.wardThreshold = ward
		}
	}
}

// WithMemoSize số kết quả khớp mờ được giữ trong cache
func WithMemoSize(size int) Option {
	return func(s *Standardizer) {
		if size > 0 {
			s.memoSize = size
		}
	}
}

// New nạp dữ liệu tham chiếu và dựng bảng tra cứu. Lỗi nạp hoặc không có tỉnh nào đều trả lỗi.
func New(ctx context.Context, src Source, logger *zap.Logger, opts ...Option) (*Standardizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if src == nil {
		return nil, eris.New("reference source is nil")
	}
	ref, err := src.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load administrative reference")
	}
	return NewFromReference(ref, logger, opts...)
}

// NewFromReference dựng Standardizer từ dữ liệu đã nạp
func NewFromReference(ref *Reference, logger *zap.Logger, opts ...Option) (*Standardizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ref.validate(); err != nil {
		return nil, err
	}
	ref.normalize()

	s := &Standardizer{
		ref:               ref,
		version:           ref.Version(),
		scorer:            matcher.Ratio,
		districtThreshold: DistrictFuzzyThreshold,
		wardThreshold:     WardFuzzyThreshold,
		memoSize:          defaultMemoSize,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	memo, err := lru.New[string, Result](s.memoSize)
	if err != nil {
		return nil, eris.Wrap(err, "create fuzzy match cache")
	}
	s.memo = memo
	s.build()

	logger.Info("Administrative reference loaded",
		zap.Int("provinces", len(ref.Provinces)),
		zap.Int("districts", len(ref.Districts)),
		zap.Int("wards", len(ref.Wards)),
		zap.String("version", s.version))
	return s, nil
}

func (s *Standardizer) build() {
	s.provinces = make(map[string]string)
	s.provinceCodes = make(map[string]string)
	for _, p := range s.ref.Provinces {
		s.provinces[lookupKey(p.Name, provincePrefixes)] = p.Name
		s.provinces[normalizer.FoldKey(p.Name)] = p.Name
		for _, alias := range p.Aliases {
			s.provinces[lookupKey(alias, provincePrefixes)] = p.Name
		}
		s.provinceCodes[p.Name] = p.Code
	}
	for raw, canonical := range provinceOverrides {
		s.provinces[lookupKey(raw, provincePrefixes)] = canonical
	}

	s.districts = make(map[string]*index)
	districtProvince := make(map[string]string, len(s.ref.Districts))
	for _, d := range s.ref.Districts {
		ix, ok := s.districts[d.ParentCode]
		if !ok {
			ix = newIndex()
			s.districts[d.ParentCode] = ix
		}
		for _, key := range unitKeys(d, districtPrefixes) {
			ix.add(key, d)
		}
		districtProvince[d.Code] = d.ParentCode
	}

	s.wardsByParent = make(map[string]*index)
	s.wardsByProv = make(map[string]*index)
	for _, w := range s.ref.Wards {
		ix, ok := s.wardsByParent[w.ParentCode]
		if !ok {
			ix = newIndex()
			s.wardsByParent[w.ParentCode] = ix
		}
		prov := districtProvince[w.ParentCode]
		pix, ok := s.wardsByProv[prov]
		if !ok {
			pix = newIndex()
			s.wardsByProv[prov] = pix
		}
		for _, key := range unitKeys(w, wardPrefixes) {
			ix.add(key, w)
			pix.add(key, w)
		}
	}
}

func unitKeys(u models.AdminUnit, prefixes []string) []string {
	keys := []string{lookupKey(u.Name, prefixes)}
	for _, alias := range u.Aliases {
		keys = append(keys, lookupKey(alias, prefixes))
	}
	return keys
}

// Version phiên bản dữ liệu tham chiếu
func (s *Standardizer) Version() string {
	return s.version
}

// Reference dữ liệu tham chiếu đã nạp (chỉ đọc)
func (s *Standardizer) Reference() *Reference {
	return s.ref
}

// StandardizeProvince nil → nil; không khớp → giữ nguyên. Áp dụng hai lần cho cùng kết quả.
func (s *Standardizer) StandardizeProvince(name *string) *string {
	r := s.Province(name)
	if r.Name == nil && name != nil {
		return name
	}
	return r.Name
}

// Province chuẩn hóa tên tỉnh kèm mã và cách khớp
func (s *Standardizer) Province(name *string) Result {
	if name == nil || strings.TrimSpace(*name) == "" {
		return Result{Strategy: MatchStrategyNone}
	}
	if canonical, ok := s.provinces[lookupKey(*name, provincePrefixes)]; ok {
		return Result{Name: &canonical, Code: s.provinceCodes[canonical], Strategy: MatchStrategyExact, Score: 100}
	}
	return Result{Strategy: MatchStrategyNone}
}

// StandardizeDistrict tên quận/huyện chuẩn hoặc nil
func (s *Standardizer) StandardizeDistrict(province, district *string) *string {
	return s.District(province, district).Name
}

// District input có tiền tố → giữ nguyên; bảng ngoại lệ; khớp chính xác; khớp mờ trong tỉnh
func (s *Standardizer) District(province, district *string) Result {
	if district == nil {
		return Result{Strategy: MatchStrategyNone}
	}
	name := strings.TrimSpace(*district)
	if name == "" {
		return Result{Strategy: MatchStrategyNone}
	}
	if hasCanonicalPrefix(name) {
		r := Result{Name: &name, Strategy: MatchStrategyPrefixed, Score: 100}
		if u, ok := s.districtScope(province).get(lookupKey(name, districtPrefixes)); ok && u.Name == name {
			r.Code = u.Code
		}
		return r
	}
	if canonical, ok := districtOverrides[name]; ok {
		return Result{Name: &canonical, Strategy: MatchStrategyOverride, Score: 100}
	}

	scope := s.districtScope(province)
	provCode := s.Province(province).Code
	return s.lookup("d|"+provCode, lookupKey(name, districtPrefixes), scope, s.districtThreshold)
}

func hasCanonicalPrefix(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range canonicalDistrictPrefixes {
		if strings.HasPrefix(lower, p+" ") {
			return true
		}
	}
	return false
}

// districtScope quận/huyện của tỉnh; nil khi không xác định được tỉnh
func (s *Standardizer) districtScope(province *string) *index {
	if code := s.Province(province).Code; code != "" {
		return s.districts[code]
	}
	return nil
}

// StandardizeWard tên phường/xã chuẩn hoặc nil. Ward trống thì tìm "phường/xã/thị trấn ..." trong địa chỉ ngắn.
func (s *Standardizer) StandardizeWard(province, district, ward, shortAddress *string) *string {
	return s.Ward(province, district, ward, shortAddress).Name
}

// Ward khớp chính xác rồi khớp mờ trong phạm vi quận. Không rõ quận thì chỉ nhận tên
// khớp chính xác và duy nhất trong tỉnh.
func (s *Standardizer) Ward(province, district, ward, shortAddress *string) Result {
	name := ""
	if ward != nil {
		name = strings.TrimSpace(*ward)
	}
	if name == "" && shortAddress != nil {
		if m := wardInAddress.FindStringSubmatch(*shortAddress); m != nil {
			name = strings.TrimSpace(m[1])
		}
	}
	if name == "" {
		return Result{Strategy: MatchStrategyNone}
	}

	key := lookupKey(name, wardPrefixes)
	scopeKey, scope, exactOnly := s.wardScope(province, district)
	if scope == nil {
		return Result{Strategy: MatchStrategyNone}
	}
	if exactOnly {
		if scope.ambiguous[key] {
			return Result{Strategy: MatchStrategyNone}
		}
		return exact(scope, key)
	}
	return s.lookup("w|"+scopeKey, key, scope, s.wardThreshold)
}

// wardScope phường/xã của quận đã chuẩn hóa; không rõ quận thì cả tỉnh với exactOnly = true
func (s *Standardizer) wardScope(province, district *string) (string, *index, bool) {
	provCode := s.Province(province).Code
	if provCode == "" {
		return "", nil, false
	}
	if d := s.District(province, district); d.Name != nil {
		code := d.Code
		if code == "" {
			if u, ok := s.districtScope(province).get(lookupKey(*d.Name, districtPrefixes)); ok {
				code = u.Code
			}
		}
		if ix, ok := s.wardsByParent[code]; ok {
			return code, ix, false
		}
	}
	if ix, ok := s.wardsByProv[provCode]; ok {
		return "p" + provCode, ix, true
	}
	return "", nil, false
}

func exact(ix *index, key string) Result {
	if u, ok := ix.get(key); ok {
		name := u.Name
		return Result{Name: &name, Code: u.Code, Strategy: MatchStrategyExact, Score: 100}
	}
	return Result{Strategy: MatchStrategyNone}
}

// lookup khớp chính xác theo khóa, sau đó khớp mờ có cache
func (s *Standardizer) lookup(scopeKey, key string, ix *index, threshold int) Result {
	if key == "" || ix == nil {
		return Result{Strategy: MatchStrategyNone}
	}
	if r := exact(ix, key); r.Name != nil {
		return r
	}

	memoKey := scopeKey + "|" + key
	if r, ok := s.memo.Get(memoKey); ok {
		return r
	}
	r := s.fuzzy(key, ix, threshold)
	s.memo.Add(memoKey, r)
	if r.Name != nil {
		s.logger.Debug("Fuzzy matched administrative name",
			zap.String("input", key),
			zap.String("matched", *r.Name),
			zap.Int("score", r.Score))
	}
	return r
}

// fuzzy điểm cao nhất >= threshold thắng; điểm là mức cao hơn giữa khóa có dấu và khóa bỏ dấu.
// Hòa điểm thì so Jaro-Winkler, sau đó theo thứ tự dữ liệu.
func (s *Standardizer) fuzzy(key string, ix *index, threshold int) Result {
	bestScore, bestJW := -1, -1.0
	var best models.AdminUnit
	ascii := normalizer.ToASCII(key)
	for _, e := range ix.entries {
		score := max(s.scorer(key, e.key), s.scorer(ascii, e.ascii))
		if score < threshold || score < bestScore {
			continue
		}
		jw := matcher.Similarity(key, e.key)
		if score > bestScore || jw > bestJW {
			bestScore, bestJW, best = score, jw, e.unit
		}
	}
	if bestScore < 0 {
		return Result{Strategy: MatchStrategyNone}
	}
	name := best.Name
	return Result{Name: &name, Code: best.Code, Strategy: MatchStrategyFuzzy, Score: bestScore}
}

// Standardize chuẩn hóa cả bộ địa chỉ: tỉnh giữ nguyên khi không khớp, quận/phường nil khi không khớp
func (s *Standardizer) Standardize(loc Location) Location {
	return Location{
		Province:     s.StandardizeProvince(loc.Province),
		District:     s.StandardizeDistrict(loc.Province, loc.District),
		Ward:         s.StandardizeWard(loc.Province, loc.District, loc.Ward, loc.ShortAddress),
		ShortAddress: loc.ShortAddress,
	}
}

// Stats số lượng đơn vị theo cấp
func (s *Standardizer) Stats() map[string]int {
	return map[string]int{
		models.LevelName(models.LevelProvince): len(s.ref.Provinces),
		models.LevelName(models.LevelDistrict): len(s.ref.Districts),
		models.LevelName(models.LevelWard):     len(s.ref.Wards),
		"fuzzy_cache_entries":                  s.memo.Len(),
	}
}

// Purge xóa cache kết quả khớp mờ
func (s *Standardizer) Purge() {
	s.memo.Purge()
}
