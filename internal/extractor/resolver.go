package extractor

// Source là một nguồn giá trị cho một trường; false nghĩa là nguồn không có hoặc không đọc được
type Source[T any] func(in *Input) (T, bool)

// Resolve thử lần lượt các nguồn theo thứ tự ưu tiên, trả về giá trị đầu tiên đọc được
func Resolve[T any](in *Input, sources ...Source[T]) (T, bool) {
	for _, src := range sources {
		if v, ok := src(in); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// ResolvePtr như Resolve nhưng trả về nil khi mọi nguồn thất bại
func ResolvePtr[T any](in *Input, sources ...Source[T]) *T {
	if v, ok := Resolve(in, sources...); ok {
		return &v
	}
	return nil
}

// FromMainInfo đọc dòng main_info có title tương ứng
func FromMainInfo[T any](title string, parse func(string) (T, bool)) Source[T] {
	return func(in *Input) (T, bool) {
		if v, ok := in.Raw.MainInfoValue(title); ok {
			return parse(v)
		}
		var zero T
		return zero, false
	}
}

// FromMainInfoExt đọc phần ext của dòng main_info ("Diện tích" → "4 x 15 m")
func FromMainInfoExt[T any](title string, parse func(string) (T, bool)) Source[T] {
	return func(in *Input) (T, bool) {
		if v, ok := in.Raw.MainInfoExt(title); ok {
			return parse(v)
		}
		var zero T
		return zero, false
	}
}

// FromOtherInfo đọc giá trị other_info theo nhãn
func FromOtherInfo[T any](label string, parse func(string) (T, bool)) Source[T] {
	return func(in *Input) (T, bool) {
		if v, ok := in.Raw.OtherInfoValue(label); ok {
			return parse(v)
		}
		var zero T
		return zero, false
	}
}

// FromText áp dụng hàm đọc lên từng trường văn bản (mô tả trước, tiêu đề sau)
func FromText[T any](parse func(string) (T, bool)) Source[T] {
	return func(in *Input) (T, bool) {
		for _, text := range []string{in.Description, in.Title} {
			if text == "" {
				continue
			}
			if v, ok := parse(text); ok {
				return v, true
			}
		}
		var zero T
		return zero, false
	}
}

// Default nguồn cuối cùng luôn trả về v
func Default[T any](v T) Source[T] {
	return func(*Input) (T, bool) {
		return v, true
	}
}

// positive bọc hàm đọc số, loại giá trị <= 0
func positive(parse func(string) (float64, bool)) func(string) (float64, bool) {
	return func(s string) (float64, bool) {
		v, ok := parse(s)
		if !ok || v <= 0 {
			return 0, false
		}
		return v, true
	}
}
