package standardizer

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// JSONSource đọc dữ liệu tham chiếu từ file JSON {"provinces": [...], "districts": [...], "wards": [...]}
type JSONSource struct {
	Path string
}

// Load implements Source
func (s JSONSource) Load(ctx context.Context) (*Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "read reference file %s", s.Path)
	}
	ref := &Reference{}
	if err := json.Unmarshal(data, ref); err != nil {
		return nil, eris.Wrapf(err, "parse reference file %s", s.Path)
	}
	return ref, nil
}
