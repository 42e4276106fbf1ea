package pipeline

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/listing-cleaner/app/models"
)

// Runner chạy Processor song song trên nhiều dòng, giữ nguyên thứ tự đầu vào
type Runner struct {
	processor *Processor
	workers   int
	logger    *zap.Logger
}

// Summary thống kê một lượt chạy
type Summary struct {
	Total     int                `json:"total"`
	Cleaned   int                `json:"cleaned"`
	Dropped   int                `json:"dropped"`
	Filtered  map[string]int     `json:"filtered,omitempty"` // lý do → số tin bị loại trước khi làm sạch
	Flags     map[string]int     `json:"flags,omitempty"`
	NullRates map[string]float64 `json:"null_rates,omitempty"` // cột → tỉ lệ rỗng
	Duration  time.Duration      `json:"duration"`
}

// NewRunner tạo mới Runner; workers <= 0 dùng số CPU
func NewRunner(p *Processor, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{processor: p, workers: workers, logger: logger}
}

// Processor trả về processor đang dùng
func (r *Runner) Processor() *Processor {
	return r.processor
}

// Clean lọc tin hỗn hợp rồi làm sạch song song. Kết quả theo đúng thứ tự tin còn lại.
func (r *Runner) Clean(ctx context.Context, listings []models.RawListing) ([]models.CleanResult, Summary, error) {
	start := time.Now()
	kept, dropped := FilterMixed(listings)

	results := make([]models.CleanResult, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range kept {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.processor.Clean(kept[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, eris.Wrap(err, "clean listings")
	}
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, eris.Wrap(err, "clean listings")
	}

	sum := Summarize(results)
	sum.Total = len(listings)
	sum.Dropped += len(dropped)
	if len(dropped) > 0 {
		sum.Filtered = make(map[string]int)
		for _, d := range dropped {
			sum.Filtered[d.Reason]++
		}
	}
	sum.Duration = time.Since(start)
	r.logSummary("Cleaning finished", sum)
	return results, sum, nil
}

// Feature tính đặc trưng cho các dòng đã làm sạch
func (r *Runner) Feature(ctx context.Context, rows []models.OutputRow) ([]models.OutputRow, error) {
	out := make([]models.OutputRow, len(rows))
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "engineer features")
		}
		out[i] = r.processor.Feature(rows[i])
	}
	r.logger.Info("Feature engineering finished", zap.Int("rows", len(out)))
	return out, nil
}

// CleanFile đọc tin đăng, làm sạch và ghi file kết quả
func (r *Runner) CleanFile(ctx context.Context, input, output string) (Summary, error) {
	listings, err := ReadListings(input)
	if err != nil {
		return Summary{}, err
	}
	r.logger.Info("Listings loaded", zap.String("input", input), zap.Int("count", len(listings)))

	results, sum, err := r.Clean(ctx, listings)
	if err != nil {
		return Summary{}, err
	}
	if err := WriteRows(output, CleanedRows(results)); err != nil {
		return Summary{}, err
	}
	r.logger.Info("Cleaned rows written", zap.String("output", output), zap.Int("rows", sum.Cleaned))
	return sum, nil
}

// FeatureFile đọc lại file đã làm sạch, tính đặc trưng và ghi file cuối
func (r *Runner) FeatureFile(ctx context.Context, input, output string) error {
	rows, err := ReadRows(input)
	if err != nil {
		return err
	}
	rows, err = r.Feature(ctx, rows)
	if err != nil {
		return err
	}
	if err := WriteRows(output, rows); err != nil {
		return err
	}
	r.logger.Info("Feature rows written", zap.String("output", output), zap.Int("rows", len(rows)))
	return nil
}

// CleanedRows các dòng đầu ra của kết quả đã làm sạch, bỏ dòng bị loại
func CleanedRows(results []models.CleanResult) []models.OutputRow {
	rows := make([]models.OutputRow, 0, len(results))
	for i := range results {
		if results[i].Status == models.StatusCleaned {
			rows = append(rows, results[i].Row)
		}
	}
	return rows
}

// Summarize đếm trạng thái, cờ và tỉ lệ rỗng theo cột
func Summarize(results []models.CleanResult) Summary {
	sum := Summary{Total: len(results), Flags: make(map[string]int)}
	for i := range results {
		if results[i].Status == models.StatusCleaned {
			sum.Cleaned++
		} else {
			sum.Dropped++
		}
		for _, f := range results[i].Flags {
			sum.Flags[f]++
		}
	}
	sum.NullRates = NullRates(CleanedRows(results))
	return sum
}

// NullRates tỉ lệ giá trị rỗng (nil hoặc chuỗi rỗng) của từng cột đầu ra
func NullRates(rows []models.OutputRow) map[string]float64 {
	rates := make(map[string]float64, len(models.OutputColumns))
	if len(rows) == 0 {
		return rates
	}
	counts := make([]int, len(models.OutputColumns))
	for i := range rows {
		for j, v := range rows[i].Values() {
			if v == nil || v == "" {
				counts[j]++
			}
		}
	}
	for j, col := range models.OutputColumns {
		rates[col] = float64(counts[j]) / float64(len(rows))
	}
	return rates
}

func (r *Runner) logSummary(msg string, sum Summary) {
	r.logger.Info(msg,
		zap.Int("total", sum.Total),
		zap.Int("cleaned", sum.Cleaned),
		zap.Int("dropped", sum.Dropped),
		zap.Any("filtered", sum.Filtered),
		zap.Any("flags", sum.Flags),
		zap.Duration("duration", sum.Duration))

	cols := make([]string, 0, len(sum.NullRates))
	for col := range sum.NullRates {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		if rate := sum.NullRates[col]; rate > 0 {
			r.logger.Debug("Column null rate", zap.String("column", col), zap.Float64("rate", rate))
		}
	}
}
