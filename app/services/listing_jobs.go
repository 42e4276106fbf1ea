package services

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/helpers/utils"
	"github.com/listing-cleaner/internal/pipeline"
)

// Trạng thái job
const (
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// jobRetention thời gian giữ job đã xong trong bộ nhớ
const jobRetention = time.Hour

// ErrJobNotFound job không tồn tại hoặc đã hết hạn
var ErrJobNotFound = eris.New("job not found")

// Job một lượt làm sạch chạy nền
type Job struct {
	ID        string            `json:"job_id"`
	Status    string            `json:"status"`
	Total     int               `json:"total"`
	Message   string            `json:"message,omitempty"`
	Summary   *pipeline.Summary `json:"summary,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	results []models.CleanResult
}

// StartBatchJob tạo job và làm sạch trong background; ctx của job độc lập với request
func (ls *ListingService) StartBatchJob(listings []models.RawListing, useCache bool) Job {
	now := time.Now()
	job := &Job{
		ID:        utils.GenerateJobID(),
		Status:    JobStatusRunning,
		Total:     len(listings),
		Message:   "Đang xử lý...",
		CreatedAt: now,
		UpdatedAt: now,
	}

	ls.mu.Lock()
	ls.pruneJobsLocked(now)
	ls.jobs[job.ID] = job
	snapshot := *job
	ls.mu.Unlock()

	go ls.runJob(job.ID, listings, useCache)
	return snapshot
}

func (ls *ListingService) runJob(id string, listings []models.RawListing, useCache bool) {
	results, sum, err := ls.Batch(context.Background(), listings, useCache)

	ls.mu.Lock()
	defer ls.mu.Unlock()
	job, ok := ls.jobs[id]
	if !ok {
		return
	}
	job.UpdatedAt = time.Now()
	if err != nil {
		job.Status = JobStatusFailed
		job.Message = err.Error()
		ls.logger.Error("Batch job failed", zap.String("job_id", id), zap.Error(err))
		return
	}
	job.Status = JobStatusDone
	job.Message = "Hoàn thành xử lý"
	job.Summary = &sum
	job.results = results

	ls.logger.Info("Batch job completed",
		zap.String("job_id", id),
		zap.Int("total", sum.Total),
		zap.Int("cleaned", sum.Cleaned))
}

// GetJob lấy trạng thái job
func (ls *ListingService) GetJob(id string) (Job, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	job, ok := ls.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// GetJobResults lấy kết quả job đã xong
func (ls *ListingService) GetJobResults(id string) ([]models.CleanResult, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	job, ok := ls.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	switch job.Status {
	case JobStatusDone:
		return job.results, nil
	case JobStatusFailed:
		return nil, eris.Errorf("job %s failed: %s", id, job.Message)
	default:
		return nil, eris.Errorf("job %s is still %s", id, job.Status)
	}
}

// pruneJobsLocked xóa job đã kết thúc quá jobRetention; gọi khi đang giữ ls.mu
func (ls *ListingService) pruneJobsLocked(now time.Time) {
	for id, job := range ls.jobs {
		if job.Status != JobStatusRunning && now.Sub(job.UpdatedAt) > jobRetention {
			delete(ls.jobs, id)
		}
	}
}
