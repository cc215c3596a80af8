package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Job tracks the training of one dataset.
type Job struct {
	ID          string
	Type        string
	Dataset     string
	Status      JobStatus
	Progress    float64
	StartTime   time.Time
	EndTime     *time.Time
	Error       error
	Result      any
	Description string
	Logs        []string
	mu          sync.RWMutex
}

// Manager keeps jobs in creation order.
type Manager struct {
	jobs  map[string]*Job
	order []string
	mu    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
	}
}

func (m *Manager) CreateJob(jobType, dataset string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Dataset:     dataset,
		Status:      JobPending,
		StartTime:   time.Now(),
		Description: fmt.Sprintf("%s %s", jobType, dataset),
		Logs:        []string{},
	}

	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	return job
}

func (m *Manager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.order))
	for _, id := range m.order {
		jobs = append(jobs, m.jobs[id])
	}
	return jobs
}

// Failed returns the jobs that ended in JobFailed or JobCancelled, in
// creation order.
func (m *Manager) Failed() []*Job {
	var failed []*Job
	for _, job := range m.ListJobs() {
		if status := job.GetStatus(); status == JobFailed || status == JobCancelled {
			failed = append(failed, job)
		}
	}
	return failed
}

// CancelPending marks every job that has not finished as cancelled.
func (m *Manager) CancelPending() {
	for _, job := range m.ListJobs() {
		switch job.GetStatus() {
		case JobPending, JobRunning:
			job.SetStatus(JobCancelled)
		}
	}
}

func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	if status == JobCompleted || status == JobFailed || status == JobCancelled {
		now := time.Now()
		j.EndTime = &now
	}
}

func (j *Job) SetProgress(progress float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress = progress
}

func (j *Job) AddLog(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", timestamp, message))
}

func (j *Job) SetError(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Error = err
	j.Status = JobFailed
	now := time.Now()
	j.EndTime = &now
}

func (j *Job) SetResult(result any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result = result
}

func (j *Job) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

func (j *Job) GetProgress() float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Progress
}

func (j *Job) GetError() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Error
}

func (j *Job) GetResult() any {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Result
}

func (j *Job) GetLogs() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	logs := make([]string, len(j.Logs))
	copy(logs, j.Logs)
	return logs
}
