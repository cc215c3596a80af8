package jobs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobsKeepCreationOrder(t *testing.T) {
	m := NewManager()
	a := m.CreateJob("command", "data/commands/get_news_data")
	b := m.CreateJob("command", "data/commands/set_alarm_data")
	c := m.CreateJob("ordinal", "data/ordinal_scalers/mood_data")

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, []*Job{a, b, c}, m.ListJobs())

	assert.Equal(t, "data/commands/set_alarm_data", b.Dataset)
	assert.Equal(t, JobPending, b.GetStatus())
}

func TestFailed(t *testing.T) {
	m := NewManager()
	a := m.CreateJob("command", "a")
	b := m.CreateJob("command", "b")
	c := m.CreateJob("command", "c")

	a.SetStatus(JobCompleted)
	c.SetError(errors.New("Failed 1 out of 3 tests"))
	b.SetError(errors.New("bad dataset"))

	failed := m.Failed()
	assert.Equal(t, []*Job{b, c}, failed)
	assert.EqualError(t, c.GetError(), "Failed 1 out of 3 tests")
	assert.NotNil(t, c.EndTime)
}

func TestFailedIncludesCancelled(t *testing.T) {
	m := NewManager()
	done := m.CreateJob("command", "a")
	interrupted := m.CreateJob("command", "b")

	done.SetStatus(JobCompleted)
	interrupted.SetStatus(JobCancelled)

	assert.Equal(t, []*Job{interrupted}, m.Failed())
	assert.NoError(t, interrupted.GetError())
}

func TestCancelPending(t *testing.T) {
	m := NewManager()
	done := m.CreateJob("command", "a")
	running := m.CreateJob("command", "b")
	pending := m.CreateJob("command", "c")

	done.SetStatus(JobCompleted)
	running.SetStatus(JobRunning)
	m.CancelPending()

	assert.Equal(t, JobCompleted, done.GetStatus())
	assert.Equal(t, JobCancelled, running.GetStatus())
	assert.Equal(t, JobCancelled, pending.GetStatus())
}

func TestJobProgressAndLogs(t *testing.T) {
	job := NewManager().CreateJob("ordinal", "mood")
	job.SetProgress(0.5)
	job.AddLog("sweep started")
	job.SetResult(42)

	assert.Equal(t, 0.5, job.GetProgress())
	assert.Equal(t, 42, job.GetResult())
	logs := job.GetLogs()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], "sweep started")
}
