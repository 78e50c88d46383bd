package types

import (
	"strings"
	"sync"
	"time"
)

// Scene is one timed unit of the generated video plan.
type Scene struct {
	SceneNumber int     `json:"scene_number"`
	Text        string  `json:"text"`
	Duration    float64 `json:"duration"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
}

// Retime recomputes start/end offsets by cumulative summation over the
// slice order. Callers sort by scene number first.
func Retime(scenes []Scene) {
	elapsed := 0.0
	for i := range scenes {
		scenes[i].StartTime = elapsed
		scenes[i].EndTime = elapsed + scenes[i].Duration
		elapsed = scenes[i].EndTime
	}
}

// TotalDuration returns the sum of all scene durations.
func TotalDuration(scenes []Scene) float64 {
	total := 0.0
	for _, s := range scenes {
		total += s.Duration
	}
	return total
}

// PlanSummary is a derived aggregate over a scene plan.
type PlanSummary struct {
	SceneCount       int     `json:"scene_count"`
	TotalDuration    float64 `json:"total_duration"`
	TotalWords       int     `json:"total_words"`
	AvgSceneDuration float64 `json:"avg_scene_duration"`
}

// Summarize computes the plan summary for a scene list.
func Summarize(scenes []Scene) PlanSummary {
	sum := PlanSummary{SceneCount: len(scenes)}
	for _, s := range scenes {
		sum.TotalDuration += s.Duration
		sum.TotalWords += len(strings.Fields(s.Text))
	}
	if sum.SceneCount > 0 {
		sum.AvgSceneDuration = sum.TotalDuration / float64(sum.SceneCount)
	}
	return sum
}

// Run status values reported to callers polling a generation task.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// RunState is the per-run status record updated by the pipeline and read
// by whoever launched it. One instance per run, never shared across runs.
// The pipeline goroutine mutates it while a status poll reads it, so the
// mutable fields live behind the mutex: writes go through the Set methods
// and reads through Snapshot.
type RunState struct {
	TaskID    string
	Prompt    string
	CreatedAt time.Time

	mu         sync.Mutex
	status     string
	progress   int
	message    string
	outputFile string
	err        string
}

// NewRunState returns a pending state for a freshly accepted prompt.
func NewRunState(taskID, prompt string) *RunState {
	return &RunState{
		TaskID:    taskID,
		Prompt:    prompt,
		status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// SetProcessing records stage progress for a run that is underway.
func (s *RunState) SetProcessing(progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusProcessing
	s.progress = progress
	s.message = message
}

// SetFailed marks the run failed with the given reason.
func (s *RunState) SetFailed(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusFailed
	s.err = reason
	s.message = reason
}

// SetCompleted marks the run finished with its final output file.
func (s *RunState) SetCompleted(outputFile string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusCompleted
	s.progress = 100
	s.message = "video generation completed"
	s.outputFile = outputFile
}

// RunSnapshot is a point-in-time copy of a run's state, safe to hold and
// serialize while the pipeline keeps mutating the original.
type RunSnapshot struct {
	TaskID     string    `json:"task_id"`
	Prompt     string    `json:"prompt"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	Message    string    `json:"message"`
	OutputFile string    `json:"output_file,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshot returns a consistent copy of the current state.
func (s *RunState) Snapshot() RunSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RunSnapshot{
		TaskID:     s.TaskID,
		Prompt:     s.Prompt,
		Status:     s.status,
		Progress:   s.progress,
		Message:    s.message,
		OutputFile: s.outputFile,
		Error:      s.err,
		CreatedAt:  s.CreatedAt,
	}
}
