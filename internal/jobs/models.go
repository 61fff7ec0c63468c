package jobs

import "time"

// Status represents the lifecycle of a transcription run.
type Status string

// Job lifecycle statuses.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one recorded transcription run.
type Job struct {
	ID           int64
	RunID        string
	InputPath    string
	OutputPath   string
	Format       string
	ModelName    string
	Language     string
	Status       Status
	ErrorKind    string
	ErrorMessage string

	// Run metrics. AudioSeconds counts settled audio only, the same basis
	// the real-time factor is computed on.
	AudioSeconds   float64
	ElapsedSeconds float64
	RealTimeFactor float64
	WordCount      int64
	CueCount       int64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// StartParams describes a run being recorded.
type StartParams struct {
	InputPath  string
	OutputPath string
	Format     string
	ModelName  string
	Language   string
}

// Metrics captures the measurable outcome of a completed run.
type Metrics struct {
	AudioSeconds   float64
	ElapsedSeconds float64
	RealTimeFactor float64
	WordCount      int64
	CueCount       int64
}

// Summary is a count of jobs grouped by status.
type Summary struct {
	Total     int
	Pending   int
	Running   int
	Completed int
	Failed    int
}
