package jobs

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrQueueClosed is returned when publishing to or starting a stopped queue.
	ErrQueueClosed = errors.New("queue is closed")
	// ErrJobNotFound is returned by a JobStore for an unknown ID.
	ErrJobNotFound = errors.New("job not found")
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAssistantReply answers a forwarded chat message.
	JobTypeAssistantReply JobType = "assistant_reply"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Failed jobs are never retried.
	JobStatusFailed JobStatus = "failed"
)

// AssistantJob asks the external assistant to answer a message that the
// chat engine could not handle locally.
type AssistantJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// SessionID is the chat session whose transcript receives the reply.
	SessionID string `json:"session_id"`

	// Prompt is the question with the financial context already prepended.
	Prompt string `json:"prompt"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// Reply is the assistant answer written to the transcript.
	Reply string `json:"reply,omitempty"`

	// MessageID is the transcript message holding Reply.
	MessageID string `json:"message_id,omitempty"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *AssistantJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *AssistantJob) GetType() JobType {
	return JobTypeAssistantReply
}

// GetStatus implements the Job interface.
func (j *AssistantJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishAssistantJob enqueues a job for asynchronous processing.
	PublishAssistantJob(ctx context.Context, job *AssistantJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. A returned error marks
// the job failed; it is not retried.
type JobHandler func(ctx context.Context, job *AssistantJob) error

// JobStore defines the interface for storing and retrieving job status.
// A job is never left pending after its queue stops: it either ran or was
// marked failed with ErrQueueClosed.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AssistantJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*AssistantJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AssistantJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// SessionID filters jobs by session.
	SessionID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
