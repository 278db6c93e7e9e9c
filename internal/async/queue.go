package async

import (
	"context"
	"time"
)

// Job is one extraction document waiting to be evaluated.
type Job struct {
	Path        string
	Product     string // optional catalog product overriding detection
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
