package apify

import (
	"fmt"
	"time"
)

// ValidationError reports a platform value the client has no actor for.
type ValidationError struct {
	Platform string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("apify: unsupported platform %q", e.Platform)
}

// ConfigError reports required configuration that was absent. It is raised
// before any network call is made.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("apify: missing configuration: %s", e.Field)
}

// TransportError wraps an HTTP-level failure talking to the Apify API,
// keeping any error body the API returned.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("apify: %s: %v", e.Op, e.Err)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// JobFailedError is a terminal non-success status reported by the actor run
// itself, including the actor's own TIMED-OUT.
type JobFailedError struct {
	Status string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("apify: actor run finished with status %s", e.Status)
}

// WaitTimeoutError means the client gave up polling a run that never reached
// a terminal state. Distinct from JobFailedError with status TIMED-OUT, which
// is the actor reporting its own timeout.
type WaitTimeoutError struct {
	Waited time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("apify: actor run still not finished after %s", e.Waited)
}
