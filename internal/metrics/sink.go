package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
// If the metrics backend is unavailable, implementations log warnings and continue.
type Sink interface {
	// Scanner metrics
	ScanStarted()
	ScanCompleted(duration time.Duration, matched int, err error)
	ScanSkipped()

	// Mailer metrics
	MailAttemptCompleted(statusClass string, duration time.Duration)
	MailOutcome(outcome string)
	EventsInFlightIncr()
	EventsInFlightDecr()

	// EventBus metrics
	BufferSizeUpdate(size int)
	BufferCapacitySet(capacity int)
	BufferSaturationUpdate(saturation float64)
	EmitError()
}

// Outcome constants for MailOutcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// StatusClass constants for MailAttemptCompleted.
const (
	StatusClassOK          = "ok"
	StatusClassTimeout     = "timeout"
	StatusClassCircuitOpen = "circuit_open"
	StatusClassSendError   = "send_error"
)
