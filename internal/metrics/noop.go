package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) ScanStarted()                                             {}
func (n *NoopSink) ScanCompleted(duration time.Duration, m int, err error)   {}
func (n *NoopSink) ScanSkipped()                                             {}
func (n *NoopSink) MailAttemptCompleted(statusClass string, d time.Duration) {}
func (n *NoopSink) MailOutcome(outcome string)                               {}
func (n *NoopSink) EventsInFlightIncr()                                      {}
func (n *NoopSink) EventsInFlightDecr()                                      {}
func (n *NoopSink) BufferSizeUpdate(size int)                                {}
func (n *NoopSink) BufferCapacitySet(capacity int)                           {}
func (n *NoopSink) BufferSaturationUpdate(saturation float64)                {}
func (n *NoopSink) EmitError()                                               {}
