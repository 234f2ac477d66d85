// Package notify delivers reminder messages. The core only depends on the
// settled Result of a send; transports live behind the Sender interface.
package notify

import (
	"context"
	"time"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Result is the settled outcome of one send attempt.
type Result struct {
	Error    error
	Duration time.Duration
}

func (r Result) IsSuccess() bool {
	return r.Error == nil
}

type Sender interface {
	Send(ctx context.Context, msg Message) Result

	// Host identifies the delivery endpoint for circuit-breaker keying.
	Host() string
}
