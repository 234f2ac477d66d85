package notify

import (
	"context"
	"log"
	"time"
)

// LogSender writes messages to the process log instead of delivering them.
// Used when SMTP is not configured so the rest of the pipeline still runs.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(ctx context.Context, msg Message) Result {
	start := time.Now()
	log.Printf("notify: (log only) to=%s subject=%q", msg.To, msg.Subject)
	return Result{Duration: time.Since(start)}
}

func (s *LogSender) Host() string {
	return "log"
}
