package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "gopkg.in/gomail.v2"
)

// SMTPSender delivers messages through a single SMTP relay.
type SMTPSender struct {
	addr string // host:port
	from string
	dial func(msg Message) error
}

// NewSMTPSender creates a sender for the given relay. addr is host:port;
// user/pass may be empty for unauthenticated relays.
func NewSMTPSender(addr, user, pass, from string) (*SMTPSender, error) {
	host, portStr, ok := strings.Cut(addr, ":")
	if !ok {
		return nil, fmt.Errorf("smtp addr %q: want host:port", addr)
	}
	port := 0
	for _, c := range portStr {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("smtp addr %q: invalid port", addr)
		}
		port = port*10 + int(c-'0')
	}

	dialer := gomail.NewDialer(host, port, user, pass)

	s := &SMTPSender{addr: addr, from: from}
	s.dial = func(msg Message) error {
		m := gomail.NewMessage()
		m.SetHeader("From", s.from)
		m.SetHeader("To", msg.To)
		m.SetHeader("Subject", msg.Subject)
		m.SetBody("text/plain", msg.Body)
		return dialer.DialAndSend(m)
	}
	return s, nil
}

// Send delivers the message, honoring ctx cancellation. gomail has no
// context support, so the dial runs in a goroutine and a cancelled ctx
// abandons it; the goroutine finishes on its own SMTP timeouts.
func (s *SMTPSender) Send(ctx context.Context, msg Message) Result {
	start := time.Now()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.dial(msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return Result{Error: fmt.Errorf("smtp send: %w", err), Duration: time.Since(start)}
		}
		return Result{Duration: time.Since(start)}
	case <-ctx.Done():
		return Result{Error: ctx.Err(), Duration: time.Since(start)}
	}
}

func (s *SMTPSender) Host() string {
	return s.addr
}
