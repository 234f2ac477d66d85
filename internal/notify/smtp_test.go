package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewSMTPSender_AddrParsing(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"host and port", "smtp.example.com:587", false},
		{"missing port", "smtp.example.com", true},
		{"non-numeric port", "smtp.example.com:abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSMTPSender(tt.addr, "user", "pass", "from@example.com")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSMTPSender(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestSMTPSender_Host(t *testing.T) {
	s, err := NewSMTPSender("smtp.example.com:587", "", "", "from@example.com")
	if err != nil {
		t.Fatalf("NewSMTPSender failed: %v", err)
	}
	if s.Host() != "smtp.example.com:587" {
		t.Errorf("Host() = %q", s.Host())
	}
}

func TestSMTPSender_SendSuccess(t *testing.T) {
	s, err := NewSMTPSender("smtp.example.com:587", "", "", "from@example.com")
	if err != nil {
		t.Fatalf("NewSMTPSender failed: %v", err)
	}
	var got Message
	s.dial = func(msg Message) error {
		got = msg
		return nil
	}

	res := s.Send(context.Background(), Message{
		To:      "owner@example.com",
		Subject: "Job Application Reminder",
		Body:    "Don't forget to follow up on your application for Backend Engineer at Initech.",
	})
	if !res.IsSuccess() {
		t.Fatalf("Send failed: %v", res.Error)
	}
	if got.To != "owner@example.com" {
		t.Errorf("dialed To = %q", got.To)
	}
}

func TestSMTPSender_SendFailure(t *testing.T) {
	s, err := NewSMTPSender("smtp.example.com:587", "", "", "from@example.com")
	if err != nil {
		t.Fatalf("NewSMTPSender failed: %v", err)
	}
	s.dial = func(Message) error { return errors.New("550 relay denied") }

	res := s.Send(context.Background(), Message{To: "owner@example.com"})
	if res.IsSuccess() {
		t.Fatal("expected failure result")
	}
}

func TestSMTPSender_ContextCancelAbandonsHungDial(t *testing.T) {
	s, err := NewSMTPSender("smtp.example.com:587", "", "", "from@example.com")
	if err != nil {
		t.Fatalf("NewSMTPSender failed: %v", err)
	}
	release := make(chan struct{})
	s.dial = func(Message) error {
		<-release
		return nil
	}
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan Result, 1)
	go func() { done <- s.Send(ctx, Message{To: "owner@example.com"}) }()

	select {
	case res := <-done:
		if res.Error == nil {
			t.Fatal("expected timeout error from hung dial")
		}
	case <-time.After(time.Second):
		t.Fatal("Send did not return after ctx expiry; hung send must not block")
	}
}
