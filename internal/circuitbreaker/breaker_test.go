package circuitbreaker

import (
	"testing"
	"time"
)

func TestAllow_UnknownHost_Allowed(t *testing.T) {
	cb := New(3, 5*time.Second)
	if err := cb.Allow("smtp.example.com:587"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAllow_BelowThreshold_Allowed(t *testing.T) {
	cb := New(3, 5*time.Second)
	host := "smtp.example.com:587"
	cb.RecordFailure(host)
	cb.RecordFailure(host)
	if err := cb.Allow(host); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAllow_AtThreshold_Open(t *testing.T) {
	cb := New(3, 5*time.Second)
	host := "smtp.example.com:587"
	cb.RecordFailure(host)
	cb.RecordFailure(host)
	cb.RecordFailure(host)
	if err := cb.Allow(host); err == nil {
		t.Fatal("expected ErrCircuitOpen, got nil")
	}
}

func TestAllow_OpenAfterCooldown_HalfOpen(t *testing.T) {
	cb := New(3, 10*time.Millisecond)
	host := "smtp.example.com:587"
	cb.RecordFailure(host)
	cb.RecordFailure(host)
	cb.RecordFailure(host)
	time.Sleep(15 * time.Millisecond)
	if err := cb.Allow(host); err != nil {
		t.Fatalf("expected nil (probe allowed), got %v", err)
	}
	if err := cb.Allow(host); err == nil {
		t.Fatal("expected ErrCircuitOpen while half-open probe in flight")
	}
}

func TestRecordSuccess_ResetsToClosed(t *testing.T) {
	cb := New(3, 10*time.Millisecond)
	host := "smtp.example.com:587"
	cb.RecordFailure(host)
	cb.RecordFailure(host)
	cb.RecordFailure(host)
	time.Sleep(15 * time.Millisecond)
	cb.Allow(host)
	cb.RecordSuccess(host)
	if err := cb.Allow(host); err != nil {
		t.Fatalf("expected nil after success resets breaker, got %v", err)
	}
}

func TestHostsAreIndependent(t *testing.T) {
	cb := New(1, time.Minute)
	cb.RecordFailure("smtp.dead.example.com:587")
	if err := cb.Allow("smtp.alive.example.com:587"); err != nil {
		t.Fatalf("unrelated host should be allowed, got %v", err)
	}
}
