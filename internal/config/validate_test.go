package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:            "postgres://localhost/jobtracker",
		RedisAddr:              "localhost:6379",
		ReminderCron:           "0 9 * * *",
		ReminderTZ:             "UTC",
		MailTimeoutStr:         "30s",
		MailTimeout:            30 * time.Second,
		MailerDrainTimeoutStr:  "30s",
		MailerDrainTimeout:     30 * time.Second,
		DBOpTimeoutStr:         "5s",
		DBOpTimeout:            5 * time.Second,
		HTTPShutdownTimeoutStr: "10s",
		HTTPShutdownTimeout:    10 * time.Second,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("valid config should not return error, got: %v", err)
	}
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error should mention DATABASE_URL: %q", err.Error())
	}
}

func TestValidate_InvalidCron(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"four fields", "* * * *"},
		{"invalid hour", "0 25 * * *"},
		{"non-numeric", "abc * * * *"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ReminderCron = tt.expr

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error for cron %q", tt.expr)
			}
			if !strings.Contains(err.Error(), "REMINDER_CRON") {
				t.Errorf("error should mention REMINDER_CRON: %q", err.Error())
			}
		})
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.ReminderTZ = "Mars/Olympus_Mons"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "REMINDER_TZ") {
		t.Errorf("expected REMINDER_TZ error, got: %v", err)
	}
}

func TestValidate_InvalidDurations(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"mail timeout garbage", func(c *Config) { c.MailTimeoutStr = "soon" }, "MAIL_TIMEOUT"},
		{"mail timeout zero", func(c *Config) { c.MailTimeoutStr = "0s"; c.MailTimeout = 0 }, "MAIL_TIMEOUT"},
		{"db op timeout negative", func(c *Config) { c.DBOpTimeoutStr = "-1s"; c.DBOpTimeout = -time.Second }, "DB_OP_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mod(&cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should mention %s: %q", tt.field, err.Error())
			}
		})
	}
}

func TestValidate_SMTPAddrWithoutFrom(t *testing.T) {
	cfg := validConfig()
	cfg.SMTPAddr = "smtp.example.com:587"
	cfg.SMTPFrom = ""

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "SMTP_FROM") {
		t.Errorf("expected SMTP_FROM error, got: %v", err)
	}
}

func TestValidate_SMTPAddrMissingPort(t *testing.T) {
	cfg := validConfig()
	cfg.SMTPAddr = "smtp.example.com"
	cfg.SMTPFrom = "reminders@example.com"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "SMTP_ADDR") {
		t.Errorf("expected SMTP_ADDR error, got: %v", err)
	}
}

func TestValidate_NoAuthBackend(t *testing.T) {
	cfg := validConfig()
	cfg.RedisAddr = ""
	cfg.AuthStaticTokens = ""

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Errorf("expected REDIS_ADDR error, got: %v", err)
	}
}

func TestValidate_StaticTokensAllowMissingRedis(t *testing.T) {
	cfg := validConfig()
	cfg.RedisAddr = ""
	cfg.AuthStaticTokens = "devtoken:7b1c8f3a-1111-4222-8333-944445555666:dev@example.com"

	if err := Validate(cfg); err != nil {
		t.Errorf("static tokens should satisfy the auth requirement, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	cfg.ReminderCron = "bogus"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected errors")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) < 2 {
		t.Errorf("expected at least 2 errors, got %d: %v", len(verrs), verrs)
	}
}
