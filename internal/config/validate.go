package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration for errors.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	// DATABASE_URL is required
	if cfg.DatabaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "DATABASE_URL",
			Message: "required",
		})
	}

	// REMINDER_CRON must be a parseable five-field expression
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cfg.ReminderCron); err != nil {
		errs = append(errs, ValidationError{
			Field:   "REMINDER_CRON",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}

	if _, err := time.LoadLocation(cfg.ReminderTZ); err != nil {
		errs = append(errs, ValidationError{
			Field:   "REMINDER_TZ",
			Message: fmt.Sprintf("invalid timezone: %v", err),
		})
	}

	for _, check := range []struct {
		field string
		raw   string
		d     time.Duration
	}{
		{"MAIL_TIMEOUT", cfg.MailTimeoutStr, cfg.MailTimeout},
		{"MAILER_DRAIN_TIMEOUT", cfg.MailerDrainTimeoutStr, cfg.MailerDrainTimeout},
		{"DB_OP_TIMEOUT", cfg.DBOpTimeoutStr, cfg.DBOpTimeout},
		{"HTTP_SHUTDOWN_TIMEOUT", cfg.HTTPShutdownTimeoutStr, cfg.HTTPShutdownTimeout},
	} {
		if _, err := time.ParseDuration(check.raw); err != nil {
			errs = append(errs, ValidationError{
				Field:   check.field,
				Message: fmt.Sprintf("invalid duration: %v", err),
			})
		} else if check.d <= 0 {
			errs = append(errs, ValidationError{
				Field:   check.field,
				Message: "must be positive",
			})
		}
	}

	// Mail delivery needs either a full SMTP config or nothing at all.
	if cfg.SMTPAddr != "" && cfg.SMTPFrom == "" {
		errs = append(errs, ValidationError{
			Field:   "SMTP_FROM",
			Message: "required when SMTP_ADDR is set",
		})
	}
	if cfg.SMTPAddr != "" && !strings.Contains(cfg.SMTPAddr, ":") {
		errs = append(errs, ValidationError{
			Field:   "SMTP_ADDR",
			Message: "must be host:port",
		})
	}

	// Without Redis the API needs the static token fallback to authenticate anyone.
	if cfg.RedisAddr == "" && cfg.AuthStaticTokens == "" {
		errs = append(errs, ValidationError{
			Field:   "REDIS_ADDR",
			Message: "required unless AUTH_STATIC_TOKENS is set",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
