package api

import (
	"fmt"
	"net/url"
	"time"

	"github.com/roshini1406/job-tracker1/internal/domain"
)

// Accepted layouts for date fields in request bodies.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func validateCreateJob(req CreateJobRequest) error {
	if req.Title == "" {
		return fmt.Errorf("title is required")
	}
	if req.Company == "" {
		return fmt.Errorf("company is required")
	}

	if req.Status != "" {
		if !domain.Status(req.Status).Valid() {
			return fmt.Errorf("invalid status %q, valid statuses: %v", req.Status, domain.Statuses)
		}
	}

	if req.DateApplied != "" {
		if _, err := parseDate(req.DateApplied); err != nil {
			return fmt.Errorf("invalid date_applied: %w", err)
		}
	}

	if req.ReminderDate != "" {
		if _, err := parseDate(req.ReminderDate); err != nil {
			return fmt.Errorf("invalid reminder_date: %w", err)
		}
	}

	if req.JobURL != "" {
		if err := validateJobURL(req.JobURL); err != nil {
			return fmt.Errorf("invalid job_url: %w", err)
		}
	}

	return nil
}

func validateUpdateJob(req UpdateJobRequest) error {
	if req.Title != nil && *req.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if req.Company != nil && *req.Company == "" {
		return fmt.Errorf("company cannot be empty")
	}

	if req.Status != nil && !domain.Status(*req.Status).Valid() {
		return fmt.Errorf("invalid status %q, valid statuses: %v", *req.Status, domain.Statuses)
	}

	if req.DateApplied != nil {
		if _, err := parseDate(*req.DateApplied); err != nil {
			return fmt.Errorf("invalid date_applied: %w", err)
		}
	}

	// Empty string clears the reminder; anything else must parse.
	if req.ReminderDate != nil && *req.ReminderDate != "" {
		if _, err := parseDate(*req.ReminderDate); err != nil {
			return fmt.Errorf("invalid reminder_date: %w", err)
		}
	}

	if req.JobURL != nil && *req.JobURL != "" {
		if err := validateJobURL(*req.JobURL); err != nil {
			return fmt.Errorf("invalid job_url: %w", err)
		}
	}

	return nil
}

func validateJobURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
