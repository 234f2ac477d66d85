package api

import (
	"time"

	"github.com/roshini1406/job-tracker1/internal/domain"
)

type CreateJobRequest struct {
	Title         string `json:"title"`
	Company       string `json:"company"`
	Status        string `json:"status,omitempty"`        // default "Applied"
	DateApplied   string `json:"date_applied,omitempty"`  // RFC3339 or YYYY-MM-DD, default now
	Notes         string `json:"notes,omitempty"`
	JobURL        string `json:"job_url,omitempty"`
	ReminderDate  string `json:"reminder_date,omitempty"` // RFC3339 or YYYY-MM-DD
	AttachmentRef string `json:"attachment_ref,omitempty"`
}

// UpdateJobRequest carries a partial update; nil means "leave unchanged".
// An empty-string reminder_date clears the reminder. There is no owner
// field: an owner_id key in the request body is silently dropped by the
// decoder, which is what keeps ownership immutable.
type UpdateJobRequest struct {
	Title         *string `json:"title"`
	Company       *string `json:"company"`
	Status        *string `json:"status"`
	DateApplied   *string `json:"date_applied"`
	Notes         *string `json:"notes"`
	JobURL        *string `json:"job_url"`
	ReminderDate  *string `json:"reminder_date"`
	AttachmentRef *string `json:"attachment_ref"`
}

// UpdateFields is the whitelist handed to the store. owner_id is
// deliberately absent; the store applies exactly these columns.
type UpdateFields struct {
	Title         *string
	Company       *string
	Status        *domain.Status
	DateApplied   *time.Time
	Notes         *string
	JobURL        *string
	ReminderDate  *time.Time
	ClearReminder bool
	AttachmentRef *string
}

type JobResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	Status        string `json:"status"`
	DateApplied   string `json:"date_applied"`
	Notes         string `json:"notes,omitempty"`
	JobURL        string `json:"job_url,omitempty"`
	ReminderDate  string `json:"reminder_date,omitempty"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type DeleteJobResponse struct {
	ID string `json:"id"`
}

type MeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toJobResponse(app domain.JobApplication) JobResponse {
	resp := JobResponse{
		ID:            app.ID.String(),
		OwnerID:       app.OwnerID.String(),
		Title:         app.Title,
		Company:       app.Company,
		Status:        string(app.Status),
		DateApplied:   formatTime(app.DateApplied),
		Notes:         app.Notes,
		JobURL:        app.JobURL,
		AttachmentRef: app.AttachmentRef,
		CreatedAt:     formatTime(app.CreatedAt),
		UpdatedAt:     formatTime(app.UpdatedAt),
	}
	if app.ReminderDate != nil {
		resp.ReminderDate = formatTime(*app.ReminderDate)
	}
	return resp
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
