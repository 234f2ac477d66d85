package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roshini1406/job-tracker1/internal/api"
	"github.com/roshini1406/job-tracker1/internal/domain"
	"github.com/roshini1406/job-tracker1/internal/scanner"
)

// Store implements the record store on PostgreSQL. It serves the API,
// the scanner, and the mailer through their consumer-side interfaces.
type Store struct {
	db        *sql.DB
	opTimeout time.Duration
}

// New creates a PostgreSQL store. Every operation is bounded by opTimeout.
func New(db *sql.DB, opTimeout time.Duration) *Store {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &Store{db: db, opTimeout: opTimeout}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, queryMigrate)
	return err
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// CreateApplication inserts a new application record.
func (s *Store) CreateApplication(ctx context.Context, app domain.JobApplication) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, queryInsertApplication,
		app.ID,
		app.OwnerID,
		app.Title,
		app.Company,
		string(app.Status),
		app.DateApplied,
		app.Notes,
		app.JobURL,
		app.ReminderDate,
		app.AttachmentRef,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// GetApplicationByID returns one application, or domain.ErrNotFound.
func (s *Store) GetApplicationByID(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, queryGetApplication, id)
	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// ListApplicationsByOwner returns one owner's applications, newest first.
func (s *Store) ListApplicationsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.JobApplication, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, queryListByOwner, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// AllApplicationsByOwner returns the owner's full record set for aggregation.
func (s *Store) AllApplicationsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.JobApplication, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, queryAllByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// UpdateApplication applies the given fields and returns the updated row,
// or domain.ErrNotFound. A no-op update still refreshes updated_at.
func (s *Store) UpdateApplication(ctx context.Context, id uuid.UUID, fields api.UpdateFields) (*domain.JobApplication, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	set := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		add("title", *fields.Title)
	}
	if fields.Company != nil {
		add("company", *fields.Company)
	}
	if fields.Status != nil {
		add("status", string(*fields.Status))
	}
	if fields.DateApplied != nil {
		add("date_applied", *fields.DateApplied)
	}
	if fields.Notes != nil {
		add("notes", *fields.Notes)
	}
	if fields.JobURL != nil {
		add("job_url", *fields.JobURL)
	}
	if fields.ClearReminder {
		set = append(set, "reminder_date = NULL")
	} else if fields.ReminderDate != nil {
		add("reminder_date", *fields.ReminderDate)
	}
	if fields.AttachmentRef != nil {
		add("attachment_ref", *fields.AttachmentRef)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE applications SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), applicationColumns,
	)

	row := s.db.QueryRowContext(ctx, query, args...)
	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// DeleteApplication removes one application, or returns domain.ErrNotFound.
func (s *Store) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, queryDeleteApplication, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindByReminderWindow returns applications whose reminder date falls in
// [start, end), each joined with its owner's email.
func (s *Store) FindByReminderWindow(ctx context.Context, start, end time.Time) ([]scanner.Match, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, queryReminderWindow, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []scanner.Match
	for rows.Next() {
		var m scanner.Match
		var status string
		var reminder sql.NullTime

		err := rows.Scan(
			&m.App.ID,
			&m.App.OwnerID,
			&m.App.Title,
			&m.App.Company,
			&status,
			&m.App.DateApplied,
			&m.App.Notes,
			&m.App.JobURL,
			&reminder,
			&m.App.AttachmentRef,
			&m.App.CreatedAt,
			&m.App.UpdatedAt,
			&m.OwnerEmail,
		)
		if err != nil {
			return nil, err
		}
		m.App.Status = domain.Status(status)
		if reminder.Valid {
			t := reminder.Time
			m.App.ReminderDate = &t
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserByID returns one user, or domain.ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var u domain.User
	err := s.db.QueryRowContext(ctx, queryGetUser, id).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// InsertMailAttempt appends one reminder send to the mail log.
func (s *Store) InsertMailAttempt(ctx context.Context, attempt domain.MailAttempt) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, queryInsertMailAttempt,
		attempt.ID,
		attempt.ApplicationID,
		attempt.OwnerID,
		attempt.Address,
		attempt.Error,
		attempt.StartedAt,
		attempt.FinishedAt,
	)
	return err
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*domain.JobApplication, error) {
	var app domain.JobApplication
	var status string
	var reminder sql.NullTime

	err := row.Scan(
		&app.ID,
		&app.OwnerID,
		&app.Title,
		&app.Company,
		&status,
		&app.DateApplied,
		&app.Notes,
		&app.JobURL,
		&reminder,
		&app.AttachmentRef,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Status = domain.Status(status)
	if reminder.Valid {
		t := reminder.Time
		app.ReminderDate = &t
	}
	return &app, nil
}

func collectApplications(rows *sql.Rows) ([]domain.JobApplication, error) {
	var result []domain.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
