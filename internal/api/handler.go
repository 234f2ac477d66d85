package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roshini1406/job-tracker1/internal/auth"
	"github.com/roshini1406/job-tracker1/internal/domain"
	"github.com/roshini1406/job-tracker1/internal/guard"
	"github.com/roshini1406/job-tracker1/internal/stats"
)

// Pagination defaults and limits.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type Store interface {
	CreateApplication(ctx context.Context, app domain.JobApplication) error
	GetApplicationByID(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error)
	ListApplicationsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.JobApplication, error)
	AllApplicationsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.JobApplication, error)
	UpdateApplication(ctx context.Context, id uuid.UUID, fields UpdateFields) (*domain.JobApplication, error)
	DeleteApplication(ctx context.Context, id uuid.UUID) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// HealthChecker provides database health status for the /health endpoint.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	store     Store
	protected http.Handler
	db        HealthChecker
	clock     func() time.Time
}

// NewHandler builds the HTTP handler. Every route except /health sits
// behind bearer-token authentication.
func NewHandler(store Store, validator auth.TokenValidator) *Handler {
	h := &Handler{store: store, clock: time.Now}
	h.protected = auth.Middleware(validator, http.HandlerFunc(h.serveJobs))
	return h
}

// WithHealthChecker sets the database health checker for verbose /health responses.
func (h *Handler) WithHealthChecker(db HealthChecker) *Handler {
	h.db = db
	return h
}

// WithClock overrides the time source for tests.
func (h *Handler) WithClock(clock func() time.Time) *Handler {
	h.clock = clock
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" && r.Method == http.MethodGet {
		h.health(w, r)
		return
	}
	h.protected.ServeHTTP(w, r)
}

func (h *Handler) serveJobs(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == "/jobs" && r.Method == http.MethodPost:
		h.createJob(w, r)

	case path == "/jobs" && r.Method == http.MethodGet:
		h.listJobs(w, r)

	case path == "/jobs/stats" && r.Method == http.MethodGet:
		h.jobStats(w, r)

	case path == "/me" && r.Method == http.MethodGet:
		h.me(w, r)

	case strings.HasPrefix(path, "/jobs/") && r.Method == http.MethodGet:
		h.getJob(w, r)

	case strings.HasPrefix(path, "/jobs/") && r.Method == http.MethodPut:
		h.updateJob(w, r)

	case strings.HasPrefix(path, "/jobs/") && r.Method == http.MethodDelete:
		h.deleteJob(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	verbose := r.URL.Query().Get("verbose") == "true"

	if !verbose || h.db == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	resp := HealthResponse{
		Status:     "ok",
		Components: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Components["database"] = "unhealthy: " + err.Error()
	} else {
		resp.Components["database"] = "healthy"
	}

	statusCode := http.StatusOK
	if resp.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, resp)
}

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := validateCreateJob(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.clock().UTC()

	status := domain.StatusApplied
	if req.Status != "" {
		status = domain.Status(req.Status)
	}

	dateApplied := now
	if req.DateApplied != "" {
		dateApplied, _ = parseDate(req.DateApplied)
	}

	app := domain.JobApplication{
		ID:            uuid.New(),
		OwnerID:       identity.UserID,
		Title:         req.Title,
		Company:       req.Company,
		Status:        status,
		DateApplied:   dateApplied,
		Notes:         req.Notes,
		JobURL:        req.JobURL,
		AttachmentRef: req.AttachmentRef,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.ReminderDate != "" {
		reminder, _ := parseDate(req.ReminderDate)
		app.ReminderDate = &reminder
	}

	if err := h.store.CreateApplication(r.Context(), app); err != nil {
		log.Printf("api: create job error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	writeJSON(w, http.StatusCreated, toJobResponse(app))
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	apps, err := h.store.ListApplicationsByOwner(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		log.Printf("api: list jobs error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	resp := ListJobsResponse{Jobs: make([]JobResponse, len(apps))}
	for i, app := range apps {
		resp.Jobs[i] = toJobResponse(app)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) jobStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	apps, err := h.store.AllApplicationsByOwner(r.Context(), identity.UserID)
	if err != nil {
		log.Printf("api: job stats error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, stats.Aggregate(apps))
}

// me returns the authenticated caller's profile. The user row may not
// exist yet when sessions come from the external auth service; in that
// case the token identity alone is returned.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	resp := MeResponse{
		ID:    identity.UserID.String(),
		Email: identity.Email,
	}

	user, err := h.store.GetUserByID(r.Context(), identity.UserID)
	switch {
	case err == nil:
		resp.Email = user.Email
		resp.Name = user.Name
		resp.CreatedAt = formatTime(user.CreatedAt)
	case errors.Is(err, domain.ErrNotFound):
		// keep token identity
	default:
		log.Printf("api: me error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	jobID, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	app, err := h.loadOwned(r.Context(), jobID, identity.UserID)
	if err != nil {
		writeOwnershipError(w, err, "get")
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(*app))
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	jobID, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := validateUpdateJob(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Ownership is checked before anything is written.
	if _, err := h.loadOwned(r.Context(), jobID, identity.UserID); err != nil {
		writeOwnershipError(w, err, "update")
		return
	}

	updated, err := h.store.UpdateApplication(r.Context(), jobID, buildUpdateFields(req))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("api: update job error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update job")
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(*updated))
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	jobID, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	if _, err := h.loadOwned(r.Context(), jobID, identity.UserID); err != nil {
		writeOwnershipError(w, err, "delete")
		return
	}

	if err := h.store.DeleteApplication(r.Context(), jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("api: delete job error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete job")
		return
	}

	writeJSON(w, http.StatusOK, DeleteJobResponse{ID: jobID.String()})
}

// loadOwned fetches one application and enforces ownership. A missing
// record and a foreign record come back as distinct errors so callers
// can map them to 404 and 401.
func (h *Handler) loadOwned(ctx context.Context, id, ownerID uuid.UUID) (*domain.JobApplication, error) {
	app, err := h.store.GetApplicationByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := guard.Authorize(app, ownerID); err != nil {
		return nil, err
	}
	return app, nil
}

func writeOwnershipError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "not authorized")
	default:
		log.Printf("api: %s job error: %v", op, err)
		writeError(w, http.StatusInternalServerError, "failed to "+op+" job")
	}
}

// jobIDFromPath extracts the job ID from /jobs/{id}. It writes the
// error response itself and reports whether parsing succeeded.
func jobIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "jobs" {
		writeError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}

	jobID, err := uuid.Parse(parts[1])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return uuid.Nil, false
	}
	return jobID, true
}

func buildUpdateFields(req UpdateJobRequest) UpdateFields {
	fields := UpdateFields{
		Title:         req.Title,
		Company:       req.Company,
		Notes:         req.Notes,
		JobURL:        req.JobURL,
		AttachmentRef: req.AttachmentRef,
	}

	if req.Status != nil {
		status := domain.Status(*req.Status)
		fields.Status = &status
	}
	if req.DateApplied != nil {
		date, _ := parseDate(*req.DateApplied)
		fields.DateApplied = &date
	}
	if req.ReminderDate != nil {
		if *req.ReminderDate == "" {
			fields.ClearReminder = true
		} else {
			reminder, _ := parseDate(*req.ReminderDate)
			fields.ReminderDate = &reminder
		}
	}

	return fields
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: json encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// parsePagination extracts and validates limit/offset query parameters.
// Returns DefaultLimit if limit is not specified, and 0 for offset if not specified.
// Returns an error if limit exceeds MaxLimit or if values are negative/invalid.
func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit = DefaultLimit
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, err
		}
		if limit < 0 {
			return 0, 0, strconv.ErrRange
		}
		if limit > MaxLimit {
			return 0, 0, &limitExceededError{max: MaxLimit}
		}
		if limit == 0 {
			limit = DefaultLimit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, err
		}
		if offset < 0 {
			return 0, 0, strconv.ErrRange
		}
	}

	return limit, offset, nil
}

type limitExceededError struct {
	max int
}

func (e *limitExceededError) Error() string {
	return "limit exceeds maximum of " + strconv.Itoa(e.max)
}
