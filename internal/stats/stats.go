// Package stats aggregates status counts for one owner's applications.
package stats

import "github.com/roshini1406/job-tracker1/internal/domain"

// Summary holds the total plus one count per status. Absent statuses are
// zero, never missing, so the JSON shape is stable.
type Summary struct {
	Total        int `json:"total"`
	Applied      int `json:"applied"`
	Interviewing int `json:"interviewing"`
	Offers       int `json:"offers"`
	Rejected     int `json:"rejected"`
}

// Aggregate folds a set of already-owner-filtered applications into a Summary.
// Pure and deterministic; input order does not matter.
func Aggregate(apps []domain.JobApplication) Summary {
	s := Summary{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case domain.StatusApplied:
			s.Applied++
		case domain.StatusInterviewing:
			s.Interviewing++
		case domain.StatusOffer:
			s.Offers++
		case domain.StatusRejected:
			s.Rejected++
		}
	}
	return s
}
