package domain

import (
	"regexp"
	"time"
)

// Status is the lifecycle state of a hierarchy node.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether slug is lowercase kebab-case.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// BigJob is the top level of the JTBD hierarchy.
type BigJob struct {
	ID          string      `json:"id" db:"id"`
	OrgID       string      `json:"org_id" db:"org_id"`
	Slug        string      `json:"slug" db:"slug"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description,omitempty" db:"description"`
	Tags        []string    `json:"tags,omitempty" db:"tags"`
	OrderIndex  int         `json:"order_index" db:"order_index"`
	Status      Status      `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	LittleJobs  []LittleJob `json:"little_jobs,omitempty" db:"-"`
}

// LittleJob belongs to a BigJob and groups outcomes.
type LittleJob struct {
	ID          string    `json:"id" db:"id"`
	OrgID       string    `json:"org_id" db:"org_id"`
	BigJobID    string    `json:"big_job_id" db:"big_job_id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	OrderIndex  int       `json:"order_index" db:"order_index"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Outcomes    []Outcome `json:"outcomes,omitempty" db:"-"`
}

// Outcome is a measurable desired outcome of a LittleJob. Scores are only
// populated when the outcome is rendered inside a research round.
type Outcome struct {
	ID          string    `json:"id" db:"id"`
	OrgID       string    `json:"org_id" db:"org_id"`
	LittleJobID string    `json:"little_job_id" db:"little_job_id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Tags        []string  `json:"tags,omitempty" db:"tags"`
	OrderIndex  int       `json:"order_index" db:"order_index"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Importance       *float64 `json:"importance,omitempty" db:"-"`
	Satisfaction     *float64 `json:"satisfaction,omitempty" db:"-"`
	OpportunityScore *float64 `json:"opportunity_score,omitempty" db:"-"`
}

// Hierarchy is the active Big Job > Little Job > Outcome tree of one org.
type Hierarchy struct {
	BigJobs []BigJob `json:"big_jobs"`
}

// OutcomeCount returns the number of outcomes in the tree.
func (h Hierarchy) OutcomeCount() int {
	n := 0
	for _, bj := range h.BigJobs {
		for _, lj := range bj.LittleJobs {
			n += len(lj.Outcomes)
		}
	}
	return n
}
