package domain

import "time"

// Survey is one research round of an organization, identified by its code.
type Survey struct {
	ID          string    `json:"id" db:"id"`
	OrgID       string    `json:"org_id" db:"org_id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Date        string    `json:"date" db:"date"` // YYYY-MM-DD
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OutcomeResult holds the scores of one outcome in one survey.
type OutcomeResult struct {
	ID               string    `json:"id" db:"id"`
	OrgID            string    `json:"org_id" db:"org_id"`
	SurveyID         string    `json:"survey_id" db:"survey_id"`
	OutcomeID        string    `json:"outcome_id" db:"outcome_id"`
	Importance       float64   `json:"importance" db:"importance"`
	Satisfaction     float64   `json:"satisfaction" db:"satisfaction"`
	OpportunityScore float64   `json:"opportunity_score" db:"opportunity_score"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// OutcomeLong is a flattened result row joining the hierarchy with a survey.
type OutcomeLong struct {
	BigJobSlug       string  `json:"big_job_slug" db:"big_job_slug"`
	BigJobName       string  `json:"big_job_name" db:"big_job_name"`
	LittleJobSlug    string  `json:"little_job_slug" db:"little_job_slug"`
	LittleJobName    string  `json:"little_job_name" db:"little_job_name"`
	OutcomeSlug      string  `json:"outcome_slug" db:"outcome_slug"`
	OutcomeName      string  `json:"outcome_name" db:"outcome_name"`
	SurveyCode       string  `json:"survey_code" db:"survey_code"`
	SurveyDate       string  `json:"survey_date" db:"survey_date"`
	Importance       float64 `json:"importance" db:"importance"`
	Satisfaction     float64 `json:"satisfaction" db:"satisfaction"`
	OpportunityScore float64 `json:"opportunity_score" db:"opportunity_score"`
}

// ResearchRound is a survey with the hierarchy annotated by its scores.
type ResearchRound struct {
	Survey    Survey    `json:"survey"`
	Hierarchy Hierarchy `json:"hierarchy"`
}

// Snapshot is a whole-dataset export of one organization.
type Snapshot struct {
	Hierarchy      Hierarchy       `json:"hierarchy"`
	Surveys        []Survey        `json:"surveys"`
	OutcomeResults []OutcomeResult `json:"outcome_results"`
	ExportedAt     time.Time       `json:"exported_at"`
}
