package domain

import (
	"encoding/json"
	"time"
)

// Role is an org member's permission tier. Roles are administered here and
// enforced by the data store.
type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleWriter, RoleAdmin:
		return true
	}
	return false
}

// Member links a user to an organization with a role.
type Member struct {
	ID        string    `json:"id" db:"id"`
	OrgID     string    `json:"org_id" db:"org_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChangeAction enumerates audited mutations.
type ChangeAction string

const (
	ActionCreate  ChangeAction = "create"
	ActionUpdate  ChangeAction = "update"
	ActionArchive ChangeAction = "archive"
	ActionDelete  ChangeAction = "delete"
	ActionUpsert  ChangeAction = "upsert"
)

// Audited entity names.
const (
	EntityBigJob        = "big_job"
	EntityLittleJob     = "little_job"
	EntityOutcome       = "outcome"
	EntitySurvey        = "survey"
	EntityOutcomeResult = "outcome_result"
)

// ChangeLog is one audit entry. Before and After hold JSON snapshots.
type ChangeLog struct {
	ID        string          `json:"id" db:"id"`
	OrgID     string          `json:"org_id" db:"org_id"`
	Entity    string          `json:"entity" db:"entity"`
	EntityID  string          `json:"entity_id" db:"entity_id"`
	Action    ChangeAction    `json:"action" db:"action"`
	Before    json.RawMessage `json:"before,omitempty" db:"before"`
	After     json.RawMessage `json:"after,omitempty" db:"after"`
	Actor     string          `json:"actor,omitempty" db:"actor"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
