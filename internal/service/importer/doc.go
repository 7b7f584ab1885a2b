// Package importer runs the survey import workflow across requests.
//
// An upload is decoded, parsed and matched against the organization's
// outcome catalog, then parked in a SessionStore while an operator reviews
// the preview and applies manual overrides. Commit re-reads the session,
// enforces the commit gate, and hands the batch to the surveyimport
// Committer under a per-survey distributed lock.
//
// The service depends only on interfaces (Catalog, SessionStore, the
// surveyimport Store and a storage Archive) and never imports net/http or
// database/sql.
package importer
