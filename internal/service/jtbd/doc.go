// Package jtbd implements the Jobs-To-Be-Done hierarchy and research data
// service: Big Job > Little Job > Outcome CRUD, surveys and their outcome
// results, research rounds, projections and dataset export/restore.
//
// Every mutation is recorded in the change log and invalidates the slug
// index the import pipeline matches against. The service depends on the
// Repository interface and never imports net/http or database/sql.
package jtbd
