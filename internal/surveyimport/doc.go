// Package surveyimport implements the survey spreadsheet import pipeline.
//
// An upload flows strictly forward through four stages:
//
//  1. Decode turns a .csv, .xlsx or .xls file into headers plus field maps.
//  2. ParseRows normalizes header aliases and coerces the four canonical
//     fields, dropping rows with an empty outcome.
//  3. MatchRows resolves each row against the org's active outcome catalog
//     (exact slug, exact name, then fuzzy similarity) and range-checks scores.
//  4. Summarize classifies rows for review and Committer.Commit submits the
//     accepted rows to the Store in one atomic call.
//
// File-level problems are returned as errors from stages 1 and 2. Row-level
// problems never fail a stage; they accumulate as issue strings on the row.
// Commit never returns an error, it reports failures in ImportResult.
package surveyimport
