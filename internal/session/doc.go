// Package session keeps the bookkeeping of a research session: running
// statistics fed by plan results, the records persisted per query, and the
// status and summary views derived from them.
//
// A query is successful only when its plan run had no failed step.
package session
