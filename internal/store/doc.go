// Package store persists research sessions and their query records.
//
// Two implementations of RecordStore are provided:
//
//   - SQLiteStore keeps everything in a single SQLite database (the default).
//     Sessions, records and the capability snapshot of each session live in
//     separate tables.
//   - FileStore writes one YAML file per session header and per record under
//     a directory tree, which is convenient for inspecting or versioning
//     research results:
//
//	<root>/<session-id>/session.yaml
//	<root>/<session-id>/research/000001_<record-id>.yaml
//
// Records are append-only. Both stores return them in append order and list
// sessions most recently updated first.
package store
