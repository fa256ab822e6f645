// Package runs persists pipeline runs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages the database connection, schema initialization, stats
// queries, stuck-run recovery, and retry transitions. A Run records the prompt,
// its working directory, and the artifact produced by every completed stage
// (script, narration, transcript, sentences, keywords, timeline, video), so a
// failed run can resume from the last artifact instead of starting over.
//
// The database is a ledger of recent runs rather than an archive. Schema
// changes bump the version in schema.go; users clear the database to adopt the
// new schema.
package runs
