// Package workflow advances runs through the pipeline stages.
//
// The Runner executes a run's remaining stages in order, starting from the
// status it was left in. Each stage gets its own correlation id, the run's
// work directory is locked for the duration so two processes never write
// the same artifacts, and every status transition is persisted to the run
// ledger. A failing stage marks the run failed or review according to
// services.FailureStatus; retrying resumes from the newest artifact.
package workflow
