// Package api exposes the run ledger and the alignment engine over HTTP
// using gin.
//
// Routes:
//
//	GET  /health        stage readiness and ledger counts
//	POST /v1/align      keywords + transcript -> gap-free timeline
//	GET  /v1/runs       runs, newest first, optionally filtered by ?status=
//	GET  /v1/runs/:id   a single run
//
// /v1/align answers 400 when order ids are missing, non-positive or
// repeated. Blank keywords are dropped like unmatched ones and counted in
// "dropped".
//
// DTOs use camelCase JSON tags except the timeline itself, which keeps the
// snake_case shape of timeline.json so the two are interchangeable.
package api
