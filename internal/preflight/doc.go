// Package preflight provides readiness checks for the directories, binaries
// and remote services reelsmith depends on.
//
// The workflow runner calls RunAll before executing a run so a missing API
// key or unwritable workspace fails fast instead of after the narration has
// been paid for. The CLI "reelsmith preflight" command prints the same
// results alongside CheckSystemDeps.
package preflight
