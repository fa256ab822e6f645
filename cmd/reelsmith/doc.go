// Package main hosts the reelsmith CLI entrypoint and command graph.
//
// The Cobra command tree exposes the timeline engine directly (align,
// timeline, sentences, keywords), drives full prompt-to-reel runs through the
// workflow runner, maintains the run ledger, and serves the HTTP API. It
// centralizes configuration resolution and logger setup so subcommands only
// handle flags and output.
package main
