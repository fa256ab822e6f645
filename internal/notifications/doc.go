// Package notifications publishes run outcomes to ntfy.
//
// NewService returns a no-op notifier when no topic is configured, so the
// workflow runner can call it unconditionally.
package notifications
