// Package notifications delivers run and batch milestones via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when notifications are disabled. Callers
// treat delivery as best effort; a push that fails never fails the run that
// triggered it.
//
// Extend this package if you need alternative transports; pipeline code
// depends only on the simple Service interface.
package notifications
