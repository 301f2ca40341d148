// Package testing provides helpers for testing code that embeds Huddle:
// a testing.T-backed logger, a manually advanced clock, and an embedded
// NATS server for bridge tests.
package testing
