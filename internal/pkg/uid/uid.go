// Package uid provides the identifier generators used across the
// application: numeric snowflake IDs for entities, UUID strings for request
// correlation, object IDs for opaque tokens, and digit strings for remote
// account numbers.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
