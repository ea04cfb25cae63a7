package permcache

import "errors"

var (
	// ErrInvalidRedisURL is returned when the redis connection URL cannot be parsed.
	ErrInvalidRedisURL = errors.New("permcache: invalid redis connection URL")

	// ErrRedisNotReady is returned when redis did not become ready within the connect timeout.
	ErrRedisNotReady = errors.New("permcache: redis did not become ready within the given time period")
)
