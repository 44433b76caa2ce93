// Package shared holds domain concepts used across aggregates
package shared

import "time"

// DomainEvent is something that happened in the domain. Aggregates
// collect events as they mutate; the application layer drains and
// logs them after persistence.
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}
