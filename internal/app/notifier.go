package app

import "impostor/internal/domain"

// Notifier delivers session events to connections. Implementations must not
// block; the session calls them while holding its lock.
type Notifier interface {
	SendTo(connectionID string, event *domain.Event)
	Broadcast(event *domain.Event)
}
