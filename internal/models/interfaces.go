package models

import "context"

// StationStore persists stations keyed by name.
type StationStore interface {
	// InsertIfAbsent stores s unless a station with the same name exists.
	// It reports whether the station was inserted.
	InsertIfAbsent(ctx context.Context, s Station) (bool, error)
	// FindByName returns nil, nil when no station has that name.
	FindByName(ctx context.Context, name string) (*Station, error)
	// ListAll returns every station in insertion order.
	ListAll(ctx context.Context) ([]Station, error)
	DeleteAll(ctx context.Context) error
}

// Channel names a notification stream.
type Channel string

const (
	ChannelSearch  Channel = "search"
	ChannelStation Channel = "station"
	ChannelError   Channel = "error"
)

// NotificationSink receives human readable events. Emit must not block and
// never reports failure to the caller.
type NotificationSink interface {
	Emit(channel Channel, text string)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(Channel, string) {}
