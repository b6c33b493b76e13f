package events

import "semapa/internal/entities"

const (
	StatusChangedEventName = "status.changed"
	RecordChangedEventName = "record.changed"
)

// StatusChangedEvent is published after a lifecycle transition commits.
type StatusChangedEvent struct {
	History entities.StatusHistory
}

func (e StatusChangedEvent) Name() string {
	return StatusChangedEventName
}

// RecordChangedEvent is published after a catalogue record (tree, species,
// requester) is created, updated or removed.
type RecordChangedEvent struct {
	Entidade string
	ID       uint64
	Acao     string
}

func (e RecordChangedEvent) Name() string {
	return RecordChangedEventName
}
