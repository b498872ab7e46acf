package sync

import "time"

const (
	EntryCreated = "entry.created"
	EntryUpdated = "entry.updated"
	EntryDeleted = "entry.deleted"
)

type EntryEvent struct {
	Type string    `json:"type"`
	URL  string    `json:"url"`
	At   time.Time `json:"at"`
}

func NewEntryEvent(eventType, url string) EntryEvent {
	return EntryEvent{Type: eventType, URL: url, At: time.Now().UTC()}
}
