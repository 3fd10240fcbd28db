package model

import "time"

// Event is one entry in the event log served by the daemon.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"event_type"`
	Title     string         `json:"title,omitempty"`
	StartTS   *time.Time     `json:"start_ts,omitempty"`
	EndTS     time.Time      `json:"end_ts"`
	CreatedAt time.Time      `json:"created_at_ts"`
	Payload   map[string]any `json:"payload"`
}
