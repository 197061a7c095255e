package monitor

import "time"

// Status is the last observed health snapshot. Remote being down is a
// normal operating mode, not an outage; the store being down is fatal.
type Status struct {
	Remote     bool      `json:"remote"`
	Store      bool      `json:"store"`
	OutboxSize int       `json:"outbox_size"`
	LastCheck  time.Time `json:"last_check"`
}
