package realtime

import "time"

// Channel is the Redis pub/sub channel shared by every instance.
const Channel = "sales_changes"

// Event says that a table changed. It carries no row data: subscribers
// re-fetch whatever they display.
type Event struct {
	Table  string    `json:"table"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
	// Origin is the instance that produced the event.
	Origin string `json:"origin,omitempty"`
}
