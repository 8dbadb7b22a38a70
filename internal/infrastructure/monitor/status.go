package monitor

import "time"

type Status struct {
	PostgreSQL    bool      `json:"postgresql"`
	Redis         bool      `json:"redis"`
	Outbox        bool      `json:"outbox"`
	PendingOutbox int       `json:"pending_outbox"`
	LastCheck     time.Time `json:"last_check"`
}
