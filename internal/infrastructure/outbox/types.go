package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is one local mutation waiting to be replicated to the user's other
// devices. Items drain in timestamp order so a device replays edits the way
// they happened.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Operation string          `json:"operation"`
	Task      json.RawMessage `json:"task"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
