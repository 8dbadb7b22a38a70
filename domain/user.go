package domain

import "time"

// Subscription tiers. The tier decides how many active tasks a user may hold.
const (
	TierFree      = "free"
	TierPro       = "pro"
	TierUnlimited = "unlimited"
)

// User represents an account in the platform.
type User struct {
	ID        string            `json:"id"`
	Email     string            `json:"email,omitempty"`
	Tier      string            `json:"tier"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}
