package domain

import "time"

// Space member roles.
const (
	SpaceRoleOwner  = "owner"
	SpaceRoleMember = "member"
)

// Space is a shared board a group of users collaborates in.
type Space struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SpaceMember links a user to a space with a role.
type SpaceMember struct {
	SpaceID  string    `json:"space_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
