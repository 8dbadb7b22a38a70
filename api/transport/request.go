package transport

type AuthLoginRequest struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
	TTL      int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type ProfileUpdateRequest struct {
	Email  string            `json:"email"`
	Tier   string            `json:"tier"`
	Status string            `json:"status"`
	Meta   map[string]string `json:"metadata"`
}

type TaskCreateRequest struct {
	Title          string `json:"title"`
	Category       string `json:"category"`
	SpaceID        string `json:"space_id"`
	Urgent         bool   `json:"urgent"`
	DueDate        string `json:"due_date"`
	BeforeImageRef string `json:"before_image_ref"`
}

// TaskUpdateRequest uses pointers so absent fields stay untouched.
type TaskUpdateRequest struct {
	Title          *string `json:"title"`
	Category       *string `json:"category"`
	DueDate        *string `json:"due_date"`
	ClearDueDate   bool    `json:"clear_due_date"`
	BeforeImageRef *string `json:"before_image_ref"`
	AfterImageRef  *string `json:"after_image_ref"`
}

type TaskStatusRequest struct {
	Status string `json:"status"`
}

type SpaceCreateRequest struct {
	Name string `json:"name"`
}

type SpaceInviteRequest struct {
	UserID string `json:"user_id"`
}

type FocusStartRequest struct {
	TaskID         string `json:"task_id"`
	PlannedMinutes int    `json:"planned_minutes"`
}

type FocusFinishRequest struct {
	Completed bool `json:"completed"`
}
