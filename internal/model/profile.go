package model

import "time"

// Known regulatory roles. Unknown roles are accepted and fall back to the
// baseline obligation set during personalization.
const (
	RoleStartup       = "startup"
	RoleFreelancer    = "freelancer"
	RoleSmallBusiness = "small_business"
)

// Profile stores per-owner metadata used by the session and reminder layers.
// OwnerID comes from the auth collaborator and is never generated here.
type Profile struct {
	OwnerID        string `gorm:"primaryKey"`
	Role           string
	TelegramChatID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
