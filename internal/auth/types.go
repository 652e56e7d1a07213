package auth

import "time"

// User is an account record. The password hash never leaves the package.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the user-editable part of an account, shown on the settings page.
type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarPath  string    `json:"avatar_path,omitempty"`
	Currency    string    `json:"currency"`
	Language    string    `json:"language"`
	Theme       string    `json:"theme"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Recorder receives audit events for auth activity. Satisfied by the audit
// package; kept as a local interface so auth stays import-light.
type Recorder interface {
	Record(actorID, action, scope, scopeID, detail string)
}
