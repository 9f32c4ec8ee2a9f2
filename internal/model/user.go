package model

// User represents a portal login bound to exactly one client
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	ClientID int64  `json:"client_id"`
}

// Credential pairs a user with its stored password hash.
// It only lives for the duration of a login check.
type Credential struct {
	User         User
	PasswordHash string
}
