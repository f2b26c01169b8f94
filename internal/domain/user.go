package domain

import "time"

// User is a registered account. The password hash is salted; credential
// mechanics live in the auth service.
type User struct {
	ID           int       `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"hashed_password"`
	Salt         string    `json:"salt"`
	RegisteredAt time.Time `json:"registration_date"`
}

// Info returns the loggable identity fields, without credentials.
func (u *User) Info() map[string]any {
	return map[string]any{
		"user_id":           u.ID,
		"username":          u.Username,
		"registration_date": u.RegisteredAt,
	}
}
