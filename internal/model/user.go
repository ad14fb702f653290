package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Email is unique and compared case-sensitively.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address, also the token subject.
//	PasswordHash – bcrypt hashed password.
//	IsActive     – inactive accounts cannot authenticate.
//	Locale       – preferred language code (at most 8 characters).
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsActive     bool      // users.is_active
	Locale       string    // users.locale
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
