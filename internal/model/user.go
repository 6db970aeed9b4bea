// Package model defines the domain entities shared by every layer.
package model

import "time"

// User represents a registered account.
//
// Email and Username are both globally unique — either can be used to look a
// user up, but login is by email. PasswordHash holds the bcrypt hash and is
// never serialized (json:"-").
//
// IsAdmin grants the owner-or-admin mutation rule: admins may edit or delete
// any recipe. There is no separate roles table.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	Username     string    `json:"username"   db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name"  db:"last_name"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	IsAdmin      bool      `json:"-"          db:"is_admin"`
	CreatedAt    time.Time `json:"-"          db:"created_at"`
	UpdatedAt    time.Time `json:"-"          db:"updated_at"`
}
