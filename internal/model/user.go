// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// PasswordHash holds the bcrypt output for password accounts and is empty for
// accounts created through GitHub sign-in — those can only log in via OAuth.
// GitHubID is zero for password accounts; the sqlite layer stores it as NULL so
// the UNIQUE constraint only applies to real GitHub IDs.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
