package model

import "time"

// User is the persisted credential record. The password is stored only as a
// bcrypt hash; the reset fields are present together or not at all.
type User struct {
	ID             string     `bson:"_id" json:"id"`
	Username       string     `bson:"username" json:"username"`
	Email          string     `bson:"email" json:"email"`
	PasswordHash   string     `bson:"password_hash" json:"-"`
	ResetTokenHash string     `bson:"reset_token_hash,omitempty" json:"-"`
	ResetExpiresAt *time.Time `bson:"reset_expires_at,omitempty" json:"-"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// Identity is the resolved, safe-to-share view of an authenticated user that
// the auth guard hands to downstream handlers.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}
