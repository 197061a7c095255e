package domain

import (
	"strings"
	"time"
)

// ID prefixes mark records that were minted locally and are still waiting
// for the remote API to assign a canonical identity.
const (
	LocalIDPrefix = "local-"
	DemoIDPrefix  = "demo-"
)

// User is the authenticated member record, including gamification state.
// Rank is always derived from Points; a stored rank is never trusted after
// a points change.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Phone      string    `json:"phone,omitempty"`
	Barangay   string    `json:"barangay,omitempty"`
	City       string    `json:"city,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	Points     int       `json:"points"`
	Rank       string    `json:"rank"`
	Skills     []string  `json:"skills"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsLocalOnly reports whether the record has not been confirmed by the
// remote API yet.
func (u *User) IsLocalOnly() bool {
	return u != nil && strings.HasPrefix(u.ID, LocalIDPrefix)
}

// UserUpdate carries a partial profile mutation. Nil fields are left as-is.
type UserUpdate struct {
	FirstName  *string  `json:"firstName,omitempty"`
	LastName   *string  `json:"lastName,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Barangay   *string  `json:"barangay,omitempty"`
	City       *string  `json:"city,omitempty"`
	Bio        *string  `json:"bio,omitempty"`
	Avatar     *string  `json:"avatar,omitempty"`
	Points     *int     `json:"points,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	IsVerified *bool    `json:"isVerified,omitempty"`
}

// Apply merges the update into the user and reports whether the point
// balance changed, in which case the caller must recompute the rank.
func (u *User) Apply(upd UserUpdate) bool {
	if u == nil {
		return false
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Barangay != nil {
		u.Barangay = *upd.Barangay
	}
	if upd.City != nil {
		u.City = *upd.City
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.Skills != nil {
		u.Skills = upd.Skills
	}
	if upd.IsVerified != nil {
		u.IsVerified = *upd.IsVerified
	}
	if upd.Points != nil && *upd.Points != u.Points {
		u.Points = *upd.Points
		return true
	}
	return false
}

// LocalAccount is a locally registered credential paired with its user
// record. Passwords are stored as bcrypt hashes only.
type LocalAccount struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	User         User      `json:"user"`
	CreatedAt    time.Time `json:"createdAt"`
}
