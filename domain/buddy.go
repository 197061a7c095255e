package domain

import "time"

// Buddy presence states.
const (
	BuddyStatusOnline  = "online"
	BuddyStatusOffline = "offline"
	BuddyStatusAway    = "away"
)

// Buddy session states.
const (
	BuddySessionActive    = "active"
	BuddySessionCompleted = "completed"
)

// Buddy is a safety-pairing relationship between the current user and
// another member.
type Buddy struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Name         string     `json:"name"`
	Avatar       string     `json:"avatar,omitempty"`
	Status       string     `json:"status"`
	RiskLevel    string     `json:"riskLevel"`
	Relationship string     `json:"relationship,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Location     string     `json:"location,omitempty"`
	Skills       []string   `json:"skills,omitempty"`
	IsVerified   bool       `json:"isVerified"`
	LastCheckIn  *time.Time `json:"lastCheckIn,omitempty"`
	CheckInCount int        `json:"checkInCount"`
}

// BuddySession is a running check-in arrangement with a buddy.
type BuddySession struct {
	ID            string     `json:"id"`
	BuddyID       string     `json:"buddyId"`
	BuddyName     string     `json:"buddyName,omitempty"`
	UserID        string     `json:"userId"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"startedAt"`
	LastCheckInAt *time.Time `json:"lastCheckInAt,omitempty"`
	CheckInCount  int        `json:"checkInCount"`
}

func (s *BuddySession) IsActive() bool {
	return s != nil && s.Status == BuddySessionActive
}

// CheckIn is a single wellness report against a buddy session.
type CheckIn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	BuddyID   string    `json:"buddyId"`
	BuddyName string    `json:"buddyName,omitempty"`
	Mood      string    `json:"mood"`
	Message   string    `json:"message,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
