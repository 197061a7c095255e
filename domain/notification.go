package domain

import "time"

// Notification is a local-only inbox entry. Notifications never leave the
// device.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Settings holds user preferences. Stored as a single local document.
type Settings struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	SMSAlerts            bool   `json:"smsAlerts"`
	LocationSharing      bool   `json:"locationSharing"`
	CheckInReminders     bool   `json:"checkInReminders"`
	Language             string `json:"language"`
}

// DefaultSettings mirrors the first-run preferences of the app.
func DefaultSettings() *Settings {
	return &Settings{
		NotificationsEnabled: true,
		CheckInReminders:     true,
		Language:             "en-PH",
	}
}

// Onboarding tracks first-run tour progress. Stored as a single local
// document.
type Onboarding struct {
	Completed   bool       `json:"completed"`
	Step        int        `json:"step"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
