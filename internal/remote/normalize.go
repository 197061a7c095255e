package remote

import (
	"time"

	"github.com/safezoneph/syncd/domain"
)

// Wire types are the remote API's snake_case shapes. All field mapping into
// domain records happens here and nowhere else, so call sites never touch
// raw remote payloads.

type wireUser struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Phone      string   `json:"phone"`
	Barangay   string   `json:"barangay"`
	City       string   `json:"city"`
	Bio        string   `json:"bio"`
	Avatar     string   `json:"avatar"`
	Points     int      `json:"points"`
	Rank       string   `json:"rank"`
	Skills     []string `json:"skills"`
	IsVerified bool     `json:"is_verified"`
	CreatedAt  string   `json:"created_at"`
}

func (w wireUser) Domain() domain.User {
	user := domain.User{
		ID:         w.ID,
		Email:      w.Email,
		FirstName:  w.FirstName,
		LastName:   w.LastName,
		Phone:      w.Phone,
		Barangay:   w.Barangay,
		City:       w.City,
		Bio:        w.Bio,
		Avatar:     w.Avatar,
		Points:     w.Points,
		Rank:       w.Rank,
		Skills:     w.Skills,
		IsVerified: w.IsVerified,
		CreatedAt:  parseTime(w.CreatedAt),
	}
	if user.Skills == nil {
		user.Skills = []string{}
	}
	// The tier table is the authority; a missing or stale remote rank is
	// recomputed from the balance.
	if user.Rank == "" || user.Rank != domain.RankFor(user.Points) {
		user.Rank = domain.RankFor(user.Points)
	}
	return user
}

type registerPayload struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Barangay  string `json:"barangay"`
	City      string `json:"city"`
}

type wireTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Points      int    `json:"points"`
	DueDate     string `json:"due_date"`
	AssignedTo  string `json:"assigned_to"`
	Location    string `json:"location"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (w wireTask) Domain() domain.Task {
	task := domain.Task{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Category:    w.Category,
		Priority:    w.Priority,
		Status:      w.Status,
		Points:      w.Points,
		AssignedTo:  w.AssignedTo,
		Location:    w.Location,
		CreatedAt:   parseTime(w.CreatedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
	}
	if w.DueDate != "" {
		if due := parseTime(w.DueDate); !due.IsZero() {
			task.DueDate = &due
		}
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	return task
}

func taskPayload(task *domain.Task) map[string]interface{} {
	if task == nil {
		return nil
	}
	payload := map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"category":    task.Category,
		"priority":    task.Priority,
		"status":      task.Status,
		"points":      task.Points,
	}
	if task.DueDate != nil {
		payload["due_date"] = task.DueDate.Format(time.RFC3339)
	}
	if task.AssignedTo != "" {
		payload["assigned_to"] = task.AssignedTo
	}
	if task.Location != "" {
		payload["location"] = task.Location
	}
	return payload
}

type wireBuddy struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	Name         string   `json:"name"`
	Avatar       string   `json:"avatar"`
	Status       string   `json:"status"`
	RiskLevel    string   `json:"risk_level"`
	Relationship string   `json:"relationship"`
	Phone        string   `json:"phone"`
	Location     string   `json:"location"`
	Skills       []string `json:"skills"`
	IsVerified   bool     `json:"is_verified"`
	LastCheckIn  string   `json:"last_check_in"`
	CheckInCount int      `json:"check_in_count"`
}

func (w wireBuddy) Domain() domain.Buddy {
	buddy := domain.Buddy{
		ID:           w.ID,
		UserID:       w.UserID,
		Name:         w.Name,
		Avatar:       w.Avatar,
		Status:       w.Status,
		RiskLevel:    w.RiskLevel,
		Relationship: w.Relationship,
		Phone:        w.Phone,
		Location:     w.Location,
		Skills:       w.Skills,
		IsVerified:   w.IsVerified,
		CheckInCount: w.CheckInCount,
	}
	if buddy.Status == "" {
		buddy.Status = domain.BuddyStatusOffline
	}
	if w.LastCheckIn != "" {
		if last := parseTime(w.LastCheckIn); !last.IsZero() {
			buddy.LastCheckIn = &last
		}
	}
	return buddy
}

type wireBuddySession struct {
	ID            string `json:"id"`
	BuddyID       string `json:"buddy_id"`
	BuddyName     string `json:"buddy_name"`
	UserID        string `json:"user_id"`
	Status        string `json:"status"`
	StartedAt     string `json:"started_at"`
	LastCheckInAt string `json:"last_check_in_at"`
	CheckInCount  int    `json:"check_in_count"`
}

func (w wireBuddySession) Domain() domain.BuddySession {
	session := domain.BuddySession{
		ID:           w.ID,
		BuddyID:      w.BuddyID,
		BuddyName:    w.BuddyName,
		UserID:       w.UserID,
		Status:       w.Status,
		StartedAt:    parseTime(w.StartedAt),
		CheckInCount: w.CheckInCount,
	}
	if w.LastCheckInAt != "" {
		if last := parseTime(w.LastCheckInAt); !last.IsZero() {
			session.LastCheckInAt = &last
		}
	}
	if session.Status == "" {
		session.Status = domain.BuddySessionActive
	}
	return session
}

func sessionPayload(session *domain.BuddySession) map[string]interface{} {
	if session == nil {
		return nil
	}
	return map[string]interface{}{
		"buddy_id":   session.BuddyID,
		"buddy_name": session.BuddyName,
		"status":     session.Status,
		"started_at": session.StartedAt.Format(time.RFC3339),
	}
}

func checkInPayload(checkIn *domain.CheckIn) map[string]interface{} {
	if checkIn == nil {
		return nil
	}
	return map[string]interface{}{
		"mood":      checkIn.Mood,
		"message":   checkIn.Message,
		"notes":     checkIn.Notes,
		"timestamp": checkIn.Timestamp.Format(time.RFC3339),
	}
}

type wireMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	Read       bool   `json:"read"`
}

func (w wireMessage) Domain() domain.Message {
	return domain.Message{
		ID:         w.ID,
		SenderID:   w.SenderID,
		ReceiverID: w.ReceiverID,
		Content:    w.Content,
		Timestamp:  parseTime(w.Timestamp),
		Read:       w.Read,
	}
}

func messagePayload(message *domain.Message) map[string]interface{} {
	if message == nil {
		return nil
	}
	return map[string]interface{}{
		"receiver_id": message.ReceiverID,
		"content":     message.Content,
	}
}

type wireConversation struct {
	ID            string `json:"id"`
	BuddyID       string `json:"buddy_id"`
	BuddyName     string `json:"buddy_name"`
	LastMessage   string `json:"last_message"`
	LastMessageAt string `json:"last_message_at"`
	UnreadCount   int    `json:"unread_count"`
}

func (w wireConversation) Domain() domain.Conversation {
	conversation := domain.Conversation{
		ID:          w.ID,
		BuddyID:     w.BuddyID,
		BuddyName:   w.BuddyName,
		LastMessage: w.LastMessage,
		UnreadCount: w.UnreadCount,
	}
	if w.LastMessageAt != "" {
		if last := parseTime(w.LastMessageAt); !last.IsZero() {
			conversation.LastMessageAt = &last
		}
	}
	return conversation
}

type wirePointsEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Timestamp   string `json:"timestamp"`
}

func (w wirePointsEntry) Domain() domain.PointsEntry {
	return domain.PointsEntry{
		ID:          w.ID,
		Type:        w.Type,
		Description: w.Description,
		Points:      w.Points,
		Timestamp:   parseTime(w.Timestamp),
	}
}

// parseTime accepts the formats the remote has been seen emitting.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
