package transport

// Request bodies use the same camelCase field names the app's local state
// uses; translation to the remote's snake_case happens in the sync layer.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Barangay  string `json:"barangay"`
	City      string `json:"city"`
}

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Points      int    `json:"points"`
	DueDate     string `json:"dueDate"`
	AssignedTo  string `json:"assignedTo"`
	Location    string `json:"location"`
}

type BuddyRequest struct {
	Name         string   `json:"name"`
	Avatar       string   `json:"avatar"`
	RiskLevel    string   `json:"riskLevel"`
	Relationship string   `json:"relationship"`
	Phone        string   `json:"phone"`
	Location     string   `json:"location"`
	Skills       []string `json:"skills"`
}

type StartSessionRequest struct {
	BuddyID string `json:"buddyId"`
}

type CheckInRequest struct {
	Mood    string `json:"mood"`
	Message string `json:"message"`
	Notes   string `json:"notes"`
}

type MessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type AwardRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

type NotificationRequest struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
