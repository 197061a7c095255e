package remote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safezoneph/syncd/domain"
)

func TestWireUserNormalization(t *testing.T) {
	raw := `{
		"id": "usr-42",
		"email": "juan@example.ph",
		"first_name": "Juan",
		"last_name": "Dela Cruz",
		"barangay": "San Roque",
		"points": 800,
		"rank": "Bantay Kaibigan",
		"is_verified": true,
		"created_at": "2025-03-14T08:30:00Z"
	}`
	var w wireUser
	require.NoError(t, json.Unmarshal([]byte(raw), &w))

	user := w.Domain()
	require.Equal(t, "Juan", user.FirstName)
	require.Equal(t, "Dela Cruz", user.LastName)
	require.True(t, user.IsVerified)
	require.Equal(t, 2025, user.CreatedAt.Year())
	require.NotNil(t, user.Skills, "skills must normalize to an empty slice")
	// The remote sent a rank inconsistent with 800 points; normalization
	// recomputes it from the tier table.
	require.Equal(t, "Kapit-Bisig Hero", user.Rank)
}

func TestWireTaskNormalization(t *testing.T) {
	raw := `{
		"id": "tsk-7",
		"title": "Evacuation drill",
		"category": "training",
		"priority": "high",
		"points": 75,
		"due_date": "2025-06-01T00:00:00Z",
		"assigned_to": "usr-42"
	}`
	var w wireTask
	require.NoError(t, json.Unmarshal([]byte(raw), &w))

	task := w.Domain()
	require.Equal(t, domain.TaskStatusPending, task.Status, "missing status defaults to pending")
	require.NotNil(t, task.DueDate)
	require.Equal(t, "usr-42", task.AssignedTo)
}

func TestTaskPayloadIsSnakeCase(t *testing.T) {
	task := &domain.Task{Title: "x", Category: "relief", Priority: "low", Status: "pending", Points: 10, AssignedTo: "usr-1"}
	payload := taskPayload(task)
	require.Contains(t, payload, "assigned_to")
	require.NotContains(t, payload, "assignedTo")
	require.NotContains(t, payload, "due_date", "nil due date is omitted")
}

func TestParseTimeFallbacks(t *testing.T) {
	require.False(t, parseTime("2025-01-02T10:00:00Z").IsZero())
	require.False(t, parseTime("2025-01-02T10:00:00").IsZero())
	require.False(t, parseTime("2025-01-02").IsZero())
	require.True(t, parseTime("not a date").IsZero())
	require.True(t, parseTime("").IsZero())
}
