package domain

import "time"

// PointsEntry is an immutable ledger record. Entries are append-only; the
// ledger is the audit trail for User.Points and every balance change goes
// through an entry.
type PointsEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Timestamp   time.Time `json:"timestamp"`
}

// Well-known ledger entry types, matching what the remote API emits.
const (
	PointsTypeTask       = "task"
	PointsTypeCheckIn    = "check-in"
	PointsTypeTraining   = "training"
	PointsTypeCommunity  = "community"
	PointsTypeAdjustment = "adjustment"
)
