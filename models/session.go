package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Session lifecycle statuses. A hearing is created as "scheduled", runs as
// "in_progress" and finishes in exactly one of the terminal statuses.
const (
	SessionScheduled  = "scheduled"
	SessionInProgress = "in_progress"
	SessionAdjourned  = "adjourned"
	SessionCompleted  = "completed"
)

// SessionTerminal reports whether the given status is terminal for this
// hearing instance. An adjourned hearing may still get a follow-up session
// scheduled against the same case.
func SessionTerminal(status string) bool {
	return status == SessionAdjourned || status == SessionCompleted
}

// HearingSession holds the structure for the hearingsessions collection in mongo
type HearingSession struct {
	ID      primitive.ObjectID    `json:"_id" bson:"_id"`
	Details HearingSessionDetails `json:"hearingSession" bson:"hearingSession"`
	Version int32                 `json:"__v" bson:"__v"`
}

// HearingSessionDetails holds the structure for the inner hearing session details
type HearingSessionDetails struct {
	// CaseID is an opaque reference to the case this hearing belongs to
	CaseID string `json:"caseID" bson:"caseID"`

	// Title for this hearing (e.g., "State v. Doe - first hearing")
	Title string `json:"title" bson:"title"`

	// Status: "scheduled", "in_progress", "adjourned", "completed"
	Status string `json:"status" bson:"status"`

	// AdjournReason is required when the session transitions to adjourned
	AdjournReason string `json:"adjournReason,omitempty" bson:"adjournReason,omitempty"`

	// NextHearingDate is set by an adjournment or a date-extension approval.
	// The arbitrator's date wins over the requested one.
	NextHearingDate primitive.DateTime `json:"nextHearingDate,omitempty" bson:"nextHearingDate,omitempty"`

	ScheduledStart primitive.DateTime `json:"scheduledStart" bson:"scheduledStart"`
	StartedAt      primitive.DateTime `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt        primitive.DateTime `json:"endedAt,omitempty" bson:"endedAt,omitempty"`

	// PendingSwept is set once the post-adjournment sweeper has reported any
	// still-pending workflow requests for this session
	PendingSwept bool `json:"pendingSwept,omitempty" bson:"pendingSwept,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// SessionTransitionRequest is the body for the transition endpoint
type SessionTransitionRequest struct {
	Target          string `json:"target"`
	Reason          string `json:"reason,omitempty"`
	NextHearingDate string `json:"nextHearingDate,omitempty"` // RFC3339
}
