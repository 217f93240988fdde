package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CourtCase holds the structure for the courtcases collection in mongo. The
// engine treats a case as opaque context: it is read to build the arbitration
// prompt and written only when a date-extension approval propagates the next
// hearing date.
type CourtCase struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CourtCaseDetails   `json:"courtCase" bson:"courtCase"`
	Version int32              `json:"__v" bson:"__v"`
}

// CourtCaseDetails holds the structure for the inner court case details
type CourtCaseDetails struct {
	Title       string `json:"title" bson:"title"`
	AccusedName string `json:"accusedName" bson:"accusedName"`

	// Statement is the filed summary of the dispute
	Statement string `json:"statement" bson:"statement"`

	// Charges are human-readable summaries handed to the arbitration port
	Charges []string `json:"charges" bson:"charges"`

	// Status: "filed", "scheduled", "in_progress", "completed"
	Status string `json:"status" bson:"status"`

	// HearingSessionID is the currently linked hearing, if any
	HearingSessionID string `json:"hearingSessionID" bson:"hearingSessionID"`

	NextHearingDate primitive.DateTime `json:"nextHearingDate,omitempty" bson:"nextHearingDate,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
