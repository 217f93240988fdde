package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Workflow kinds. Each kind shares the open/resolve state machine and differs
// only in payload shape and terminal status set.
const (
	WorkflowHandRaise     = "hand_raise"
	WorkflowWitness       = "witness"
	WorkflowDateExtension = "date_extension"
	WorkflowEvidence      = "evidence"
)

// Workflow request statuses
const (
	RequestPending      = "pending"
	RequestAllowed      = "allowed"
	RequestDenied       = "denied"
	RequestSummoned     = "summoned"
	RequestPresent      = "present"
	RequestTestified    = "testified"
	RequestApproved     = "approved"
	RequestAdmitted     = "admitted"
	RequestRejected     = "rejected"
	RequestUnresolvable = "unresolvable"
)

// WorkflowRequest holds the structure for the workflowrequests collection in
// mongo. A request transitions at most once from pending to a terminal status;
// concurrent resolution attempts after the first are rejected.
type WorkflowRequest struct {
	ID      primitive.ObjectID     `json:"_id" bson:"_id"`
	Details WorkflowRequestDetails `json:"workflowRequest" bson:"workflowRequest"`
	Version int32                  `json:"__v" bson:"__v"`
}

// WorkflowRequestDetails holds the structure for the inner workflow request details
type WorkflowRequestDetails struct {
	SessionID string `json:"sessionID" bson:"sessionID"`
	Kind      string `json:"kind" bson:"kind"`

	RequesterID   string `json:"requesterID" bson:"requesterID"`
	RequesterName string `json:"requesterName" bson:"requesterName"`
	RequesterRole string `json:"requesterRole" bson:"requesterRole"`

	Status string `json:"status" bson:"status"`

	// Hand-raise and date-extension payload
	Reason string `json:"reason,omitempty" bson:"reason,omitempty"`

	// Date-extension payload
	RequestedDate primitive.DateTime `json:"requestedDate,omitempty" bson:"requestedDate,omitempty"`

	// Witness payload. WitnessEmail, when present, receives the summons
	// notice once the judge rules
	WitnessName  string `json:"witnessName,omitempty" bson:"witnessName,omitempty"`
	WitnessEmail string `json:"witnessEmail,omitempty" bson:"witnessEmail,omitempty"`
	Description  string `json:"description,omitempty" bson:"description,omitempty"`
	Relevance    string `json:"relevance,omitempty" bson:"relevance,omitempty"`

	// Evidence payload. Accepted is a tri-state: nil until the judge rules,
	// then true (admitted) or false (rejected). ExtractedText is attached
	// out-of-band by the OCR collaborator before arbitration.
	FileURL       string `json:"fileURL,omitempty" bson:"fileURL,omitempty"`
	Label         string `json:"label,omitempty" bson:"label,omitempty"`
	ExtractedText string `json:"extractedText,omitempty" bson:"extractedText,omitempty"`
	Accepted      *bool  `json:"accepted" bson:"accepted"`

	Decision WorkflowDecision `json:"decision,omitempty" bson:"decision,omitempty"`

	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
	ResolvedAt primitive.DateTime `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
}

// WorkflowDecision is the arbitrator's decision payload persisted on resolution
type WorkflowDecision struct {
	// Allowed carries the boolean outcome where the kind has one
	// (hand_raise allow/deny, witness summon/deny, date approve/deny,
	// evidence admit/reject)
	Allowed bool `json:"allowed" bson:"allowed"`

	// Response is the arbitrator's ruling in natural language
	Response string `json:"response" bson:"response"`

	// NextHearingDate is set on date-extension approvals and overrides the
	// requested date
	NextHearingDate primitive.DateTime `json:"nextHearingDate,omitempty" bson:"nextHearingDate,omitempty"`

	// DecidedBy is the resolving judge's participant ID, synthetic judges
	// included
	DecidedBy string `json:"decidedBy,omitempty" bson:"decidedBy,omitempty"`
}

// OpenWorkflowRequest is the body for the workflow open endpoint
type OpenWorkflowRequest struct {
	RequesterID   string `json:"requesterId"`
	Reason        string `json:"reason,omitempty"`
	RequestedDate string `json:"requestedDate,omitempty"` // RFC3339
	WitnessName   string `json:"witnessName,omitempty"`
	WitnessEmail  string `json:"witnessEmail,omitempty"`
	Description   string `json:"description,omitempty"`
	Relevance     string `json:"relevance,omitempty"`
	FileURL       string `json:"fileURL,omitempty"`
	Label         string `json:"label,omitempty"`
}

// ResolveWorkflowRequest is the body for the workflow resolve endpoint
type ResolveWorkflowRequest struct {
	DeciderID       string `json:"deciderId"`
	Allowed         bool   `json:"allowed"`
	Response        string `json:"response"`
	NextHearingDate string `json:"nextHearingDate,omitempty"` // RFC3339
}
