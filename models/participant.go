package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Participant roles. Exactly one role per participant; "judge" is limited to
// one active seat per session.
const (
	RoleJudge         = "judge"
	RoleProsecutor    = "prosecutor"
	RoleDefenceLawyer = "defence_lawyer"
	RoleAccused       = "accused"
	RoleVictim        = "victim"
	RoleVictimFamily  = "victim_family"
	RoleAccusedFamily = "accused_family"
	RoleWitness       = "witness"
	RoleAudience      = "audience"
)

var participantRoles = map[string]bool{
	RoleJudge:         true,
	RoleProsecutor:    true,
	RoleDefenceLawyer: true,
	RoleAccused:       true,
	RoleVictim:        true,
	RoleVictimFamily:  true,
	RoleAccusedFamily: true,
	RoleWitness:       true,
	RoleAudience:      true,
}

// ValidRole reports whether role is one of the closed participant role set
func ValidRole(role string) bool {
	return participantRoles[role]
}

// Participant holds the structure for the participants collection in mongo.
// Participants are created on join and soft-deactivated on leave, never
// hard-deleted, so transcript history stays attributable.
type Participant struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details ParticipantDetails `json:"participant" bson:"participant"`
	Version int32              `json:"__v" bson:"__v"`
}

// ParticipantDetails holds the structure for the inner participant details
type ParticipantDetails struct {
	SessionID string `json:"sessionID" bson:"sessionID"`

	// UserID is the external identity supplied by the identity provider,
	// trusted opaquely
	UserID string `json:"userID" bson:"userID"`
	Name   string `json:"name" bson:"name"`
	Role   string `json:"role" bson:"role"`

	Active bool `json:"active" bson:"active"`

	// Synthetic distinguishes the AI judge from human participants
	Synthetic bool `json:"synthetic" bson:"synthetic"`

	JoinedAt primitive.DateTime `json:"joinedAt" bson:"joinedAt"`
	LeftAt   primitive.DateTime `json:"leftAt,omitempty" bson:"leftAt,omitempty"`
}

// JoinRequest is the body for the join endpoint
type JoinRequest struct {
	UserID    string `json:"userID"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Synthetic bool   `json:"synthetic,omitempty"`
}
