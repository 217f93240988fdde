package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Transcript entry kinds
const (
	EntrySpeech    = "speech"
	EntryAction    = "action"
	EntryDocument  = "document"
	EntryObjection = "objection"
	EntryOrder     = "order"
	EntryEvidence  = "evidence"
)

var entryKinds = map[string]bool{
	EntrySpeech:    true,
	EntryAction:    true,
	EntryDocument:  true,
	EntryObjection: true,
	EntryOrder:     true,
	EntryEvidence:  true,
}

// ValidEntryKind reports whether kind is one of the closed transcript kind set
func ValidEntryKind(kind string) bool {
	return entryKinds[kind]
}

// TranscriptEntry holds the structure for the transcripts collection in mongo.
// Entries are immutable once appended; corrections are new entries. Seq is the
// per-session sequence number, monotonic and gapless starting at 1, and is the
// only strong ordering promise the engine makes.
type TranscriptEntry struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	SessionID string             `json:"sessionID" bson:"sessionID"`
	Seq       int64              `json:"seq" bson:"seq"`

	// Speaker is absent for system-authored entries
	SpeakerRole string `json:"speakerRole,omitempty" bson:"speakerRole,omitempty"`
	SpeakerName string `json:"speakerName,omitempty" bson:"speakerName,omitempty"`

	Message string `json:"message" bson:"message"`
	Kind    string `json:"kind" bson:"kind"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// AppendRequest is the body for the transcript append endpoint
type AppendRequest struct {
	ParticipantID string `json:"participantId,omitempty"`
	Message       string `json:"message"`
	Kind          string `json:"kind,omitempty"` // defaults to "speech"
}
