package models

import "time"

// Reaction tags. Reactions are ephemeral: they live only in the presence
// channel, expire after a few seconds and are never part of the transcript.
const (
	ReactionRaiseHand = "raise_hand"
	ReactionAgree     = "agree"
	ReactionDisagree  = "disagree"
	ReactionApplaud   = "applaud"
	ReactionObjection = "objection"
)

var reactionTags = map[string]bool{
	ReactionRaiseHand: true,
	ReactionAgree:     true,
	ReactionDisagree:  true,
	ReactionApplaud:   true,
	ReactionObjection: true,
}

// ValidReaction reports whether tag is one of the closed reaction set
func ValidReaction(tag string) bool {
	return reactionTags[tag]
}

// Reaction is a participant's momentary reaction, broadcast best-effort
type Reaction struct {
	ParticipantID string    `json:"participantId"`
	Tag           string    `json:"reaction,omitempty"` // empty clears the reaction
	At            time.Time `json:"at"`
}
