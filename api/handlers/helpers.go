package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

var errUnknownReaction = fmt.Errorf("reaction tag is not in the allowed set")

func errSessionStatus(status string) error {
	return fmt.Errorf("session status is '%s'", status)
}

func getPage(Page int, r *http.Request) int {
	if r.URL.Query().Get("page") == "" {
		zap.S().Warnf("page not set, using default of %v", Page)
	} else {
		var err error
		Page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		}
		if Page < 0 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", Page))
			return 0
		}
	}
	return Page
}

func findSessionByHexID(ctx context.Context, db databases.HearingSessionDatabase, sessionID string) (*models.HearingSession, error) {
	bID, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, err
	}
	return db.FindOne(ctx, bson.M{"_id": bID})
}

// appendTranscript claims the next sequence number for the session and
// persists the entry, then pushes it to event-stream subscribers. Callers
// mutate under the session lock, so sequence claims from this instance are
// already serialized; the counter document keeps the claim atomic across
// instances.
func appendTranscript(ctx context.Context, tdb databases.TranscriptDatabase, hub *SessionHub,
	sessionID, speakerRole, speakerName, message, kind string) (int64, error) {

	seq, err := tdb.NextSeq(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	entry := models.TranscriptEntry{
		ID:          primitive.NewObjectID(),
		SessionID:   sessionID,
		Seq:         seq,
		SpeakerRole: speakerRole,
		SpeakerName: speakerName,
		Message:     message,
		Kind:        kind,
		CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
	}

	if _, err := tdb.InsertOne(ctx, entry); err != nil {
		// A rejected insert after a claimed sequence number is a sequencing
		// fault: the transcript would have a gap or duplicate. Treat it as a
		// fatal invariant violation for this session rather than keep writing
		// with ambiguous order.
		zap.S().Errorw("transcript sequencing fault, refusing further writes for session",
			"sessionID", sessionID,
			"seq", seq,
			"error", err,
		)
		return 0, fmt.Errorf("transcript sequencing fault at seq %d: %w", seq, err)
	}

	if hub != nil {
		hub.BroadcastTranscript(sessionID, entry)
	}
	return seq, nil
}
