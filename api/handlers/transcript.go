package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-hearing-api/api"
	"github.com/linesmerrill/court-hearing-api/config"
	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

const transcriptPageLimit = 200

// Transcript exported for testing purposes
type Transcript struct {
	TDB databases.TranscriptDatabase
	SDB databases.HearingSessionDatabase
	PDB databases.ParticipantDatabase
	Hub *SessionHub
}

// AppendTranscriptHandler appends an entry to the session transcript. Speech
// entries require the session to be in progress; procedural kinds are also
// accepted while adjournment bookkeeping settles.
func (t Transcript) AppendTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	var body models.AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Message == "" {
		config.ErrorStatus("message is required", http.StatusBadRequest, w, fmt.Errorf("empty message"))
		return
	}
	if body.Kind == "" {
		body.Kind = models.EntrySpeech
	}
	if !models.ValidEntryKind(body.Kind) {
		config.ErrorStatus("unknown entry kind", http.StatusBadRequest, w, fmt.Errorf("kind '%s'", body.Kind))
		return
	}

	lock := sessLocks.Lock(sessionID)
	defer lock.Unlock()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := findSessionByHexID(ctx, t.SDB, sessionID)
	if err != nil {
		config.ErrorStatus("failed to find hearing session", http.StatusNotFound, w, err)
		return
	}
	if body.Kind == models.EntrySpeech && session.Details.Status != models.SessionInProgress {
		config.ErrorCode(models.CodeSessionNotActive, "hearing session is not in progress", http.StatusConflict, w,
			errSessionStatus(session.Details.Status))
		return
	}

	if body.ParticipantID == "" {
		config.ErrorStatus("participantId is required", http.StatusBadRequest, w, fmt.Errorf("missing participantId"))
		return
	}
	participant, err := t.PDB.FindOne(ctx, bson.M{
		"participant.sessionID": sessionID,
		"participant.userID":    body.ParticipantID,
		"participant.active":    true,
	})
	if err != nil {
		config.ErrorStatus("failed to resolve speaker", http.StatusNotFound, w, err)
		return
	}

	seq, err := appendTranscript(ctx, t.TDB, t.Hub, sessionID,
		participant.Details.Role, participant.Details.Name, body.Message, body.Kind)
	if err != nil {
		config.ErrorStatus("failed to append transcript entry", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":        "Transcript entry recorded",
		"sequenceNumber": seq,
	})
}

// GetTranscriptHandler reads the transcript in ascending sequence order.
// `after` resumes past a known sequence number, `limit` caps the page.
func (t Transcript) GetTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	after := int64(0)
	if v := r.URL.Query().Get("after"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 0 {
			config.ErrorStatus("invalid after parameter", http.StatusBadRequest, w, fmt.Errorf("after '%s'", v))
			return
		}
		after = parsed
	}
	limit := transcriptPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			config.ErrorStatus("invalid limit parameter", http.StatusBadRequest, w, fmt.Errorf("limit '%s'", v))
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetLimit(int64(limit))
	dbResp, err := t.TDB.Find(ctx, bson.M{
		"sessionID": sessionID,
		"seq":       bson.M{"$gt": after},
	}, findOpts)
	if err != nil {
		config.ErrorStatus("failed to get transcript", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.TranscriptEntry{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
