package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/court-hearing-api/api"
	"github.com/linesmerrill/court-hearing-api/config"
	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

// Participant exported for testing purposes
type Participant struct {
	DB  databases.ParticipantDatabase
	SDB databases.HearingSessionDatabase
	TDB databases.TranscriptDatabase
	Hub *SessionHub
}

// JoinSessionHandler registers a participant in a hearing session. The judge
// seat is exclusive: a join with role "judge" fails with RoleConflict while an
// active judge (human or synthetic) is present.
func (p Participant) JoinSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	var body models.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.UserID == "" || body.Name == "" {
		config.ErrorStatus("userID and name are required", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}
	if !models.ValidRole(body.Role) {
		config.ErrorStatus("unknown participant role", http.StatusBadRequest, w, fmt.Errorf("role '%s'", body.Role))
		return
	}

	lock := sessLocks.Lock(sessionID)
	defer lock.Unlock()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := findSessionByHexID(ctx, p.SDB, sessionID)
	if err != nil {
		config.ErrorStatus("failed to find hearing session", http.StatusNotFound, w, err)
		return
	}
	if session.Details.Status != models.SessionScheduled && session.Details.Status != models.SessionInProgress {
		config.ErrorCode(models.CodeSessionNotJoinable, "hearing session is not joinable", http.StatusConflict, w,
			errSessionStatus(session.Details.Status))
		return
	}

	if body.Role == models.RoleJudge {
		judges, cerr := p.DB.CountDocuments(ctx, bson.M{
			"participant.sessionID": sessionID,
			"participant.role":      models.RoleJudge,
			"participant.active":    true,
		})
		if cerr != nil {
			config.ErrorStatus("failed to check judge seat", http.StatusInternalServerError, w, cerr)
			return
		}
		if judges > 0 {
			config.ErrorCode(models.CodeRoleConflict, "an active judge is already seated", http.StatusConflict, w,
				fmt.Errorf("judge seat taken"))
			return
		}
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	participant := models.Participant{
		ID: primitive.NewObjectID(),
		Details: models.ParticipantDetails{
			SessionID: sessionID,
			UserID:    body.UserID,
			Name:      body.Name,
			Role:      body.Role,
			Active:    true,
			Synthetic: body.Synthetic,
			JoinedAt:  now,
		},
	}

	if _, err := p.DB.InsertOne(ctx, participant); err != nil {
		config.ErrorStatus("failed to join hearing session", http.StatusInternalServerError, w, err)
		return
	}

	// Presence is reconstructable from the record alone
	message := fmt.Sprintf("%s joined the hearing as %s.", body.Name, body.Role)
	if _, err := appendTranscript(ctx, p.TDB, p.Hub, sessionID, body.Role, body.Name, message, models.EntryAction); err != nil {
		config.ErrorStatus("failed to record join", http.StatusInternalServerError, w, err)
		return
	}
	if p.Hub != nil {
		p.Hub.BroadcastPresence(sessionID, "joined", participant.Details)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Joined hearing session",
		"participantId": participant.ID.Hex(),
	})
}

// LeaveSessionHandler deactivates a participant. History is never removed:
// the row stays, flagged inactive with a left timestamp.
func (p Participant) LeaveSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	participantID := mux.Vars(r)["participant_id"]

	bID, err := primitive.ObjectIDFromHex(participantID)
	if err != nil {
		config.ErrorStatus("invalid participant ID", http.StatusBadRequest, w, err)
		return
	}

	lock := sessLocks.Lock(sessionID)
	defer lock.Unlock()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := p.DB.FindOne(ctx, bson.M{"_id": bID, "participant.sessionID": sessionID})
	if err != nil {
		config.ErrorStatus("failed to find participant", http.StatusNotFound, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := p.DB.UpdateOne(ctx,
		bson.M{"_id": bID, "participant.active": true},
		bson.M{"$set": bson.M{
			"participant.active": false,
			"participant.leftAt": now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to leave hearing session", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("participant already left", http.StatusConflict, w, fmt.Errorf("participant inactive"))
		return
	}

	message := fmt.Sprintf("%s left the hearing.", existing.Details.Name)
	if _, err := appendTranscript(ctx, p.TDB, p.Hub, sessionID, existing.Details.Role, existing.Details.Name, message, models.EntryAction); err != nil {
		config.ErrorStatus("failed to record leave", http.StatusInternalServerError, w, err)
		return
	}
	if p.Hub != nil {
		p.Hub.BroadcastPresence(sessionID, "left", existing.Details)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Left hearing session",
	})
}

// ResolveCurrentHandler returns the active participant record for an external
// user id in this session, if any
func (p Participant) ResolveCurrentHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		config.ErrorStatus("userId query parameter is required", http.StatusBadRequest, w, fmt.Errorf("missing userId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := p.DB.FindOne(ctx, bson.M{
		"participant.sessionID": sessionID,
		"participant.userID":    userID,
		"participant.active":    true,
	})
	if err != nil {
		config.ErrorStatus("no active participant for user", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// GetParticipantsHandler lists a session's participants, optionally filtered
// to active ones
func (p Participant) GetParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	filter := bson.M{"participant.sessionID": sessionID}
	if r.URL.Query().Get("active") == "true" {
		filter["participant.active"] = true
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := p.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get participants", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Participant{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
