package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-hearing-api/api"
	"github.com/linesmerrill/court-hearing-api/config"
	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

// Session exported for testing purposes
type Session struct {
	DB   databases.HearingSessionDatabase
	TDB  databases.TranscriptDatabase
	CCDB databases.CourtCaseDatabase
	Hub  *SessionHub
}

// CreateSessionHandler creates a new hearing session in scheduled status
func (s Session) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	// Decode into a raw map first so we can handle ISO date strings for scheduledStart
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	rawStart, hasStart := raw["scheduledStart"]
	delete(raw, "scheduledStart")

	b, _ := json.Marshal(raw)
	var session models.HearingSession
	if err := json.Unmarshal(b, &session.Details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if hasStart {
		if str, ok := rawStart.(string); ok && str != "" {
			if t, err := time.Parse(time.RFC3339, str); err == nil {
				session.Details.ScheduledStart = primitive.NewDateTimeFromTime(t)
			}
		}
	}

	session.ID = primitive.NewObjectID()
	now := primitive.NewDateTimeFromTime(time.Now())
	session.Details.Status = models.SessionScheduled
	session.Details.CreatedAt = now
	session.Details.UpdatedAt = now

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := s.DB.InsertOne(ctx, session); err != nil {
		config.ErrorStatus("failed to create hearing session", http.StatusInternalServerError, w, err)
		return
	}

	// Link the case to this hearing
	if session.Details.CaseID != "" {
		if caseID, err := primitive.ObjectIDFromHex(session.Details.CaseID); err == nil {
			_, _ = s.CCDB.UpdateOne(ctx,
				bson.M{"_id": caseID},
				bson.M{"$set": bson.M{
					"courtCase.hearingSessionID": session.ID.Hex(),
					"courtCase.status":           "scheduled",
					"courtCase.updatedAt":        now,
				}},
			)
		}
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Hearing session created successfully",
		"id":      session.ID.Hex(),
	})
}

// GetSessionByIDHandler returns a hearing session by ID
func (s Session) GetSessionByIDHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := findSessionByHexID(ctx, s.DB, sessionID)
	if err != nil {
		config.ErrorStatus("failed to find hearing session", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// GetSessionsByCaseHandler returns paginated hearing sessions for a case
func (s Session) GetSessionsByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	status := r.URL.Query().Get("status")
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || Limit <= 0 {
		Limit = 10
	}
	limit64 := int64(Limit)
	Page := getPage(0, r)
	skip64 := int64(Page * Limit)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{
		"hearingSession.caseID": caseID,
	}
	if status != "" {
		if strings.Contains(status, ",") {
			statuses := strings.Split(status, ",")
			filter["hearingSession.status"] = bson.M{"$in": statuses}
		} else {
			filter["hearingSession.status"] = status
		}
	}

	type findResult struct {
		sessions []models.HearingSession
		err      error
	}
	type countResult struct {
		count int64
		err   error
	}

	findChan := make(chan findResult, 1)
	countChan := make(chan countResult, 1)

	go func() {
		sessions, err := s.DB.Find(ctx, filter, &options.FindOptions{
			Limit: &limit64,
			Skip:  &skip64,
			Sort:  bson.M{"_id": -1},
		})
		findChan <- findResult{sessions: sessions, err: err}
	}()

	go func() {
		count, err := s.DB.CountDocuments(ctx, filter)
		countChan <- countResult{count: count, err: err}
	}()

	findRes := <-findChan
	countRes := <-countChan

	if findRes.err != nil {
		config.ErrorStatus("failed to get hearing sessions", http.StatusNotFound, w, findRes.err)
		return
	}

	dbResp := findRes.sessions
	var totalCount int64
	if countRes.err != nil {
		totalCount = int64(len(dbResp))
	} else {
		totalCount = countRes.count
	}

	if len(dbResp) == 0 {
		dbResp = []models.HearingSession{}
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(Limit)))

	response := map[string]interface{}{
		"data":       dbResp,
		"page":       Page,
		"limit":      Limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	}

	b, err := json.Marshal(response)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// TransitionSessionHandler applies a lifecycle transition to a hearing
// session. Legal transitions: scheduled → in_progress, in_progress →
// adjourned, in_progress → completed. Anything else fails with
// InvalidTransition and leaves the session unchanged.
func (s Session) TransitionSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	bID, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		config.ErrorStatus("invalid hearing session ID", http.StatusBadRequest, w, err)
		return
	}

	var body models.SessionTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	lock := sessLocks.Lock(sessionID)
	defer lock.Unlock()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := s.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("failed to find hearing session", http.StatusNotFound, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())

	switch body.Target {
	case models.SessionInProgress:
		if existing.Details.Status != models.SessionScheduled {
			config.ErrorCode(models.CodeInvalidTransition, "only a scheduled hearing can be started", http.StatusConflict, w,
				errSessionStatus(existing.Details.Status))
			return
		}
		err = s.applyTransition(ctx, bID, models.SessionScheduled, bson.M{
			"hearingSession.status":    models.SessionInProgress,
			"hearingSession.startedAt": now,
			"hearingSession.updatedAt": now,
		})
		if err != nil {
			config.ErrorCode(models.CodeInvalidTransition, "failed to start hearing session", http.StatusConflict, w, err)
			return
		}

		// Opening announcement: the first system-authored entry in the record
		announcement := fmt.Sprintf("The court is now in session. Hearing %q commenced.", existing.Details.Title)
		if _, err := appendTranscript(ctx, s.TDB, s.Hub, sessionID, "", "", announcement, models.EntryAction); err != nil {
			config.ErrorStatus("failed to record opening announcement", http.StatusInternalServerError, w, err)
			return
		}

	case models.SessionAdjourned:
		if existing.Details.Status != models.SessionInProgress {
			config.ErrorCode(models.CodeInvalidTransition, "only an in-progress hearing can be adjourned", http.StatusConflict, w,
				errSessionStatus(existing.Details.Status))
			return
		}
		if body.Reason == "" {
			config.ErrorStatus("adjournment requires a reason", http.StatusBadRequest, w, fmt.Errorf("missing reason"))
			return
		}
		set := bson.M{
			"hearingSession.status":        models.SessionAdjourned,
			"hearingSession.adjournReason": body.Reason,
			"hearingSession.endedAt":       now,
			"hearingSession.updatedAt":     now,
		}
		if body.NextHearingDate != "" {
			t, perr := time.Parse(time.RFC3339, body.NextHearingDate)
			if perr != nil {
				config.ErrorStatus("invalid next hearing date", http.StatusBadRequest, w, perr)
				return
			}
			set["hearingSession.nextHearingDate"] = primitive.NewDateTimeFromTime(t)
		}
		err = s.applyTransition(ctx, bID, models.SessionInProgress, set)
		if err != nil {
			config.ErrorCode(models.CodeInvalidTransition, "failed to adjourn hearing session", http.StatusConflict, w, err)
			return
		}

		message := fmt.Sprintf("The hearing is adjourned. Reason: %s", body.Reason)
		if _, err := appendTranscript(ctx, s.TDB, s.Hub, sessionID, "", "", message, models.EntryAction); err != nil {
			config.ErrorStatus("failed to record adjournment", http.StatusInternalServerError, w, err)
			return
		}

	case models.SessionCompleted:
		if existing.Details.Status != models.SessionInProgress {
			config.ErrorCode(models.CodeInvalidTransition, "only an in-progress hearing can be completed", http.StatusConflict, w,
				errSessionStatus(existing.Details.Status))
			return
		}
		// A hearing completes only once a final ruling is on the record
		rulings, cerr := s.TDB.CountDocuments(ctx, bson.M{
			"sessionID": sessionID,
			"kind":      models.EntryOrder,
		})
		if cerr != nil {
			config.ErrorStatus("failed to check for final ruling", http.StatusInternalServerError, w, cerr)
			return
		}
		if rulings == 0 {
			config.ErrorCode(models.CodeInvalidTransition, "cannot complete a hearing without a final ruling on the record", http.StatusConflict, w,
				fmt.Errorf("no order entries in transcript"))
			return
		}
		err = s.applyTransition(ctx, bID, models.SessionInProgress, bson.M{
			"hearingSession.status":    models.SessionCompleted,
			"hearingSession.endedAt":   now,
			"hearingSession.updatedAt": now,
		})
		if err != nil {
			config.ErrorCode(models.CodeInvalidTransition, "failed to complete hearing session", http.StatusConflict, w, err)
			return
		}

		if _, err := appendTranscript(ctx, s.TDB, s.Hub, sessionID, "", "", "The hearing is concluded.", models.EntryAction); err != nil {
			config.ErrorStatus("failed to record conclusion", http.StatusInternalServerError, w, err)
			return
		}

		// Completed hearing completes the linked case
		if existing.Details.CaseID != "" {
			if caseID, cerr := primitive.ObjectIDFromHex(existing.Details.CaseID); cerr == nil {
				_, _ = s.CCDB.UpdateOne(ctx,
					bson.M{"_id": caseID},
					bson.M{"$set": bson.M{
						"courtCase.status":    "completed",
						"courtCase.updatedAt": now,
					}},
				)
			}
		}

	default:
		config.ErrorCode(models.CodeInvalidTransition, "unknown transition target", http.StatusConflict, w,
			fmt.Errorf("target '%s'", body.Target))
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Hearing session transitioned",
		"status":  body.Target,
	})
}

// applyTransition performs the status change guarded by the expected current
// status, so a racing transition on another instance loses cleanly.
func (s Session) applyTransition(ctx context.Context, id primitive.ObjectID, fromStatus string, set bson.M) error {
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"_id": id, "hearingSession.status": fromStatus},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return fmt.Errorf("session is no longer in '%s'", fromStatus)
	}
	return nil
}
