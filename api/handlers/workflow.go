package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-hearing-api/api"
	"github.com/linesmerrill/court-hearing-api/api/arbitration"
	"github.com/linesmerrill/court-hearing-api/config"
	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

// resolveGrace is how long after adjournment a pending request may still be
// resolved. Past the window the sweeper marks leftovers unresolvable.
const resolveGrace = 5 * time.Minute

// Workflow exported for testing purposes
type Workflow struct {
	WDB  databases.WorkflowRequestDatabase
	SDB  databases.HearingSessionDatabase
	PDB  databases.ParticipantDatabase
	TDB  databases.TranscriptDatabase
	CCDB databases.CourtCaseDatabase
	Arb  arbitration.Arbitrator
	Hub  *SessionHub
}

var workflowKinds = map[string]bool{
	models.WorkflowHandRaise:     true,
	models.WorkflowWitness:       true,
	models.WorkflowDateExtension: true,
	models.WorkflowEvidence:      true,
}

// terminalStatus maps a kind plus the boolean outcome to the terminal status
// recorded on the request
func terminalStatus(kind string, allowed bool) string {
	switch kind {
	case models.WorkflowHandRaise:
		if allowed {
			return models.RequestAllowed
		}
		return models.RequestDenied
	case models.WorkflowWitness:
		if allowed {
			return models.RequestSummoned
		}
		return models.RequestDenied
	case models.WorkflowDateExtension:
		if allowed {
			return models.RequestApproved
		}
		return models.RequestDenied
	case models.WorkflowEvidence:
		if allowed {
			return models.RequestAdmitted
		}
		return models.RequestRejected
	}
	return models.RequestDenied
}

// openingAnnouncement renders the transcript line recorded when a request is
// opened, and the entry kind it is filed under
func openingAnnouncement(kind string, d models.WorkflowRequestDetails) (string, string) {
	switch kind {
	case models.WorkflowHandRaise:
		return fmt.Sprintf("%s raises a hand and requests permission to speak.", d.RequesterName), models.EntryAction
	case models.WorkflowWitness:
		return fmt.Sprintf("%s moves to summon witness %s.", d.RequesterName, d.WitnessName), models.EntryAction
	case models.WorkflowDateExtension:
		return fmt.Sprintf("%s files a motion to extend the hearing to a later date.", d.RequesterName), models.EntryAction
	case models.WorkflowEvidence:
		return fmt.Sprintf("%s submits exhibit %q for admission into evidence.", d.RequesterName, d.Label), models.EntryDocument
	}
	return "", models.EntryAction
}

// rulingMessage renders the order entry recorded when a request resolves. The
// arbitrator's own words win; defaults cover a bare boolean ruling.
func rulingMessage(kind string, d models.WorkflowRequestDetails, decision models.WorkflowDecision) string {
	if decision.Response != "" {
		return decision.Response
	}
	switch kind {
	case models.WorkflowHandRaise:
		if decision.Allowed {
			return fmt.Sprintf("The court recognizes %s. You may speak.", d.RequesterName)
		}
		return "Denied, proceed."
	case models.WorkflowWitness:
		if decision.Allowed {
			return fmt.Sprintf("Witness %s is summoned to appear before the court.", d.WitnessName)
		}
		return fmt.Sprintf("The motion to summon witness %s is denied.", d.WitnessName)
	case models.WorkflowDateExtension:
		if decision.Allowed {
			return fmt.Sprintf("The motion is granted. The next hearing is set for %s.",
				decision.NextHearingDate.Time().Format("January 2, 2006"))
		}
		return "The motion for an extension is denied. The hearing will proceed as scheduled."
	case models.WorkflowEvidence:
		if decision.Allowed {
			return fmt.Sprintf("Exhibit %q is admitted into evidence.", d.Label)
		}
		return fmt.Sprintf("Exhibit %q is rejected.", d.Label)
	}
	return ""
}

func validateOpenPayload(kind string, body models.OpenWorkflowRequest) error {
	switch kind {
	case models.WorkflowHandRaise:
		if body.Reason == "" {
			return fmt.Errorf("reason is required")
		}
	case models.WorkflowWitness:
		if body.WitnessName == "" {
			return fmt.Errorf("witnessName is required")
		}
	case models.WorkflowDateExtension:
		if body.Reason == "" || body.RequestedDate == "" {
			return fmt.Errorf("reason and requestedDate are required")
		}
	case models.WorkflowEvidence:
		if body.FileURL == "" || body.Label == "" {
			return fmt.Errorf("fileURL and label are required")
		}
	}
	return nil
}

// OpenWorkflowHandler files a new pending workflow request against an
// in-progress session and announces it on the transcript.
func (wf Workflow) OpenWorkflowHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	kind := mux.Vars(r)["kind"]

	if !workflowKinds[kind] {
		config.ErrorStatus("unknown workflow kind", http.StatusBadRequest, w, fmt.Errorf("kind '%s'", kind))
		return
	}

	var body models.OpenWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.RequesterID == "" {
		config.ErrorStatus("requesterId is required", http.StatusBadRequest, w, fmt.Errorf("missing requesterId"))
		return
	}
	if err := validateOpenPayload(kind, body); err != nil {
		config.ErrorStatus("invalid workflow payload", http.StatusBadRequest, w, err)
		return
	}

	var requestedDate primitive.DateTime
	if body.RequestedDate != "" {
		parsed, err := time.Parse(time.RFC3339, body.RequestedDate)
		if err != nil {
			config.ErrorStatus("invalid requestedDate", http.StatusBadRequest, w, err)
			return
		}
		requestedDate = primitive.NewDateTimeFromTime(parsed)
	}

	lock := sessLocks.Lock(sessionID)
	defer lock.Unlock()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := findSessionByHexID(ctx, wf.SDB, sessionID)
	if err != nil {
		config.ErrorStatus("failed to find hearing session", http.StatusNotFound, w, err)
		return
	}
	if session.Details.Status != models.SessionInProgress {
		config.ErrorCode(models.CodeSessionNotActive, "hearing session is not in progress", http.StatusConflict, w,
			errSessionStatus(session.Details.Status))
		return
	}

	requester, err := wf.PDB.FindOne(ctx, bson.M{
		"participant.sessionID": sessionID,
		"participant.userID":    body.RequesterID,
		"participant.active":    true,
	})
	if err != nil {
		config.ErrorStatus("requester is not an active participant", http.StatusNotFound, w, err)
		return
	}

	request := models.WorkflowRequest{
		ID: primitive.NewObjectID(),
		Details: models.WorkflowRequestDetails{
			SessionID:     sessionID,
			Kind:          kind,
			RequesterID:   requester.Details.UserID,
			RequesterName: requester.Details.Name,
			RequesterRole: requester.Details.Role,
			Status:        models.RequestPending,
			Reason:        body.Reason,
			RequestedDate: requestedDate,
			WitnessName:   body.WitnessName,
			WitnessEmail:  body.WitnessEmail,
			Description:   body.Description,
			Relevance:     body.Relevance,
			FileURL:       body.FileURL,
			Label:         body.Label,
			CreatedAt:     primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	if _, err := wf.WDB.InsertOne(ctx, request); err != nil {
		config.ErrorStatus("failed to open workflow request", http.StatusInternalServerError, w, err)
		return
	}

	message, entryKind := openingAnnouncement(kind, request.Details)
	if _, err := appendTranscript(ctx, wf.TDB, wf.Hub, sessionID,
		requester.Details.Role, requester.Details.Name, message, entryKind); err != nil {
		config.ErrorStatus("failed to announce workflow request", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Workflow request opened",
		"requestId": request.ID.Hex(),
	})
}

// ResolveWorkflowHandler records the judge's decision on a pending request.
// Resolution is at most once: the first writer wins and later attempts get
// AlreadyResolved regardless of outcome.
func (wf Workflow) ResolveWorkflowHandler(w http.ResponseWriter, r *http.Request) {
	var body models.ResolveWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	wf.resolve(w, r, body)
}

func (wf Workflow) resolve(w http.ResponseWriter, r *http.Request, body models.ResolveWorkflowRequest) {
	sessionID := mux.Vars(r)["session_id"]
	requestID := mux.Vars(r)["request_id"]

	bID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("invalid request ID", http.StatusBadRequest, w, err)
		return
	}
	if body.DeciderID == "" {
		config.ErrorStatus("deciderId is required", http.StatusBadRequest, w, fmt.Errorf("missing deciderId"))
		return
	}

	var nextHearingDate primitive.DateTime
	if body.NextHearingDate != "" {
		parsed, perr := time.Parse(time.RFC3339, body.NextHearingDate)
		if perr != nil {
			config.ErrorStatus("invalid nextHearingDate", http.StatusBadRequest, w, perr)
			return
		}
		nextHearingDate = primitive.NewDateTimeFromTime(parsed)
	}

	lock := sessLocks.Lock(sessionID)
	defer lock.Unlock()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := findSessionByHexID(ctx, wf.SDB, sessionID)
	if err != nil {
		config.ErrorStatus("failed to find hearing session", http.StatusNotFound, w, err)
		return
	}
	if !resolvableNow(session) {
		config.ErrorCode(models.CodeSessionNotActive, "hearing session no longer accepts resolutions", http.StatusConflict, w,
			errSessionStatus(session.Details.Status))
		return
	}

	judge, err := wf.PDB.FindOne(ctx, bson.M{
		"participant.sessionID": sessionID,
		"participant.userID":    body.DeciderID,
		"participant.role":      models.RoleJudge,
		"participant.active":    true,
	})
	if err != nil {
		config.ErrorStatus("only the presiding judge may resolve requests", http.StatusForbidden, w, err)
		return
	}

	request, err := wf.WDB.FindOne(ctx, bson.M{"_id": bID, "workflowRequest.sessionID": sessionID})
	if err != nil {
		config.ErrorStatus("failed to find workflow request", http.StatusNotFound, w, err)
		return
	}

	status := terminalStatus(request.Details.Kind, body.Allowed)
	decision := models.WorkflowDecision{
		Allowed:         body.Allowed,
		Response:        body.Response,
		NextHearingDate: nextHearingDate,
		DecidedBy:       judge.Details.UserID,
	}
	if request.Details.Kind == models.WorkflowDateExtension && body.Allowed && nextHearingDate == 0 {
		// The arbitrator did not override, the requested date stands
		decision.NextHearingDate = request.Details.RequestedDate
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	filter := bson.M{"_id": bID, "workflowRequest.status": models.RequestPending}
	set := bson.M{
		"workflowRequest.status":     status,
		"workflowRequest.decision":   decision,
		"workflowRequest.resolvedAt": now,
	}
	if request.Details.Kind == models.WorkflowEvidence {
		// Accepted flips exactly once, from unset to the ruling
		filter["workflowRequest.accepted"] = nil
		accepted := body.Allowed
		set["workflowRequest.accepted"] = &accepted
	}

	res, err := wf.WDB.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to resolve workflow request", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorCode(models.CodeAlreadyResolved, "workflow request is already resolved", http.StatusConflict, w,
			fmt.Errorf("request '%s' not pending", requestID))
		return
	}

	message := rulingMessage(request.Details.Kind, request.Details, decision)
	if _, err := appendTranscript(ctx, wf.TDB, wf.Hub, sessionID,
		judge.Details.Role, judge.Details.Name, message, models.EntryOrder); err != nil {
		config.ErrorStatus("failed to record ruling", http.StatusInternalServerError, w, err)
		return
	}

	if request.Details.Kind == models.WorkflowDateExtension && body.Allowed {
		wf.propagateHearingDate(ctx, session, decision.NextHearingDate)
	}
	if request.Details.Kind == models.WorkflowWitness && body.Allowed {
		wf.sendWitnessSummons(session, request.Details)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Workflow request resolved",
		"status":  status,
	})
}

// resolvableNow reports whether the session still accepts resolutions: while
// in progress, or within the grace window after adjournment so decisions that
// raced the gavel still land.
func resolvableNow(session *models.HearingSession) bool {
	if session.Details.Status == models.SessionInProgress {
		return true
	}
	if session.Details.Status == models.SessionAdjourned && session.Details.EndedAt != 0 {
		return time.Since(session.Details.EndedAt.Time()) <= resolveGrace
	}
	return false
}

// propagateHearingDate writes an approved extension's date onto the session
// and its linked court case. Both writes happen under the session lock so a
// reader never sees the session and case disagree through this instance.
func (wf Workflow) propagateHearingDate(ctx context.Context, session *models.HearingSession, date primitive.DateTime) {
	if _, err := wf.SDB.UpdateOne(ctx,
		bson.M{"_id": session.ID},
		bson.M{"$set": bson.M{
			"hearingSession.nextHearingDate": date,
			"hearingSession.updatedAt":       primitive.NewDateTimeFromTime(time.Now()),
		}},
	); err != nil {
		zap.S().Errorw("failed to set next hearing date on session", "sessionID", session.ID.Hex(), "error", err)
	}

	if session.Details.CaseID == "" {
		return
	}
	caseID, err := primitive.ObjectIDFromHex(session.Details.CaseID)
	if err != nil {
		zap.S().Errorw("invalid case ID on session", "sessionID", session.ID.Hex(), "caseID", session.Details.CaseID)
		return
	}
	if _, err := wf.CCDB.UpdateOne(ctx,
		bson.M{"_id": caseID},
		bson.M{"$set": bson.M{
			"courtCase.nextHearingDate": date,
			"courtCase.updatedAt":       primitive.NewDateTimeFromTime(time.Now()),
		}},
	); err != nil {
		zap.S().Errorw("failed to set next hearing date on case", "caseID", session.Details.CaseID, "error", err)
	}
}

func (wf Workflow) sendWitnessSummons(session *models.HearingSession, d models.WorkflowRequestDetails) {
	if d.WitnessEmail == "" {
		return
	}
	subject := fmt.Sprintf("Witness Summons - %s", session.Details.Title)
	plainText := fmt.Sprintf("Dear %s, you are summoned to appear as a witness in the hearing %q. Requested by %s (%s).",
		d.WitnessName, session.Details.Title, d.RequesterName, d.RequesterRole)
	htmlContent := fmt.Sprintf("<p>Dear %s,</p><p>You are summoned to appear as a witness in the hearing <strong>%s</strong>.</p><p>Requested by %s (%s).</p>",
		d.WitnessName, session.Details.Title, d.RequesterName, d.RequesterRole)

	go func() {
		from := mail.NewEmail("Court Hearing Service", "no-reply@court-hearing-api.com")
		to := mail.NewEmail(d.WitnessName, d.WitnessEmail)
		message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
		client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
		response, err := client.Send(message)
		if err != nil {
			zap.S().Errorw("failed to send witness summons", "error", err, "to", d.WitnessEmail)
			return
		}
		if response.StatusCode >= 400 {
			zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "to", d.WitnessEmail)
			return
		}
		zap.S().Infow("witness summons sent", "to", d.WitnessEmail, "witness", d.WitnessName)
	}()
}

// ArbitrateWorkflowHandler asks the decision service to rule on a pending
// request and applies the answer through the same at-most-once path as a
// manual resolve. The arbitration call happens without the session lock held.
func (wf Workflow) ArbitrateWorkflowHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	requestID := mux.Vars(r)["request_id"]

	var body struct {
		DeciderID string `json:"deciderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	bID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("invalid request ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	request, err := wf.WDB.FindOne(ctx, bson.M{"_id": bID, "workflowRequest.sessionID": sessionID})
	if err != nil {
		config.ErrorStatus("failed to find workflow request", http.StatusNotFound, w, err)
		return
	}
	if request.Details.Status != models.RequestPending {
		config.ErrorCode(models.CodeAlreadyResolved, "workflow request is already resolved", http.StatusConflict, w,
			fmt.Errorf("request status is '%s'", request.Details.Status))
		return
	}

	session, err := findSessionByHexID(ctx, wf.SDB, sessionID)
	if err != nil {
		config.ErrorStatus("failed to find hearing session", http.StatusNotFound, w, err)
		return
	}

	caseCtx := arbitration.CaseContext{CaseID: session.Details.CaseID}
	if session.Details.CaseID != "" {
		if caseID, cerr := primitive.ObjectIDFromHex(session.Details.CaseID); cerr == nil {
			if courtCase, cerr := wf.CCDB.FindOne(ctx, bson.M{"_id": caseID}); cerr == nil {
				caseCtx.Title = courtCase.Details.Title
				caseCtx.AccusedName = courtCase.Details.AccusedName
				caseCtx.Statement = courtCase.Details.Statement
				caseCtx.Charges = courtCase.Details.Charges
			}
		}
	}

	decision, err := wf.Arb.Decide(r.Context(), request.Details.Kind, request.Details, caseCtx)
	if err != nil {
		// The request stays pending, callers may retry
		config.ErrorCode(models.CodeArbitrationUnavailable, "arbitration service unavailable", http.StatusServiceUnavailable, w, err)
		return
	}

	wf.resolve(w, r, models.ResolveWorkflowRequest{
		DeciderID:       body.DeciderID,
		Allowed:         decision.Allowed,
		Response:        decision.Response,
		NextHearingDate: decision.NextHearingDate,
	})
}

// witnessProgressions pins the post-summons lifecycle order
var witnessProgressions = map[string]string{
	models.RequestPresent:   models.RequestSummoned,
	models.RequestTestified: models.RequestPresent,
}

// UpdateWitnessStatusHandler advances a summoned witness through present and
// testified. Each step is conditional on the previous one so out-of-order or
// repeated updates are rejected.
func (wf Workflow) UpdateWitnessStatusHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	requestID := mux.Vars(r)["request_id"]

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	from, ok := witnessProgressions[body.Status]
	if !ok {
		config.ErrorStatus("status must be 'present' or 'testified'", http.StatusBadRequest, w,
			fmt.Errorf("status '%s'", body.Status))
		return
	}

	bID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("invalid request ID", http.StatusBadRequest, w, err)
		return
	}

	lock := sessLocks.Lock(sessionID)
	defer lock.Unlock()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	request, err := wf.WDB.FindOne(ctx, bson.M{
		"_id":                       bID,
		"workflowRequest.sessionID": sessionID,
		"workflowRequest.kind":      models.WorkflowWitness,
	})
	if err != nil {
		config.ErrorStatus("failed to find witness request", http.StatusNotFound, w, err)
		return
	}

	res, err := wf.WDB.UpdateOne(ctx,
		bson.M{"_id": bID, "workflowRequest.status": from},
		bson.M{"$set": bson.M{"workflowRequest.status": body.Status}},
	)
	if err != nil {
		config.ErrorStatus("failed to update witness status", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("witness is not in the preceding status", http.StatusConflict, w,
			fmt.Errorf("expected '%s', got '%s'", from, request.Details.Status))
		return
	}

	var message string
	if body.Status == models.RequestPresent {
		message = fmt.Sprintf("Witness %s is present before the court.", request.Details.WitnessName)
	} else {
		message = fmt.Sprintf("Witness %s has concluded their testimony.", request.Details.WitnessName)
	}
	if _, err := appendTranscript(ctx, wf.TDB, wf.Hub, sessionID,
		models.RoleWitness, request.Details.WitnessName, message, models.EntryAction); err != nil {
		config.ErrorStatus("failed to record witness update", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Witness status updated",
		"status":  body.Status,
	})
}

// GetWorkflowRequestByIDHandler returns a single workflow request
func (wf Workflow) GetWorkflowRequestByIDHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	requestID := mux.Vars(r)["request_id"]

	bID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("invalid request ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := wf.WDB.FindOne(ctx, bson.M{"_id": bID, "workflowRequest.sessionID": sessionID})
	if err != nil {
		config.ErrorStatus("failed to find workflow request", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// GetWorkflowRequestsHandler lists a session's workflow requests, optionally
// filtered by kind and status
func (wf Workflow) GetWorkflowRequestsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	filter := bson.M{"workflowRequest.sessionID": sessionID}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		if !workflowKinds[kind] {
			config.ErrorStatus("unknown workflow kind", http.StatusBadRequest, w, fmt.Errorf("kind '%s'", kind))
			return
		}
		filter["workflowRequest.kind"] = kind
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["workflowRequest.status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := wf.WDB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get workflow requests", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.WorkflowRequest{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
