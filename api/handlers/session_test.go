package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/court-hearing-api/api/handlers"
	"github.com/linesmerrill/court-hearing-api/databases/mocks"
	"github.com/linesmerrill/court-hearing-api/models"
)

func newSession(status string) *models.HearingSession {
	return &models.HearingSession{
		ID: primitive.NewObjectID(),
		Details: models.HearingSessionDetails{
			CaseID: primitive.NewObjectID().Hex(),
			Title:  "State v. Doe - first hearing",
			Status: status,
		},
	}
}

func transitionRequest(t *testing.T, sessionID, body string) *http.Request {
	req, err := http.NewRequest("POST", "/api/v1/session/"+sessionID+"/transition", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return mux.SetURLVars(req, map[string]string{"session_id": sessionID})
}

func TestSession_TransitionUnknownTarget(t *testing.T) {
	session := newSession(models.SessionScheduled)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	s := handlers.Session{DB: sdb}

	rr := httptest.NewRecorder()
	req := transitionRequest(t, session.ID.Hex(), `{"target": "paused"}`)
	http.HandlerFunc(s.TransitionSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "InvalidTransition")
}

func TestSession_StartFromAdjourned(t *testing.T) {
	session := newSession(models.SessionAdjourned)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	s := handlers.Session{DB: sdb}

	rr := httptest.NewRecorder()
	req := transitionRequest(t, session.ID.Hex(), `{"target": "in_progress"}`)
	http.HandlerFunc(s.TransitionSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "InvalidTransition")
	sdb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_StartHappyPath(t *testing.T) {
	session := newSession(models.SessionScheduled)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)
	sdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("NextSeq", mock.Anything, session.ID.Hex()).Return(int64(1), nil)
	tdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	s := handlers.Session{DB: sdb, TDB: tdb}

	rr := httptest.NewRecorder()
	req := transitionRequest(t, session.ID.Hex(), `{"target": "in_progress"}`)
	http.HandlerFunc(s.TransitionSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "in_progress")

	// The opening announcement is on the record
	entry := tdb.Calls[1].Arguments.Get(1).(models.TranscriptEntry)
	assert.Equal(t, int64(1), entry.Seq)
	assert.Equal(t, models.EntryAction, entry.Kind)
	assert.Contains(t, entry.Message, "The court is now in session")
}

func TestSession_AdjournRequiresReason(t *testing.T) {
	session := newSession(models.SessionInProgress)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	s := handlers.Session{DB: sdb}

	rr := httptest.NewRecorder()
	req := transitionRequest(t, session.ID.Hex(), `{"target": "adjourned"}`)
	http.HandlerFunc(s.TransitionSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "reason")
}

func TestSession_CompleteWithoutRuling(t *testing.T) {
	session := newSession(models.SessionInProgress)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)

	s := handlers.Session{DB: sdb, TDB: tdb}

	rr := httptest.NewRecorder()
	req := transitionRequest(t, session.ID.Hex(), `{"target": "completed"}`)
	http.HandlerFunc(s.TransitionSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "final ruling")
	sdb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_GetByIDNotFound(t *testing.T) {
	sdb := &mocks.HearingSessionDatabase{}

	s := handlers.Session{DB: sdb}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/session/1234", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": "1234"})
	http.HandlerFunc(s.GetSessionByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
