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

func joinRequest(t *testing.T, sessionID, body string) *http.Request {
	req, err := http.NewRequest("POST", "/api/v1/session/"+sessionID+"/participants", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return mux.SetURLVars(req, map[string]string{"session_id": sessionID})
}

func TestParticipant_JoinUnknownRole(t *testing.T) {
	p := handlers.Participant{}

	rr := httptest.NewRecorder()
	req := joinRequest(t, primitive.NewObjectID().Hex(), `{"userID": "u1", "name": "Ann", "role": "bailiff"}`)
	http.HandlerFunc(p.JoinSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown participant role")
}

func TestParticipant_JoinNotJoinable(t *testing.T) {
	session := newSession(models.SessionCompleted)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	p := handlers.Participant{SDB: sdb}

	rr := httptest.NewRecorder()
	req := joinRequest(t, session.ID.Hex(), `{"userID": "u1", "name": "Ann", "role": "audience"}`)
	http.HandlerFunc(p.JoinSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "SessionNotJoinable")
}

func TestParticipant_JoinJudgeSeatTaken(t *testing.T) {
	session := newSession(models.SessionInProgress)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	pdb := &mocks.ParticipantDatabase{}
	pdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	p := handlers.Participant{DB: pdb, SDB: sdb}

	rr := httptest.NewRecorder()
	req := joinRequest(t, session.ID.Hex(), `{"userID": "judge2", "name": "Hon. Smith", "role": "judge"}`)
	http.HandlerFunc(p.JoinSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "RoleConflict")
	pdb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestParticipant_JoinJudgeSeatFree(t *testing.T) {
	session := newSession(models.SessionScheduled)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	pdb := &mocks.ParticipantDatabase{}
	pdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	pdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("NextSeq", mock.Anything, session.ID.Hex()).Return(int64(1), nil)
	tdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	p := handlers.Participant{DB: pdb, SDB: sdb, TDB: tdb}

	rr := httptest.NewRecorder()
	req := joinRequest(t, session.ID.Hex(), `{"userID": "judge1", "name": "Hon. Smith", "role": "judge", "synthetic": true}`)
	http.HandlerFunc(p.JoinSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "participantId")

	inserted := pdb.Calls[1].Arguments.Get(1).(models.Participant)
	assert.Equal(t, models.RoleJudge, inserted.Details.Role)
	assert.True(t, inserted.Details.Synthetic)
	assert.True(t, inserted.Details.Active)
}

func TestParticipant_LeaveAlreadyLeft(t *testing.T) {
	sessionID := primitive.NewObjectID().Hex()
	participant := &models.Participant{
		ID: primitive.NewObjectID(),
		Details: models.ParticipantDetails{
			SessionID: sessionID,
			UserID:    "u1",
			Name:      "Ann",
			Role:      models.RoleWitness,
		},
	}

	pdb := &mocks.ParticipantDatabase{}
	pdb.On("FindOne", mock.Anything, mock.Anything).Return(participant, nil)
	pdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 0}, nil)

	p := handlers.Participant{DB: pdb}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/session/"+sessionID+"/participants/"+participant.ID.Hex()+"/leave", nil)
	req = mux.SetURLVars(req, map[string]string{
		"session_id":     sessionID,
		"participant_id": participant.ID.Hex(),
	})
	http.HandlerFunc(p.LeaveSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already left")
}

func TestParticipant_ResolveCurrentMissingUserID(t *testing.T) {
	p := handlers.Participant{}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/session/1234/participants/current", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": "1234"})
	http.HandlerFunc(p.ResolveCurrentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
