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

func TestSessionHub_LiveReactionsSnapshot(t *testing.T) {
	hub := handlers.NewSessionHub()

	hub.PublishReaction("sess1", "p1", models.ReactionAgree)
	hub.PublishReaction("sess1", "p2", models.ReactionObjection)
	hub.PublishReaction("sess2", "p3", models.ReactionApplaud)

	got := hub.LiveReactions("sess1")
	assert.Equal(t, map[string]string{
		"p1": models.ReactionAgree,
		"p2": models.ReactionObjection,
	}, got)
}

func TestSessionHub_ReactionReplaced(t *testing.T) {
	hub := handlers.NewSessionHub()

	hub.PublishReaction("sess1", "p1", models.ReactionRaiseHand)
	hub.PublishReaction("sess1", "p1", models.ReactionDisagree)

	got := hub.LiveReactions("sess1")
	assert.Equal(t, map[string]string{"p1": models.ReactionDisagree}, got)
}

func TestSessionHub_EmptyTagClears(t *testing.T) {
	hub := handlers.NewSessionHub()

	hub.PublishReaction("sess1", "p1", models.ReactionAgree)
	hub.PublishReaction("sess1", "p1", "")

	assert.Empty(t, hub.LiveReactions("sess1"))
}

func reactionRequest(t *testing.T, sessionID, body string) *http.Request {
	req, err := http.NewRequest("POST", "/api/v1/session/"+sessionID+"/reactions", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return mux.SetURLVars(req, map[string]string{"session_id": sessionID})
}

func TestPresence_PostReactionUnknownTag(t *testing.T) {
	p := handlers.Presence{Hub: handlers.NewSessionHub()}

	rr := httptest.NewRecorder()
	req := reactionRequest(t, "1234", `{"participantId": "p1", "reaction": "thumbs_up"}`)
	http.HandlerFunc(p.PostReactionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPresence_PostReactionNotInProgress(t *testing.T) {
	session := newSession(models.SessionAdjourned)
	participantID := primitive.NewObjectID().Hex()

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	p := handlers.Presence{SDB: sdb, Hub: handlers.NewSessionHub()}

	rr := httptest.NewRecorder()
	req := reactionRequest(t, session.ID.Hex(), `{"participantId": "`+participantID+`", "reaction": "agree"}`)
	http.HandlerFunc(p.PostReactionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "SessionNotActive")
}

func TestPresence_PostReactionUnknownParticipant(t *testing.T) {
	session := newSession(models.SessionInProgress)
	participantID := primitive.NewObjectID().Hex()

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	pdb := &mocks.ParticipantDatabase{}
	pdb.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	hub := handlers.NewSessionHub()
	p := handlers.Presence{SDB: sdb, PDB: pdb, Hub: hub}

	rr := httptest.NewRecorder()
	req := reactionRequest(t, session.ID.Hex(), `{"participantId": "`+participantID+`", "reaction": "agree"}`)
	http.HandlerFunc(p.PostReactionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, hub.LiveReactions(session.ID.Hex()))
}

func TestPresence_PostReactionPublishes(t *testing.T) {
	session := newSession(models.SessionInProgress)
	sessionID := session.ID.Hex()
	participant := newParticipant(sessionID, "u1", models.RoleAudience)
	participantID := participant.ID.Hex()

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	pdb := &mocks.ParticipantDatabase{}
	pdb.On("FindOne", mock.Anything, mock.Anything).Return(participant, nil)

	hub := handlers.NewSessionHub()
	p := handlers.Presence{SDB: sdb, PDB: pdb, Hub: hub}

	rr := httptest.NewRecorder()
	req := reactionRequest(t, sessionID, `{"participantId": "`+participantID+`", "reaction": "objection"}`)
	http.HandlerFunc(p.PostReactionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]string{participantID: models.ReactionObjection}, hub.LiveReactions(sessionID))
}

func TestPresence_GetReactions(t *testing.T) {
	hub := handlers.NewSessionHub()
	hub.PublishReaction("sess1", "p1", models.ReactionApplaud)

	p := handlers.Presence{Hub: hub}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/session/sess1/reactions", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": "sess1"})
	http.HandlerFunc(p.GetReactionsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), models.ReactionApplaud)
}
