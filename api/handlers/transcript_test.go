package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/court-hearing-api/api/handlers"
	"github.com/linesmerrill/court-hearing-api/databases/mocks"
	"github.com/linesmerrill/court-hearing-api/models"
)

func newParticipant(sessionID, userID, role string) *models.Participant {
	return &models.Participant{
		ID: primitive.NewObjectID(),
		Details: models.ParticipantDetails{
			SessionID: sessionID,
			UserID:    userID,
			Name:      "Ann Smith",
			Role:      role,
			Active:    true,
		},
	}
}

func appendEntryRequest(t *testing.T, sessionID, body string) *http.Request {
	req, err := http.NewRequest("POST", "/api/v1/session/"+sessionID+"/transcript", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return mux.SetURLVars(req, map[string]string{"session_id": sessionID})
}

func TestTranscript_AppendSpeechNotActive(t *testing.T) {
	session := newSession(models.SessionScheduled)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	tr := handlers.Transcript{SDB: sdb}

	rr := httptest.NewRecorder()
	req := appendEntryRequest(t, session.ID.Hex(), `{"participantId": "u1", "message": "Objection!"}`)
	http.HandlerFunc(tr.AppendTranscriptHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "SessionNotActive")
}

func TestTranscript_AppendAssignsSequence(t *testing.T) {
	session := newSession(models.SessionInProgress)
	sessionID := session.ID.Hex()

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	pdb := &mocks.ParticipantDatabase{}
	pdb.On("FindOne", mock.Anything, mock.Anything).Return(newParticipant(sessionID, "u1", models.RoleProsecutor), nil)

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("NextSeq", mock.Anything, sessionID).Return(int64(7), nil)
	tdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	tr := handlers.Transcript{TDB: tdb, SDB: sdb, PDB: pdb}

	rr := httptest.NewRecorder()
	req := appendEntryRequest(t, sessionID, `{"participantId": "u1", "message": "The state calls its first witness."}`)
	http.HandlerFunc(tr.AppendTranscriptHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(7), resp["sequenceNumber"])

	entry := tdb.Calls[1].Arguments.Get(1).(models.TranscriptEntry)
	assert.Equal(t, models.EntrySpeech, entry.Kind)
	assert.Equal(t, models.RoleProsecutor, entry.SpeakerRole)
}

func TestTranscript_SequencingFault(t *testing.T) {
	session := newSession(models.SessionInProgress)
	sessionID := session.ID.Hex()

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	pdb := &mocks.ParticipantDatabase{}
	pdb.On("FindOne", mock.Anything, mock.Anything).Return(newParticipant(sessionID, "u1", models.RoleProsecutor), nil)

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("NextSeq", mock.Anything, sessionID).Return(int64(8), nil)
	tdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("mocked-error"))

	tr := handlers.Transcript{TDB: tdb, SDB: sdb, PDB: pdb}

	rr := httptest.NewRecorder()
	req := appendEntryRequest(t, sessionID, `{"participantId": "u1", "message": "lost words"}`)
	http.HandlerFunc(tr.AppendTranscriptHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "sequencing fault")
}

// Concurrent appends must come out with distinct, gapless sequence numbers.
func TestTranscript_ConcurrentAppendsDistinctSeq(t *testing.T) {
	session := newSession(models.SessionInProgress)
	sessionID := session.ID.Hex()

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("FindOne", mock.Anything, mock.Anything).Return(session, nil)

	pdb := &mocks.ParticipantDatabase{}
	pdb.On("FindOne", mock.Anything, mock.Anything).Return(newParticipant(sessionID, "u1", models.RoleProsecutor), nil)

	var counterMu sync.Mutex
	var counter int64

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("NextSeq", mock.Anything, sessionID).Return(func(context.Context, string) int64 {
		counterMu.Lock()
		defer counterMu.Unlock()
		counter++
		return counter
	}, nil)
	tdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	tr := handlers.Transcript{TDB: tdb, SDB: sdb, PDB: pdb}

	const appends = 10
	seqs := make(chan int64, appends)
	var wg sync.WaitGroup
	for i := 0; i < appends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			req := appendEntryRequest(t, sessionID, `{"participantId": "u1", "message": "remarks"}`)
			http.HandlerFunc(tr.AppendTranscriptHandler).ServeHTTP(rr, req)

			if rr.Code != http.StatusCreated {
				t.Errorf("append failed with status %d", rr.Code)
				return
			}
			var resp map[string]interface{}
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Error(err)
				return
			}
			seqs <- int64(resp["sequenceNumber"].(float64))
		}()
	}
	wg.Wait()
	close(seqs)

	var got []int64
	for s := range seqs {
		got = append(got, s)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	assert.Len(t, got, appends)
	for i, s := range got {
		assert.Equal(t, int64(i+1), s)
	}
}

func TestTranscript_ReadAfter(t *testing.T) {
	sessionID := primitive.NewObjectID().Hex()
	entries := []models.TranscriptEntry{
		{SessionID: sessionID, Seq: 3, Message: "three", Kind: models.EntrySpeech},
		{SessionID: sessionID, Seq: 4, Message: "four", Kind: models.EntryOrder},
	}

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(entries, nil)

	tr := handlers.Transcript{TDB: tdb}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/session/"+sessionID+"/transcript?after=2&limit=2", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": sessionID})
	http.HandlerFunc(tr.GetTranscriptHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.TranscriptEntry
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Seq)
}

func TestTranscript_InvalidAfterParam(t *testing.T) {
	tr := handlers.Transcript{}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/session/1234/transcript?after=-1", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": "1234"})
	http.HandlerFunc(tr.GetTranscriptHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
