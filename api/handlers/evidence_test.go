package handlers_test

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/court-hearing-api/api/handlers"
	"github.com/linesmerrill/court-hearing-api/databases/mocks"
	"github.com/linesmerrill/court-hearing-api/models"
)

func attachTextRequest(t *testing.T, sessionID, requestID, body string) *http.Request {
	req, err := http.NewRequest("PUT", "/api/v1/session/"+sessionID+"/requests/"+requestID+"/extracted-text", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return mux.SetURLVars(req, map[string]string{
		"session_id": sessionID,
		"request_id": requestID,
	})
}

func TestEvidence_AttachTextPending(t *testing.T) {
	sessionID := primitive.NewObjectID().Hex()
	requestID := primitive.NewObjectID()

	wdb := &mocks.WorkflowRequestDatabase{}
	wdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	e := handlers.Evidence{WDB: wdb}

	rr := httptest.NewRecorder()
	req := attachTextRequest(t, sessionID, requestID.Hex(), `{"extractedText": "Signed lease agreement dated January 2024"}`)
	http.HandlerFunc(e.AttachExtractedTextHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// The write is conditional on the ruling not having landed yet
	filter := wdb.Calls[0].Arguments.Get(1).(bson.M)
	assert.Equal(t, requestID, filter["_id"])
	assert.Nil(t, filter["workflowRequest.accepted"])
}

func TestEvidence_AttachTextAfterRuling(t *testing.T) {
	sessionID := primitive.NewObjectID().Hex()
	requestID := primitive.NewObjectID().Hex()

	wdb := &mocks.WorkflowRequestDatabase{}
	wdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 0}, nil)

	e := handlers.Evidence{WDB: wdb}

	rr := httptest.NewRecorder()
	req := attachTextRequest(t, sessionID, requestID, `{"extractedText": "late OCR output"}`)
	http.HandlerFunc(e.AttachExtractedTextHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "AlreadyResolved")
}

func TestEvidence_AttachTextEmpty(t *testing.T) {
	e := handlers.Evidence{}

	rr := httptest.NewRecorder()
	req := attachTextRequest(t, "1234", "5678", `{"extractedText": ""}`)
	http.HandlerFunc(e.AttachExtractedTextHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEvidence_GetAdmitted(t *testing.T) {
	sessionID := primitive.NewObjectID().Hex()

	admitted := newPendingRequest(sessionID, models.WorkflowEvidence)
	admitted.Details.Status = models.RequestAdmitted
	admitted.Details.Label = "Exhibit A"
	accepted := true
	admitted.Details.Accepted = &accepted

	wdb := &mocks.WorkflowRequestDatabase{}
	wdb.On("Find", mock.Anything, mock.Anything).Return([]models.WorkflowRequest{*admitted}, nil)

	e := handlers.Evidence{WDB: wdb}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/session/"+sessionID+"/evidence/admitted", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": sessionID})
	http.HandlerFunc(e.GetAdmittedEvidenceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Exhibit A")

	filter := wdb.Calls[0].Arguments.Get(1).(bson.M)
	assert.Equal(t, true, filter["workflowRequest.accepted"])
}

func TestEvidence_GetAdmittedEmpty(t *testing.T) {
	wdb := &mocks.WorkflowRequestDatabase{}
	wdb.On("Find", mock.Anything, mock.Anything).Return(nil, nil)

	e := handlers.Evidence{WDB: wdb}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/session/1234/evidence/admitted", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": "1234"})
	http.HandlerFunc(e.GetAdmittedEvidenceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestEvidence_GenerateSignature(t *testing.T) {
	t.Setenv("CLOUDINARY_UPLOAD_PRESET", "court-exhibits")
	t.Setenv("CLOUDINARY_API_SECRET", "test-secret")

	e := handlers.Evidence{}

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/generate-signature", nil)
	http.HandlerFunc(e.GenerateSignature).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)

	h := hmac.New(sha1.New, []byte("test-secret"))
	h.Write([]byte("timestamp=" + resp["timestamp"] + "&upload_preset=court-exhibits"))
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), resp["signature"])
}
