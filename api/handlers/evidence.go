package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/court-hearing-api/api"
	"github.com/linesmerrill/court-hearing-api/config"
	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

// Evidence exported for testing purposes
type Evidence struct {
	WDB databases.WorkflowRequestDatabase
}

// AttachExtractedTextHandler attaches OCR output to a pending evidence
// request. The text must land before the judge rules; once Accepted is set the
// request is immutable.
func (e Evidence) AttachExtractedTextHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	requestID := mux.Vars(r)["request_id"]

	var body struct {
		ExtractedText string `json:"extractedText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.ExtractedText == "" {
		config.ErrorStatus("extractedText is required", http.StatusBadRequest, w, fmt.Errorf("empty extractedText"))
		return
	}

	bID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("invalid request ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := e.WDB.UpdateOne(ctx,
		bson.M{
			"_id":                       bID,
			"workflowRequest.sessionID": sessionID,
			"workflowRequest.kind":      models.WorkflowEvidence,
			"workflowRequest.accepted":  nil,
		},
		bson.M{"$set": bson.M{"workflowRequest.extractedText": body.ExtractedText}},
	)
	if err != nil {
		config.ErrorStatus("failed to attach extracted text", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorCode(models.CodeAlreadyResolved, "evidence request is already ruled on", http.StatusConflict, w,
			fmt.Errorf("request '%s' not pending", requestID))
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Extracted text attached",
	})
}

// GetAdmittedEvidenceHandler returns the session's admitted exhibits, the read
// set handed to downstream verdict tooling
func (e Evidence) GetAdmittedEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := e.WDB.Find(ctx, bson.M{
		"workflowRequest.sessionID": sessionID,
		"workflowRequest.kind":      models.WorkflowEvidence,
		"workflowRequest.accepted":  true,
	})
	if err != nil {
		config.ErrorStatus("failed to get admitted evidence", http.StatusNotFound, w, err)
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

// GenerateSignature generates a signed upload ticket for the media store so
// clients upload exhibit files directly without the API key
func (e Evidence) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
