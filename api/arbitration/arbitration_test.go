package arbitration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/court-hearing-api/api/arbitration"
	"github.com/linesmerrill/court-hearing-api/models"
)

func TestHTTPArbitrator_Decide(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Kind    string                        `json:"kind"`
			Request models.WorkflowRequestDetails `json:"request"`
			Case    arbitration.CaseContext       `json:"case"`
		}
		err := json.NewDecoder(r.Body).Decode(&payload)
		assert.NoError(t, err)
		assert.Equal(t, "hand_raise", payload.Kind)
		assert.Equal(t, "State v. Doe", payload.Case.Title)

		json.NewEncoder(w).Encode(arbitration.Decision{
			Allowed:  true,
			Response: "The court recognizes the prosecutor.",
		})
	}))
	defer server.Close()

	arb := arbitration.NewHTTPArbitrator(server.URL)
	decision, err := arb.Decide(context.Background(), "hand_raise",
		models.WorkflowRequestDetails{Kind: "hand_raise", RequesterName: "Ann Smith"},
		arbitration.CaseContext{Title: "State v. Doe"},
	)

	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, "The court recognizes the prosecutor.", decision.Response)
}

func TestHTTPArbitrator_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	arb := arbitration.NewHTTPArbitrator(server.URL)
	_, err := arb.Decide(context.Background(), "evidence", models.WorkflowRequestDetails{}, arbitration.CaseContext{})

	assert.ErrorIs(t, err, arbitration.ErrUnavailable)
}

func TestHTTPArbitrator_Unreachable(t *testing.T) {
	arb := arbitration.NewHTTPArbitrator("http://127.0.0.1:1")
	_, err := arb.Decide(context.Background(), "witness", models.WorkflowRequestDetails{}, arbitration.CaseContext{})

	assert.ErrorIs(t, err, arbitration.ErrUnavailable)
}
