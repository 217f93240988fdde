// Package arbitration is the port to the external decision-maker (an AI or
// human judge service). The engine treats it as fire-and-eventually-respond:
// no deadline is enforced here beyond the caller's context, and a failed call
// leaves the workflow request pending so resolution can be retried.
package arbitration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/court-hearing-api/models"
)

// ErrUnavailable is returned when the decision service cannot be reached or
// answers with a non-2xx status. The request stays pending; callers may retry.
var ErrUnavailable = errors.New("arbitration service unavailable")

// Decision is the arbitrator's answer for one workflow request
type Decision struct {
	Allowed         bool   `json:"allowed"`
	Response        string `json:"response"`
	NextHearingDate string `json:"nextHearingDate,omitempty"` // RFC3339
}

// CaseContext is the opaque case summary handed to the decision service
type CaseContext struct {
	CaseID      string   `json:"caseID,omitempty"`
	Title       string   `json:"title,omitempty"`
	AccusedName string   `json:"accusedName,omitempty"`
	Statement   string   `json:"statement,omitempty"`
	Charges     []string `json:"charges,omitempty"`
}

// Arbitrator decides workflow requests. Implementations must be safe for
// concurrent use; the engine never holds a session lock across Decide.
type Arbitrator interface {
	Decide(ctx context.Context, kind string, request models.WorkflowRequestDetails, caseCtx CaseContext) (Decision, error)
}

// HTTPArbitrator calls a remote decision endpoint over HTTP
type HTTPArbitrator struct {
	URL    string
	Client *http.Client
}

// NewHTTPArbitrator creates an arbitrator that POSTs to the given URL
func NewHTTPArbitrator(url string) *HTTPArbitrator {
	return &HTTPArbitrator{
		URL:    url,
		Client: http.DefaultClient,
	}
}

// Decide posts the request and case context and decodes the decision
func (h *HTTPArbitrator) Decide(ctx context.Context, kind string, request models.WorkflowRequestDetails, caseCtx CaseContext) (Decision, error) {
	payload := map[string]interface{}{
		"kind":    kind,
		"request": request,
		"case":    caseCtx,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Decision{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(b))
	if err != nil {
		return Decision{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		zap.S().Errorw("arbitration call failed", "kind", kind, "error", err)
		return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.S().Errorw("arbitration returned error status", "kind", kind, "status", resp.StatusCode)
		return Decision{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decision Decision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decision, nil
}
