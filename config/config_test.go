package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	os.Setenv("ARBITRATION_URL", "http://127.0.0.1:9999/decide")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "http://127.0.0.1:9999/decide", conf.ArbitrationURL)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "error it borked, bad request"}`, rr.Body.String())
}

func TestErrorCode(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorCode("InvalidTransition", "cannot start hearing", http.StatusConflict, rr, errors.New("session status is 'completed'"))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, `{"code": "InvalidTransition", "response": "cannot start hearing, session status is 'completed'"}`, rr.Body.String())
}
