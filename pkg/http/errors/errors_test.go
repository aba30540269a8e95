package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondValidationError(rec, ErrCodeMissingField, "answer is required", "answer")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, ErrCodeMissingField, body.Error)
	assert.Equal(t, "answer", body.Field)
	assert.Nil(t, body.Details)
}

func TestRespondErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithDetails(rec, http.StatusUnprocessableEntity, ErrCodeQuizInvalid, "Quiz failed validation",
		map[string]interface{}{"errors": []string{"section s1 has no questions"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{
		"error": "quiz_invalid",
		"message": "Quiz failed validation",
		"details": {"errors": ["section s1 has no questions"]}
	}`, rec.Body.String())
}
