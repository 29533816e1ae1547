package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// ErrorEnvelope is the failure body every endpoint returns
type ErrorEnvelope struct {
	ResponseCode int    `json:"response_code"`
	Message      string `json:"message"`
}

// AssertErrorResponse verifies status plus the response_code in the
// error envelope
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus, expectedCode int) *ErrorEnvelope {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope), "failed to unmarshal error body: %s", string(body))
	assert.Equal(t, expectedCode, envelope.ResponseCode, "unexpected response code: %s", envelope.Message)

	return &envelope
}
