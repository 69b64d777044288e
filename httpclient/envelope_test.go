package httpclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name     string
		body     string
		status   int
		wantName string
		wantErr  func(t *testing.T, err error)
	}{
		{
			name:     "given success envelope, then unwraps data",
			body:     `{"data":{"name":"Acme"}}`,
			status:   http.StatusOK,
			wantName: "Acme",
		},
		{
			name:   "given error envelope, then returns APIError with fields",
			body:   `{"message":"client not found","code":"NOT_FOUND","details":{"id":"c-1"},"request_id":"req-42"}`,
			status: http.StatusNotFound,
			wantErr: func(t *testing.T, err error) {
				apiErr, ok := AsAPIError(err)
				require.True(t, ok)
				assert.Equal(t, "client not found", apiErr.Message)
				assert.Equal(t, "NOT_FOUND", apiErr.Code)
				assert.Equal(t, "c-1", apiErr.Details["id"])
				assert.Equal(t, "req-42", apiErr.RequestID)
				assert.Equal(t, http.StatusNotFound, apiErr.Status)
			},
		},
		{
			name:   "given error envelope on 2xx, then still returns APIError",
			body:   `{"message":"soft failure","code":"DEGRADED"}`,
			status: http.StatusOK,
			wantErr: func(t *testing.T, err error) {
				apiErr, ok := AsAPIError(err)
				require.True(t, ok)
				assert.Equal(t, "DEGRADED", apiErr.Code)
			},
		},
		{
			name:   "given empty success body, then succeeds",
			body:   "",
			status: http.StatusNoContent,
		},
		{
			name:   "given empty error body, then synthesizes APIError from status",
			body:   "",
			status: http.StatusBadGateway,
			wantErr: func(t *testing.T, err error) {
				apiErr, ok := AsAPIError(err)
				require.True(t, ok)
				assert.Equal(t, http.StatusBadGateway, apiErr.Status)
				assert.Equal(t, "Bad Gateway", apiErr.Message)
			},
		},
		{
			name:   "given non-JSON error body, then synthesizes APIError from status",
			body:   "<html>Bad Gateway</html>",
			status: http.StatusBadGateway,
			wantErr: func(t *testing.T, err error) {
				apiErr, ok := AsAPIError(err)
				require.True(t, ok)
				assert.Equal(t, http.StatusBadGateway, apiErr.Status)
			},
		},
		{
			name:   "given unrecognized success shape, then reports unexpected format",
			body:   `{"status":"ok"}`,
			status: http.StatusOK,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnexpectedFormat)
			},
		},
		{
			name:   "given malformed JSON on success, then reports unexpected format",
			body:   `{"data":`,
			status: http.StatusOK,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnexpectedFormat)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out payload
			err := DecodeEnvelope([]byte(tt.body), tt.status, &out)

			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, out.Name)
		})
	}
}

func TestDecodeEnvelope_NilTarget(t *testing.T) {
	err := DecodeEnvelope([]byte(`{"data":{"ignored":true}}`), http.StatusOK, nil)
	assert.NoError(t, err)
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "given code and message, then formats both",
			err:  &APIError{Message: "invalid email", Code: "VALIDATION_ERROR", Status: 422},
			want: "VALIDATION_ERROR: invalid email (status 422)",
		},
		{
			name: "given no code, then formats message only",
			err:  &APIError{Message: "boom", Status: 500},
			want: "boom (status 500)",
		},
		{
			name: "given empty message, then falls back to status text",
			err:  &APIError{Status: 502},
			want: "Bad Gateway (status 502)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&APIError{Status: http.StatusUnauthorized}))
	assert.True(t, IsAuthError(&APIError{Status: http.StatusForbidden}))
	assert.True(t, IsAuthError(ErrSessionExpired))
	assert.False(t, IsAuthError(&APIError{Status: http.StatusNotFound}))
	assert.False(t, IsAuthError(ErrUnexpectedFormat))
}
