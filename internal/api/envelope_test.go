package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{name: "success response", status: "200", input: map[string]string{"key": "value"}},
		{name: "created response", status: "201", input: map[string]string{"id": "123"}},
		{name: "no content response", status: "204", input: nil},
		{name: "not found error", status: "404", input: errors.New("resource not found")},
		{
			name:   "conflict error with details",
			status: "409",
			input:  &APIError{Code: "CONFLICT", Message: "exists", Details: map[string]string{"id": "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			raw, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(raw, &envelope))
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
			assert.NotContains(t, envelope, "version")
		})
	}
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	data := map[string]string{"title": "T"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_Errors(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)
	simple, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.False(t, simple.Success)
	assert.Equal(t, "validation failed", simple.Error)

	result, err = EnvelopeTransformer(nil, "409", &APIError{Code: "DUPLICATE_USERNAME", Message: "taken"})
	require.NoError(t, err)
	detailed, ok := result.(APIErrorEnvelope)
	require.True(t, ok)
	assert.False(t, detailed.Success)
	assert.Equal(t, "DUPLICATE_USERNAME", detailed.Code)
	assert.Equal(t, "taken", detailed.Message)
}

func TestEnvelopeTransformer_PassesEnvelopesThrough(t *testing.T) {
	in := APIEnvelope{Version: EnvelopeVersion, Success: true}
	out, err := EnvelopeTransformer(nil, "200", in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFromDomainError(t *testing.T) {
	notOwner := fromDomainError(domainerrors.NotOwner("note belongs to another user"))
	missing := fromDomainError(domainerrors.NotFound("note not found"))
	assert.Equal(t, missing, notOwner)

	dup := fromDomainError(domainerrors.DuplicateUsername("taken"))
	assert.Equal(t, http.StatusConflict, dup.GetStatus())
}

func TestCredentialError(t *testing.T) {
	a := credentialError(domainerrors.NotFound("invalid username or password"))
	b := credentialError(domainerrors.BadCredential("invalid username or password"))
	assert.Equal(t, a, b)

	other := domainerrors.Unavailable("store down")
	assert.Same(t, other, credentialError(other))
}

func TestWriteAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	writeAPIError(w, &APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "route not found"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope[any](t, w.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, EnvelopeVersion, env.V)
}
