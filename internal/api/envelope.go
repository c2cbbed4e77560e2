package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is bumped on breaking changes to the envelope shape.
const EnvelopeVersion = 1

// APIEnvelope wraps every JSON API response.
type APIEnvelope struct { //nolint:revive // API prefix reads better at call sites
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope wraps errors that carry a machine-readable code.
type APIErrorEnvelope struct { //nolint:revive // API prefix reads better at call sites
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer wrapping response bodies.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case APIEnvelope, APIErrorEnvelope:
		return v, nil
	case *APIError:
		if body.Code == "" {
			return APIEnvelope{Version: EnvelopeVersion, Error: body.Message}, nil
		}
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Code:    body.Code,
			Message: body.Message,
			Details: body.Details,
		}, nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Error: body.Error()}, nil
	}

	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}
	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: code < 400,
		Data:    v,
	}, nil
}

// writeAPIError writes an error envelope outside huma, for routes huma
// does not own.
func writeAPIError(w http.ResponseWriter, apiErr *APIError) {
	body, _ := EnvelopeTransformer(nil, strconv.Itoa(apiErr.status), apiErr)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.status)
	_ = json.NewEncoder(w).Encode(body)
}
