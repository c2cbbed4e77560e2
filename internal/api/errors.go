package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
)

// APIError implements huma.StatusError. It maps domain errors to HTTP
// responses with a consistent structure.
type APIError struct { //nolint:revive // API prefix reads better at call sites
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to render domain errors.
// Call this after creating the huma.API but before serving requests.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomainError(domainErr)
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if len(errs) > 0 && status == http.StatusUnprocessableEntity {
			details := make([]string, 0, len(errs))
			for _, err := range errs {
				details = append(details, err.Error())
			}
			apiErr.Details = details
		}
		return apiErr
	}
}

// fromDomainError converts a domain error. A foreign note is reported
// exactly like a missing one.
func fromDomainError(err *domainerrors.Error) *APIError {
	if err.Code == domainerrors.CodeNotOwner {
		return &APIError{
			status:  http.StatusNotFound,
			Code:    string(domainerrors.CodeNotFound),
			Message: "note not found",
		}
	}
	return &APIError{
		status:  err.HTTPStatus(),
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
}

// credentialError renders a failed login. Unknown usernames and wrong
// passwords get the same status, code and message.
func credentialError(err error) error {
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeNotFound, domainerrors.CodeBadCredential:
		return &APIError{
			status:  http.StatusUnauthorized,
			Code:    string(domainerrors.CodeBadCredential),
			Message: "invalid username or password",
		}
	}
	return err
}

// statusToCode maps HTTP status codes to domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthenticated)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusServiceUnavailable:
		return string(domainerrors.CodeUnavailable)
	default:
		return string(domainerrors.CodeInternal)
	}
}
