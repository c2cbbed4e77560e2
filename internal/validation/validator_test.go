package validation_test

import (
	"net/http"
	"testing"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64,username"`
	Password string `json:"password" validate:"required,max=1024"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(signupRequest{Username: "alice.b", Password: "pw1"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       signupRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing username",
			req:       signupRequest{Password: "pw1"},
			wantField: "username",
			wantMsg:   "is required",
		},
		{
			name:      "bad characters",
			req:       signupRequest{Username: "al ice", Password: "pw1"},
			wantField: "username",
			wantMsg:   "may only contain letters, digits, '.', '_' and '-'",
		},
		{
			name:      "missing password",
			req:       signupRequest{Username: "alice"},
			wantField: "password",
			wantMsg:   "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
			assert.Equal(t, tt.wantField+" "+tt.wantMsg, domainErr.Message)
		})
	}
}
