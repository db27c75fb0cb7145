package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	wrapped := fmt.Errorf("update: %w", NewNotFound("product", nil))
	de := ToDomainError(wrapped)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)

	boom := errors.New("connection reset")
	de = ToDomainError(boom)
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, boom)
	assert.Equal(t, "internal server error", de.Message)
}

func TestTaxonomyStatuses(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		CodeAuthenticationRequired: {NewAuthenticationRequired("authentication required"), http.StatusUnauthorized},
		CodeTokenExpired:           {NewTokenExpired(), http.StatusUnauthorized},
		CodeTokenInvalid:           {NewTokenInvalid(), http.StatusUnauthorized},
		CodeAccessDenied:           {NewAccessDenied("insufficient role"), http.StatusForbidden},
		CodeRoleNotGranted:         {NewRoleNotGranted("admin"), http.StatusForbidden},
		CodeNotFound:               {NewNotFound("product", nil), http.StatusNotFound},
		CodeValidation:             {NewValidationError("feedback required", nil), http.StatusBadRequest},
		CodeInvalidTransition:      {NewInvalidTransition("draft", "published"), http.StatusBadRequest},
		CodeConflict:               {NewConflict("email already registered", nil), http.StatusConflict},
	}
	for code, tc := range cases {
		de := ToDomainError(tc.err)
		assert.Equal(t, code, de.Code)
		assert.Equal(t, tc.status, de.HTTPStatus, code)
		assert.True(t, HasCode(tc.err, code))
	}
	assert.NotEqual(t, NewTokenExpired().Error(), NewTokenInvalid().Error())
}
