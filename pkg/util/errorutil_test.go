package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	err := NewConflict("user_is_existed", map[string]any{"email": "a@x.com"})
	wrapped := fmt.Errorf("create: %w", err)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeConflict, de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "a@x.com", de.Details["email"])
}

func TestToDomainError_MapsNoRowsToNotFound(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, de)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	cause := errors.New("boom")
	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, cause)
	assert.Nil(t, ToDomainError(nil))
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(NewBadRequest("user_is_activated"), CodeBadRequest))
	assert.True(t, IsCode(NewNotFoundMessage("resend_email_failed"), CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
}
