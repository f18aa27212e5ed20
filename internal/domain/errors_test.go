package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorFormatting(t *testing.T) {
	err := NewDomainError("SearchClient.Search", ErrRateLimit, "daily quota exhausted")
	assert.Contains(t, err.Error(), "SearchClient.Search")
	assert.Contains(t, err.Error(), "daily quota exhausted")
	assert.ErrorIs(t, err, ErrRateLimit)

	noDetail := NewDomainError("op", ErrEmptyInput, "")
	assert.Equal(t, "op: empty input", noDetail.Error())
}

func TestWrapOp(t *testing.T) {
	assert.NoError(t, WrapOp("op", nil))

	wrapped := WrapOp("Pipeline.Run", ErrProviderError)
	assert.ErrorIs(t, wrapped, ErrProviderError)
	assert.Contains(t, wrapped.Error(), "Pipeline.Run")
}

func TestErrorCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCode
	}{
		{nil, CodeUnknown},
		{ErrEmptyInput, CodeEmptyInput},
		{ErrBadRequest, CodeBadRequest},
		{ErrAuthInvalid, CodeAuthInvalid},
		{ErrRateLimit, CodeRateLimit},
		{ErrProviderError, CodeProviderError},
		{ErrUnsupported, CodeUnsupported},
		{errors.New("something else"), CodeUnknown},
		{NewDomainError("op", ErrTimeout, ""), CodeTimeout},
		{fmt.Errorf("wrap: %w", ErrRateLimit), CodeRateLimit},
		{fmt.Errorf("outer: %w", NewDomainError("op", ErrAuthInvalid, "d")), CodeAuthInvalid},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ErrorCodeOf(tc.err), "err: %v", tc.err)
	}
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(ErrRateLimit))
	assert.True(t, IsRetryableError(fmt.Errorf("w: %w", ErrTimeout)))
	assert.False(t, IsRetryableError(ErrAuthInvalid))
	assert.False(t, IsRetryableError(nil))
}
