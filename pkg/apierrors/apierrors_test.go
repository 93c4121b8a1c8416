package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

// APIErrorsSuite tests the coded error primitives used at every trust
// boundary: wrapping must preserve the original code and errors.Is must
// match by code.
type APIErrorsSuite struct {
	suite.Suite
}

func TestAPIErrorsSuite(t *testing.T) {
	suite.Run(t, new(APIErrorsSuite))
}

func (s *APIErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeCredentials, Message: "invalid credentials"}
		s.Equal("invalid credentials", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeNetwork}
		s.Equal("network_error", err.Error())
	})
}

func (s *APIErrorsSuite) TestWrapPreservesCode() {
	inner := New(CodeToken, "refresh token rejected")
	outer := Wrap(CodeInternal, "refresh failed", inner)

	s.True(HasCode(outer, CodeToken))
	s.False(HasCode(outer, CodeInternal))
	s.True(errors.Is(outer, inner))
}

func (s *APIErrorsSuite) TestWrapPlainError() {
	inner := fmt.Errorf("connection refused")
	outer := Wrap(CodeNetwork, "login request failed", inner)

	s.True(HasCode(outer, CodeNetwork))
	s.ErrorIs(outer, inner)
}

func (s *APIErrorsSuite) TestIsMatchesByCode() {
	a := New(CodeCredentials, "bad password")
	b := New(CodeCredentials, "unknown user")

	// Distinct messages, same class: indistinguishable to callers.
	s.True(errors.Is(a, b))
}

func (s *APIErrorsSuite) TestCodeOf() {
	s.Equal(CodeValidation, CodeOf(New(CodeValidation, "empty password")))
	s.Equal(CodeInternal, CodeOf(fmt.Errorf("plain")))
}

func (s *APIErrorsSuite) TestToHTTPStatus() {
	cases := map[Code]int{
		CodeValidation:   http.StatusBadRequest,
		CodeBadRequest:   http.StatusBadRequest,
		CodeCredentials:  http.StatusUnauthorized,
		CodeToken:        http.StatusUnauthorized,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeRateLimited:  http.StatusTooManyRequests,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		s.Equal(want, ToHTTPStatus(code), "code %s", code)
	}
}
