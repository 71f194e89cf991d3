package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitIdentifierErrorIsServerError(t *testing.T) {
	ec := echo.New()
	c := ec.NewContext(httptest.NewRequest(http.MethodPost, "/api/info", nil), httptest.NewRecorder())
	cause := errors.New("no client address")

	err := rateLimitIdentifierError(c, cause)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.ErrorIs(t, he.Internal, cause)
}
