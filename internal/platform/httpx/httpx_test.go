package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail bool
	}{
		{fmt.Errorf("%w: month 2025-13", ErrValidation), http.StatusBadRequest, true},
		{fmt.Errorf("%w: store down", ErrUnavailable), http.StatusServiceUnavailable, true},
		{ErrNotFound, http.StatusNotFound, true},
		{fmt.Errorf("boom"), http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, tc.status, body.Status)
		if tc.detail {
			assert.Equal(t, tc.err.Error(), body.Detail)
		} else {
			assert.Empty(t, body.Detail, "internal errors are not leaked")
		}
	}
}
