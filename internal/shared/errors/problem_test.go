package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	body := []byte(`{"type":"/problems/not-found","title":"Resource Not Found","status":404,"detail":"pet not found"}`)

	problem, ok := Decode("application/problem+json; charset=utf-8", body)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, problem.Status)
	require.Equal(t, "Resource Not Found: pet not found", problem.Error())

	_, ok = Decode("application/json", body)
	require.False(t, ok)
	_, ok = Decode(ContentTypeProblemJSON, []byte(`not json`))
	require.False(t, ok)
	_, ok = Decode(ContentTypeProblemJSON, []byte(`{}`))
	require.False(t, ok)
}

func TestWithExtension_DoesNotAliasTemplate(t *testing.T) {
	first := ErrNotFound.WithExtension("identifier", 1)
	second := first.WithExtension("identifier", 2)

	require.Nil(t, ErrNotFound.Extensions)
	require.Equal(t, 1, first.Extensions["identifier"])
	require.Equal(t, 2, second.Extensions["identifier"])
}

func TestResponder_RespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sentinel := fmt.Errorf("boom")
	responder := NewResponder("https://petstore.test", func(err error) (ProblemDetail, bool) {
		if err == sentinel {
			return ErrValidation.WithDetail("mapped"), true
		}
		return ProblemDetail{}, false
	})

	cases := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"problem passthrough", NewNotFoundProblem("pet", 9), http.StatusNotFound, "Resource Not Found"},
		{"mapped", sentinel, http.StatusBadRequest, "Validation Error"},
		{"fallback", fmt.Errorf("unexpected"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/v2/pet/9", nil)

			responder.RespondError(c, tc.err)

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			require.Equal(t, tc.title, problem.Title)
			require.Equal(t, "/v2/pet/9", problem.Instance)
			require.Contains(t, problem.Type, "https://petstore.test/problems/")
		})
	}
}
