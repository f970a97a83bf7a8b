package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/common"
	"github.com/stretchr/testify/assert"
)

func TestDecodeJSONRequestBody(t *testing.T) {
	assert := assert.New(t)

	var body DecodeTest

	t.Run("unsupported media type", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader("{}"))
		r.Header.Set(common.HeaderContentType, "text/plain")

		err := decodeJSONRequestBody(w, r, &body)
		assertProblem(t, err, common.ProblemHttpMediaType, http.StatusUnsupportedMediaType)
		assert.Contains(err.Error(), "media type text/plain is not supported")
	})

	t.Run("media type with charset", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(`{"vgte":1,"vrequired":"a","vnested":{"batchSize":1}}`))
		r.Header.Set(common.HeaderContentType, "application/json; charset=utf-8")

		err := decodeJSONRequestBody(w, r, &body)
		assert.Nil(err)
	})

	t.Run("empty request body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(""))

		err := decodeJSONRequestBody(w, r, &body)
		assertProblem(t, err, common.ProblemHttpRequestBody, http.StatusBadRequest)
		assert.Contains(err.Error(), "request body is empty")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(`{"vgte":}`))

		err := decodeJSONRequestBody(w, r, &body)
		assertProblem(t, err, common.ProblemHttpRequestBody, http.StatusBadRequest)
		assert.Contains(err.Error(), "malformed JSON at position")
	})

	t.Run("unexpected end of JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(`{"vgte":1`))

		err := decodeJSONRequestBody(w, r, &body)
		assertProblem(t, err, common.ProblemHttpRequestBody, http.StatusBadRequest)
		assert.Contains(err.Error(), "unexpected end of JSON")
	})

	t.Run("invalid JSON field", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(`{"vrequired":1}`))

		err := decodeJSONRequestBody(w, r, &body)
		assertProblem(t, err, common.ProblemHttpRequestBody, http.StatusBadRequest)
		assert.Contains(err.Error(), "JSON field vrequired has an invalid value at position 14")
	})

	t.Run("unknown JSON field", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(`{"vunknown":-1}`))

		err := decodeJSONRequestBody(w, r, &body)
		assertProblem(t, err, common.ProblemHttpRequestBody, http.StatusBadRequest)
		assert.Contains(err.Error(), `unknown JSON field "vunknown"`)
	})

	t.Run("valid JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(`{"vgte":3,"vrequired":"a string","vnested":{"batchSize":2}}`))

		body := DecodeTest{}
		err := decodeJSONRequestBody(w, r, &body)
		assert.Nil(err)

		assert.Equal(3, body.VGte)
		assert.Equal("a string", body.VRequired)
		assert.Equal(2, body.VNested.BatchSize)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(`{"vgte":0,"vnested":{"batchSize":0}}`))

		body := DecodeTest{}
		err := decodeJSONRequestBody(w, r, &body)
		assertProblem(t, err, common.ProblemValidation, http.StatusBadRequest)

		problem := err.(common.Problem)
		assert.Len(problem.Errors, 3)

		findError := func(pointer string) common.Error {
			for i := 0; i < len(problem.Errors); i++ {
				if problem.Errors[i].Pointer == pointer {
					return problem.Errors[i]
				}
			}
			t.Fatalf("failed to find error for pointer %s", pointer)
			return common.Error{}
		}

		var e common.Error

		e = findError("#/vgte")
		assert.Equal("gte", e.Type)
		assert.Equal("must be greater than or equal to 1", e.Detail)
		assert.Equal("0", e.Value)

		e = findError("#/vrequired")
		assert.Equal("required", e.Type)
		assert.Equal("is required", e.Detail)
		assert.Empty(e.Value)

		e = findError("#/vnested/batchSize")
		assert.Equal("gte", e.Type)
		assert.Equal("0", e.Value)
	})

	t.Run("cleanup command", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", "/", strings.NewReader(`{"batchSize":10}`))

		var cmd history.CleanupHistoryCmd
		err := decodeJSONRequestBody(w, r, &cmd)
		assertProblem(t, err, common.ProblemValidation, http.StatusBadRequest)

		problem := err.(common.Problem)
		if assert.Len(problem.Errors, 1) {
			assert.Equal("#/before", problem.Errors[0].Pointer)
			assert.Equal("required", problem.Errors[0].Type)
		}
	})
}

func TestJsonPointer(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("#", jsonPointer("CleanupHistoryCmd"))
	assert.Equal("#/batchSize", jsonPointer("CleanupHistoryCmd.batchSize"))
	assert.Equal("#/sorting/0/property", jsonPointer("Criteria.sorting[0].property"))
}

func TestParseId(t *testing.T) {
	assert := assert.New(t)

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest("", "/", nil)
		r.SetPathValue("id", "pi-1")

		id, err := parseId(r)
		assert.Equal("pi-1", id)
		assert.Nilf(err, "expected no error")
	})

	t.Run("blank", func(t *testing.T) {
		r := httptest.NewRequest("", "/", nil)
		r.SetPathValue("id", " ")

		_, err := parseId(r)
		assertProblem(t, err, common.ProblemHttpRequestUri, http.StatusBadRequest)
	})
}

func TestParseIfExists(t *testing.T) {
	assert := assert.New(t)

	t.Run("absent", func(t *testing.T) {
		r := httptest.NewRequest("", "/", nil)

		ifExists, err := parseIfExists(r)
		assert.False(ifExists)
		assert.Nil(err)
	})

	t.Run("true", func(t *testing.T) {
		r := httptest.NewRequest("", "/?ifExists=true", nil)

		ifExists, err := parseIfExists(r)
		assert.True(ifExists)
		assert.Nil(err)
	})

	t.Run("failed to parse value", func(t *testing.T) {
		r := httptest.NewRequest("", "/?ifExists=x", nil)

		_, err := parseIfExists(r)
		assertProblem(t, err, common.ProblemHttpRequestUri, http.StatusBadRequest)
	})
}

func TestParseQueryOptions(t *testing.T) {
	assert := assert.New(t)

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest("", "/?limit=50&offset=100", nil)

		queryOptions, err := parseQueryOptions(r, 1000)
		assert.Equal(50, queryOptions.Limit)
		assert.Equal(100, queryOptions.Offset)
		assert.Nilf(err, "expected no error")
	})

	t.Run("default limit", func(t *testing.T) {
		r := httptest.NewRequest("", "/", nil)

		queryOptions, err := parseQueryOptions(r, 1000)
		assert.Equal(1000, queryOptions.Limit)
		assert.Equal(0, queryOptions.Offset)
		assert.Nilf(err, "expected no error")
	})

	t.Run("limit", func(t *testing.T) {
		t.Run("failed to parse value", func(t *testing.T) {
			r := httptest.NewRequest("", "/?limit=x", nil)

			_, err := parseQueryOptions(r, 1000)
			assertProblem(t, err, common.ProblemHttpRequestUri, http.StatusBadRequest)
		})

		t.Run("must be greater than or equal to 1", func(t *testing.T) {
			r := httptest.NewRequest("", "/?limit=0", nil)

			_, err := parseQueryOptions(r, 1000)
			assertProblem(t, err, common.ProblemValidation, http.StatusBadRequest)
		})
	})

	t.Run("offset", func(t *testing.T) {
		t.Run("failed to parse value", func(t *testing.T) {
			r := httptest.NewRequest("", "/?offset=x", nil)

			_, err := parseQueryOptions(r, 1000)
			assertProblem(t, err, common.ProblemHttpRequestUri, http.StatusBadRequest)
		})

		t.Run("must be greater than or equal to 0", func(t *testing.T) {
			r := httptest.NewRequest("", "/?offset=-1", nil)

			_, err := parseQueryOptions(r, 1000)
			assertProblem(t, err, common.ProblemValidation, http.StatusBadRequest)
		})
	})
}

func assertProblem(t *testing.T, err error, expectedType common.ProblemType, expectedStatus int) {
	if err == nil {
		t.Fatal("error is nil")
	}

	problem, ok := err.(common.Problem)
	if !ok {
		t.Fatalf("error is not of type Problem: %v", err)
	}

	assert := assert.New(t)
	assert.Equal(expectedType, problem.Type)
	assert.Equal(expectedStatus, problem.Status)
	assert.NotEmpty(problem.Title)
	assert.NotEmpty(problem.Detail)
}

type DecodeTest struct {
	VGte      int    `json:"vgte" validate:"gte=1"`
	VRequired string `json:"vrequired" validate:"required"`
	VNested   struct {
		BatchSize int `json:"batchSize" validate:"gte=1"`
	} `json:"vnested"`
}
