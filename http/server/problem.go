package server

import (
	"encoding/json"
	"net/http"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/common"
	"github.com/rs/zerolog"
)

// newProblem maps an error to a problem. Errors, which are neither a problem nor a history error, result in HTTP 500.
func newProblem(err error) (common.Problem, bool) {
	if problem, ok := err.(common.Problem); ok {
		return problem, true
	}

	historyErr, ok := err.(history.Error)
	if !ok || historyErr.Type == 0 {
		return common.Problem{
			Status: http.StatusInternalServerError,
			Title:  "unexpected error occurred",
			Detail: "see server logs",
		}, false
	}

	var (
		status      int
		problemType common.ProblemType
	)

	switch historyErr.Type {
	case history.ErrorConflict:
		status = http.StatusConflict
		problemType = common.ProblemConflict
	case history.ErrorNotFound:
		status = http.StatusNotFound
		problemType = common.ProblemNotFound
	case history.ErrorQuery:
		status = http.StatusBadRequest
		problemType = common.ProblemQuery
	case history.ErrorValidation:
		status = http.StatusUnprocessableEntity
		problemType = common.ProblemValidation
	default:
		status = http.StatusInternalServerError
		problemType = common.ProblemBug
	}

	return common.Problem{
		Status: status,
		Type:   problemType,
		Title:  historyErr.Title,
		Detail: historyErr.Detail,
	}, true
}

func encodeJSONProblemResponseBody(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	problem, ok := newProblem(err)
	if !ok {
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("unexpected error occurred")
	}

	w.Header().Set(common.HeaderContentType, common.ContentTypeProblemJson)
	w.WriteHeader(problem.Status)

	if err := json.NewEncoder(w).Encode(problem); err != nil {
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("failed to create JSON problem response body")
	}
}
