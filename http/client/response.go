package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/common"
)

// decodeJSONResponseBody decodes a response body into v, if not nil.
// A problem of a history related type is converted into a [history.Error].
func decodeJSONResponseBody(res *http.Response, v any) error {
	defer res.Body.Close()

	decoder := json.NewDecoder(res.Body)

	contentType := res.Header.Get(common.HeaderContentType)
	if contentType == common.ContentTypeProblemJson {
		var problem common.Problem
		if err := decoder.Decode(&problem); err != nil {
			return fmt.Errorf("failed to decode JSON problem response body: %v", err)
		}

		var errorType history.ErrorType
		switch problem.Type {
		case common.ProblemBug:
			errorType = history.ErrorBug
		case common.ProblemConflict:
			errorType = history.ErrorConflict
		case common.ProblemNotFound:
			errorType = history.ErrorNotFound
		case common.ProblemQuery:
			errorType = history.ErrorQuery
		case common.ProblemValidation:
			if len(problem.Errors) > 0 {
				return problem
			}
			errorType = history.ErrorValidation
		default:
			return problem
		}

		return history.Error{
			Type:   errorType,
			Title:  problem.Title,
			Detail: problem.Detail,
		}
	}

	if res.StatusCode >= 300 {
		text := fmt.Sprintf(
			"%s %s: HTTP %d",
			res.Request.Method,
			res.Request.URL.Path,
			res.StatusCode,
		)

		b, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("%s: %v", text, err)
		} else if len(b) != 0 {
			return fmt.Errorf("%s: %s", text, string(b))
		} else {
			return errors.New(text)
		}
	}

	if v == nil {
		return nil
	}
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON response body: %v", err)
	}

	return nil
}
