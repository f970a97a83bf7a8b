package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0] // e.g. `json:"batchSize,omitempty"` -> batchSize
	})
	return validate
}

// decodeJSONRequestBody decodes the request body using v and validates it.
// Media type, request body or validation related errors are returned as a Problem.
//
// inspired by https://www.alexedwards.net/blog/how-to-properly-parse-a-json-request-body
func decodeJSONRequestBody(w http.ResponseWriter, r *http.Request, v any) error {
	if contentType := r.Header.Get(common.HeaderContentType); contentType != "" {
		mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
		if mediaType != common.ContentTypeJson {
			return common.Problem{
				Status: http.StatusUnsupportedMediaType,
				Type:   common.ProblemHttpMediaType,
				Title:  "unsupported media type",
				Detail: fmt.Sprintf("media type %s is not supported", mediaType),
			}
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576) // 1mb = 1024 * 1024

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError

		problem := common.Problem{
			Status: http.StatusBadRequest,
			Type:   common.ProblemHttpRequestBody,
			Title:  "invalid request body",
		}

		switch {
		case errors.As(err, &syntaxError):
			problem.Detail = fmt.Sprintf("malformed JSON at position %d", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			problem.Detail = "unexpected end of JSON"
		case errors.As(err, &unmarshalTypeError):
			problem.Detail = fmt.Sprintf("JSON field %s has an invalid value at position %d", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			problem.Detail = fmt.Sprintf("unknown JSON field %s", fieldName)
		case errors.Is(err, io.EOF):
			problem.Detail = "request body is empty"
		case err.Error() == "http: request body too large":
			problem.Detail = "request body size must not exceed 1MB"
		default:
			problem.Detail = fmt.Sprintf("failed to unmarshal JSON: %v", err)
		}

		return problem
	}

	if err := validate.Struct(v); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("failed to validate request body: %v", err)
		}

		errors := make([]common.Error, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			var (
				detail string
				value  string
			)
			switch fieldError.Tag() {
			case "gte":
				detail = fmt.Sprintf("must be greater than or equal to %s", fieldError.Param())
				value = fmt.Sprintf("%v", fieldError.Value())
			case "required":
				detail = "is required"
			default:
				detail = "is invalid"
				value = fmt.Sprintf("%v", fieldError.Value())
			}

			errors = append(errors, common.Error{
				Pointer: jsonPointer(fieldError.Namespace()),
				Type:    fieldError.Tag(),
				Detail:  detail,
				Value:   value,
			})
		}

		return common.Problem{
			Status: http.StatusBadRequest,
			Type:   common.ProblemValidation,
			Title:  "invalid request body",
			Detail: "failed to validate request body",
			Errors: errors,
		}
	}

	return nil
}

// jsonPointer converts the namespace of a field error into a JSON pointer, e.g. "CleanupHistoryCmd.batchSize" -> "#/batchSize".
func jsonPointer(namespace string) string {
	i := strings.IndexRune(namespace, '.')
	if i == -1 {
		return "#"
	}

	path := namespace[i+1:]
	path = strings.ReplaceAll(path, "]", "")
	path = strings.ReplaceAll(path, "[", "/")
	path = strings.ReplaceAll(path, ".", "/")
	return "#/" + path
}

func parseId(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		return "", common.Problem{
			Status: http.StatusBadRequest,
			Type:   common.ProblemHttpRequestUri,
			Title:  "invalid path parameter id",
			Detail: "ID must not be empty or blank",
		}
	}
	return id, nil
}

func parseIfExists(r *http.Request) (bool, error) {
	values, ok := r.URL.Query()[common.QueryIfExists]
	if !ok {
		return false, nil
	}

	ifExists, err := strconv.ParseBool(values[0])
	if err != nil {
		return false, common.Problem{
			Status: http.StatusBadRequest,
			Type:   common.ProblemHttpRequestUri,
			Title:  "invalid query parameter " + common.QueryIfExists,
			Detail: "failed to parse value " + values[0],
		}
	}
	return ifExists, nil
}

// parseQueryOptions parses limit and offset. If no limit is given, the default limit is applied.
func parseQueryOptions(r *http.Request, defaultLimit int) (history.QueryOptions, error) {
	var (
		err error

		limit  int64 = int64(defaultLimit)
		offset int64
	)

	if limitValues, ok := r.URL.Query()[common.QueryLimit]; ok {
		limit, err = strconv.ParseInt(limitValues[0], 10, 32)
		if err != nil {
			return history.QueryOptions{}, common.Problem{
				Status: http.StatusBadRequest,
				Type:   common.ProblemHttpRequestUri,
				Title:  "invalid query parameter " + common.QueryLimit,
				Detail: "failed to parse value " + limitValues[0],
			}
		}
		if limit < 1 {
			return history.QueryOptions{}, common.Problem{
				Status: http.StatusBadRequest,
				Type:   common.ProblemValidation,
				Title:  "invalid query parameter " + common.QueryLimit,
				Detail: fmt.Sprintf("%s %d must be greater than or equal to 1", common.QueryLimit, limit),
			}
		}
	}

	if offsetValues, ok := r.URL.Query()[common.QueryOffset]; ok {
		offset, err = strconv.ParseInt(offsetValues[0], 10, 32)
		if err != nil {
			return history.QueryOptions{}, common.Problem{
				Status: http.StatusBadRequest,
				Type:   common.ProblemHttpRequestUri,
				Title:  "invalid query parameter " + common.QueryOffset,
				Detail: "failed to parse value " + offsetValues[0],
			}
		}
		if offset < 0 {
			return history.QueryOptions{}, common.Problem{
				Status: http.StatusBadRequest,
				Type:   common.ProblemValidation,
				Title:  "invalid query parameter " + common.QueryOffset,
				Detail: fmt.Sprintf("%s %d must be greater than or equal to 0", common.QueryOffset, offset),
			}
		}
	}

	return history.QueryOptions{
		Limit:  int(limit),
		Offset: int(offset),
	}, nil
}
