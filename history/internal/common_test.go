package internal

import (
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/stretchr/testify/assert"
)

func TestValidateCmd(t *testing.T) {
	assert := assert.New(t)

	t.Run("valid", func(t *testing.T) {
		err := validateCmd("title", history.StartProcessInstanceCmd{
			Id:                   "a",
			ProcessDefinitionId:  "order:1",
			ProcessDefinitionKey: "order",
		})
		assert.Nil(err)
	})

	t.Run("required", func(t *testing.T) {
		err := validateCmd("failed to start process instance", history.StartProcessInstanceCmd{})
		assert.Equal(history.Error{
			Type:   history.ErrorValidation,
			Title:  "failed to start process instance",
			Detail: "id is required; processDefinitionId is required; processDefinitionKey is required",
		}, err)
	})

	t.Run("excluded with", func(t *testing.T) {
		err := validateCmd("title", history.CreateTaskCmd{
			Id:                "task",
			ProcessInstanceId: "a",
			CaseInstanceId:    "c",
		})
		assert.IsType(history.Error{}, err)
		assert.Contains(err.(history.Error).Detail, "processInstanceId cannot be combined with CaseInstanceId")
	})

	t.Run("gte", func(t *testing.T) {
		err := validateCmd("title", history.CreateJobCmd{JobId: "job", Retries: -1})
		assert.IsType(history.Error{}, err)
		assert.Equal("retries must be greater than or equal to 0", err.(history.Error).Detail)
	})

	t.Run("value type", func(t *testing.T) {
		err := validateCmd("title", history.SetVariableCmd{
			Name:  "foo",
			Value: history.TypedValue{Type: "unknown"},
		})
		assert.IsType(history.Error{}, err)
		assert.Equal("value.type value type unknown is not supported", err.(history.Error).Detail)
	})
}

func TestTruncate(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("abc", truncate("abc", 3))
	assert.Equal("ab", truncate("abc", 2))
	assert.Equal("äö", truncate("äöü", 2))
	assert.Equal("abc", truncate("abc", 0))
}

func TestDurationInMillis(t *testing.T) {
	assert := assert.New(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	v := durationInMillis(start, start.Add(1500*time.Millisecond))
	assert.True(v.Valid)
	assert.Equal(int64(1500), v.Int64)

	assert.Equal(int64(0), *int8OrNil(durationInMillis(start, start)))
}
