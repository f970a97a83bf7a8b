package mem

import (
	"context"
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/stretchr/testify/assert"
)

var (
	bg = context.Background()

	startTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func mustCreateStore(t *testing.T, customizers ...func(*Options)) (history.Store, *history.TestClock) {
	clock := history.NewTestClock(startTime)

	s, err := New(append([]func(*Options){func(o *Options) {
		o.Common.Clock = clock
	}}, customizers...)...)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s, clock
}

func mustStartProcessInstance(t *testing.T, s history.Store, cmd history.StartProcessInstanceCmd) {
	if cmd.ProcessDefinitionId == "" {
		cmd.ProcessDefinitionId = "order:1"
	}
	if cmd.ProcessDefinitionKey == "" {
		cmd.ProcessDefinitionKey = "order"
	}
	if err := s.StartProcessInstance(bg, cmd); err != nil {
		t.Fatalf("failed to start process instance: %v", err)
	}
}

func mustStartActivityInstance(t *testing.T, s history.Store, cmd history.StartActivityInstanceCmd) string {
	id, err := s.StartActivityInstance(bg, cmd)
	if err != nil {
		t.Fatalf("failed to start activity instance: %v", err)
	}
	return id
}

func mustSucceed(t *testing.T, err error) {
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertErrorType(t *testing.T, expected history.ErrorType, err error) {
	assert := assert.New(t)

	assert.IsTypef(history.Error{}, err, "expected history error")
	if historyErr, ok := err.(history.Error); ok {
		assert.Equal(expected, historyErr.Type)
	}
}
