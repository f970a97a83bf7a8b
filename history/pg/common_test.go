package pg

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

var (
	bg = context.Background()

	startTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func mustCreateStore(t *testing.T, customizers ...func(*Options)) (Store, *history.TestClock) {
	if testing.Short() {
		t.Skip()
	}

	databaseUrl := os.Getenv("GO_BPMN_HISTORY_TEST_DATABASE_URL")
	if databaseUrl == "" {
		t.Skip("GO_BPMN_HISTORY_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(bg, 15*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseUrl)
	if err != nil {
		t.Fatalf("failed to establish database connection: %v", err)
	}

	defer conn.Close(ctx)

	databaseSchema := fmt.Sprintf("test_history_%s", strings.Replace(time.Now().Format("20060102150405.000000"), ".", "", 1))
	if _, err := conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", databaseSchema)); err != nil {
		t.Fatalf("failed to create database schema: %v", err)
	}

	separator := "?"
	if strings.Contains(databaseUrl, "?") {
		separator = "&"
	}
	databaseUrl = fmt.Sprintf("%s%ssearch_path=%s", databaseUrl, separator, databaseSchema)

	clock := history.NewTestClock(startTime)

	s, err := New(databaseUrl, append([]func(*Options){func(o *Options) {
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
