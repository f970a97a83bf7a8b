package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/stretchr/testify/assert"
)

func TestCleanupExecutor(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	newOptions := func() history.Options {
		options := history.NewOptions()
		options.Clock = history.NewTestClock(now)
		options.CleanupCycle = "0 * * * *"
		options.CleanupTimeToLive = 24 * time.Hour
		options.CleanupBatchSize = 2
		return options
	}

	t.Run("run removes batches until exhausted", func(t *testing.T) {
		// given
		var cmds []history.CleanupHistoryCmd
		results := []int{2, 2, 1}

		e := NewCleanupExecutor(func(_ context.Context, cmd history.CleanupHistoryCmd) (int, error) {
			cmds = append(cmds, cmd)
			n := results[0]
			results = results[1:]
			return n, nil
		}, newOptions())

		// when
		total := e.Run(context.Background())

		// then
		assert.Equal(5, total)
		assert.Len(cmds, 3)
		for _, cmd := range cmds {
			assert.Equal(now.Add(-24*time.Hour), cmd.Before)
			assert.Equal(2, cmd.BatchSize)
		}
	})

	t.Run("run stops on failure", func(t *testing.T) {
		// given
		var failure error

		options := newOptions()
		options.OnCleanupFailure = func(err error) {
			failure = err
		}

		calls := 0
		e := NewCleanupExecutor(func(context.Context, history.CleanupHistoryCmd) (int, error) {
			calls++
			if calls == 1 {
				return 2, nil
			}
			return -1, errors.New("test")
		}, options)

		// when
		total := e.Run(context.Background())

		// then
		assert.Equal(2, total)
		assert.Equal(2, calls)
		assert.EqualError(failure, "test")
	})

	t.Run("run stops when context is canceled", func(t *testing.T) {
		// given
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := NewCleanupExecutor(func(context.Context, history.CleanupHistoryCmd) (int, error) {
			t.Fatal("unexpected cleanup")
			return 0, nil
		}, newOptions())

		// when
		total := e.Run(ctx)

		// then
		assert.Equal(0, total)
	})

	t.Run("execute fails with invalid cycle", func(t *testing.T) {
		// given
		failures := make(chan error, 1)

		options := newOptions()
		options.CleanupCycle = "invalid"
		options.OnCleanupFailure = func(err error) {
			failures <- err
		}

		e := NewCleanupExecutor(func(context.Context, history.CleanupHistoryCmd) (int, error) {
			return 0, nil
		}, options)

		// when
		e.Execute()
		defer e.Stop()

		// then
		select {
		case err := <-failures:
			assert.NotNil(err)
		case <-time.After(time.Second):
			t.Fatal("expected failure")
		}
	})
}
