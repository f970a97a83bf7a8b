package internal

import (
	"context"
	"time"

	"github.com/adhocore/gronx"
	"github.com/gclaussn/go-bpmn-history/history"
)

// CleanupHistory deletes ended root process instances and closed case instances, which ended before a given time.
func CleanupHistory(ctx Context, cmd history.CleanupHistoryCmd) (int, error) {
	if err := validateCmd("failed to cleanup history", cmd); err != nil {
		return -1, err
	}

	processInstances, err := ctx.ProcessInstances().SelectEndedRoots(cmd.Before, cmd.BatchSize)
	if err != nil {
		return -1, err
	}

	if len(processInstances) != 0 {
		processInstanceIds := make([]string, len(processInstances))
		for i, processInstance := range processInstances {
			processInstanceIds[i] = processInstance.Id
		}

		if err := deleteHistoricProcessInstances(ctx, processInstanceIds); err != nil {
			return -1, err
		}
	}

	limit := cmd.BatchSize - len(processInstances)
	if limit <= 0 {
		return len(processInstances), nil
	}

	caseInstances, err := ctx.CaseInstances().SelectClosedBefore(cmd.Before, limit)
	if err != nil {
		return -1, err
	}

	if len(caseInstances) != 0 {
		caseInstanceIds := make([]string, len(caseInstances))
		for i, caseInstance := range caseInstances {
			caseInstanceIds[i] = caseInstance.Id
		}

		if err := deleteHistoricCaseInstances(ctx, caseInstanceIds); err != nil {
			return -1, err
		}
	}

	return len(processInstances) + len(caseInstances), nil
}

type cleanupFunc func(context.Context, history.CleanupHistoryCmd) (int, error)

func NewCleanupExecutor(cleanup cleanupFunc, options history.Options) *CleanupExecutor {
	tickerCtx, tickerCancel := context.WithCancel(context.Background())

	clock := options.Clock
	if clock == nil {
		clock = history.SystemClock{}
	}

	return &CleanupExecutor{
		cleanup: cleanup,
		clock:   clock,

		cycle:      options.CleanupCycle,
		timeToLive: options.CleanupTimeToLive,
		batchSize:  options.CleanupBatchSize,

		onFailure: options.OnCleanupFailure,

		tickerCtx:    tickerCtx,
		tickerCancel: tickerCancel,
	}
}

// CleanupExecutor runs the history cleanup, whenever the cleanup cycle is due.
// A run removes batches, until no root instance is left, that is older than the time to live.
type CleanupExecutor struct {
	cleanup cleanupFunc
	clock   history.Clock

	cycle      string
	timeToLive time.Duration
	batchSize  int

	onFailure func(error)

	tickerCtx    context.Context
	tickerCancel context.CancelFunc
}

func (e *CleanupExecutor) Execute() {
	go func() {
		for {
			now := e.clock.Now()

			next, err := gronx.NextTickAfter(e.cycle, now, false)
			if err != nil {
				e.fail(err)
				return
			}

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-timer.C:
				e.Run(e.tickerCtx)
			case <-e.tickerCtx.Done():
				timer.Stop()
				return
			}
		}
	}()
}

// Run removes all root instances, which ended before now minus the time to live.
func (e *CleanupExecutor) Run(ctx context.Context) int {
	cmd := history.CleanupHistoryCmd{
		Before:    e.clock.Now().Add(-e.timeToLive),
		BatchSize: e.batchSize,
	}

	total := 0
	for ctx.Err() == nil {
		n, err := e.cleanup(ctx, cmd)
		if err != nil {
			e.fail(err)
			break
		}

		total += n
		if n < e.batchSize {
			break
		}
	}
	return total
}

func (e *CleanupExecutor) Stop() {
	e.tickerCancel()
}

func (e *CleanupExecutor) fail(err error) {
	if e.onFailure != nil {
		e.onFailure(err)
	}
}
