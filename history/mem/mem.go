package mem

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
)

func New(customizers ...func(*Options)) (history.Store, error) {
	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	clock := options.Common.Clock
	if clock == nil {
		clock = history.SystemClock{}
	}

	memStore := &memStore{
		data:    newMemData(),
		clock:   clock,
		options: options.Common,
	}

	memStore.Queries = history.Queries{Executor: memStore}
	memStore.Recorder = internal.Recorder{Execute: memStore.write}
	memStore.Service = internal.Service{Read: memStore.read, Write: memStore.write}

	if options.Common.CleanupEnabled {
		memStore.cleanupExecutor = internal.NewCleanupExecutor(memStore.CleanupHistory, options.Common)
		memStore.cleanupExecutor.Execute()
	}

	return memStore, nil
}

func NewOptions() Options {
	return Options{
		Common: history.NewOptions(),
	}
}

type Options struct {
	Common history.Options // Common options
}

func (o Options) Validate() error {
	return o.Common.Validate()
}

type memStore struct {
	history.Queries
	internal.Recorder
	internal.Service

	ctxMutex sync.RWMutex
	data     *memData

	clock   history.Clock
	options history.Options

	cleanupExecutor *internal.CleanupExecutor
}

func (s *memStore) Transaction(ctx context.Context, fn func(history.Recorder) error) error {
	return s.write(ctx, func(c internal.Context) error {
		return fn(internal.TxRecorder{Ctx: c})
	})
}

func (s *memStore) Shutdown() {
	if s.cleanupExecutor != nil {
		s.cleanupExecutor.Stop()
	}

	s.ctxMutex.Lock()
	defer s.ctxMutex.Unlock()
	s.data = newMemData()
}

// read executes a function, which must not modify any data.
func (s *memStore) read(_ context.Context, fn func(internal.Context) error) error {
	s.ctxMutex.RLock()
	defer s.ctxMutex.RUnlock()
	return fn(s.newContext(s.data))
}

// write executes a function on a copy of the data, which replaces the current data, if no error is returned.
func (s *memStore) write(_ context.Context, fn func(internal.Context) error) error {
	s.ctxMutex.Lock()
	defer s.ctxMutex.Unlock()

	data := s.data.clone()
	ctx := s.newContext(data)
	if err := fn(ctx); err != nil {
		return err
	}

	s.data = data
	ctx.txState.CountEvents()
	return nil
}

func (s *memStore) newContext(data *memData) *memContext {
	return &memContext{
		data:    data,
		options: s.options,
		time:    s.clock.Now().UTC().Truncate(time.Millisecond),
		txState: internal.NewTxState(),
	}
}

func newMemData() *memData {
	return &memData{
		exceptionStacktraces: make(map[string]string),
	}
}

type memData struct {
	activityInstances []internal.ActivityInstanceEntity
	caseInstances     []internal.CaseInstanceEntity
	details           []internal.DetailEntity
	incidents         []internal.IncidentEntity
	jobLogs           []internal.JobLogEntity
	processInstances  []internal.ProcessInstanceEntity
	taskInstances     []internal.TaskInstanceEntity
	variableInstances []internal.VariableInstanceEntity

	exceptionStacktraces map[string]string // by job log ID
	sequence             int64
}

func (d *memData) clone() *memData {
	return &memData{
		activityInstances: slices.Clone(d.activityInstances),
		caseInstances:     slices.Clone(d.caseInstances),
		details:           slices.Clone(d.details),
		incidents:         slices.Clone(d.incidents),
		jobLogs:           slices.Clone(d.jobLogs),
		processInstances:  slices.Clone(d.processInstances),
		taskInstances:     slices.Clone(d.taskInstances),
		variableInstances: slices.Clone(d.variableInstances),

		exceptionStacktraces: maps.Clone(d.exceptionStacktraces),
		sequence:             d.sequence,
	}
}
