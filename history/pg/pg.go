package pg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gclaussn/go-bpmn-history/history/pg"

// Store extends a [history.Store] with native queries, which select rows of a single table via plain SQL.
type Store interface {
	history.Store

	CreateNativeHistoricActivityInstanceQuery() NativeQuery[history.HistoricActivityInstance]
	CreateNativeHistoricCaseInstanceQuery() NativeQuery[history.HistoricCaseInstance]
	CreateNativeHistoricDetailQuery() NativeQuery[history.HistoricDetail]
	CreateNativeHistoricIncidentQuery() NativeQuery[history.HistoricIncident]
	CreateNativeHistoricJobLogQuery() NativeQuery[history.HistoricJobLog]
	CreateNativeHistoricProcessInstanceQuery() NativeQuery[history.HistoricProcessInstance]
	CreateNativeHistoricTaskInstanceQuery() NativeQuery[history.HistoricTaskInstance]
	CreateNativeHistoricVariableInstanceQuery() NativeQuery[history.HistoricVariableInstance]
}

func New(databaseUrl string, customizers ...func(*Options)) (Store, error) {
	if databaseUrl == "" {
		return nil, errors.New("database URL is empty")
	}

	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	pgPoolConfig, err := pgxpool.ParseConfig(databaseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %v", err)
	}

	if _, ok := pgPoolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		pgPoolConfig.ConnConfig.RuntimeParams["application_name"] = options.Common.EngineId
	}

	if databaseSchema, ok := pgPoolConfig.ConnConfig.RuntimeParams["search_path"]; ok {
		options.databaseSchema = databaseSchema
	}

	pgPoolCtx, pgPoolCancel := context.WithTimeout(context.Background(), options.Timeout)
	defer pgPoolCancel()

	pgPool, err := pgxpool.NewWithConfig(pgPoolCtx, pgPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %v", err)
	}

	clock := options.Common.Clock
	if clock == nil {
		clock = history.SystemClock{}
	}

	pgCtxPoolSize := int(pgPoolConfig.MaxConns)
	pgCtxPool := make(chan *pgContext, pgCtxPoolSize)

	for i := 0; i < pgCtxPoolSize; i++ {
		pgCtxPool <- &pgContext{options: options.Common}
	}

	requireCtx, requireCancel := context.WithCancel(context.Background())

	pgStore := &pgStore{
		requireCtx:    requireCtx,
		requireCancel: requireCancel,

		pgCtxPool: pgCtxPool,
		pgPool:    pgPool,
		txTimeout: options.Timeout,

		clock:  clock,
		tracer: otel.Tracer(tracerName),
	}

	pgStore.Queries = history.Queries{Executor: pgStore}
	pgStore.Recorder = internal.Recorder{Execute: pgStore.write}
	pgStore.Service = internal.Service{Read: pgStore.read, Write: pgStore.write}

	if err := migrateDatabase(pgPool, options.databaseSchema); err != nil {
		pgStore.Shutdown()
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	if options.Common.CleanupEnabled {
		pgStore.cleanupExecutor = internal.NewCleanupExecutor(pgStore.CleanupHistory, options.Common)
		pgStore.cleanupExecutor.Execute()
	}

	return pgStore, nil
}

func NewOptions() Options {
	return Options{
		Common:  history.NewOptions(),
		Timeout: 30 * time.Second,

		databaseSchema: "public",
	}
}

type Options struct {
	Common history.Options // Common store options.

	Timeout time.Duration // Time limit for database transactions, utilized when the given context has no deadline.

	databaseSchema string // derived from database URL - see runtime parameter "search_path"
}

func (o Options) Validate() error {
	if o.Timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	return o.Common.Validate()
}

type pgStore struct {
	history.Queries
	internal.Recorder
	internal.Service

	requireCtx    context.Context    // used to prevent the requiring of a context, when the store is shut down
	requireCancel context.CancelFunc // invoked when a shutdown is initiated
	shutdownOnce  sync.Once          // used to prevent more than one shutdown

	pgCtxPool chan *pgContext
	pgPool    *pgxpool.Pool
	txTimeout time.Duration // utilized when the given context has no deadline

	clock  history.Clock
	tracer trace.Tracer

	cleanupExecutor *internal.CleanupExecutor
}

func (s *pgStore) Transaction(ctx context.Context, fn func(history.Recorder) error) error {
	return s.write(ctx, func(c internal.Context) error {
		return fn(internal.TxRecorder{Ctx: c})
	})
}

func (s *pgStore) Shutdown() {
	s.shutdownOnce.Do(func() {
		if s.cleanupExecutor != nil {
			s.cleanupExecutor.Stop()
		}

		s.requireCancel()
		s.pgPool.Close()

		for len(s.pgCtxPool) > 0 {
			<-s.pgCtxPool
		}

		close(s.pgCtxPool)
	})
}

// read executes a function within a read only transaction.
func (s *pgStore) read(ctx context.Context, fn func(internal.Context) error) error {
	return s.execute(ctx, "history.read", pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

// write executes a function within a read write transaction, which is committed, if no error is returned.
func (s *pgStore) write(ctx context.Context, fn func(internal.Context) error) error {
	return s.execute(ctx, "history.write", pgx.TxOptions{}, fn)
}

func (s *pgStore) execute(ctx context.Context, spanName string, txOptions pgx.TxOptions, fn func(internal.Context) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
	))
	defer span.End()

	pgCtx, err := s.require(ctx, txOptions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.release(pgCtx, fn(pgCtx)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (s *pgStore) require(ctx context.Context, txOptions pgx.TxOptions) (*pgContext, error) {
	select {
	case <-s.requireCtx.Done():
		return nil, s.requireCtx.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	case pgCtx := <-s.pgCtxPool:
		tx, err := s.pgPool.BeginTx(ctx, txOptions)
		if err != nil {
			s.pgCtxPool <- pgCtx
			return nil, err
		}

		// must be UTC and truncated to millis, since TIMESTAMP(3) is used
		pgCtx.time = s.clock.Now().UTC().Truncate(time.Millisecond)

		pgCtx.tx = tx
		pgCtx.txCtx = ctx
		pgCtx.txState = internal.NewTxState()

		return pgCtx, nil
	}
}

func (s *pgStore) release(pgCtx *pgContext, err error) error {
	if err != nil {
		_ = pgCtx.tx.Rollback(pgCtx.txCtx)
	} else {
		err = pgCtx.tx.Commit(pgCtx.txCtx)
	}
	if err == nil {
		pgCtx.txState.CountEvents()
	}

	pgCtx.tx = nil
	pgCtx.txCtx = nil
	pgCtx.txState = nil

	s.pgCtxPool <- pgCtx
	return err
}
