package pg

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var nativeParameterPattern = regexp.MustCompile(`#\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// NativeQuery is an immutable query, which selects rows of a single historic table via plain SQL.
//
// The SQL must select all columns of the table, the query is created for - e.g.:
//
//	SELECT * FROM process_instance WHERE business_key = #{businessKey}
//
// Named parameters of the form #{name} are bound to the values, given via [NativeQuery.Parameter].
type NativeQuery[T any] struct {
	s       *pgStore
	columns string
	scan    func(pgx.Row, internal.ValueOptions) (T, error)

	sql    string
	params map[string]any
}

func newNativeQuery[E any, T any](s *pgStore, columns string, scan func(pgx.Row) (*E, error), convert func(*E, internal.ValueOptions) T) NativeQuery[T] {
	return NativeQuery[T]{
		s:       s,
		columns: columns,
		scan: func(row pgx.Row, o internal.ValueOptions) (T, error) {
			entity, err := scan(row)
			if err != nil {
				var zero T
				return zero, err
			}
			return convert(entity, o), nil
		},
	}
}

func (q NativeQuery[T]) Sql(sql string) NativeQuery[T] {
	q.sql = sql
	return q
}

func (q NativeQuery[T]) Parameter(name string, value any) NativeQuery[T] {
	params := make(map[string]any, len(q.params)+1)
	maps.Copy(params, q.params)
	params[name] = value

	q.params = params
	return q
}

func (q NativeQuery[T]) List(ctx context.Context) ([]T, error) {
	return q.list(ctx, history.QueryOptions{})
}

func (q NativeQuery[T]) ListPage(ctx context.Context, offset int, size int) ([]T, error) {
	if offset < 0 {
		return nil, nativeQueryError("offset must be greater than or equal to 0")
	}
	if size < 0 {
		return nil, nativeQueryError("size must be greater than or equal to 0")
	}
	if size == 0 {
		return []T{}, nil
	}
	return q.list(ctx, history.QueryOptions{Offset: offset, Limit: size})
}

func (q NativeQuery[T]) Count(ctx context.Context) (int, error) {
	sql, args, err := q.prepare()
	if err != nil {
		return -1, err
	}

	count := -1
	err = q.s.read(ctx, func(c internal.Context) error {
		pgCtx := c.(*pgContext)
		return pgCtx.tx.QueryRow(pgCtx.txCtx, "SELECT count(*) FROM ("+sql+") AS native", args...).Scan(&count)
	})
	if err != nil {
		return -1, mapNativeError(err)
	}

	return count, nil
}

// SingleResult returns nil, if no row matches.
func (q NativeQuery[T]) SingleResult(ctx context.Context) (*T, error) {
	results, err := q.list(ctx, history.QueryOptions{Limit: 2})
	if err != nil {
		return nil, err
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return &results[0], nil
	default:
		return nil, nativeQueryError("query returned more than one result")
	}
}

func (q NativeQuery[T]) list(ctx context.Context, options history.QueryOptions) ([]T, error) {
	sql, args, err := q.prepare()
	if err != nil {
		return nil, err
	}

	var s strings.Builder
	s.WriteString("SELECT ")
	s.WriteString(q.columns)
	s.WriteString(" FROM (")
	s.WriteString(sql)
	s.WriteString(") AS native")
	if options.Offset > 0 {
		s.WriteString(" OFFSET ")
		s.WriteString(strconv.Itoa(options.Offset))
	}
	if options.Limit > 0 {
		s.WriteString(" LIMIT ")
		s.WriteString(strconv.Itoa(options.Limit))
	}

	var results []T
	err = q.s.read(ctx, func(c internal.Context) error {
		pgCtx := c.(*pgContext)

		valueOptions := internal.ValueOptions{ObjectDeserializers: pgCtx.options.ObjectDeserializers}

		rows, err := pgCtx.tx.Query(pgCtx.txCtx, s.String(), args...)
		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			result, err := q.scan(rows, valueOptions)
			if err != nil {
				return err
			}
			results = append(results, result)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, mapNativeError(err)
	}

	return results, nil
}

func (q NativeQuery[T]) prepare() (string, []any, error) {
	sql := strings.TrimSpace(q.sql)
	if sql == "" {
		return "", nil, nativeQueryError("SQL is empty")
	}
	return bindParameters(strings.TrimSuffix(sql, ";"), q.params)
}

// bindParameters replaces named parameters with positional ones.
// A parameter, which is used more than once, is bound to the same position.
func bindParameters(sql string, params map[string]any) (string, []any, error) {
	var (
		args      []any
		positions = make(map[string]int)
		missing   []string
	)

	bound := nativeParameterPattern.ReplaceAllStringFunc(sql, func(m string) string {
		name := m[2 : len(m)-1]
		if position, ok := positions[name]; ok {
			return "$" + strconv.Itoa(position)
		}

		value, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}

		args = append(args, value)
		positions[name] = len(args)
		return "$" + strconv.Itoa(len(args))
	})

	if len(missing) != 0 {
		return "", nil, nativeQueryError(fmt.Sprintf("parameters %s are not set", strings.Join(missing, ", ")))
	}

	return bound, args, nil
}

func nativeQueryError(detail string) error {
	return history.Error{
		Type:   history.ErrorQuery,
		Title:  "invalid native query",
		Detail: detail,
	}
}

// mapNativeError maps errors, reported by the database, to query errors.
func mapNativeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return nativeQueryError(pgErr.Message)
	}
	return err
}

func (s *pgStore) CreateNativeHistoricActivityInstanceQuery() NativeQuery[history.HistoricActivityInstance] {
	return newNativeQuery(s, activityInstanceColumns, scanActivityInstance, func(e *internal.ActivityInstanceEntity, _ internal.ValueOptions) history.HistoricActivityInstance {
		return e.HistoricActivityInstance()
	})
}

func (s *pgStore) CreateNativeHistoricCaseInstanceQuery() NativeQuery[history.HistoricCaseInstance] {
	return newNativeQuery(s, caseInstanceColumns, scanCaseInstance, func(e *internal.CaseInstanceEntity, _ internal.ValueOptions) history.HistoricCaseInstance {
		return e.HistoricCaseInstance()
	})
}

func (s *pgStore) CreateNativeHistoricDetailQuery() NativeQuery[history.HistoricDetail] {
	return newNativeQuery(s, detailColumns, scanDetail, func(e *internal.DetailEntity, o internal.ValueOptions) history.HistoricDetail {
		return e.HistoricDetail(o)
	})
}

func (s *pgStore) CreateNativeHistoricIncidentQuery() NativeQuery[history.HistoricIncident] {
	return newNativeQuery(s, incidentColumns, scanIncident, func(e *internal.IncidentEntity, _ internal.ValueOptions) history.HistoricIncident {
		return e.HistoricIncident()
	})
}

func (s *pgStore) CreateNativeHistoricJobLogQuery() NativeQuery[history.HistoricJobLog] {
	return newNativeQuery(s, jobLogColumns, scanJobLog, func(e *internal.JobLogEntity, _ internal.ValueOptions) history.HistoricJobLog {
		return e.HistoricJobLog()
	})
}

func (s *pgStore) CreateNativeHistoricProcessInstanceQuery() NativeQuery[history.HistoricProcessInstance] {
	return newNativeQuery(s, processInstanceColumns, scanProcessInstance, func(e *internal.ProcessInstanceEntity, _ internal.ValueOptions) history.HistoricProcessInstance {
		return e.HistoricProcessInstance()
	})
}

func (s *pgStore) CreateNativeHistoricTaskInstanceQuery() NativeQuery[history.HistoricTaskInstance] {
	return newNativeQuery(s, taskInstanceColumns, scanTaskInstance, func(e *internal.TaskInstanceEntity, _ internal.ValueOptions) history.HistoricTaskInstance {
		return e.HistoricTaskInstance()
	})
}

func (s *pgStore) CreateNativeHistoricVariableInstanceQuery() NativeQuery[history.HistoricVariableInstance] {
	return newNativeQuery(s, variableInstanceColumns, scanVariableInstance, func(e *internal.VariableInstanceEntity, o internal.ValueOptions) history.HistoricVariableInstance {
		return e.HistoricVariableInstance(o)
	})
}
