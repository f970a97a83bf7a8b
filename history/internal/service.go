package internal

import (
	"context"

	"github.com/gclaussn/go-bpmn-history/history"
)

// Service implements the query execution and deletion operations of a [history.Service].
//
// Read is used for queries, which must not modify any data. Write is used for deletions.
type Service struct {
	Read  TransactionFunc
	Write TransactionFunc
}

func (s Service) Query(ctx context.Context, criteria any, options history.QueryOptions) ([]any, error) {
	query := NewQuery(criteria)
	if query == nil {
		return nil, UnsupportedCriteriaError(criteria)
	}

	var results []any
	err := s.Read(ctx, func(c Context) error {
		var err error
		results, err = query(c, options)
		return err
	})
	return results, err
}

func (s Service) Count(ctx context.Context, criteria any) (int, error) {
	count := NewCount(criteria)
	if count == nil {
		return -1, UnsupportedCriteriaError(criteria)
	}

	n := -1
	err := s.Read(ctx, func(c Context) error {
		var err error
		n, err = count(c)
		return err
	})
	return n, err
}

func (s Service) GetHistoricJobLogExceptionStacktrace(ctx context.Context, historicJobLogId string) (string, error) {
	var exceptionStacktrace string
	err := s.Read(ctx, func(c Context) error {
		var err error
		exceptionStacktrace, err = GetHistoricJobLogExceptionStacktrace(c, historicJobLogId)
		return err
	})
	return exceptionStacktrace, err
}

func (s Service) DeleteHistoricProcessInstance(ctx context.Context, cmd history.DeleteHistoricProcessInstanceCmd) error {
	return s.Write(ctx, func(c Context) error { return DeleteHistoricProcessInstance(c, cmd) })
}

func (s Service) DeleteHistoricTaskInstance(ctx context.Context, taskId string) error {
	return s.Write(ctx, func(c Context) error { return DeleteHistoricTaskInstance(c, taskId) })
}

func (s Service) DeleteHistoricCaseInstance(ctx context.Context, caseInstanceId string) error {
	return s.Write(ctx, func(c Context) error { return DeleteHistoricCaseInstance(c, caseInstanceId) })
}

func (s Service) DeleteHistoricVariableInstance(ctx context.Context, variableInstanceId string) error {
	return s.Write(ctx, func(c Context) error { return DeleteHistoricVariableInstance(c, variableInstanceId) })
}

func (s Service) CleanupHistory(ctx context.Context, cmd history.CleanupHistoryCmd) (int, error) {
	n := -1
	err := s.Write(ctx, func(c Context) error {
		var err error
		n, err = CleanupHistory(c, cmd)
		return err
	})
	return n, err
}
