package internal

import (
	"fmt"

	"github.com/gclaussn/go-bpmn-history/history"
)

// NewQuery creates a query for the given criteria. If the criteria type is not supported, nil is returned.
func NewQuery(criteria any) Query {
	switch criteria := criteria.(type) {
	case history.HistoricActivityInstanceCriteria:
		return newActivityInstanceQuery(criteria)
	case history.HistoricActivityStatisticsCriteria:
		return newActivityStatisticsQuery(criteria)
	case history.HistoricCaseInstanceCriteria:
		return newCaseInstanceQuery(criteria)
	case history.HistoricDetailCriteria:
		return newDetailQuery(criteria)
	case history.HistoricIncidentCriteria:
		return newIncidentQuery(criteria)
	case history.HistoricJobLogCriteria:
		return newJobLogQuery(criteria)
	case history.HistoricProcessInstanceCriteria:
		return newProcessInstanceQuery(criteria)
	case history.HistoricTaskInstanceCriteria:
		return newTaskInstanceQuery(criteria)
	case history.HistoricVariableInstanceCriteria:
		return newVariableInstanceQuery(criteria)
	default:
		return nil
	}
}

// NewCount creates a count for the given criteria. If the criteria type is not supported, nil is returned.
func NewCount(criteria any) Count {
	switch criteria := criteria.(type) {
	case history.HistoricActivityInstanceCriteria:
		return func(ctx Context) (int, error) { return countValid(criteria, ctx.ActivityInstances().Count) }
	case history.HistoricActivityStatisticsCriteria:
		return func(ctx Context) (int, error) {
			if err := criteria.Validate(); err != nil {
				return -1, err
			}
			results, err := ctx.ActivityInstances().QueryStatistics(criteria)
			return len(results), err
		}
	case history.HistoricCaseInstanceCriteria:
		return func(ctx Context) (int, error) { return countValid(criteria, ctx.CaseInstances().Count) }
	case history.HistoricDetailCriteria:
		return func(ctx Context) (int, error) { return countValid(criteria, ctx.Details().Count) }
	case history.HistoricIncidentCriteria:
		return func(ctx Context) (int, error) { return countValid(criteria, ctx.Incidents().Count) }
	case history.HistoricJobLogCriteria:
		return func(ctx Context) (int, error) { return countValid(criteria, ctx.JobLogs().Count) }
	case history.HistoricProcessInstanceCriteria:
		return func(ctx Context) (int, error) { return countValid(criteria, ctx.ProcessInstances().Count) }
	case history.HistoricTaskInstanceCriteria:
		return func(ctx Context) (int, error) { return countValid(criteria, ctx.TaskInstances().Count) }
	case history.HistoricVariableInstanceCriteria:
		return func(ctx Context) (int, error) { return countValid(criteria, ctx.VariableInstances().Count) }
	default:
		return nil
	}
}

type Query func(Context, history.QueryOptions) ([]any, error)

type Count func(Context) (int, error)

// UnsupportedCriteriaError returns the error of a query or count with an unsupported criteria type.
func UnsupportedCriteriaError(criteria any) error {
	return history.Error{
		Type:   history.ErrorQuery,
		Title:  "invalid query",
		Detail: fmt.Sprintf("unsupported criteria type %T", criteria),
	}
}

type validatable interface {
	Validate() error
}

func countValid[C validatable](c C, count func(C) (int, error)) (int, error) {
	if err := c.Validate(); err != nil {
		return -1, err
	}
	return count(c)
}

func queryValid[C validatable, E any](c C, options history.QueryOptions, query func(C, history.QueryOptions) ([]E, error), convert func(E) any) ([]any, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	entities, err := query(c, options)
	if err != nil {
		return nil, err
	}

	results := make([]any, len(entities))
	for i, entity := range entities {
		results[i] = convert(entity)
	}
	return results, nil
}

func newActivityInstanceQuery(criteria history.HistoricActivityInstanceCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		return queryValid(criteria, options, ctx.ActivityInstances().Query, func(e *ActivityInstanceEntity) any {
			return e.HistoricActivityInstance()
		})
	}
}

func newActivityStatisticsQuery(criteria history.HistoricActivityStatisticsCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		if err := criteria.Validate(); err != nil {
			return nil, err
		}

		statistics, err := ctx.ActivityInstances().QueryStatistics(criteria)
		if err != nil {
			return nil, err
		}

		statistics = Page(statistics, options)

		results := make([]any, len(statistics))
		for i := range statistics {
			results[i] = statistics[i]
		}
		return results, nil
	}
}

func newCaseInstanceQuery(criteria history.HistoricCaseInstanceCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		return queryValid(criteria, options, ctx.CaseInstances().Query, func(e *CaseInstanceEntity) any {
			return e.HistoricCaseInstance()
		})
	}
}

func newDetailQuery(criteria history.HistoricDetailCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		valueOptions := ValueOptions{
			DisableBinaryFetching:              criteria.DisableBinaryFetching,
			DisableCustomObjectDeserialization: criteria.DisableCustomObjectDeserialization,
			ObjectDeserializers:                ctx.Options().ObjectDeserializers,
		}
		return queryValid(criteria, options, ctx.Details().Query, func(e *DetailEntity) any {
			return e.HistoricDetail(valueOptions)
		})
	}
}

func newIncidentQuery(criteria history.HistoricIncidentCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		return queryValid(criteria, options, ctx.Incidents().Query, func(e *IncidentEntity) any {
			return e.HistoricIncident()
		})
	}
}

func newJobLogQuery(criteria history.HistoricJobLogCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		return queryValid(criteria, options, ctx.JobLogs().Query, func(e *JobLogEntity) any {
			return e.HistoricJobLog()
		})
	}
}

func newProcessInstanceQuery(criteria history.HistoricProcessInstanceCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		return queryValid(criteria, options, ctx.ProcessInstances().Query, func(e *ProcessInstanceEntity) any {
			return e.HistoricProcessInstance()
		})
	}
}

func newTaskInstanceQuery(criteria history.HistoricTaskInstanceCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		return queryValid(criteria, options, ctx.TaskInstances().Query, func(e *TaskInstanceEntity) any {
			return e.HistoricTaskInstance()
		})
	}
}

func newVariableInstanceQuery(criteria history.HistoricVariableInstanceCriteria) Query {
	return func(ctx Context, options history.QueryOptions) ([]any, error) {
		valueOptions := ValueOptions{
			DisableBinaryFetching:              criteria.DisableBinaryFetching,
			DisableCustomObjectDeserialization: criteria.DisableCustomObjectDeserialization,
			ObjectDeserializers:                ctx.Options().ObjectDeserializers,
		}
		return queryValid(criteria, options, ctx.VariableInstances().Query, func(e *VariableInstanceEntity) any {
			return e.HistoricVariableInstance(valueOptions)
		})
	}
}

// Page applies offset and limit of the query options to a result slice.
func Page[T any](results []T, options history.QueryOptions) []T {
	if options.Offset > 0 {
		if options.Offset >= len(results) {
			return results[:0]
		}
		results = results[options.Offset:]
	}
	if options.Limit > 0 && options.Limit < len(results) {
		results = results[:options.Limit]
	}
	return results
}
