package client

import (
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/common"
)

// Query executes the criteria via the query endpoint of its type.
// If options specify no limit, the default query limit of the server is applied.
func (c *client) Query(ctx context.Context, criteria any, options history.QueryOptions) ([]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	switch criteria.(type) {
	case history.HistoricActivityInstanceCriteria:
		return query[history.HistoricActivityInstance](ctx, c, common.PathHistoricActivityInstancesQuery, criteria, options)
	case history.HistoricActivityStatisticsCriteria:
		return query[history.HistoricActivityStatistics](ctx, c, common.PathHistoricActivityStatisticsQuery, criteria, options)
	case history.HistoricCaseInstanceCriteria:
		return query[history.HistoricCaseInstance](ctx, c, common.PathHistoricCaseInstancesQuery, criteria, options)
	case history.HistoricDetailCriteria:
		return query[history.HistoricDetail](ctx, c, common.PathHistoricDetailsQuery, criteria, options)
	case history.HistoricIncidentCriteria:
		return query[history.HistoricIncident](ctx, c, common.PathHistoricIncidentsQuery, criteria, options)
	case history.HistoricJobLogCriteria:
		return query[history.HistoricJobLog](ctx, c, common.PathHistoricJobLogsQuery, criteria, options)
	case history.HistoricProcessInstanceCriteria:
		return query[history.HistoricProcessInstance](ctx, c, common.PathHistoricProcessInstancesQuery, criteria, options)
	case history.HistoricTaskInstanceCriteria:
		return query[history.HistoricTaskInstance](ctx, c, common.PathHistoricTaskInstancesQuery, criteria, options)
	case history.HistoricVariableInstanceCriteria:
		return query[history.HistoricVariableInstance](ctx, c, common.PathHistoricVariableInstancesQuery, criteria, options)
	default:
		return nil, unsupportedCriteriaError(criteria)
	}
}

func (c *client) Count(ctx context.Context, criteria any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	var path string
	switch criteria.(type) {
	case history.HistoricActivityInstanceCriteria:
		path = common.PathHistoricActivityInstancesCount
	case history.HistoricActivityStatisticsCriteria:
		path = common.PathHistoricActivityStatisticsCount
	case history.HistoricCaseInstanceCriteria:
		path = common.PathHistoricCaseInstancesCount
	case history.HistoricDetailCriteria:
		path = common.PathHistoricDetailsCount
	case history.HistoricIncidentCriteria:
		path = common.PathHistoricIncidentsCount
	case history.HistoricJobLogCriteria:
		path = common.PathHistoricJobLogsCount
	case history.HistoricProcessInstanceCriteria:
		path = common.PathHistoricProcessInstancesCount
	case history.HistoricTaskInstanceCriteria:
		path = common.PathHistoricTaskInstancesCount
	case history.HistoricVariableInstanceCriteria:
		path = common.PathHistoricVariableInstancesCount
	default:
		return -1, unsupportedCriteriaError(criteria)
	}

	var resBody common.CountRes
	if err := c.doPost(ctx, path, criteria, &resBody); err != nil {
		return -1, err
	}
	return resBody.Count, nil
}

func query[T any](ctx context.Context, c *client, path string, criteria any, options history.QueryOptions) ([]any, error) {
	var resBody common.QueryRes[T]
	if err := c.doPost(ctx, path+encodeQueryOptions(options), criteria, &resBody); err != nil {
		return nil, err
	}

	results := make([]any, len(resBody.Results))
	for i, result := range resBody.Results {
		results[i] = result
	}
	return results, nil
}

func unsupportedCriteriaError(criteria any) error {
	return history.Error{
		Type:   history.ErrorQuery,
		Title:  "failed to execute query",
		Detail: fmt.Sprintf("unsupported criteria type %T", criteria),
	}
}
