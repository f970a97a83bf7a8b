package history

import (
	"context"
	"time"
)

// HistoricActivityStatistics are the aggregated counts of a single activity of a process definition.
//
// Finished, Canceled, CompleteScope and the incident counts are only calculated, when requested.
type HistoricActivityStatistics struct {
	Id string `json:"id"` // Activity ID.

	Instances     int64 `json:"instances"`     // Number of running activity instances.
	Finished      int64 `json:"finished"`      // Number of ended activity instances.
	Canceled      int64 `json:"canceled"`      // Number of canceled activity instances.
	CompleteScope int64 `json:"completeScope"` // Number of activity instances, which completed their scope.

	OpenIncidents     int64 `json:"openIncidents"`
	ResolvedIncidents int64 `json:"resolvedIncidents"`
	DeletedIncidents  int64 `json:"deletedIncidents"`
}

var HistoricActivityStatisticsSortProperties = []string{
	"activityId",
}

type HistoricActivityStatisticsCriteria struct {
	ProcessDefinitionId string   `json:"processDefinitionId" validate:"required"`
	ProcessInstanceIdIn []string `json:"processInstanceIdIn,omitempty"`

	IncludeCanceled      bool `json:"includeCanceled,omitempty"`
	IncludeCompleteScope bool `json:"includeCompleteScope,omitempty"`
	IncludeFinished      bool `json:"includeFinished,omitempty"`
	IncludeIncidents     bool `json:"includeIncidents,omitempty"`

	// Time windows, applied to the start and end time of the owning process instance.
	FinishedAfter  *time.Time `json:"finishedAfter,omitempty"`
	FinishedBefore *time.Time `json:"finishedBefore,omitempty"`
	StartedAfter   *time.Time `json:"startedAfter,omitempty"`
	StartedBefore  *time.Time `json:"startedBefore,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricActivityStatisticsCriteria) Validate() error {
	if c.ProcessDefinitionId == "" {
		return usageError("process definition ID is empty")
	}
	return validateSorting(c.Sorting, HistoricActivityStatisticsSortProperties)
}

// HistoricActivityStatisticsQuery is an immutable query for activity statistics of a process definition.
// Results are ordered by activity ID.
type HistoricActivityStatisticsQuery struct {
	e   QueryExecutor
	c   HistoricActivityStatisticsCriteria
	err error
}

func (q HistoricActivityStatisticsQuery) FinishedAfter(v time.Time) HistoricActivityStatisticsQuery {
	q.c.FinishedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("finished after", v))
	return q
}

func (q HistoricActivityStatisticsQuery) FinishedBefore(v time.Time) HistoricActivityStatisticsQuery {
	q.c.FinishedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("finished before", v))
	return q
}

func (q HistoricActivityStatisticsQuery) IncludeCanceled() HistoricActivityStatisticsQuery {
	q.c.IncludeCanceled = true
	return q
}

func (q HistoricActivityStatisticsQuery) IncludeCompleteScope() HistoricActivityStatisticsQuery {
	q.c.IncludeCompleteScope = true
	return q
}

func (q HistoricActivityStatisticsQuery) IncludeFinished() HistoricActivityStatisticsQuery {
	q.c.IncludeFinished = true
	return q
}

func (q HistoricActivityStatisticsQuery) IncludeIncidents() HistoricActivityStatisticsQuery {
	q.c.IncludeIncidents = true
	return q
}

func (q HistoricActivityStatisticsQuery) ProcessInstanceIdIn(v ...string) HistoricActivityStatisticsQuery {
	q.c.ProcessInstanceIdIn = v
	q.err = firstError(q.err, requireValues("process instance IDs", v))
	return q
}

func (q HistoricActivityStatisticsQuery) StartedAfter(v time.Time) HistoricActivityStatisticsQuery {
	q.c.StartedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("started after", v))
	return q
}

func (q HistoricActivityStatisticsQuery) StartedBefore(v time.Time) HistoricActivityStatisticsQuery {
	q.c.StartedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("started before", v))
	return q
}

func (q HistoricActivityStatisticsQuery) OrderByActivityId() Ordering[HistoricActivityStatisticsQuery] {
	return newOrdering(func(d SortDirection) HistoricActivityStatisticsQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, "activityId", d)
		return q
	})
}

func (q HistoricActivityStatisticsQuery) Criteria() HistoricActivityStatisticsCriteria {
	return q.c
}

func (q HistoricActivityStatisticsQuery) Err() error {
	return q.err
}

func (q HistoricActivityStatisticsQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricActivityStatisticsQuery) List(ctx context.Context) ([]HistoricActivityStatistics, error) {
	return executeList[HistoricActivityStatistics](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricActivityStatisticsQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricActivityStatistics, error) {
	return executeListPage[HistoricActivityStatistics](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricActivityStatisticsQuery) SingleResult(ctx context.Context) (*HistoricActivityStatistics, error) {
	return executeSingleResult[HistoricActivityStatistics](ctx, q.e, q.c, q.err)
}
