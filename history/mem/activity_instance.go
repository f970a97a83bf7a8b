package mem

import (
	"slices"
	"strings"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var activityInstanceComparators = map[string]comparator[internal.ActivityInstanceEntity]{
	"activityId": func(a, b *internal.ActivityInstanceEntity) int {
		return strings.Compare(a.ActivityId, b.ActivityId)
	},
	"activityInstanceId": func(a, b *internal.ActivityInstanceEntity) int {
		return strings.Compare(a.Id, b.Id)
	},
	"activityName": func(a, b *internal.ActivityInstanceEntity) int {
		return compareText(a.ActivityName, b.ActivityName)
	},
	"activityType": func(a, b *internal.ActivityInstanceEntity) int {
		return strings.Compare(a.ActivityType, b.ActivityType)
	},
	"durationInMillis": func(a, b *internal.ActivityInstanceEntity) int {
		return compareInt8(a.DurationInMillis, b.DurationInMillis)
	},
	"endTime": func(a, b *internal.ActivityInstanceEntity) int {
		return compareTimestamp(a.EndTime, b.EndTime)
	},
	"executionId": func(a, b *internal.ActivityInstanceEntity) int {
		return compareText(a.ExecutionId, b.ExecutionId)
	},
	"processDefinitionId": func(a, b *internal.ActivityInstanceEntity) int {
		return strings.Compare(a.ProcessDefinitionId, b.ProcessDefinitionId)
	},
	"processInstanceId": func(a, b *internal.ActivityInstanceEntity) int {
		return strings.Compare(a.ProcessInstanceId, b.ProcessInstanceId)
	},
	"sequenceCounter": func(a, b *internal.ActivityInstanceEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	},
	"startTime": func(a, b *internal.ActivityInstanceEntity) int {
		return compareTime(a.StartTime, b.StartTime)
	},
	"tenantId": func(a, b *internal.ActivityInstanceEntity) int {
		return compareText(a.TenantId, b.TenantId)
	},
}

type activityInstanceRepository struct {
	data *memData
}

func (r activityInstanceRepository) Insert(entity *internal.ActivityInstanceEntity) error {
	r.data.activityInstances = append(r.data.activityInstances, *entity)
	return nil
}

func (r activityInstanceRepository) Select(id string) (*internal.ActivityInstanceEntity, error) {
	for _, e := range r.data.activityInstances {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r activityInstanceRepository) SelectOpenByProcessInstance(processInstanceId string) ([]*internal.ActivityInstanceEntity, error) {
	var results []*internal.ActivityInstanceEntity
	for _, e := range r.data.activityInstances {
		if e.ProcessInstanceId == processInstanceId && !e.EndTime.Valid {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r activityInstanceRepository) Update(entity *internal.ActivityInstanceEntity) error {
	i := slices.IndexFunc(r.data.activityInstances, func(e internal.ActivityInstanceEntity) bool {
		return e.Id == entity.Id
	})
	if i == -1 {
		return pgx.ErrNoRows
	}
	r.data.activityInstances[i] = *entity
	return nil
}

func (r activityInstanceRepository) DeleteByOwners(owners internal.Owners) error {
	r.data.activityInstances = slices.DeleteFunc(r.data.activityInstances, func(e internal.ActivityInstanceEntity) bool {
		return owns(owners, pgtype.Text{String: e.ProcessInstanceId, Valid: true}, pgtype.Text{}, pgtype.Text{})
	})
	return nil
}

func (r activityInstanceRepository) Query(c history.HistoricActivityInstanceCriteria, o history.QueryOptions) ([]*internal.ActivityInstanceEntity, error) {
	var results []*internal.ActivityInstanceEntity
	for _, e := range r.data.activityInstances {
		if r.matches(c, &e) {
			results = append(results, &e)
		}
	}

	return sortAndPage(results, c.Sorting, activityInstanceComparators, func(e *internal.ActivityInstanceEntity) int64 {
		return e.SequenceCounter
	}, o), nil
}

func (r activityInstanceRepository) Count(c history.HistoricActivityInstanceCriteria) (int, error) {
	results, err := r.Query(c, history.QueryOptions{})
	return len(results), err
}

func (r activityInstanceRepository) QueryStatistics(c history.HistoricActivityStatisticsCriteria) ([]history.HistoricActivityStatistics, error) {
	return internal.AggregateActivityStatistics(c, internal.ActivityStatisticsSource{
		ActivityInstances: pointers(r.data.activityInstances),
		Incidents:         pointers(r.data.incidents),
		ProcessInstances:  pointers(r.data.processInstances),
	}), nil
}

func (r activityInstanceRepository) matches(c history.HistoricActivityInstanceCriteria, e *internal.ActivityInstanceEntity) bool {
	switch {
	case !matchString(c.ActivityInstanceId, e.Id):
		return false
	case !matchString(c.ActivityId, e.ActivityId):
		return false
	case !matchText(c.ActivityName, e.ActivityName):
		return false
	case !matchLike(c.ActivityNameLike, e.ActivityName):
		return false
	case !matchString(c.ActivityType, e.ActivityType):
		return false
	case !matchText(c.ExecutionId, e.ExecutionId):
		return false
	case !matchString(c.ProcessDefinitionId, e.ProcessDefinitionId):
		return false
	case !matchString(c.ProcessInstanceId, e.ProcessInstanceId):
		return false
	case !matchText(c.TaskAssignee, e.Assignee):
		return false
	case !matchTextIn(c.TenantIdIn, e.TenantId):
		return false
	}

	if c.Canceled && e.EndState != history.ActivityCanceled {
		return false
	}
	if c.CompleteScope && e.EndState != history.ActivityCompleteScope {
		return false
	}
	if c.Finished && !e.EndTime.Valid {
		return false
	}
	if c.Unfinished && e.EndTime.Valid {
		return false
	}

	return internal.InWindow(e.EndTime, c.FinishedAfter, c.FinishedBefore) &&
		matchTime(e.StartTime, c.StartedAfter, c.StartedBefore)
}
