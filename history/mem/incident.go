package mem

import (
	"slices"
	"strings"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var incidentComparators = map[string]comparator[internal.IncidentEntity]{
	"activityId": func(a, b *internal.IncidentEntity) int {
		return compareText(a.ActivityId, b.ActivityId)
	},
	"causeIncidentId": func(a, b *internal.IncidentEntity) int {
		return strings.Compare(a.CauseIncidentId, b.CauseIncidentId)
	},
	"configuration": func(a, b *internal.IncidentEntity) int {
		return compareText(a.Configuration, b.Configuration)
	},
	"createTime": func(a, b *internal.IncidentEntity) int {
		return compareTime(a.CreateTime, b.CreateTime)
	},
	"endTime": func(a, b *internal.IncidentEntity) int {
		return compareTimestamp(a.EndTime, b.EndTime)
	},
	"executionId": func(a, b *internal.IncidentEntity) int {
		return compareText(a.ExecutionId, b.ExecutionId)
	},
	"incidentId": func(a, b *internal.IncidentEntity) int {
		return strings.Compare(a.Id, b.Id)
	},
	"incidentMessage": func(a, b *internal.IncidentEntity) int {
		return compareText(a.IncidentMessage, b.IncidentMessage)
	},
	"incidentState": func(a, b *internal.IncidentEntity) int {
		return compareInt64(int64(a.State), int64(b.State))
	},
	"incidentType": func(a, b *internal.IncidentEntity) int {
		return strings.Compare(a.IncidentType, b.IncidentType)
	},
	"processDefinitionId": func(a, b *internal.IncidentEntity) int {
		return compareText(a.ProcessDefinitionId, b.ProcessDefinitionId)
	},
	"processDefinitionKey": func(a, b *internal.IncidentEntity) int {
		return compareText(a.ProcessDefinitionKey, b.ProcessDefinitionKey)
	},
	"processInstanceId": func(a, b *internal.IncidentEntity) int {
		return compareText(a.ProcessInstanceId, b.ProcessInstanceId)
	},
	"rootCauseIncidentId": func(a, b *internal.IncidentEntity) int {
		return strings.Compare(a.RootCauseIncidentId, b.RootCauseIncidentId)
	},
	"sequenceCounter": func(a, b *internal.IncidentEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	},
	"tenantId": func(a, b *internal.IncidentEntity) int {
		return compareText(a.TenantId, b.TenantId)
	},
}

type incidentRepository struct {
	data *memData
}

func (r incidentRepository) Insert(entity *internal.IncidentEntity) error {
	r.data.incidents = append(r.data.incidents, *entity)
	return nil
}

func (r incidentRepository) Select(id string) (*internal.IncidentEntity, error) {
	for _, e := range r.data.incidents {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r incidentRepository) SelectOpenByProcessInstance(processInstanceId string) ([]*internal.IncidentEntity, error) {
	var results []*internal.IncidentEntity
	for _, e := range r.data.incidents {
		if e.ProcessInstanceId.String == processInstanceId && e.State == history.IncidentOpen {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r incidentRepository) Update(entity *internal.IncidentEntity) error {
	i := slices.IndexFunc(r.data.incidents, func(e internal.IncidentEntity) bool {
		return e.Id == entity.Id
	})
	if i == -1 {
		return pgx.ErrNoRows
	}
	r.data.incidents[i] = *entity
	return nil
}

func (r incidentRepository) DeleteByOwners(owners internal.Owners) error {
	r.data.incidents = slices.DeleteFunc(r.data.incidents, func(e internal.IncidentEntity) bool {
		return owns(owners, e.ProcessInstanceId, pgtype.Text{}, pgtype.Text{})
	})
	return nil
}

func (r incidentRepository) Query(c history.HistoricIncidentCriteria, o history.QueryOptions) ([]*internal.IncidentEntity, error) {
	var results []*internal.IncidentEntity
	for _, e := range r.data.incidents {
		if r.matches(c, &e) {
			results = append(results, &e)
		}
	}

	return sortAndPage(results, c.Sorting, incidentComparators, func(e *internal.IncidentEntity) int64 {
		return e.SequenceCounter
	}, o), nil
}

func (r incidentRepository) Count(c history.HistoricIncidentCriteria) (int, error) {
	results, err := r.Query(c, history.QueryOptions{})
	return len(results), err
}

func (r incidentRepository) matches(c history.HistoricIncidentCriteria, e *internal.IncidentEntity) bool {
	switch {
	case !matchString(c.IncidentId, e.Id):
		return false
	case !matchText(c.IncidentMessage, e.IncidentMessage):
		return false
	case !matchLike(c.IncidentMessageLike, e.IncidentMessage):
		return false
	case !matchString(c.IncidentType, e.IncidentType):
		return false
	case !matchText(c.ActivityId, e.ActivityId):
		return false
	case !matchString(c.CauseIncidentId, e.CauseIncidentId):
		return false
	case !matchText(c.Configuration, e.Configuration):
		return false
	case !matchText(c.ExecutionId, e.ExecutionId):
		return false
	case !matchText(c.FailedActivityId, e.FailedActivityId):
		return false
	case !matchTextIn(c.JobDefinitionIdIn, e.JobDefinitionId):
		return false
	case !matchText(c.ProcessDefinitionId, e.ProcessDefinitionId):
		return false
	case !matchText(c.ProcessDefinitionKey, e.ProcessDefinitionKey):
		return false
	case !matchTextIn(c.ProcessDefinitionKeyIn, e.ProcessDefinitionKey):
		return false
	case !matchText(c.ProcessInstanceId, e.ProcessInstanceId):
		return false
	case !matchString(c.RootCauseIncidentId, e.RootCauseIncidentId):
		return false
	case !matchTextIn(c.TenantIdIn, e.TenantId):
		return false
	}

	if c.State != 0 && c.State != e.State {
		return false
	}

	return matchTime(e.CreateTime, c.CreateTimeAfter, c.CreateTimeBefore) &&
		internal.InWindow(e.EndTime, c.EndTimeAfter, c.EndTimeBefore)
}
