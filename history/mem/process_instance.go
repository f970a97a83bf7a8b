package mem

import (
	"slices"
	"strings"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

var processInstanceComparators = map[string]comparator[internal.ProcessInstanceEntity]{
	"businessKey": func(a, b *internal.ProcessInstanceEntity) int {
		return compareText(a.BusinessKey, b.BusinessKey)
	},
	"durationInMillis": func(a, b *internal.ProcessInstanceEntity) int {
		return compareInt8(a.DurationInMillis, b.DurationInMillis)
	},
	"endTime": func(a, b *internal.ProcessInstanceEntity) int {
		return compareTimestamp(a.EndTime, b.EndTime)
	},
	"processDefinitionId": func(a, b *internal.ProcessInstanceEntity) int {
		return strings.Compare(a.ProcessDefinitionId, b.ProcessDefinitionId)
	},
	"processDefinitionKey": func(a, b *internal.ProcessInstanceEntity) int {
		return strings.Compare(a.ProcessDefinitionKey, b.ProcessDefinitionKey)
	},
	"processInstanceId": func(a, b *internal.ProcessInstanceEntity) int {
		return strings.Compare(a.Id, b.Id)
	},
	"sequenceCounter": func(a, b *internal.ProcessInstanceEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	},
	"startTime": func(a, b *internal.ProcessInstanceEntity) int {
		return compareTime(a.StartTime, b.StartTime)
	},
	"tenantId": func(a, b *internal.ProcessInstanceEntity) int {
		return compareText(a.TenantId, b.TenantId)
	},
}

type processInstanceRepository struct {
	data *memData
}

func (r processInstanceRepository) Insert(entity *internal.ProcessInstanceEntity) error {
	r.data.processInstances = append(r.data.processInstances, *entity)
	return nil
}

func (r processInstanceRepository) Select(id string) (*internal.ProcessInstanceEntity, error) {
	for _, e := range r.data.processInstances {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r processInstanceRepository) SelectBySuperProcessInstance(superProcessInstanceId string) ([]*internal.ProcessInstanceEntity, error) {
	var results []*internal.ProcessInstanceEntity
	for _, e := range r.data.processInstances {
		if e.SuperProcessInstanceId.Valid && e.SuperProcessInstanceId.String == superProcessInstanceId {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r processInstanceRepository) SelectEndedRoots(before time.Time, limit int) ([]*internal.ProcessInstanceEntity, error) {
	var results []*internal.ProcessInstanceEntity
	for _, e := range r.data.processInstances {
		if !e.SuperProcessInstanceId.Valid && e.EndTime.Valid && e.EndTime.Time.Before(before) {
			results = append(results, &e)
		}
	}

	slices.SortFunc(results, func(a, b *internal.ProcessInstanceEntity) int {
		if c := compareTimestamp(a.EndTime, b.EndTime); c != 0 {
			return c
		}
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	})

	return internal.Page(results, history.QueryOptions{Limit: limit}), nil
}

func (r processInstanceRepository) Update(entity *internal.ProcessInstanceEntity) error {
	i := slices.IndexFunc(r.data.processInstances, func(e internal.ProcessInstanceEntity) bool {
		return e.Id == entity.Id
	})
	if i == -1 {
		return pgx.ErrNoRows
	}
	r.data.processInstances[i] = *entity
	return nil
}

func (r processInstanceRepository) Delete(ids []string) error {
	r.data.processInstances = slices.DeleteFunc(r.data.processInstances, func(e internal.ProcessInstanceEntity) bool {
		return slices.Contains(ids, e.Id)
	})
	return nil
}

func (r processInstanceRepository) Query(c history.HistoricProcessInstanceCriteria, o history.QueryOptions) ([]*internal.ProcessInstanceEntity, error) {
	var results []*internal.ProcessInstanceEntity
	for _, e := range r.data.processInstances {
		if r.matches(c, &e) {
			results = append(results, &e)
		}
	}

	return sortAndPage(results, c.Sorting, processInstanceComparators, func(e *internal.ProcessInstanceEntity) int64 {
		return e.SequenceCounter
	}, o), nil
}

func (r processInstanceRepository) Count(c history.HistoricProcessInstanceCriteria) (int, error) {
	results, err := r.Query(c, history.QueryOptions{})
	return len(results), err
}

func (r processInstanceRepository) matches(c history.HistoricProcessInstanceCriteria, e *internal.ProcessInstanceEntity) bool {
	switch {
	case !matchString(c.ProcessInstanceId, e.Id):
		return false
	case !matchIn(c.ProcessInstanceIds, e.Id):
		return false
	case len(c.ProcessInstanceIdNotIn) != 0 && slices.Contains(c.ProcessInstanceIdNotIn, e.Id):
		return false
	case !matchString(c.ProcessDefinitionId, e.ProcessDefinitionId):
		return false
	case !matchString(c.ProcessDefinitionKey, e.ProcessDefinitionKey):
		return false
	case !matchIn(c.ProcessDefinitionKeyIn, e.ProcessDefinitionKey):
		return false
	case len(c.ProcessDefinitionKeyNotIn) != 0 && slices.Contains(c.ProcessDefinitionKeyNotIn, e.ProcessDefinitionKey):
		return false
	case !matchText(c.BusinessKey, e.BusinessKey):
		return false
	case !matchTextIn(c.BusinessKeyIn, e.BusinessKey):
		return false
	case !matchLike(c.BusinessKeyLike, e.BusinessKey):
		return false
	case !matchTextIn(c.TenantIdIn, e.TenantId):
		return false
	case !matchText(c.CaseInstanceId, e.CaseInstanceId):
		return false
	case !matchString(c.RootProcessInstanceId, e.RootProcessInstanceId):
		return false
	case !matchText(c.SuperCaseInstanceId, e.SuperCaseInstanceId):
		return false
	case !matchText(c.SuperProcessInstanceId, e.SuperProcessInstanceId):
		return false
	}

	if c.Deleted && !e.DeleteReason.Valid {
		return false
	}
	if c.Finished && !e.EndTime.Valid {
		return false
	}
	if c.Unfinished && e.EndTime.Valid {
		return false
	}

	if !internal.InWindow(e.EndTime, c.FinishedAfter, c.FinishedBefore) {
		return false
	}
	if !matchTime(e.StartTime, c.StartedAfter, c.StartedBefore) {
		return false
	}

	if c.SubProcessInstanceId != "" {
		sub := slices.IndexFunc(r.data.processInstances, func(sub internal.ProcessInstanceEntity) bool {
			return sub.Id == c.SubProcessInstanceId && sub.SuperProcessInstanceId.String == e.Id
		})
		if sub == -1 {
			return false
		}
	}

	if len(c.ActiveActivityIdIn) != 0 || len(c.ExecutedActivityIdIn) != 0 {
		active := len(c.ActiveActivityIdIn) == 0
		executed := len(c.ExecutedActivityIdIn) == 0
		for _, a := range r.data.activityInstances {
			if a.ProcessInstanceId != e.Id {
				continue
			}
			if !a.EndTime.Valid && slices.Contains(c.ActiveActivityIdIn, a.ActivityId) {
				active = true
			}
			if a.EndTime.Valid && slices.Contains(c.ExecutedActivityIdIn, a.ActivityId) {
				executed = true
			}
		}
		if !active || !executed {
			return false
		}
	}

	if c.WithIncidents || c.IncidentMessage != "" || c.IncidentMessageLike != "" || c.IncidentStatus != 0 || c.IncidentType != "" {
		incident := slices.IndexFunc(r.data.incidents, func(i internal.IncidentEntity) bool {
			return i.ProcessInstanceId.String == e.Id &&
				matchText(c.IncidentMessage, i.IncidentMessage) &&
				matchLike(c.IncidentMessageLike, i.IncidentMessage) &&
				(c.IncidentStatus == 0 || c.IncidentStatus == i.State) &&
				matchString(c.IncidentType, i.IncidentType)
		})
		if incident == -1 {
			return false
		}
	}

	return true
}
