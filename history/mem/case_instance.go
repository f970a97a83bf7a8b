package mem

import (
	"slices"
	"strings"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

var caseInstanceComparators = map[string]comparator[internal.CaseInstanceEntity]{
	"businessKey": func(a, b *internal.CaseInstanceEntity) int {
		return compareText(a.BusinessKey, b.BusinessKey)
	},
	"caseDefinitionId": func(a, b *internal.CaseInstanceEntity) int {
		return strings.Compare(a.CaseDefinitionId, b.CaseDefinitionId)
	},
	"caseInstanceId": func(a, b *internal.CaseInstanceEntity) int {
		return strings.Compare(a.Id, b.Id)
	},
	"closeTime": func(a, b *internal.CaseInstanceEntity) int {
		return compareTimestamp(a.CloseTime, b.CloseTime)
	},
	"createTime": func(a, b *internal.CaseInstanceEntity) int {
		return compareTime(a.CreateTime, b.CreateTime)
	},
	"durationInMillis": func(a, b *internal.CaseInstanceEntity) int {
		return compareInt8(a.DurationInMillis, b.DurationInMillis)
	},
	"sequenceCounter": func(a, b *internal.CaseInstanceEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	},
	"tenantId": func(a, b *internal.CaseInstanceEntity) int {
		return compareText(a.TenantId, b.TenantId)
	},
}

type caseInstanceRepository struct {
	data *memData
}

func (r caseInstanceRepository) Insert(entity *internal.CaseInstanceEntity) error {
	r.data.caseInstances = append(r.data.caseInstances, *entity)
	return nil
}

func (r caseInstanceRepository) Select(id string) (*internal.CaseInstanceEntity, error) {
	for _, e := range r.data.caseInstances {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r caseInstanceRepository) SelectBySuperProcessInstance(superProcessInstanceId string) ([]*internal.CaseInstanceEntity, error) {
	var results []*internal.CaseInstanceEntity
	for _, e := range r.data.caseInstances {
		if e.SuperProcessInstanceId.Valid && e.SuperProcessInstanceId.String == superProcessInstanceId {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r caseInstanceRepository) SelectClosedBefore(before time.Time, limit int) ([]*internal.CaseInstanceEntity, error) {
	var results []*internal.CaseInstanceEntity
	for _, e := range r.data.caseInstances {
		if e.State == history.CaseInstanceClosed && e.CloseTime.Valid && e.CloseTime.Time.Before(before) {
			results = append(results, &e)
		}
	}

	slices.SortFunc(results, func(a, b *internal.CaseInstanceEntity) int {
		if c := compareTimestamp(a.CloseTime, b.CloseTime); c != 0 {
			return c
		}
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	})

	return internal.Page(results, history.QueryOptions{Limit: limit}), nil
}

func (r caseInstanceRepository) Update(entity *internal.CaseInstanceEntity) error {
	i := slices.IndexFunc(r.data.caseInstances, func(e internal.CaseInstanceEntity) bool {
		return e.Id == entity.Id
	})
	if i == -1 {
		return pgx.ErrNoRows
	}
	r.data.caseInstances[i] = *entity
	return nil
}

func (r caseInstanceRepository) Delete(ids []string) error {
	r.data.caseInstances = slices.DeleteFunc(r.data.caseInstances, func(e internal.CaseInstanceEntity) bool {
		return slices.Contains(ids, e.Id)
	})
	return nil
}

func (r caseInstanceRepository) Query(c history.HistoricCaseInstanceCriteria, o history.QueryOptions) ([]*internal.CaseInstanceEntity, error) {
	var results []*internal.CaseInstanceEntity
	for _, e := range r.data.caseInstances {
		if r.matches(c, &e) {
			results = append(results, &e)
		}
	}

	return sortAndPage(results, c.Sorting, caseInstanceComparators, func(e *internal.CaseInstanceEntity) int64 {
		return e.SequenceCounter
	}, o), nil
}

func (r caseInstanceRepository) Count(c history.HistoricCaseInstanceCriteria) (int, error) {
	results, err := r.Query(c, history.QueryOptions{})
	return len(results), err
}

func (r caseInstanceRepository) matches(c history.HistoricCaseInstanceCriteria, e *internal.CaseInstanceEntity) bool {
	switch {
	case !matchString(c.CaseInstanceId, e.Id):
		return false
	case !matchIn(c.CaseInstanceIds, e.Id):
		return false
	case !matchString(c.CaseDefinitionId, e.CaseDefinitionId):
		return false
	case !matchString(c.CaseDefinitionKey, e.CaseDefinitionKey):
		return false
	case len(c.CaseDefinitionKeyNotIn) != 0 && slices.Contains(c.CaseDefinitionKeyNotIn, e.CaseDefinitionKey):
		return false
	case !matchText(c.BusinessKey, e.BusinessKey):
		return false
	case !matchLike(c.BusinessKeyLike, e.BusinessKey):
		return false
	case !matchTextIn(c.TenantIdIn, e.TenantId):
		return false
	case !matchText(c.SuperCaseInstanceId, e.SuperCaseInstanceId):
		return false
	case !matchText(c.SuperProcessInstanceId, e.SuperProcessInstanceId):
		return false
	}

	if c.NotClosed && e.State == history.CaseInstanceClosed {
		return false
	}
	if c.State != 0 && c.State != e.State {
		return false
	}

	if !internal.InWindow(e.CloseTime, c.ClosedAfter, c.ClosedBefore) {
		return false
	}
	if !matchTime(e.CreateTime, c.CreatedAfter, c.CreatedBefore) {
		return false
	}

	if c.SubCaseInstanceId != "" {
		sub := slices.IndexFunc(r.data.caseInstances, func(sub internal.CaseInstanceEntity) bool {
			return sub.Id == c.SubCaseInstanceId && sub.SuperCaseInstanceId.String == e.Id
		})
		if sub == -1 {
			return false
		}
	}
	if c.SubProcessInstanceId != "" {
		sub := slices.IndexFunc(r.data.processInstances, func(sub internal.ProcessInstanceEntity) bool {
			return sub.Id == c.SubProcessInstanceId && sub.SuperCaseInstanceId.String == e.Id
		})
		if sub == -1 {
			return false
		}
	}

	return true
}
