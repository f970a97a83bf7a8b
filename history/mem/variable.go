package mem

import (
	"slices"
	"strings"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

var variableInstanceComparators = map[string]comparator[internal.VariableInstanceEntity]{
	"createTime": func(a, b *internal.VariableInstanceEntity) int {
		return compareTime(a.CreateTime, b.CreateTime)
	},
	"processInstanceId": func(a, b *internal.VariableInstanceEntity) int {
		return compareText(a.ProcessInstanceId, b.ProcessInstanceId)
	},
	"revision": func(a, b *internal.VariableInstanceEntity) int {
		return compareInt64(int64(a.Revision), int64(b.Revision))
	},
	"sequenceCounter": func(a, b *internal.VariableInstanceEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	},
	"tenantId": func(a, b *internal.VariableInstanceEntity) int {
		return compareText(a.TenantId, b.TenantId)
	},
	"variableInstanceId": func(a, b *internal.VariableInstanceEntity) int {
		return strings.Compare(a.Id, b.Id)
	},
	"variableName": func(a, b *internal.VariableInstanceEntity) int {
		return strings.Compare(a.Name, b.Name)
	},
}

type variableInstanceRepository struct {
	data *memData
}

func (r variableInstanceRepository) Insert(entity *internal.VariableInstanceEntity) error {
	r.data.variableInstances = append(r.data.variableInstances, *entity)
	return nil
}

func (r variableInstanceRepository) Select(id string) (*internal.VariableInstanceEntity, error) {
	for _, e := range r.data.variableInstances {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r variableInstanceRepository) SelectByNameAndScope(name string, scope history.VariableScope) (*internal.VariableInstanceEntity, error) {
	for _, e := range r.data.variableInstances {
		if e.Name == name && e.State != history.VariableDeleted && e.Scope() == scope {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r variableInstanceRepository) Update(entity *internal.VariableInstanceEntity) error {
	i := slices.IndexFunc(r.data.variableInstances, func(e internal.VariableInstanceEntity) bool {
		return e.Id == entity.Id
	})
	if i == -1 {
		return pgx.ErrNoRows
	}
	r.data.variableInstances[i] = *entity
	return nil
}

func (r variableInstanceRepository) Delete(id string) error {
	r.data.variableInstances = slices.DeleteFunc(r.data.variableInstances, func(e internal.VariableInstanceEntity) bool {
		return e.Id == id
	})
	return nil
}

func (r variableInstanceRepository) DeleteByOwners(owners internal.Owners) error {
	r.data.variableInstances = slices.DeleteFunc(r.data.variableInstances, func(e internal.VariableInstanceEntity) bool {
		return owns(owners, e.ProcessInstanceId, e.CaseInstanceId, e.TaskId)
	})
	return nil
}

func (r variableInstanceRepository) Query(c history.HistoricVariableInstanceCriteria, o history.QueryOptions) ([]*internal.VariableInstanceEntity, error) {
	var results []*internal.VariableInstanceEntity
	for _, e := range r.data.variableInstances {
		if r.matches(c, &e) {
			results = append(results, &e)
		}
	}

	return sortAndPage(results, c.Sorting, variableInstanceComparators, func(e *internal.VariableInstanceEntity) int64 {
		return e.SequenceCounter
	}, o), nil
}

func (r variableInstanceRepository) Count(c history.HistoricVariableInstanceCriteria) (int, error) {
	results, err := r.Query(c, history.QueryOptions{})
	return len(results), err
}

func (r variableInstanceRepository) matches(c history.HistoricVariableInstanceCriteria, e *internal.VariableInstanceEntity) bool {
	switch {
	case !matchString(c.VariableInstanceId, e.Id):
		return false
	case !matchString(c.VariableName, e.Name):
		return false
	case !matchIn(c.VariableNameIn, e.Name):
		return false
	case c.VariableNameLike != "" && !like(c.VariableNameLike, e.Name):
		return false
	case !matchValueTypeIn(c.VariableTypeIn, e.Value.Type):
		return false
	case !matchText(c.VariableValue, e.Value.Text):
		return false
	case !matchTextIn(c.TenantIdIn, e.TenantId):
		return false
	case !matchTextIn(c.ActivityInstanceIdIn, e.ActivityInstanceId):
		return false
	case !matchTextIn(c.CaseExecutionIdIn, e.CaseExecutionId):
		return false
	case !matchText(c.CaseInstanceId, e.CaseInstanceId):
		return false
	case !matchTextIn(c.ExecutionIdIn, e.ExecutionId):
		return false
	case !matchText(c.ProcessInstanceId, e.ProcessInstanceId):
		return false
	case !matchTextIn(c.ProcessInstanceIdIn, e.ProcessInstanceId):
		return false
	case !matchTextIn(c.TaskIdIn, e.TaskId):
		return false
	}

	return c.IncludeDeleted || e.State != history.VariableDeleted
}

var detailComparators = map[string]comparator[internal.DetailEntity]{
	"processInstanceId": func(a, b *internal.DetailEntity) int {
		return compareText(a.ProcessInstanceId, b.ProcessInstanceId)
	},
	"revision": func(a, b *internal.DetailEntity) int {
		return compareInt64(int64(a.Revision), int64(b.Revision))
	},
	"sequenceCounter": func(a, b *internal.DetailEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	},
	"tenantId": func(a, b *internal.DetailEntity) int {
		return compareText(a.TenantId, b.TenantId)
	},
	"time": func(a, b *internal.DetailEntity) int {
		return compareTime(a.Time, b.Time)
	},
	"variableName": func(a, b *internal.DetailEntity) int {
		return strings.Compare(a.VariableName, b.VariableName)
	},
	"variableType": func(a, b *internal.DetailEntity) int {
		return strings.Compare(string(a.Value.Type), string(b.Value.Type))
	},
}

type detailRepository struct {
	data *memData
}

func (r detailRepository) Insert(entity *internal.DetailEntity) error {
	r.data.details = append(r.data.details, *entity)
	return nil
}

func (r detailRepository) Delete(id string) error {
	r.data.details = slices.DeleteFunc(r.data.details, func(e internal.DetailEntity) bool {
		return e.Id == id
	})
	return nil
}

func (r detailRepository) DeleteByVariableInstance(variableInstanceId string) error {
	r.data.details = slices.DeleteFunc(r.data.details, func(e internal.DetailEntity) bool {
		return e.VariableInstanceId == variableInstanceId
	})
	return nil
}

func (r detailRepository) DeleteByOwners(owners internal.Owners) error {
	r.data.details = slices.DeleteFunc(r.data.details, func(e internal.DetailEntity) bool {
		return owns(owners, e.ProcessInstanceId, e.CaseInstanceId, e.TaskId)
	})
	return nil
}

func (r detailRepository) Query(c history.HistoricDetailCriteria, o history.QueryOptions) ([]*internal.DetailEntity, error) {
	var results []*internal.DetailEntity
	for _, e := range r.data.details {
		if r.matches(c, &e) {
			results = append(results, &e)
		}
	}

	return sortAndPage(results, c.Sorting, detailComparators, func(e *internal.DetailEntity) int64 {
		return e.SequenceCounter
	}, o), nil
}

func (r detailRepository) Count(c history.HistoricDetailCriteria) (int, error) {
	results, err := r.Query(c, history.QueryOptions{})
	return len(results), err
}

func (r detailRepository) matches(c history.HistoricDetailCriteria, e *internal.DetailEntity) bool {
	switch {
	case !matchString(c.DetailId, e.Id):
		return false
	case !matchString(c.VariableInstanceId, e.VariableInstanceId):
		return false
	case c.VariableNameLike != "" && !like(c.VariableNameLike, e.VariableName):
		return false
	case !matchValueTypeIn(c.VariableTypeIn, e.Value.Type):
		return false
	case !matchTextIn(c.TenantIdIn, e.TenantId):
		return false
	case !matchText(c.ActivityInstanceId, e.ActivityInstanceId):
		return false
	case !matchText(c.CaseExecutionId, e.CaseExecutionId):
		return false
	case !matchText(c.CaseInstanceId, e.CaseInstanceId):
		return false
	case !matchText(c.ExecutionId, e.ExecutionId):
		return false
	case !matchText(c.ProcessInstanceId, e.ProcessInstanceId):
		return false
	case !matchTextIn(c.ProcessInstanceIdIn, e.ProcessInstanceId):
		return false
	case !matchText(c.TaskId, e.TaskId):
		return false
	}

	return matchTime(e.Time, c.OccurredAfter, c.OccurredBefore)
}
