package mem

import (
	"slices"
	"strings"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var taskInstanceComparators = map[string]comparator[internal.TaskInstanceEntity]{
	"caseDefinitionId": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.CaseDefinitionId, b.CaseDefinitionId)
	},
	"caseExecutionId": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.CaseExecutionId, b.CaseExecutionId)
	},
	"caseInstanceId": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.CaseInstanceId, b.CaseInstanceId)
	},
	"deleteReason": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.DeleteReason, b.DeleteReason)
	},
	"durationInMillis": func(a, b *internal.TaskInstanceEntity) int {
		return compareInt8(a.DurationInMillis, b.DurationInMillis)
	},
	"endTime": func(a, b *internal.TaskInstanceEntity) int {
		return compareTimestamp(a.EndTime, b.EndTime)
	},
	"executionId": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.ExecutionId, b.ExecutionId)
	},
	"processDefinitionId": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.ProcessDefinitionId, b.ProcessDefinitionId)
	},
	"processInstanceId": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.ProcessInstanceId, b.ProcessInstanceId)
	},
	"sequenceCounter": func(a, b *internal.TaskInstanceEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	},
	"startTime": func(a, b *internal.TaskInstanceEntity) int {
		return compareTime(a.StartTime, b.StartTime)
	},
	"taskAssignee": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.Assignee, b.Assignee)
	},
	"taskDefinitionKey": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.TaskDefinitionKey, b.TaskDefinitionKey)
	},
	"taskDescription": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.Description, b.Description)
	},
	"taskDueDate": func(a, b *internal.TaskInstanceEntity) int {
		return compareTimestamp(a.DueDate, b.DueDate)
	},
	"taskFollowUpDate": func(a, b *internal.TaskInstanceEntity) int {
		return compareTimestamp(a.FollowUpDate, b.FollowUpDate)
	},
	"taskId": func(a, b *internal.TaskInstanceEntity) int {
		return strings.Compare(a.Id, b.Id)
	},
	"taskName": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.Name, b.Name)
	},
	"taskOwner": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.Owner, b.Owner)
	},
	"taskPriority": func(a, b *internal.TaskInstanceEntity) int {
		return compareInt64(int64(a.Priority), int64(b.Priority))
	},
	"tenantId": func(a, b *internal.TaskInstanceEntity) int {
		return compareText(a.TenantId, b.TenantId)
	},
}

type taskInstanceRepository struct {
	data *memData
}

func (r taskInstanceRepository) Insert(entity *internal.TaskInstanceEntity) error {
	r.data.taskInstances = append(r.data.taskInstances, *entity)
	return nil
}

func (r taskInstanceRepository) Select(id string) (*internal.TaskInstanceEntity, error) {
	for _, e := range r.data.taskInstances {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r taskInstanceRepository) SelectOpenByProcessInstance(processInstanceId string) ([]*internal.TaskInstanceEntity, error) {
	var results []*internal.TaskInstanceEntity
	for _, e := range r.data.taskInstances {
		if e.ProcessInstanceId.String == processInstanceId && !e.State.IsTerminal() {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r taskInstanceRepository) Update(entity *internal.TaskInstanceEntity) error {
	i := slices.IndexFunc(r.data.taskInstances, func(e internal.TaskInstanceEntity) bool {
		return e.Id == entity.Id
	})
	if i == -1 {
		return pgx.ErrNoRows
	}
	r.data.taskInstances[i] = *entity
	return nil
}

func (r taskInstanceRepository) Delete(id string) error {
	r.data.taskInstances = slices.DeleteFunc(r.data.taskInstances, func(e internal.TaskInstanceEntity) bool {
		return e.Id == id
	})
	return nil
}

func (r taskInstanceRepository) DeleteByOwners(owners internal.Owners) error {
	r.data.taskInstances = slices.DeleteFunc(r.data.taskInstances, func(e internal.TaskInstanceEntity) bool {
		return owns(owners, e.ProcessInstanceId, e.CaseInstanceId, pgtype.Text{String: e.Id, Valid: true})
	})
	return nil
}

func (r taskInstanceRepository) Query(c history.HistoricTaskInstanceCriteria, o history.QueryOptions) ([]*internal.TaskInstanceEntity, error) {
	var results []*internal.TaskInstanceEntity
	for _, e := range r.data.taskInstances {
		if r.matches(c, &e) {
			results = append(results, &e)
		}
	}

	return sortAndPage(results, c.Sorting, taskInstanceComparators, func(e *internal.TaskInstanceEntity) int64 {
		return e.SequenceCounter
	}, o), nil
}

func (r taskInstanceRepository) Count(c history.HistoricTaskInstanceCriteria) (int, error) {
	results, err := r.Query(c, history.QueryOptions{})
	return len(results), err
}

func (r taskInstanceRepository) matches(c history.HistoricTaskInstanceCriteria, e *internal.TaskInstanceEntity) bool {
	switch {
	case !matchString(c.TaskId, e.Id):
		return false
	case !matchText(c.TaskAssignee, e.Assignee):
		return false
	case !matchLike(c.TaskAssigneeLike, e.Assignee):
		return false
	case !matchText(c.TaskDefinitionKey, e.TaskDefinitionKey):
		return false
	case !matchTextIn(c.TaskDefinitionKeyIn, e.TaskDefinitionKey):
		return false
	case !matchText(c.TaskDeleteReason, e.DeleteReason):
		return false
	case !matchLike(c.TaskDeleteReasonLike, e.DeleteReason):
		return false
	case !matchText(c.TaskDescription, e.Description):
		return false
	case !matchLike(c.TaskDescriptionLike, e.Description):
		return false
	case !matchText(c.TaskName, e.Name):
		return false
	case !matchLike(c.TaskNameLike, e.Name):
		return false
	case !matchText(c.TaskOwner, e.Owner):
		return false
	case !matchLike(c.TaskOwnerLike, e.Owner):
		return false
	case !matchTextIn(c.TenantIdIn, e.TenantId):
		return false
	case !matchTextIn(c.ActivityInstanceIdIn, e.ActivityInstanceId):
		return false
	case !matchText(c.ExecutionId, e.ExecutionId):
		return false
	case !matchText(c.ProcessDefinitionId, e.ProcessDefinitionId):
		return false
	case !matchText(c.ProcessDefinitionKey, e.ProcessDefinitionKey):
		return false
	case !matchText(c.ProcessInstanceId, e.ProcessInstanceId):
		return false
	case !matchText(c.CaseDefinitionId, e.CaseDefinitionId):
		return false
	case !matchText(c.CaseExecutionId, e.CaseExecutionId):
		return false
	case !matchText(c.CaseInstanceId, e.CaseInstanceId):
		return false
	}

	if c.TaskPriority != nil && *c.TaskPriority != e.Priority {
		return false
	}
	if c.TaskState != 0 && c.TaskState != e.State {
		return false
	}

	if c.Finished && !e.EndTime.Valid {
		return false
	}
	if c.Unfinished && e.EndTime.Valid {
		return false
	}

	if c.ProcessFinished || c.ProcessUnfinished {
		i := slices.IndexFunc(r.data.processInstances, func(p internal.ProcessInstanceEntity) bool {
			return p.Id == e.ProcessInstanceId.String
		})
		if i == -1 {
			return false
		}
		if ended := r.data.processInstances[i].EndTime.Valid; c.ProcessFinished != ended {
			return false
		}
	}

	if c.TaskDueDate != nil && !(e.DueDate.Valid && e.DueDate.Time.Equal(*c.TaskDueDate)) {
		return false
	}
	if c.TaskFollowUpDate != nil && !(e.FollowUpDate.Valid && e.FollowUpDate.Time.Equal(*c.TaskFollowUpDate)) {
		return false
	}

	return internal.InWindow(e.EndTime, c.FinishedAfter, c.FinishedBefore) &&
		matchTime(e.StartTime, c.StartedAfter, c.StartedBefore) &&
		internal.InWindow(e.DueDate, c.TaskDueAfter, c.TaskDueBefore) &&
		internal.InWindow(e.FollowUpDate, c.TaskFollowUpAfter, c.TaskFollowUpBefore)
}
