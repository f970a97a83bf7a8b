package mem

import (
	"slices"
	"strings"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var jobLogComparators = map[string]comparator[internal.JobLogEntity]{
	"activityId": func(a, b *internal.JobLogEntity) int {
		return compareText(a.ActivityId, b.ActivityId)
	},
	"deploymentId": func(a, b *internal.JobLogEntity) int {
		return compareText(a.DeploymentId, b.DeploymentId)
	},
	"executionId": func(a, b *internal.JobLogEntity) int {
		return compareText(a.ExecutionId, b.ExecutionId)
	},
	"hostname": func(a, b *internal.JobLogEntity) int {
		return strings.Compare(a.Hostname, b.Hostname)
	},
	"jobDefinitionId": func(a, b *internal.JobLogEntity) int {
		return compareText(a.JobDefinitionId, b.JobDefinitionId)
	},
	"jobDueDate": func(a, b *internal.JobLogEntity) int {
		return compareTimestamp(a.JobDueDate, b.JobDueDate)
	},
	"jobId": func(a, b *internal.JobLogEntity) int {
		return strings.Compare(a.JobId, b.JobId)
	},
	"jobPriority": func(a, b *internal.JobLogEntity) int {
		return compareInt64(a.JobPriority, b.JobPriority)
	},
	"jobRetries": func(a, b *internal.JobLogEntity) int {
		return compareInt64(int64(a.JobRetries), int64(b.JobRetries))
	},
	"processDefinitionId": func(a, b *internal.JobLogEntity) int {
		return compareText(a.ProcessDefinitionId, b.ProcessDefinitionId)
	},
	"processDefinitionKey": func(a, b *internal.JobLogEntity) int {
		return compareText(a.ProcessDefinitionKey, b.ProcessDefinitionKey)
	},
	"processInstanceId": func(a, b *internal.JobLogEntity) int {
		return compareText(a.ProcessInstanceId, b.ProcessInstanceId)
	},
	"sequenceCounter": func(a, b *internal.JobLogEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	},
	"tenantId": func(a, b *internal.JobLogEntity) int {
		return compareText(a.TenantId, b.TenantId)
	},
	"timestamp": func(a, b *internal.JobLogEntity) int {
		return compareTime(a.Timestamp, b.Timestamp)
	},
}

type jobLogRepository struct {
	data *memData
}

func (r jobLogRepository) Insert(entity *internal.JobLogEntity) error {
	r.data.jobLogs = append(r.data.jobLogs, *entity)
	return nil
}

func (r jobLogRepository) SelectLatest(jobId string) (*internal.JobLogEntity, error) {
	var latest *internal.JobLogEntity
	for _, e := range r.data.jobLogs {
		if e.JobId == jobId && (latest == nil || e.SequenceCounter > latest.SequenceCounter) {
			latest = &e
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	return latest, nil
}

func (r jobLogRepository) SelectPendingByProcessInstance(processInstanceId string) ([]*internal.JobLogEntity, error) {
	latest := make(map[string]*internal.JobLogEntity)
	for _, e := range r.data.jobLogs {
		if e.ProcessInstanceId.String != processInstanceId {
			continue
		}
		if l, ok := latest[e.JobId]; !ok || e.SequenceCounter > l.SequenceCounter {
			latest[e.JobId] = &e
		}
	}

	var results []*internal.JobLogEntity
	for _, e := range latest {
		if e.State != history.JobLogSuccess && e.State != history.JobLogDeletion {
			results = append(results, e)
		}
	}

	slices.SortFunc(results, func(a, b *internal.JobLogEntity) int {
		return compareInt64(a.SequenceCounter, b.SequenceCounter)
	})

	return results, nil
}

func (r jobLogRepository) DeleteByOwners(owners internal.Owners) error {
	r.data.jobLogs = slices.DeleteFunc(r.data.jobLogs, func(e internal.JobLogEntity) bool {
		if !owns(owners, e.ProcessInstanceId, pgtype.Text{}, pgtype.Text{}) {
			return false
		}
		delete(r.data.exceptionStacktraces, e.Id)
		return true
	})
	return nil
}

func (r jobLogRepository) InsertExceptionStacktrace(jobLogId string, exceptionStacktrace string) error {
	r.data.exceptionStacktraces[jobLogId] = exceptionStacktrace
	return nil
}

func (r jobLogRepository) SelectExceptionStacktrace(jobLogId string) (string, error) {
	exceptionStacktrace, ok := r.data.exceptionStacktraces[jobLogId]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return exceptionStacktrace, nil
}

func (r jobLogRepository) Query(c history.HistoricJobLogCriteria, o history.QueryOptions) ([]*internal.JobLogEntity, error) {
	var results []*internal.JobLogEntity
	for _, e := range r.data.jobLogs {
		if r.matches(c, &e) {
			results = append(results, &e)
		}
	}

	return sortAndPage(results, c.Sorting, jobLogComparators, func(e *internal.JobLogEntity) int64 {
		return e.SequenceCounter
	}, o), nil
}

func (r jobLogRepository) Count(c history.HistoricJobLogCriteria) (int, error) {
	results, err := r.Query(c, history.QueryOptions{})
	return len(results), err
}

func (r jobLogRepository) matches(c history.HistoricJobLogCriteria, e *internal.JobLogEntity) bool {
	switch {
	case !matchString(c.LogId, e.Id):
		return false
	case !matchString(c.JobId, e.JobId):
		return false
	case !matchText(c.JobExceptionMessage, e.JobExceptionMessage):
		return false
	case !matchText(c.JobDefinitionId, e.JobDefinitionId):
		return false
	case !matchText(c.JobDefinitionType, e.JobDefinitionType):
		return false
	case !matchText(c.JobDefinitionConfiguration, e.JobDefinitionConfiguration):
		return false
	case !matchTextIn(c.ActivityIdIn, e.ActivityId):
		return false
	case !matchTextIn(c.FailedActivityIdIn, e.FailedActivityId):
		return false
	case !matchTextIn(c.ExecutionIdIn, e.ExecutionId):
		return false
	case !matchText(c.ProcessInstanceId, e.ProcessInstanceId):
		return false
	case !matchText(c.ProcessDefinitionId, e.ProcessDefinitionId):
		return false
	case !matchText(c.ProcessDefinitionKey, e.ProcessDefinitionKey):
		return false
	case !matchText(c.DeploymentId, e.DeploymentId):
		return false
	case !matchString(c.Hostname, e.Hostname):
		return false
	case !matchTextIn(c.TenantIdIn, e.TenantId):
		return false
	}

	if c.JobPriorityHigherThanOrEquals != nil && e.JobPriority < *c.JobPriorityHigherThanOrEquals {
		return false
	}
	if c.JobPriorityLowerThanOrEquals != nil && e.JobPriority > *c.JobPriorityLowerThanOrEquals {
		return false
	}

	return c.State == 0 || c.State == e.State
}
