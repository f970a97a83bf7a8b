package history

import (
	"context"
	"fmt"
	"time"
)

// HistoricJobLog is the record of a single job event. A job has exactly one creation log, any number of failure
// logs with decreasing retries and at most one success or deletion log.
type HistoricJobLog struct {
	Id    string      `json:"id"`    // Job log ID.
	State JobLogState `json:"state"` // Event, the log was written for.

	JobId                      string     `json:"jobId"`                                // ID of the job.
	JobDefinitionId            string     `json:"jobDefinitionId,omitempty"`            // ID of the job definition.
	JobDefinitionType          string     `json:"jobDefinitionType,omitempty"`          // Type of the job definition, e.g. "timer-start-event".
	JobDefinitionConfiguration string     `json:"jobDefinitionConfiguration,omitempty"` // Configuration of the job definition.
	JobDueDate                 *time.Time `json:"jobDueDate,omitempty"`                 // Due date of the job.
	JobExceptionMessage        string     `json:"jobExceptionMessage,omitempty"`        // Truncated exception message - only set on failure logs.
	JobPriority                int64      `json:"jobPriority"`                          // Priority of the job.
	JobRetries                 int        `json:"jobRetries"`                           // Remaining retries at the time of the event.

	ActivityId           string `json:"activityId,omitempty"`           // ID of the activity, the job belongs to.
	DeploymentId         string `json:"deploymentId,omitempty"`         // ID of the deployment.
	ExecutionId          string `json:"executionId,omitempty"`          // ID of the execution.
	FailedActivityId     string `json:"failedActivityId,omitempty"`     // ID of the activity, that failed - only set on failure logs.
	Hostname             string `json:"hostname"`                       // ID of the engine, that recorded the event.
	ProcessDefinitionId  string `json:"processDefinitionId,omitempty"`  // ID of the process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey,omitempty"` // Key of the process definition.
	ProcessInstanceId    string `json:"processInstanceId,omitempty"`    // ID of the process instance.
	TenantId             string `json:"tenantId,omitempty"`             // Tenant ID.

	HasExceptionStacktrace bool `json:"hasExceptionStacktrace"` // Determines if a full stacktrace has been stored.

	SequenceCounter int64     `json:"sequenceCounter"` // Position within the record, used as tie-breaker.
	Timestamp       time.Time `json:"timestamp"`       // Time of the event.
}

func (v HistoricJobLog) IsCreationLog() bool {
	return v.State == JobLogCreation
}

func (v HistoricJobLog) IsDeletionLog() bool {
	return v.State == JobLogDeletion
}

func (v HistoricJobLog) IsFailureLog() bool {
	return v.State == JobLogFailure
}

func (v HistoricJobLog) IsSuccessLog() bool {
	return v.State == JobLogSuccess
}

var HistoricJobLogSortProperties = []string{
	"activityId",
	"deploymentId",
	"executionId",
	"hostname",
	"jobDefinitionId",
	"jobDueDate",
	"jobId",
	"jobPriority",
	"jobRetries",
	"processDefinitionId",
	"processDefinitionKey",
	"processInstanceId",
	"sequenceCounter",
	"tenantId",
	"timestamp",
}

type HistoricJobLogCriteria struct {
	LogId                      string   `json:"logId,omitempty"`
	JobId                      string   `json:"jobId,omitempty"`
	JobExceptionMessage        string   `json:"jobExceptionMessage,omitempty"`
	JobDefinitionId            string   `json:"jobDefinitionId,omitempty"`
	JobDefinitionType          string   `json:"jobDefinitionType,omitempty"`
	JobDefinitionConfiguration string   `json:"jobDefinitionConfiguration,omitempty"`
	ActivityIdIn               []string `json:"activityIdIn,omitempty"`
	FailedActivityIdIn         []string `json:"failedActivityIdIn,omitempty"`
	ExecutionIdIn              []string `json:"executionIdIn,omitempty"`
	ProcessInstanceId          string   `json:"processInstanceId,omitempty"`
	ProcessDefinitionId        string   `json:"processDefinitionId,omitempty"`
	ProcessDefinitionKey       string   `json:"processDefinitionKey,omitempty"`
	DeploymentId               string   `json:"deploymentId,omitempty"`
	Hostname                   string   `json:"hostname,omitempty"`
	TenantIdIn                 []string `json:"tenantIdIn,omitempty"`

	JobPriorityHigherThanOrEquals *int64 `json:"jobPriorityHigherThanOrEquals,omitempty"`
	JobPriorityLowerThanOrEquals  *int64 `json:"jobPriorityLowerThanOrEquals,omitempty"`

	State JobLogState `json:"state,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricJobLogCriteria) Validate() error {
	if c.JobPriorityHigherThanOrEquals != nil && c.JobPriorityLowerThanOrEquals != nil {
		if *c.JobPriorityHigherThanOrEquals > *c.JobPriorityLowerThanOrEquals {
			return validationError("job priority range is empty")
		}
	}
	return validateSorting(c.Sorting, HistoricJobLogSortProperties)
}

// HistoricJobLogQuery is an immutable query for historic job logs.
type HistoricJobLogQuery struct {
	e   QueryExecutor
	c   HistoricJobLogCriteria
	err error
}

func (q HistoricJobLogQuery) ActivityIdIn(v ...string) HistoricJobLogQuery {
	q.c.ActivityIdIn = v
	q.err = firstError(q.err, requireValues("activity IDs", v))
	return q
}

func (q HistoricJobLogQuery) CreationLog() HistoricJobLogQuery {
	return q.state(JobLogCreation)
}

func (q HistoricJobLogQuery) DeletionLog() HistoricJobLogQuery {
	return q.state(JobLogDeletion)
}

func (q HistoricJobLogQuery) DeploymentId(v string) HistoricJobLogQuery {
	q.c.DeploymentId = v
	q.err = firstError(q.err, requireValue("deployment ID", v))
	return q
}

func (q HistoricJobLogQuery) ExecutionIdIn(v ...string) HistoricJobLogQuery {
	q.c.ExecutionIdIn = v
	q.err = firstError(q.err, requireValues("execution IDs", v))
	return q
}

func (q HistoricJobLogQuery) FailedActivityIdIn(v ...string) HistoricJobLogQuery {
	q.c.FailedActivityIdIn = v
	q.err = firstError(q.err, requireValues("failed activity IDs", v))
	return q
}

func (q HistoricJobLogQuery) FailureLog() HistoricJobLogQuery {
	return q.state(JobLogFailure)
}

func (q HistoricJobLogQuery) Hostname(v string) HistoricJobLogQuery {
	q.c.Hostname = v
	q.err = firstError(q.err, requireValue("hostname", v))
	return q
}

func (q HistoricJobLogQuery) JobDefinitionConfiguration(v string) HistoricJobLogQuery {
	q.c.JobDefinitionConfiguration = v
	q.err = firstError(q.err, requireValue("job definition configuration", v))
	return q
}

func (q HistoricJobLogQuery) JobDefinitionId(v string) HistoricJobLogQuery {
	q.c.JobDefinitionId = v
	q.err = firstError(q.err, requireValue("job definition ID", v))
	return q
}

func (q HistoricJobLogQuery) JobDefinitionType(v string) HistoricJobLogQuery {
	q.c.JobDefinitionType = v
	q.err = firstError(q.err, requireValue("job definition type", v))
	return q
}

func (q HistoricJobLogQuery) JobExceptionMessage(v string) HistoricJobLogQuery {
	q.c.JobExceptionMessage = v
	q.err = firstError(q.err, requireValue("job exception message", v))
	return q
}

func (q HistoricJobLogQuery) JobId(v string) HistoricJobLogQuery {
	q.c.JobId = v
	q.err = firstError(q.err, requireValue("job ID", v))
	return q
}

func (q HistoricJobLogQuery) JobPriorityHigherThanOrEquals(v int64) HistoricJobLogQuery {
	q.c.JobPriorityHigherThanOrEquals = &v
	return q
}

func (q HistoricJobLogQuery) JobPriorityLowerThanOrEquals(v int64) HistoricJobLogQuery {
	q.c.JobPriorityLowerThanOrEquals = &v
	return q
}

func (q HistoricJobLogQuery) LogId(v string) HistoricJobLogQuery {
	q.c.LogId = v
	q.err = firstError(q.err, requireValue("log ID", v))
	return q
}

func (q HistoricJobLogQuery) ProcessDefinitionId(v string) HistoricJobLogQuery {
	q.c.ProcessDefinitionId = v
	q.err = firstError(q.err, requireValue("process definition ID", v))
	return q
}

func (q HistoricJobLogQuery) ProcessDefinitionKey(v string) HistoricJobLogQuery {
	q.c.ProcessDefinitionKey = v
	q.err = firstError(q.err, requireValue("process definition key", v))
	return q
}

func (q HistoricJobLogQuery) ProcessInstanceId(v string) HistoricJobLogQuery {
	q.c.ProcessInstanceId = v
	q.err = firstError(q.err, requireValue("process instance ID", v))
	return q
}

func (q HistoricJobLogQuery) SuccessLog() HistoricJobLogQuery {
	return q.state(JobLogSuccess)
}

func (q HistoricJobLogQuery) TenantIdIn(v ...string) HistoricJobLogQuery {
	q.c.TenantIdIn = v
	q.err = firstError(q.err, requireValues("tenant IDs", v))
	return q
}

func (q HistoricJobLogQuery) state(v JobLogState) HistoricJobLogQuery {
	if q.c.State != 0 && q.c.State != v {
		q.err = firstError(q.err, validationError(fmt.Sprintf("already querying for job log state %s", q.c.State)))
	}
	q.c.State = v
	return q
}

func (q HistoricJobLogQuery) OrderByActivityId() Ordering[HistoricJobLogQuery] {
	return q.orderBy("activityId")
}

func (q HistoricJobLogQuery) OrderByDeploymentId() Ordering[HistoricJobLogQuery] {
	return q.orderBy("deploymentId")
}

func (q HistoricJobLogQuery) OrderByExecutionId() Ordering[HistoricJobLogQuery] {
	return q.orderBy("executionId")
}

func (q HistoricJobLogQuery) OrderByHostname() Ordering[HistoricJobLogQuery] {
	return q.orderBy("hostname")
}

func (q HistoricJobLogQuery) OrderByJobDefinitionId() Ordering[HistoricJobLogQuery] {
	return q.orderBy("jobDefinitionId")
}

func (q HistoricJobLogQuery) OrderByJobDueDate() Ordering[HistoricJobLogQuery] {
	return q.orderBy("jobDueDate")
}

func (q HistoricJobLogQuery) OrderByJobId() Ordering[HistoricJobLogQuery] {
	return q.orderBy("jobId")
}

func (q HistoricJobLogQuery) OrderByJobPriority() Ordering[HistoricJobLogQuery] {
	return q.orderBy("jobPriority")
}

func (q HistoricJobLogQuery) OrderByJobRetries() Ordering[HistoricJobLogQuery] {
	return q.orderBy("jobRetries")
}

func (q HistoricJobLogQuery) OrderByProcessDefinitionId() Ordering[HistoricJobLogQuery] {
	return q.orderBy("processDefinitionId")
}

func (q HistoricJobLogQuery) OrderByProcessDefinitionKey() Ordering[HistoricJobLogQuery] {
	return q.orderBy("processDefinitionKey")
}

func (q HistoricJobLogQuery) OrderByProcessInstanceId() Ordering[HistoricJobLogQuery] {
	return q.orderBy("processInstanceId")
}

func (q HistoricJobLogQuery) OrderByTenantId() Ordering[HistoricJobLogQuery] {
	return q.orderBy("tenantId")
}

func (q HistoricJobLogQuery) OrderByTimestamp() Ordering[HistoricJobLogQuery] {
	return q.orderBy("timestamp")
}

// OrderPartiallyByOccurrence sorts by the sequence counter, which reflects the order of the job events.
func (q HistoricJobLogQuery) OrderPartiallyByOccurrence() Ordering[HistoricJobLogQuery] {
	return q.orderBy("sequenceCounter")
}

func (q HistoricJobLogQuery) orderBy(property string) Ordering[HistoricJobLogQuery] {
	return newOrdering(func(d SortDirection) HistoricJobLogQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, property, d)
		return q
	})
}

func (q HistoricJobLogQuery) Criteria() HistoricJobLogCriteria {
	return q.c
}

func (q HistoricJobLogQuery) Err() error {
	return q.err
}

func (q HistoricJobLogQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricJobLogQuery) List(ctx context.Context) ([]HistoricJobLog, error) {
	return executeList[HistoricJobLog](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricJobLogQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricJobLog, error) {
	return executeListPage[HistoricJobLog](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricJobLogQuery) SingleResult(ctx context.Context) (*HistoricJobLog, error) {
	return executeSingleResult[HistoricJobLog](ctx, q.e, q.c, q.err)
}
