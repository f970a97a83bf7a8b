package history

import (
	"context"
	"fmt"
	"time"
)

// HistoricIncident is the record of an incident - e.g. a job without remaining retries.
type HistoricIncident struct {
	Id string `json:"id"` // Incident ID.

	IncidentMessage string        `json:"incidentMessage,omitempty"` // Message, describing the incident.
	IncidentType    string        `json:"incidentType"`              // Type, e.g. "failedJob".
	State           IncidentState `json:"state"`                     // Current state.
	TenantId        string        `json:"tenantId,omitempty"`        // Tenant ID.

	ActivityId           string `json:"activityId,omitempty"`           // ID of the activity, the incident belongs to.
	ActivityInstanceId   string `json:"activityInstanceId,omitempty"`   // ID of the historic activity instance.
	CauseIncidentId      string `json:"causeIncidentId"`                // ID of the causing incident - the ID itself, if there is no cause.
	Configuration        string `json:"configuration,omitempty"`        // Configuration, e.g. the ID of the failed job.
	ExecutionId          string `json:"executionId,omitempty"`          // ID of the execution.
	FailedActivityId     string `json:"failedActivityId,omitempty"`     // ID of the activity, that failed.
	JobDefinitionId      string `json:"jobDefinitionId,omitempty"`      // ID of the job definition.
	ProcessDefinitionId  string `json:"processDefinitionId,omitempty"`  // ID of the process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey,omitempty"` // Key of the process definition.
	ProcessInstanceId    string `json:"processInstanceId,omitempty"`    // ID of the process instance.
	RootCauseIncidentId  string `json:"rootCauseIncidentId"`            // ID of the root cause incident - the ID itself, if there is no cause.

	CreateTime      time.Time  `json:"createTime"`        // Creation time.
	EndTime         *time.Time `json:"endTime,omitempty"` // Time of resolution or deletion.
	SequenceCounter int64      `json:"sequenceCounter"`   // Position within the record, used as tie-breaker.
}

func (v HistoricIncident) IsDeleted() bool {
	return v.State == IncidentDeleted
}

func (v HistoricIncident) IsOpen() bool {
	return v.State == IncidentOpen
}

func (v HistoricIncident) IsResolved() bool {
	return v.State == IncidentResolved
}

var HistoricIncidentSortProperties = []string{
	"activityId",
	"causeIncidentId",
	"configuration",
	"createTime",
	"endTime",
	"executionId",
	"incidentId",
	"incidentMessage",
	"incidentState",
	"incidentType",
	"processDefinitionId",
	"processDefinitionKey",
	"processInstanceId",
	"rootCauseIncidentId",
	"sequenceCounter",
	"tenantId",
}

type HistoricIncidentCriteria struct {
	IncidentId             string   `json:"incidentId,omitempty"`
	IncidentMessage        string   `json:"incidentMessage,omitempty"`
	IncidentMessageLike    string   `json:"incidentMessageLike,omitempty"`
	IncidentType           string   `json:"incidentType,omitempty"`
	ActivityId             string   `json:"activityId,omitempty"`
	CauseIncidentId        string   `json:"causeIncidentId,omitempty"`
	Configuration          string   `json:"configuration,omitempty"`
	ExecutionId            string   `json:"executionId,omitempty"`
	FailedActivityId       string   `json:"failedActivityId,omitempty"`
	JobDefinitionIdIn      []string `json:"jobDefinitionIdIn,omitempty"`
	ProcessDefinitionId    string   `json:"processDefinitionId,omitempty"`
	ProcessDefinitionKey   string   `json:"processDefinitionKey,omitempty"`
	ProcessDefinitionKeyIn []string `json:"processDefinitionKeyIn,omitempty"`
	ProcessInstanceId      string   `json:"processInstanceId,omitempty"`
	RootCauseIncidentId    string   `json:"rootCauseIncidentId,omitempty"`
	TenantIdIn             []string `json:"tenantIdIn,omitempty"`

	State IncidentState `json:"state,omitempty"`

	CreateTimeAfter  *time.Time `json:"createTimeAfter,omitempty"`
	CreateTimeBefore *time.Time `json:"createTimeBefore,omitempty"`
	EndTimeAfter     *time.Time `json:"endTimeAfter,omitempty"`
	EndTimeBefore    *time.Time `json:"endTimeBefore,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricIncidentCriteria) Validate() error {
	if c.State == IncidentOpen && (c.EndTimeAfter != nil || c.EndTimeBefore != nil) {
		return validationError("open filter cannot be combined with an end time filter")
	}
	return validateSorting(c.Sorting, HistoricIncidentSortProperties)
}

// HistoricIncidentQuery is an immutable query for historic incidents.
type HistoricIncidentQuery struct {
	e   QueryExecutor
	c   HistoricIncidentCriteria
	err error
}

func (q HistoricIncidentQuery) ActivityId(v string) HistoricIncidentQuery {
	q.c.ActivityId = v
	q.err = firstError(q.err, requireValue("activity ID", v))
	return q
}

func (q HistoricIncidentQuery) CauseIncidentId(v string) HistoricIncidentQuery {
	q.c.CauseIncidentId = v
	q.err = firstError(q.err, requireValue("cause incident ID", v))
	return q
}

func (q HistoricIncidentQuery) Configuration(v string) HistoricIncidentQuery {
	q.c.Configuration = v
	q.err = firstError(q.err, requireValue("configuration", v))
	return q
}

func (q HistoricIncidentQuery) CreateTimeAfter(v time.Time) HistoricIncidentQuery {
	q.c.CreateTimeAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("create time after", v))
	return q
}

func (q HistoricIncidentQuery) CreateTimeBefore(v time.Time) HistoricIncidentQuery {
	q.c.CreateTimeBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("create time before", v))
	return q
}

func (q HistoricIncidentQuery) Deleted() HistoricIncidentQuery {
	return q.state(IncidentDeleted)
}

func (q HistoricIncidentQuery) EndTimeAfter(v time.Time) HistoricIncidentQuery {
	q.c.EndTimeAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("end time after", v))
	return q
}

func (q HistoricIncidentQuery) EndTimeBefore(v time.Time) HistoricIncidentQuery {
	q.c.EndTimeBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("end time before", v))
	return q
}

func (q HistoricIncidentQuery) ExecutionId(v string) HistoricIncidentQuery {
	q.c.ExecutionId = v
	q.err = firstError(q.err, requireValue("execution ID", v))
	return q
}

func (q HistoricIncidentQuery) FailedActivityId(v string) HistoricIncidentQuery {
	q.c.FailedActivityId = v
	q.err = firstError(q.err, requireValue("failed activity ID", v))
	return q
}

func (q HistoricIncidentQuery) IncidentId(v string) HistoricIncidentQuery {
	q.c.IncidentId = v
	q.err = firstError(q.err, requireValue("incident ID", v))
	return q
}

func (q HistoricIncidentQuery) IncidentMessage(v string) HistoricIncidentQuery {
	q.c.IncidentMessage = v
	q.err = firstError(q.err, requireValue("incident message", v))
	return q
}

func (q HistoricIncidentQuery) IncidentMessageLike(v string) HistoricIncidentQuery {
	q.c.IncidentMessageLike = v
	q.err = firstError(q.err, requireValue("incident message like", v))
	return q
}

func (q HistoricIncidentQuery) IncidentType(v string) HistoricIncidentQuery {
	q.c.IncidentType = v
	q.err = firstError(q.err, requireValue("incident type", v))
	return q
}

func (q HistoricIncidentQuery) JobDefinitionIdIn(v ...string) HistoricIncidentQuery {
	q.c.JobDefinitionIdIn = v
	q.err = firstError(q.err, requireValues("job definition IDs", v))
	return q
}

func (q HistoricIncidentQuery) Open() HistoricIncidentQuery {
	return q.state(IncidentOpen)
}

func (q HistoricIncidentQuery) ProcessDefinitionId(v string) HistoricIncidentQuery {
	q.c.ProcessDefinitionId = v
	q.err = firstError(q.err, requireValue("process definition ID", v))
	return q
}

func (q HistoricIncidentQuery) ProcessDefinitionKey(v string) HistoricIncidentQuery {
	q.c.ProcessDefinitionKey = v
	q.err = firstError(q.err, requireValue("process definition key", v))
	return q
}

func (q HistoricIncidentQuery) ProcessDefinitionKeyIn(v ...string) HistoricIncidentQuery {
	q.c.ProcessDefinitionKeyIn = v
	q.err = firstError(q.err, requireValues("process definition keys", v))
	return q
}

func (q HistoricIncidentQuery) ProcessInstanceId(v string) HistoricIncidentQuery {
	q.c.ProcessInstanceId = v
	q.err = firstError(q.err, requireValue("process instance ID", v))
	return q
}

func (q HistoricIncidentQuery) Resolved() HistoricIncidentQuery {
	return q.state(IncidentResolved)
}

func (q HistoricIncidentQuery) RootCauseIncidentId(v string) HistoricIncidentQuery {
	q.c.RootCauseIncidentId = v
	q.err = firstError(q.err, requireValue("root cause incident ID", v))
	return q
}

func (q HistoricIncidentQuery) TenantIdIn(v ...string) HistoricIncidentQuery {
	q.c.TenantIdIn = v
	q.err = firstError(q.err, requireValues("tenant IDs", v))
	return q
}

func (q HistoricIncidentQuery) state(v IncidentState) HistoricIncidentQuery {
	if q.c.State != 0 && q.c.State != v {
		q.err = firstError(q.err, validationError(fmt.Sprintf("already querying for incident state %s", q.c.State)))
	}
	q.c.State = v
	return q
}

func (q HistoricIncidentQuery) OrderByActivityId() Ordering[HistoricIncidentQuery] {
	return q.orderBy("activityId")
}

func (q HistoricIncidentQuery) OrderByCauseIncidentId() Ordering[HistoricIncidentQuery] {
	return q.orderBy("causeIncidentId")
}

func (q HistoricIncidentQuery) OrderByConfiguration() Ordering[HistoricIncidentQuery] {
	return q.orderBy("configuration")
}

func (q HistoricIncidentQuery) OrderByCreateTime() Ordering[HistoricIncidentQuery] {
	return q.orderBy("createTime")
}

func (q HistoricIncidentQuery) OrderByEndTime() Ordering[HistoricIncidentQuery] {
	return q.orderBy("endTime")
}

func (q HistoricIncidentQuery) OrderByExecutionId() Ordering[HistoricIncidentQuery] {
	return q.orderBy("executionId")
}

func (q HistoricIncidentQuery) OrderByIncidentId() Ordering[HistoricIncidentQuery] {
	return q.orderBy("incidentId")
}

func (q HistoricIncidentQuery) OrderByIncidentMessage() Ordering[HistoricIncidentQuery] {
	return q.orderBy("incidentMessage")
}

func (q HistoricIncidentQuery) OrderByIncidentState() Ordering[HistoricIncidentQuery] {
	return q.orderBy("incidentState")
}

func (q HistoricIncidentQuery) OrderByIncidentType() Ordering[HistoricIncidentQuery] {
	return q.orderBy("incidentType")
}

func (q HistoricIncidentQuery) OrderByProcessDefinitionId() Ordering[HistoricIncidentQuery] {
	return q.orderBy("processDefinitionId")
}

func (q HistoricIncidentQuery) OrderByProcessDefinitionKey() Ordering[HistoricIncidentQuery] {
	return q.orderBy("processDefinitionKey")
}

func (q HistoricIncidentQuery) OrderByProcessInstanceId() Ordering[HistoricIncidentQuery] {
	return q.orderBy("processInstanceId")
}

func (q HistoricIncidentQuery) OrderByRootCauseIncidentId() Ordering[HistoricIncidentQuery] {
	return q.orderBy("rootCauseIncidentId")
}

func (q HistoricIncidentQuery) OrderByTenantId() Ordering[HistoricIncidentQuery] {
	return q.orderBy("tenantId")
}

func (q HistoricIncidentQuery) orderBy(property string) Ordering[HistoricIncidentQuery] {
	return newOrdering(func(d SortDirection) HistoricIncidentQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, property, d)
		return q
	})
}

func (q HistoricIncidentQuery) Criteria() HistoricIncidentCriteria {
	return q.c
}

func (q HistoricIncidentQuery) Err() error {
	return q.err
}

func (q HistoricIncidentQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricIncidentQuery) List(ctx context.Context) ([]HistoricIncident, error) {
	return executeList[HistoricIncident](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricIncidentQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricIncident, error) {
	return executeListPage[HistoricIncident](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricIncidentQuery) SingleResult(ctx context.Context) (*HistoricIncident, error) {
	return executeSingleResult[HistoricIncident](ctx, q.e, q.c, q.err)
}
