package history

import (
	"context"
	"time"
)

// HistoricProcessInstance is the record of a process instance.
//
// A process instance ends either regularly, with an end activity ID, or by deletion, with a delete reason.
type HistoricProcessInstance struct {
	Id string `json:"id"` // Process instance ID.

	BusinessKey          string `json:"businessKey,omitempty"`   // Key, used to correlate a process instance with a business entity.
	ProcessDefinitionId  string `json:"processDefinitionId"`     // ID of the process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey"`    // Key of the process definition.
	TenantId             string `json:"tenantId,omitempty"`      // Tenant ID.
	StartActivityId      string `json:"startActivityId"`         // ID of the activity, the instance started with.
	StartUserId          string `json:"startUserId,omitempty"`   // ID of the user, who started the instance.
	EndActivityId        string `json:"endActivityId,omitempty"` // ID of the activity, the instance ended with - only set on regular end.
	DeleteReason         string `json:"deleteReason,omitempty"`  // Reason of a deletion - only set on forced end.

	CaseInstanceId         string `json:"caseInstanceId,omitempty"`         // ID of the case instance, the process instance belongs to.
	RootProcessInstanceId  string `json:"rootProcessInstanceId"`            // ID of the topmost process instance of the hierarchy.
	SuperCaseInstanceId    string `json:"superCaseInstanceId,omitempty"`    // ID of the calling case instance.
	SuperProcessInstanceId string `json:"superProcessInstanceId,omitempty"` // ID of the calling process instance.

	DurationInMillis *int64     `json:"durationInMillis,omitempty"` // Derived from start and end time.
	EndTime          *time.Time `json:"endTime,omitempty"`          // End time, nil while running.
	SequenceCounter  int64      `json:"sequenceCounter"`            // Position within the record, used as tie-breaker.
	StartTime        time.Time  `json:"startTime"`                  // Start time.
}

// Duration returns the raw duration between start and end time, or 0 while running.
func (v HistoricProcessInstance) Duration() time.Duration {
	if v.EndTime == nil {
		return 0
	}
	return v.EndTime.Sub(v.StartTime)
}

var HistoricProcessInstanceSortProperties = []string{
	"businessKey",
	"durationInMillis",
	"endTime",
	"processDefinitionId",
	"processDefinitionKey",
	"processInstanceId",
	"sequenceCounter",
	"startTime",
	"tenantId",
}

type HistoricProcessInstanceCriteria struct {
	ProcessInstanceId         string   `json:"processInstanceId,omitempty"`
	ProcessInstanceIds        []string `json:"processInstanceIds,omitempty"`
	ProcessInstanceIdNotIn    []string `json:"processInstanceIdNotIn,omitempty"`
	ProcessDefinitionId       string   `json:"processDefinitionId,omitempty"`
	ProcessDefinitionKey      string   `json:"processDefinitionKey,omitempty"`
	ProcessDefinitionKeyIn    []string `json:"processDefinitionKeyIn,omitempty"`
	ProcessDefinitionKeyNotIn []string `json:"processDefinitionKeyNotIn,omitempty"`
	BusinessKey               string   `json:"businessKey,omitempty"`
	BusinessKeyIn             []string `json:"businessKeyIn,omitempty"`
	BusinessKeyLike           string   `json:"businessKeyLike,omitempty"`
	TenantIdIn                []string `json:"tenantIdIn,omitempty"`

	CaseInstanceId         string `json:"caseInstanceId,omitempty"`
	RootProcessInstanceId  string `json:"rootProcessInstanceId,omitempty"`
	SubProcessInstanceId   string `json:"subProcessInstanceId,omitempty"`
	SuperCaseInstanceId    string `json:"superCaseInstanceId,omitempty"`
	SuperProcessInstanceId string `json:"superProcessInstanceId,omitempty"`

	ActiveActivityIdIn   []string `json:"activeActivityIdIn,omitempty"`
	ExecutedActivityIdIn []string `json:"executedActivityIdIn,omitempty"`

	IncidentMessage     string        `json:"incidentMessage,omitempty"`
	IncidentMessageLike string        `json:"incidentMessageLike,omitempty"`
	IncidentStatus      IncidentState `json:"incidentStatus,omitempty"`
	IncidentType        string        `json:"incidentType,omitempty"`
	WithIncidents       bool          `json:"withIncidents,omitempty"`

	Deleted    bool `json:"deleted,omitempty"`
	Finished   bool `json:"finished,omitempty"`
	Unfinished bool `json:"unfinished,omitempty"`

	FinishedAfter  *time.Time `json:"finishedAfter,omitempty"`
	FinishedBefore *time.Time `json:"finishedBefore,omitempty"`
	StartedAfter   *time.Time `json:"startedAfter,omitempty"`
	StartedBefore  *time.Time `json:"startedBefore,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricProcessInstanceCriteria) Validate() error {
	if c.Finished && c.Unfinished {
		return validationError("finished and unfinished filters cannot be combined")
	}
	if c.Deleted && c.Unfinished {
		return validationError("deleted and unfinished filters cannot be combined")
	}
	return validateSorting(c.Sorting, HistoricProcessInstanceSortProperties)
}

// HistoricProcessInstanceQuery is an immutable query for historic process instances.
type HistoricProcessInstanceQuery struct {
	e   QueryExecutor
	c   HistoricProcessInstanceCriteria
	err error
}

func (q HistoricProcessInstanceQuery) ActiveActivityIdIn(v ...string) HistoricProcessInstanceQuery {
	q.c.ActiveActivityIdIn = v
	q.err = firstError(q.err, requireValues("active activity IDs", v))
	return q
}

func (q HistoricProcessInstanceQuery) BusinessKey(v string) HistoricProcessInstanceQuery {
	q.c.BusinessKey = v
	q.err = firstError(q.err, requireValue("business key", v))
	return q
}

func (q HistoricProcessInstanceQuery) BusinessKeyIn(v ...string) HistoricProcessInstanceQuery {
	q.c.BusinessKeyIn = v
	q.err = firstError(q.err, requireValues("business keys", v))
	return q
}

func (q HistoricProcessInstanceQuery) BusinessKeyLike(v string) HistoricProcessInstanceQuery {
	q.c.BusinessKeyLike = v
	q.err = firstError(q.err, requireValue("business key like", v))
	return q
}

func (q HistoricProcessInstanceQuery) CaseInstanceId(v string) HistoricProcessInstanceQuery {
	q.c.CaseInstanceId = v
	q.err = firstError(q.err, requireValue("case instance ID", v))
	return q
}

// Deleted filters process instances, which ended by deletion.
func (q HistoricProcessInstanceQuery) Deleted() HistoricProcessInstanceQuery {
	q.c.Deleted = true
	return q
}

func (q HistoricProcessInstanceQuery) ExecutedActivityIdIn(v ...string) HistoricProcessInstanceQuery {
	q.c.ExecutedActivityIdIn = v
	q.err = firstError(q.err, requireValues("executed activity IDs", v))
	return q
}

func (q HistoricProcessInstanceQuery) Finished() HistoricProcessInstanceQuery {
	q.c.Finished = true
	return q
}

func (q HistoricProcessInstanceQuery) FinishedAfter(v time.Time) HistoricProcessInstanceQuery {
	q.c.FinishedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("finished after", v))
	return q
}

func (q HistoricProcessInstanceQuery) FinishedBefore(v time.Time) HistoricProcessInstanceQuery {
	q.c.FinishedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("finished before", v))
	return q
}

func (q HistoricProcessInstanceQuery) IncidentMessage(v string) HistoricProcessInstanceQuery {
	q.c.IncidentMessage = v
	q.err = firstError(q.err, requireValue("incident message", v))
	return q
}

func (q HistoricProcessInstanceQuery) IncidentMessageLike(v string) HistoricProcessInstanceQuery {
	q.c.IncidentMessageLike = v
	q.err = firstError(q.err, requireValue("incident message like", v))
	return q
}

func (q HistoricProcessInstanceQuery) IncidentStatus(v IncidentState) HistoricProcessInstanceQuery {
	q.c.IncidentStatus = v
	if v == 0 {
		q.err = firstError(q.err, requireValue("incident status", ""))
	}
	return q
}

func (q HistoricProcessInstanceQuery) IncidentType(v string) HistoricProcessInstanceQuery {
	q.c.IncidentType = v
	q.err = firstError(q.err, requireValue("incident type", v))
	return q
}

func (q HistoricProcessInstanceQuery) ProcessDefinitionId(v string) HistoricProcessInstanceQuery {
	q.c.ProcessDefinitionId = v
	q.err = firstError(q.err, requireValue("process definition ID", v))
	return q
}

func (q HistoricProcessInstanceQuery) ProcessDefinitionKey(v string) HistoricProcessInstanceQuery {
	q.c.ProcessDefinitionKey = v
	q.err = firstError(q.err, requireValue("process definition key", v))
	return q
}

func (q HistoricProcessInstanceQuery) ProcessDefinitionKeyIn(v ...string) HistoricProcessInstanceQuery {
	q.c.ProcessDefinitionKeyIn = v
	q.err = firstError(q.err, requireValues("process definition keys", v))
	return q
}

func (q HistoricProcessInstanceQuery) ProcessDefinitionKeyNotIn(v ...string) HistoricProcessInstanceQuery {
	q.c.ProcessDefinitionKeyNotIn = v
	q.err = firstError(q.err, requireValues("process definition keys", v))
	return q
}

func (q HistoricProcessInstanceQuery) ProcessInstanceId(v string) HistoricProcessInstanceQuery {
	q.c.ProcessInstanceId = v
	q.err = firstError(q.err, requireValue("process instance ID", v))
	return q
}

func (q HistoricProcessInstanceQuery) ProcessInstanceIdNotIn(v ...string) HistoricProcessInstanceQuery {
	q.c.ProcessInstanceIdNotIn = v
	q.err = firstError(q.err, requireValues("process instance IDs", v))
	return q
}

func (q HistoricProcessInstanceQuery) ProcessInstanceIds(v ...string) HistoricProcessInstanceQuery {
	q.c.ProcessInstanceIds = v
	q.err = firstError(q.err, requireValues("process instance IDs", v))
	return q
}

func (q HistoricProcessInstanceQuery) RootProcessInstanceId(v string) HistoricProcessInstanceQuery {
	q.c.RootProcessInstanceId = v
	q.err = firstError(q.err, requireValue("root process instance ID", v))
	return q
}

func (q HistoricProcessInstanceQuery) StartedAfter(v time.Time) HistoricProcessInstanceQuery {
	q.c.StartedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("started after", v))
	return q
}

func (q HistoricProcessInstanceQuery) StartedBefore(v time.Time) HistoricProcessInstanceQuery {
	q.c.StartedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("started before", v))
	return q
}

func (q HistoricProcessInstanceQuery) SubProcessInstanceId(v string) HistoricProcessInstanceQuery {
	q.c.SubProcessInstanceId = v
	q.err = firstError(q.err, requireValue("sub process instance ID", v))
	return q
}

func (q HistoricProcessInstanceQuery) SuperCaseInstanceId(v string) HistoricProcessInstanceQuery {
	q.c.SuperCaseInstanceId = v
	q.err = firstError(q.err, requireValue("super case instance ID", v))
	return q
}

func (q HistoricProcessInstanceQuery) SuperProcessInstanceId(v string) HistoricProcessInstanceQuery {
	q.c.SuperProcessInstanceId = v
	q.err = firstError(q.err, requireValue("super process instance ID", v))
	return q
}

func (q HistoricProcessInstanceQuery) TenantIdIn(v ...string) HistoricProcessInstanceQuery {
	q.c.TenantIdIn = v
	q.err = firstError(q.err, requireValues("tenant IDs", v))
	return q
}

func (q HistoricProcessInstanceQuery) Unfinished() HistoricProcessInstanceQuery {
	q.c.Unfinished = true
	return q
}

// WithIncidents filters process instances, which have at least one incident.
func (q HistoricProcessInstanceQuery) WithIncidents() HistoricProcessInstanceQuery {
	q.c.WithIncidents = true
	return q
}

func (q HistoricProcessInstanceQuery) OrderByBusinessKey() Ordering[HistoricProcessInstanceQuery] {
	return q.orderBy("businessKey")
}

func (q HistoricProcessInstanceQuery) OrderByDuration() Ordering[HistoricProcessInstanceQuery] {
	return q.orderBy("durationInMillis")
}

func (q HistoricProcessInstanceQuery) OrderByEndTime() Ordering[HistoricProcessInstanceQuery] {
	return q.orderBy("endTime")
}

func (q HistoricProcessInstanceQuery) OrderByProcessDefinitionId() Ordering[HistoricProcessInstanceQuery] {
	return q.orderBy("processDefinitionId")
}

func (q HistoricProcessInstanceQuery) OrderByProcessDefinitionKey() Ordering[HistoricProcessInstanceQuery] {
	return q.orderBy("processDefinitionKey")
}

func (q HistoricProcessInstanceQuery) OrderByProcessInstanceId() Ordering[HistoricProcessInstanceQuery] {
	return q.orderBy("processInstanceId")
}

func (q HistoricProcessInstanceQuery) OrderByStartTime() Ordering[HistoricProcessInstanceQuery] {
	return q.orderBy("startTime")
}

func (q HistoricProcessInstanceQuery) OrderByTenantId() Ordering[HistoricProcessInstanceQuery] {
	return q.orderBy("tenantId")
}

func (q HistoricProcessInstanceQuery) orderBy(property string) Ordering[HistoricProcessInstanceQuery] {
	return newOrdering(func(d SortDirection) HistoricProcessInstanceQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, property, d)
		return q
	})
}

func (q HistoricProcessInstanceQuery) Criteria() HistoricProcessInstanceCriteria {
	return q.c
}

func (q HistoricProcessInstanceQuery) Err() error {
	return q.err
}

func (q HistoricProcessInstanceQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricProcessInstanceQuery) List(ctx context.Context) ([]HistoricProcessInstance, error) {
	return executeList[HistoricProcessInstance](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricProcessInstanceQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricProcessInstance, error) {
	return executeListPage[HistoricProcessInstance](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricProcessInstanceQuery) SingleResult(ctx context.Context) (*HistoricProcessInstance, error) {
	return executeSingleResult[HistoricProcessInstance](ctx, q.e, q.c, q.err)
}
