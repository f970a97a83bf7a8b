package history

import (
	"context"
	"time"
)

// HistoricActivityInstance is the record of an activity instance.
//
// An ended instance is classified as either canceled or complete scope, or neither if the end was implicit.
type HistoricActivityInstance struct {
	Id                       string `json:"id"`                                 // Activity instance ID.
	ParentActivityInstanceId string `json:"parentActivityInstanceId,omitempty"` // ID of the enclosing scope's activity instance.

	ActivityId           string `json:"activityId"`             // ID of the activity within the process model.
	ActivityName         string `json:"activityName,omitempty"` // Name of the activity.
	ActivityType         string `json:"activityType"`           // Type tag, e.g. "serviceTask" or "startTimerEvent".
	ExecutionId          string `json:"executionId,omitempty"`  // ID of the execution.
	ProcessDefinitionId  string `json:"processDefinitionId"`    // ID of the process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey"`   // Key of the process definition.
	ProcessInstanceId    string `json:"processInstanceId"`      // ID of the enclosing process instance.
	TenantId             string `json:"tenantId,omitempty"`     // Tenant ID.

	Assignee                string `json:"assignee,omitempty"`                // Assignee of the linked task.
	CalledCaseInstanceId    string `json:"calledCaseInstanceId,omitempty"`    // ID of the case instance, created by a call activity.
	CalledProcessInstanceId string `json:"calledProcessInstanceId,omitempty"` // ID of the process instance, created by a call activity.
	TaskId                  string `json:"taskId,omitempty"`                  // ID of the linked task.

	DurationInMillis *int64     `json:"durationInMillis,omitempty"` // Derived from start and end time.
	EndTime          *time.Time `json:"endTime,omitempty"`          // End time, nil while running.
	IsCanceled       bool       `json:"canceled"`                   // Determines if the instance ended by a forced termination.
	IsCompleteScope  bool       `json:"completeScope"`              // Determines if the instance ended by completing its scope.
	SequenceCounter  int64      `json:"sequenceCounter"`            // Position within the record, used as tie-breaker.
	StartTime        time.Time  `json:"startTime"`                  // Start time.
}

// Duration returns the raw duration between start and end time, or 0 while running.
func (v HistoricActivityInstance) Duration() time.Duration {
	if v.EndTime == nil {
		return 0
	}
	return v.EndTime.Sub(v.StartTime)
}

var HistoricActivityInstanceSortProperties = []string{
	"activityId",
	"activityInstanceId",
	"activityName",
	"activityType",
	"durationInMillis",
	"endTime",
	"executionId",
	"processDefinitionId",
	"processInstanceId",
	"sequenceCounter",
	"startTime",
	"tenantId",
}

type HistoricActivityInstanceCriteria struct {
	ActivityInstanceId  string   `json:"activityInstanceId,omitempty"`
	ActivityId          string   `json:"activityId,omitempty"`
	ActivityName        string   `json:"activityName,omitempty"`
	ActivityNameLike    string   `json:"activityNameLike,omitempty"`
	ActivityType        string   `json:"activityType,omitempty"`
	ExecutionId         string   `json:"executionId,omitempty"`
	ProcessDefinitionId string   `json:"processDefinitionId,omitempty"`
	ProcessInstanceId   string   `json:"processInstanceId,omitempty"`
	TaskAssignee        string   `json:"taskAssignee,omitempty"`
	TenantIdIn          []string `json:"tenantIdIn,omitempty"`

	Canceled      bool `json:"canceled,omitempty"`
	CompleteScope bool `json:"completeScope,omitempty"`
	Finished      bool `json:"finished,omitempty"`
	Unfinished    bool `json:"unfinished,omitempty"`

	FinishedAfter  *time.Time `json:"finishedAfter,omitempty"`
	FinishedBefore *time.Time `json:"finishedBefore,omitempty"`
	StartedAfter   *time.Time `json:"startedAfter,omitempty"`
	StartedBefore  *time.Time `json:"startedBefore,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricActivityInstanceCriteria) Validate() error {
	if c.CompleteScope && c.Canceled {
		return validationError("completeScope and canceled filters cannot be combined")
	}
	if c.Finished && c.Unfinished {
		return validationError("finished and unfinished filters cannot be combined")
	}
	if c.Unfinished && (c.CompleteScope || c.Canceled) {
		return validationError("unfinished filter cannot be combined with completeScope or canceled")
	}
	return validateSorting(c.Sorting, HistoricActivityInstanceSortProperties)
}

// HistoricActivityInstanceQuery is an immutable query for historic activity instances.
type HistoricActivityInstanceQuery struct {
	e   QueryExecutor
	c   HistoricActivityInstanceCriteria
	err error
}

func (q HistoricActivityInstanceQuery) ActivityId(v string) HistoricActivityInstanceQuery {
	q.c.ActivityId = v
	q.err = firstError(q.err, requireValue("activity ID", v))
	return q
}

func (q HistoricActivityInstanceQuery) ActivityInstanceId(v string) HistoricActivityInstanceQuery {
	q.c.ActivityInstanceId = v
	q.err = firstError(q.err, requireValue("activity instance ID", v))
	return q
}

func (q HistoricActivityInstanceQuery) ActivityName(v string) HistoricActivityInstanceQuery {
	q.c.ActivityName = v
	q.err = firstError(q.err, requireValue("activity name", v))
	return q
}

func (q HistoricActivityInstanceQuery) ActivityNameLike(v string) HistoricActivityInstanceQuery {
	q.c.ActivityNameLike = v
	q.err = firstError(q.err, requireValue("activity name like", v))
	return q
}

func (q HistoricActivityInstanceQuery) ActivityType(v string) HistoricActivityInstanceQuery {
	q.c.ActivityType = v
	q.err = firstError(q.err, requireValue("activity type", v))
	return q
}

func (q HistoricActivityInstanceQuery) Canceled() HistoricActivityInstanceQuery {
	q.c.Canceled = true
	return q
}

func (q HistoricActivityInstanceQuery) CompleteScope() HistoricActivityInstanceQuery {
	q.c.CompleteScope = true
	return q
}

func (q HistoricActivityInstanceQuery) ExecutionId(v string) HistoricActivityInstanceQuery {
	q.c.ExecutionId = v
	q.err = firstError(q.err, requireValue("execution ID", v))
	return q
}

func (q HistoricActivityInstanceQuery) Finished() HistoricActivityInstanceQuery {
	q.c.Finished = true
	return q
}

func (q HistoricActivityInstanceQuery) FinishedAfter(v time.Time) HistoricActivityInstanceQuery {
	q.c.FinishedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("finished after", v))
	return q
}

func (q HistoricActivityInstanceQuery) FinishedBefore(v time.Time) HistoricActivityInstanceQuery {
	q.c.FinishedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("finished before", v))
	return q
}

func (q HistoricActivityInstanceQuery) ProcessDefinitionId(v string) HistoricActivityInstanceQuery {
	q.c.ProcessDefinitionId = v
	q.err = firstError(q.err, requireValue("process definition ID", v))
	return q
}

func (q HistoricActivityInstanceQuery) ProcessInstanceId(v string) HistoricActivityInstanceQuery {
	q.c.ProcessInstanceId = v
	q.err = firstError(q.err, requireValue("process instance ID", v))
	return q
}

func (q HistoricActivityInstanceQuery) StartedAfter(v time.Time) HistoricActivityInstanceQuery {
	q.c.StartedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("started after", v))
	return q
}

func (q HistoricActivityInstanceQuery) StartedBefore(v time.Time) HistoricActivityInstanceQuery {
	q.c.StartedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("started before", v))
	return q
}

func (q HistoricActivityInstanceQuery) TaskAssignee(v string) HistoricActivityInstanceQuery {
	q.c.TaskAssignee = v
	q.err = firstError(q.err, requireValue("task assignee", v))
	return q
}

func (q HistoricActivityInstanceQuery) TenantIdIn(v ...string) HistoricActivityInstanceQuery {
	q.c.TenantIdIn = v
	q.err = firstError(q.err, requireValues("tenant IDs", v))
	return q
}

func (q HistoricActivityInstanceQuery) Unfinished() HistoricActivityInstanceQuery {
	q.c.Unfinished = true
	return q
}

func (q HistoricActivityInstanceQuery) OrderByActivityId() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("activityId")
}

func (q HistoricActivityInstanceQuery) OrderByActivityInstanceId() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("activityInstanceId")
}

func (q HistoricActivityInstanceQuery) OrderByActivityName() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("activityName")
}

func (q HistoricActivityInstanceQuery) OrderByActivityType() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("activityType")
}

func (q HistoricActivityInstanceQuery) OrderByDuration() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("durationInMillis")
}

func (q HistoricActivityInstanceQuery) OrderByEndTime() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("endTime")
}

func (q HistoricActivityInstanceQuery) OrderByExecutionId() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("executionId")
}

// OrderPartiallyByOccurrence sorts by the sequence counter, which reflects the order of recording.
func (q HistoricActivityInstanceQuery) OrderPartiallyByOccurrence() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("sequenceCounter")
}

func (q HistoricActivityInstanceQuery) OrderByProcessDefinitionId() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("processDefinitionId")
}

func (q HistoricActivityInstanceQuery) OrderByProcessInstanceId() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("processInstanceId")
}

func (q HistoricActivityInstanceQuery) OrderByStartTime() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("startTime")
}

func (q HistoricActivityInstanceQuery) OrderByTenantId() Ordering[HistoricActivityInstanceQuery] {
	return q.orderBy("tenantId")
}

func (q HistoricActivityInstanceQuery) orderBy(property string) Ordering[HistoricActivityInstanceQuery] {
	return newOrdering(func(d SortDirection) HistoricActivityInstanceQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, property, d)
		return q
	})
}

func (q HistoricActivityInstanceQuery) Criteria() HistoricActivityInstanceCriteria {
	return q.c
}

// Err returns the first usage error, caused by a filter method.
func (q HistoricActivityInstanceQuery) Err() error {
	return q.err
}

func (q HistoricActivityInstanceQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricActivityInstanceQuery) List(ctx context.Context) ([]HistoricActivityInstance, error) {
	return executeList[HistoricActivityInstance](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricActivityInstanceQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricActivityInstance, error) {
	return executeListPage[HistoricActivityInstance](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricActivityInstanceQuery) SingleResult(ctx context.Context) (*HistoricActivityInstance, error) {
	return executeSingleResult[HistoricActivityInstance](ctx, q.e, q.c, q.err)
}
