package history

import (
	"context"
	"time"
)

// HistoricTaskInstance is the record of a user task.
//
// A task belongs either to a process instance or to a case instance, or to none if it is standalone.
type HistoricTaskInstance struct {
	Id           string `json:"id"`                     // Task ID.
	ParentTaskId string `json:"parentTaskId,omitempty"` // ID of the parent task.

	Assignee          string     `json:"assignee,omitempty"`          // Assignee.
	DeleteReason      string     `json:"deleteReason,omitempty"`      // Reason of the completion or deletion.
	Description       string     `json:"description,omitempty"`       // Description.
	DueDate           *time.Time `json:"dueDate,omitempty"`           // Due date.
	FollowUpDate      *time.Time `json:"followUpDate,omitempty"`      // Follow-up date.
	Name              string     `json:"name,omitempty"`              // Name.
	Owner             string     `json:"owner,omitempty"`             // Owner.
	Priority          int        `json:"priority"`                    // Priority.
	State             TaskState  `json:"taskState"`                   // Current state.
	TaskDefinitionKey string     `json:"taskDefinitionKey,omitempty"` // Key of the task definition.
	TenantId          string     `json:"tenantId,omitempty"`          // Tenant ID.

	ActivityInstanceId   string `json:"activityInstanceId,omitempty"`   // ID of the owning activity instance, fixed at creation.
	ExecutionId          string `json:"executionId,omitempty"`          // ID of the execution.
	ProcessDefinitionId  string `json:"processDefinitionId,omitempty"`  // ID of the process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey,omitempty"` // Key of the process definition.
	ProcessInstanceId    string `json:"processInstanceId,omitempty"`    // ID of the process instance.

	CaseDefinitionId string `json:"caseDefinitionId,omitempty"` // ID of the case definition.
	CaseExecutionId  string `json:"caseExecutionId,omitempty"`  // ID of the case execution.
	CaseInstanceId   string `json:"caseInstanceId,omitempty"`   // ID of the case instance.

	DurationInMillis *int64     `json:"durationInMillis,omitempty"` // Derived from start and end time.
	EndTime          *time.Time `json:"endTime,omitempty"`          // End time, nil until completed or deleted.
	SequenceCounter  int64      `json:"sequenceCounter"`            // Position within the record, used as tie-breaker.
	StartTime        time.Time  `json:"startTime"`                  // Creation time.
}

// Duration returns the raw duration between start and end time, or 0 while open.
func (v HistoricTaskInstance) Duration() time.Duration {
	if v.EndTime == nil {
		return 0
	}
	return v.EndTime.Sub(v.StartTime)
}

var HistoricTaskInstanceSortProperties = []string{
	"caseDefinitionId",
	"caseExecutionId",
	"caseInstanceId",
	"deleteReason",
	"durationInMillis",
	"endTime",
	"executionId",
	"processDefinitionId",
	"processInstanceId",
	"sequenceCounter",
	"startTime",
	"taskAssignee",
	"taskDefinitionKey",
	"taskDescription",
	"taskDueDate",
	"taskFollowUpDate",
	"taskId",
	"taskName",
	"taskOwner",
	"taskPriority",
	"tenantId",
}

type HistoricTaskInstanceCriteria struct {
	TaskId               string    `json:"taskId,omitempty"`
	TaskAssignee         string    `json:"taskAssignee,omitempty"`
	TaskAssigneeLike     string    `json:"taskAssigneeLike,omitempty"`
	TaskDefinitionKey    string    `json:"taskDefinitionKey,omitempty"`
	TaskDefinitionKeyIn  []string  `json:"taskDefinitionKeyIn,omitempty"`
	TaskDeleteReason     string    `json:"taskDeleteReason,omitempty"`
	TaskDeleteReasonLike string    `json:"taskDeleteReasonLike,omitempty"`
	TaskDescription      string    `json:"taskDescription,omitempty"`
	TaskDescriptionLike  string    `json:"taskDescriptionLike,omitempty"`
	TaskName             string    `json:"taskName,omitempty"`
	TaskNameLike         string    `json:"taskNameLike,omitempty"`
	TaskOwner            string    `json:"taskOwner,omitempty"`
	TaskOwnerLike        string    `json:"taskOwnerLike,omitempty"`
	TaskPriority         *int      `json:"taskPriority,omitempty"`
	TaskState            TaskState `json:"taskState,omitempty"`
	TenantIdIn           []string  `json:"tenantIdIn,omitempty"`

	ActivityInstanceIdIn []string `json:"activityInstanceIdIn,omitempty"`
	ExecutionId          string   `json:"executionId,omitempty"`
	ProcessDefinitionId  string   `json:"processDefinitionId,omitempty"`
	ProcessDefinitionKey string   `json:"processDefinitionKey,omitempty"`
	ProcessInstanceId    string   `json:"processInstanceId,omitempty"`

	CaseDefinitionId string `json:"caseDefinitionId,omitempty"`
	CaseExecutionId  string `json:"caseExecutionId,omitempty"`
	CaseInstanceId   string `json:"caseInstanceId,omitempty"`

	Finished          bool `json:"finished,omitempty"`
	ProcessFinished   bool `json:"processFinished,omitempty"`
	ProcessUnfinished bool `json:"processUnfinished,omitempty"`
	Unfinished        bool `json:"unfinished,omitempty"`

	FinishedAfter      *time.Time `json:"finishedAfter,omitempty"`
	FinishedBefore     *time.Time `json:"finishedBefore,omitempty"`
	StartedAfter       *time.Time `json:"startedAfter,omitempty"`
	StartedBefore      *time.Time `json:"startedBefore,omitempty"`
	TaskDueAfter       *time.Time `json:"taskDueAfter,omitempty"`
	TaskDueBefore      *time.Time `json:"taskDueBefore,omitempty"`
	TaskDueDate        *time.Time `json:"taskDueDate,omitempty"`
	TaskFollowUpAfter  *time.Time `json:"taskFollowUpAfter,omitempty"`
	TaskFollowUpBefore *time.Time `json:"taskFollowUpBefore,omitempty"`
	TaskFollowUpDate   *time.Time `json:"taskFollowUpDate,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricTaskInstanceCriteria) Validate() error {
	if c.Finished && c.Unfinished {
		return validationError("finished and unfinished filters cannot be combined")
	}
	if c.ProcessFinished && c.ProcessUnfinished {
		return validationError("processFinished and processUnfinished filters cannot be combined")
	}
	return validateSorting(c.Sorting, HistoricTaskInstanceSortProperties)
}

// HistoricTaskInstanceQuery is an immutable query for historic task instances.
type HistoricTaskInstanceQuery struct {
	e   QueryExecutor
	c   HistoricTaskInstanceCriteria
	err error
}

func (q HistoricTaskInstanceQuery) ActivityInstanceIdIn(v ...string) HistoricTaskInstanceQuery {
	q.c.ActivityInstanceIdIn = v
	q.err = firstError(q.err, requireValues("activity instance IDs", v))
	return q
}

func (q HistoricTaskInstanceQuery) CaseDefinitionId(v string) HistoricTaskInstanceQuery {
	q.c.CaseDefinitionId = v
	q.err = firstError(q.err, requireValue("case definition ID", v))
	return q
}

func (q HistoricTaskInstanceQuery) CaseExecutionId(v string) HistoricTaskInstanceQuery {
	q.c.CaseExecutionId = v
	q.err = firstError(q.err, requireValue("case execution ID", v))
	return q
}

func (q HistoricTaskInstanceQuery) CaseInstanceId(v string) HistoricTaskInstanceQuery {
	q.c.CaseInstanceId = v
	q.err = firstError(q.err, requireValue("case instance ID", v))
	return q
}

func (q HistoricTaskInstanceQuery) ExecutionId(v string) HistoricTaskInstanceQuery {
	q.c.ExecutionId = v
	q.err = firstError(q.err, requireValue("execution ID", v))
	return q
}

func (q HistoricTaskInstanceQuery) Finished() HistoricTaskInstanceQuery {
	q.c.Finished = true
	return q
}

func (q HistoricTaskInstanceQuery) FinishedAfter(v time.Time) HistoricTaskInstanceQuery {
	q.c.FinishedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("finished after", v))
	return q
}

func (q HistoricTaskInstanceQuery) FinishedBefore(v time.Time) HistoricTaskInstanceQuery {
	q.c.FinishedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("finished before", v))
	return q
}

func (q HistoricTaskInstanceQuery) ProcessDefinitionId(v string) HistoricTaskInstanceQuery {
	q.c.ProcessDefinitionId = v
	q.err = firstError(q.err, requireValue("process definition ID", v))
	return q
}

func (q HistoricTaskInstanceQuery) ProcessDefinitionKey(v string) HistoricTaskInstanceQuery {
	q.c.ProcessDefinitionKey = v
	q.err = firstError(q.err, requireValue("process definition key", v))
	return q
}

// ProcessFinished filters tasks, whose process instance has ended.
func (q HistoricTaskInstanceQuery) ProcessFinished() HistoricTaskInstanceQuery {
	q.c.ProcessFinished = true
	return q
}

func (q HistoricTaskInstanceQuery) ProcessInstanceId(v string) HistoricTaskInstanceQuery {
	q.c.ProcessInstanceId = v
	q.err = firstError(q.err, requireValue("process instance ID", v))
	return q
}

// ProcessUnfinished filters tasks, whose process instance is still running.
func (q HistoricTaskInstanceQuery) ProcessUnfinished() HistoricTaskInstanceQuery {
	q.c.ProcessUnfinished = true
	return q
}

func (q HistoricTaskInstanceQuery) StartedAfter(v time.Time) HistoricTaskInstanceQuery {
	q.c.StartedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("started after", v))
	return q
}

func (q HistoricTaskInstanceQuery) StartedBefore(v time.Time) HistoricTaskInstanceQuery {
	q.c.StartedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("started before", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskAssignee(v string) HistoricTaskInstanceQuery {
	q.c.TaskAssignee = v
	q.err = firstError(q.err, requireValue("task assignee", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskAssigneeLike(v string) HistoricTaskInstanceQuery {
	q.c.TaskAssigneeLike = v
	q.err = firstError(q.err, requireValue("task assignee like", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDefinitionKey(v string) HistoricTaskInstanceQuery {
	q.c.TaskDefinitionKey = v
	q.err = firstError(q.err, requireValue("task definition key", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDefinitionKeyIn(v ...string) HistoricTaskInstanceQuery {
	q.c.TaskDefinitionKeyIn = v
	q.err = firstError(q.err, requireValues("task definition keys", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDeleteReason(v string) HistoricTaskInstanceQuery {
	q.c.TaskDeleteReason = v
	q.err = firstError(q.err, requireValue("task delete reason", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDeleteReasonLike(v string) HistoricTaskInstanceQuery {
	q.c.TaskDeleteReasonLike = v
	q.err = firstError(q.err, requireValue("task delete reason like", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDescription(v string) HistoricTaskInstanceQuery {
	q.c.TaskDescription = v
	q.err = firstError(q.err, requireValue("task description", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDescriptionLike(v string) HistoricTaskInstanceQuery {
	q.c.TaskDescriptionLike = v
	q.err = firstError(q.err, requireValue("task description like", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDueAfter(v time.Time) HistoricTaskInstanceQuery {
	q.c.TaskDueAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("task due after", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDueBefore(v time.Time) HistoricTaskInstanceQuery {
	q.c.TaskDueBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("task due before", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskDueDate(v time.Time) HistoricTaskInstanceQuery {
	q.c.TaskDueDate = timePtr(v)
	q.err = firstError(q.err, requireTime("task due date", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskFollowUpAfter(v time.Time) HistoricTaskInstanceQuery {
	q.c.TaskFollowUpAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("task follow-up after", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskFollowUpBefore(v time.Time) HistoricTaskInstanceQuery {
	q.c.TaskFollowUpBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("task follow-up before", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskFollowUpDate(v time.Time) HistoricTaskInstanceQuery {
	q.c.TaskFollowUpDate = timePtr(v)
	q.err = firstError(q.err, requireTime("task follow-up date", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskId(v string) HistoricTaskInstanceQuery {
	q.c.TaskId = v
	q.err = firstError(q.err, requireValue("task ID", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskName(v string) HistoricTaskInstanceQuery {
	q.c.TaskName = v
	q.err = firstError(q.err, requireValue("task name", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskNameLike(v string) HistoricTaskInstanceQuery {
	q.c.TaskNameLike = v
	q.err = firstError(q.err, requireValue("task name like", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskOwner(v string) HistoricTaskInstanceQuery {
	q.c.TaskOwner = v
	q.err = firstError(q.err, requireValue("task owner", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskOwnerLike(v string) HistoricTaskInstanceQuery {
	q.c.TaskOwnerLike = v
	q.err = firstError(q.err, requireValue("task owner like", v))
	return q
}

func (q HistoricTaskInstanceQuery) TaskPriority(v int) HistoricTaskInstanceQuery {
	q.c.TaskPriority = &v
	return q
}

func (q HistoricTaskInstanceQuery) TaskState(v TaskState) HistoricTaskInstanceQuery {
	q.c.TaskState = v
	if v == 0 {
		q.err = firstError(q.err, requireValue("task state", ""))
	}
	return q
}

func (q HistoricTaskInstanceQuery) TenantIdIn(v ...string) HistoricTaskInstanceQuery {
	q.c.TenantIdIn = v
	q.err = firstError(q.err, requireValues("tenant IDs", v))
	return q
}

func (q HistoricTaskInstanceQuery) Unfinished() HistoricTaskInstanceQuery {
	q.c.Unfinished = true
	return q
}

func (q HistoricTaskInstanceQuery) OrderByCaseDefinitionId() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("caseDefinitionId")
}

func (q HistoricTaskInstanceQuery) OrderByCaseExecutionId() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("caseExecutionId")
}

func (q HistoricTaskInstanceQuery) OrderByCaseInstanceId() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("caseInstanceId")
}

func (q HistoricTaskInstanceQuery) OrderByDeleteReason() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("deleteReason")
}

func (q HistoricTaskInstanceQuery) OrderByDuration() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("durationInMillis")
}

func (q HistoricTaskInstanceQuery) OrderByEndTime() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("endTime")
}

func (q HistoricTaskInstanceQuery) OrderByExecutionId() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("executionId")
}

func (q HistoricTaskInstanceQuery) OrderByProcessDefinitionId() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("processDefinitionId")
}

func (q HistoricTaskInstanceQuery) OrderByProcessInstanceId() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("processInstanceId")
}

func (q HistoricTaskInstanceQuery) OrderByStartTime() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("startTime")
}

func (q HistoricTaskInstanceQuery) OrderByTaskAssignee() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskAssignee")
}

func (q HistoricTaskInstanceQuery) OrderByTaskDefinitionKey() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskDefinitionKey")
}

func (q HistoricTaskInstanceQuery) OrderByTaskDescription() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskDescription")
}

func (q HistoricTaskInstanceQuery) OrderByTaskDueDate() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskDueDate")
}

func (q HistoricTaskInstanceQuery) OrderByTaskFollowUpDate() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskFollowUpDate")
}

func (q HistoricTaskInstanceQuery) OrderByTaskId() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskId")
}

func (q HistoricTaskInstanceQuery) OrderByTaskName() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskName")
}

func (q HistoricTaskInstanceQuery) OrderByTaskOwner() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskOwner")
}

func (q HistoricTaskInstanceQuery) OrderByTaskPriority() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("taskPriority")
}

func (q HistoricTaskInstanceQuery) OrderByTenantId() Ordering[HistoricTaskInstanceQuery] {
	return q.orderBy("tenantId")
}

func (q HistoricTaskInstanceQuery) orderBy(property string) Ordering[HistoricTaskInstanceQuery] {
	return newOrdering(func(d SortDirection) HistoricTaskInstanceQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, property, d)
		return q
	})
}

func (q HistoricTaskInstanceQuery) Criteria() HistoricTaskInstanceCriteria {
	return q.c
}

func (q HistoricTaskInstanceQuery) Err() error {
	return q.err
}

func (q HistoricTaskInstanceQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricTaskInstanceQuery) List(ctx context.Context) ([]HistoricTaskInstance, error) {
	return executeList[HistoricTaskInstance](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricTaskInstanceQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricTaskInstance, error) {
	return executeListPage[HistoricTaskInstance](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricTaskInstanceQuery) SingleResult(ctx context.Context) (*HistoricTaskInstance, error) {
	return executeSingleResult[HistoricTaskInstance](ctx, q.e, q.c, q.err)
}
