package history

import (
	"time"
)

// StartProcessInstanceCmd provides data for the start of a process instance.
//
// At most one of SuperProcessInstanceId, SuperCaseInstanceId and CaseInstanceId can be set.
type StartProcessInstanceCmd struct {
	// Process instance ID.
	Id string `json:"id" validate:"required"`

	// Optional key, used to correlate a process instance with a business entity.
	BusinessKey string `json:"businessKey,omitempty"`
	// ID of the process definition.
	ProcessDefinitionId string `json:"processDefinitionId" validate:"required"`
	// Key of the process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey" validate:"required"`
	// ID of the start activity.
	StartActivityId string `json:"startActivityId,omitempty"`
	// ID of the user, who started the instance.
	StartUserId string `json:"startUserId,omitempty"`
	// Tenant ID.
	TenantId string `json:"tenantId,omitempty"`

	// ID of the case instance, the process instance belongs to.
	CaseInstanceId string `json:"caseInstanceId,omitempty" validate:"excluded_with=SuperProcessInstanceId SuperCaseInstanceId"`
	// ID of the calling case instance.
	SuperCaseInstanceId string `json:"superCaseInstanceId,omitempty" validate:"excluded_with=SuperProcessInstanceId CaseInstanceId"`
	// ID of the calling process instance.
	SuperProcessInstanceId string `json:"superProcessInstanceId,omitempty" validate:"excluded_with=SuperCaseInstanceId CaseInstanceId"`
	// Optional ID of the calling activity instance, which records the started process instance as called process instance.
	SuperActivityInstanceId string `json:"superActivityInstanceId,omitempty"`
}

// EndProcessInstanceCmd provides data for the regular end of a process instance.
type EndProcessInstanceCmd struct {
	// Process instance ID.
	Id string `json:"id" validate:"required"`
	// ID of the end activity.
	EndActivityId string `json:"endActivityId,omitempty"`
}

// DeleteProcessInstanceCmd provides data for the deletion of a running process instance.
type DeleteProcessInstanceCmd struct {
	// Process instance ID.
	Id string `json:"id" validate:"required"`
	// Reason of the deletion.
	DeleteReason string `json:"deleteReason" validate:"required"`
	// If true, running sub process instances are not deleted, but detached from the process instance.
	SkipSubprocesses bool `json:"skipSubprocesses,omitempty"`
}

// StartActivityInstanceCmd provides data for the start of an activity instance.
type StartActivityInstanceCmd struct {
	// Optional activity instance ID. If empty, an ID is generated.
	Id string `json:"id,omitempty"`

	// ID of the activity within the process model.
	ActivityId string `json:"activityId" validate:"required"`
	// Name of the activity.
	ActivityName string `json:"activityName,omitempty"`
	// Type tag of the activity - see package model.
	ActivityType string `json:"activityType" validate:"required"`
	// ID of the execution.
	ExecutionId string `json:"executionId,omitempty"`
	// ID of the enclosing scope's activity instance - e.g. the multi instance body of an iteration.
	ParentActivityInstanceId string `json:"parentActivityInstanceId,omitempty"`
	// ID of the process instance.
	ProcessInstanceId string `json:"processInstanceId" validate:"required"`
}

// EndActivityInstanceCmd provides data for the end of an activity instance.
type EndActivityInstanceCmd struct {
	// Activity instance ID.
	Id string `json:"id" validate:"required"`
	// Classification of the end.
	State ActivityEndState `json:"state" validate:"required"`
}

// ReparentActivityInstanceCmd provides data for moving an activity instance into another scope.
type ReparentActivityInstanceCmd struct {
	// Activity instance ID.
	Id string `json:"id" validate:"required"`
	// ID of the new parent activity instance.
	ParentActivityInstanceId string `json:"parentActivityInstanceId" validate:"required"`
}

// CreateCaseInstanceCmd provides data for the creation of a case instance.
type CreateCaseInstanceCmd struct {
	// Case instance ID.
	Id string `json:"id" validate:"required"`

	// Optional key, used to correlate a case instance with a business entity.
	BusinessKey string `json:"businessKey,omitempty"`
	// ID of the case definition.
	CaseDefinitionId string `json:"caseDefinitionId" validate:"required"`
	// Key of the case definition.
	CaseDefinitionKey string `json:"caseDefinitionKey" validate:"required"`
	// ID of the user, who created the instance.
	CreateUserId string `json:"createUserId,omitempty"`
	// Initial state - if not set, the state is ACTIVE.
	State CaseInstanceState `json:"state,omitempty"`
	// Tenant ID.
	TenantId string `json:"tenantId,omitempty"`

	// ID of the calling case instance.
	SuperCaseInstanceId string `json:"superCaseInstanceId,omitempty" validate:"excluded_with=SuperProcessInstanceId"`
	// ID of the calling process instance.
	SuperProcessInstanceId string `json:"superProcessInstanceId,omitempty" validate:"excluded_with=SuperCaseInstanceId"`
	// Optional ID of the calling activity instance, which records the created case instance as called case instance.
	SuperActivityInstanceId string `json:"superActivityInstanceId,omitempty"`
}

// UpdateCaseInstanceStateCmd provides data for a state change of a case instance.
type UpdateCaseInstanceStateCmd struct {
	// Case instance ID.
	Id string `json:"id" validate:"required"`
	// New state.
	State CaseInstanceState `json:"state" validate:"required"`
}

// CreateTaskCmd provides data for the creation of a user task.
//
// A task belongs either to a process instance or to a case instance.
type CreateTaskCmd struct {
	// Task ID.
	Id string `json:"id" validate:"required"`

	Assignee          string     `json:"assignee,omitempty"`
	Description       string     `json:"description,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	FollowUpDate      *time.Time `json:"followUpDate,omitempty"`
	Name              string     `json:"name,omitempty"`
	Owner             string     `json:"owner,omitempty"`
	ParentTaskId      string     `json:"parentTaskId,omitempty"`
	Priority          int        `json:"priority,omitempty"`
	TaskDefinitionKey string     `json:"taskDefinitionKey,omitempty"`
	TenantId          string     `json:"tenantId,omitempty"`

	// ID of the owning activity instance. It is fixed for the lifetime of the task.
	ActivityInstanceId string `json:"activityInstanceId,omitempty"`
	// ID of the execution.
	ExecutionId string `json:"executionId,omitempty"`
	// ID of the process instance.
	ProcessInstanceId string `json:"processInstanceId,omitempty" validate:"excluded_with=CaseInstanceId"`

	// ID of the case definition.
	CaseDefinitionId string `json:"caseDefinitionId,omitempty"`
	// ID of the case execution.
	CaseExecutionId string `json:"caseExecutionId,omitempty"`
	// ID of the case instance.
	CaseInstanceId string `json:"caseInstanceId,omitempty" validate:"excluded_with=ProcessInstanceId"`
}

// UpdateTaskCmd provides data for the mutation of a user task. A nil field is not changed.
//
// A command without any change is recorded as explicit save.
type UpdateTaskCmd struct {
	// Task ID.
	Id string `json:"id" validate:"required"`

	Assignee     *string    `json:"assignee,omitempty"`
	Description  *string    `json:"description,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty"`
	Name         *string    `json:"name,omitempty"`
	Owner        *string    `json:"owner,omitempty"`
	ParentTaskId *string    `json:"parentTaskId,omitempty"`
	Priority     *int       `json:"priority,omitempty"`
}

// CompleteTaskCmd provides data for the completion of a user task.
type CompleteTaskCmd struct {
	// Task ID.
	Id string `json:"id" validate:"required"`
}

// DeleteTaskCmd provides data for the deletion of a user task.
type DeleteTaskCmd struct {
	// Task ID.
	Id string `json:"id" validate:"required"`
	// Reason of the deletion.
	DeleteReason string `json:"deleteReason,omitempty"`
}

// VariableScope identifies the scope of a variable. A variable is identified by its name and scope.
type VariableScope struct {
	ActivityInstanceId string `json:"activityInstanceId,omitempty"`
	CaseExecutionId    string `json:"caseExecutionId,omitempty"`
	CaseInstanceId     string `json:"caseInstanceId,omitempty"`
	ExecutionId        string `json:"executionId,omitempty"`
	ProcessInstanceId  string `json:"processInstanceId,omitempty"`
	TaskId             string `json:"taskId,omitempty"`
}

// SetVariableCmd provides data for the creation or update of a variable.
type SetVariableCmd struct {
	VariableScope

	// Variable name.
	Name string `json:"name" validate:"required"`
	// Tenant ID.
	TenantId string `json:"tenantId,omitempty"`
	// Value to set.
	Value TypedValue `json:"value"`

	// Determines if the update was detected on a mutable value in place, rather than being an explicit replace.
	// Implicit updates are discarded, if the scope ends within the same transaction.
	Implicit bool `json:"implicit,omitempty"`
}

// RemoveVariableCmd provides data for the removal of a variable.
type RemoveVariableCmd struct {
	VariableScope

	// Variable name.
	Name string `json:"name" validate:"required"`
}

// CreateJobCmd provides data for the creation of a job.
type CreateJobCmd struct {
	// Job ID.
	JobId string `json:"jobId" validate:"required"`

	JobDefinitionConfiguration string     `json:"jobDefinitionConfiguration,omitempty"`
	JobDefinitionId            string     `json:"jobDefinitionId,omitempty"`
	JobDefinitionType          string     `json:"jobDefinitionType,omitempty"`
	DueDate                    *time.Time `json:"dueDate,omitempty"`
	Priority                   int64      `json:"priority,omitempty"`
	Retries                    int        `json:"retries" validate:"gte=0"`

	ActivityId        string `json:"activityId,omitempty"`
	DeploymentId      string `json:"deploymentId,omitempty"`
	ExecutionId       string `json:"executionId,omitempty"`
	ProcessInstanceId string `json:"processInstanceId,omitempty"`
	TenantId          string `json:"tenantId,omitempty"`
}

// FailJobCmd provides data for a failed job execution.
type FailJobCmd struct {
	// Job ID.
	JobId string `json:"jobId" validate:"required"`

	// Exception message, truncated before it is stored.
	ExceptionMessage string `json:"exceptionMessage,omitempty"`
	// Full exception stacktrace, stored separately.
	ExceptionStacktrace string `json:"exceptionStacktrace,omitempty"`
	// ID of the activity, that failed.
	FailedActivityId string `json:"failedActivityId,omitempty"`
	// Remaining retries of the job.
	Retries int `json:"retries" validate:"gte=0"`
}

// SucceedJobCmd provides data for a successful job execution.
type SucceedJobCmd struct {
	// Job ID.
	JobId string `json:"jobId" validate:"required"`
}

// DeleteJobCmd provides data for the deletion of a job.
type DeleteJobCmd struct {
	// Job ID.
	JobId string `json:"jobId" validate:"required"`
}

// CreateIncidentCmd provides data for the creation of an incident.
type CreateIncidentCmd struct {
	// Optional incident ID. If empty, an ID is generated.
	Id string `json:"id,omitempty"`

	// Type, e.g. "failedJob".
	IncidentType string `json:"incidentType" validate:"required"`
	// Message, describing the incident.
	IncidentMessage string `json:"incidentMessage,omitempty"`

	ActivityId          string `json:"activityId,omitempty"`
	ActivityInstanceId  string `json:"activityInstanceId,omitempty"`
	CauseIncidentId     string `json:"causeIncidentId,omitempty"`
	Configuration       string `json:"configuration,omitempty"`
	ExecutionId         string `json:"executionId,omitempty"`
	FailedActivityId    string `json:"failedActivityId,omitempty"`
	JobDefinitionId     string `json:"jobDefinitionId,omitempty"`
	ProcessInstanceId   string `json:"processInstanceId,omitempty"`
	RootCauseIncidentId string `json:"rootCauseIncidentId,omitempty"`
	TenantId            string `json:"tenantId,omitempty"`
}

// ResolveIncidentCmd provides data for the resolution of an incident.
type ResolveIncidentCmd struct {
	// Incident ID.
	Id string `json:"id" validate:"required"`
}

// DeleteIncidentCmd provides data for the deletion of an incident.
type DeleteIncidentCmd struct {
	// Incident ID.
	Id string `json:"id" validate:"required"`
}

// DeleteHistoricProcessInstanceCmd provides data for the deletion of an ended historic process instance.
type DeleteHistoricProcessInstanceCmd struct {
	// Process instance ID.
	Id string `json:"id" validate:"required"`
	// If true, an unknown ID is ignored. Otherwise an error of type [ErrorNotFound] is returned.
	IfExists bool `json:"ifExists,omitempty"`
}

// CleanupHistoryCmd provides data for a history cleanup run.
type CleanupHistoryCmd struct {
	// Ended root process instances and closed case instances, which ended before this time, are removed.
	Before time.Time `json:"before" validate:"required"`
	// Maximum number of root process instances and case instances to remove.
	BatchSize int `json:"batchSize" validate:"gte=1"`
}
