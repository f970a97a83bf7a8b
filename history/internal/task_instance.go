package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	taskCompletedReason = "completed"
	taskDeletedReason   = "deleted"
)

type TaskInstanceEntity struct {
	Id           string
	ParentTaskId pgtype.Text

	Assignee          pgtype.Text
	DeleteReason      pgtype.Text
	Description       pgtype.Text
	DueDate           pgtype.Timestamp
	FollowUpDate      pgtype.Timestamp
	Name              pgtype.Text
	Owner             pgtype.Text
	Priority          int
	State             history.TaskState
	TaskDefinitionKey pgtype.Text
	TenantId          pgtype.Text

	ActivityInstanceId   pgtype.Text
	ExecutionId          pgtype.Text
	ProcessDefinitionId  pgtype.Text
	ProcessDefinitionKey pgtype.Text
	ProcessInstanceId    pgtype.Text

	CaseDefinitionId pgtype.Text
	CaseExecutionId  pgtype.Text
	CaseInstanceId   pgtype.Text

	DurationInMillis pgtype.Int8
	EndTime          pgtype.Timestamp
	SequenceCounter  int64
	StartTime        time.Time
}

func (e TaskInstanceEntity) HistoricTaskInstance() history.HistoricTaskInstance {
	return history.HistoricTaskInstance{
		Id:           e.Id,
		ParentTaskId: e.ParentTaskId.String,

		Assignee:          e.Assignee.String,
		DeleteReason:      e.DeleteReason.String,
		Description:       e.Description.String,
		DueDate:           timeOrNil(e.DueDate),
		FollowUpDate:      timeOrNil(e.FollowUpDate),
		Name:              e.Name.String,
		Owner:             e.Owner.String,
		Priority:          e.Priority,
		State:             e.State,
		TaskDefinitionKey: e.TaskDefinitionKey.String,
		TenantId:          e.TenantId.String,

		ActivityInstanceId:   e.ActivityInstanceId.String,
		ExecutionId:          e.ExecutionId.String,
		ProcessDefinitionId:  e.ProcessDefinitionId.String,
		ProcessDefinitionKey: e.ProcessDefinitionKey.String,
		ProcessInstanceId:    e.ProcessInstanceId.String,

		CaseDefinitionId: e.CaseDefinitionId.String,
		CaseExecutionId:  e.CaseExecutionId.String,
		CaseInstanceId:   e.CaseInstanceId.String,

		DurationInMillis: int8OrNil(e.DurationInMillis),
		EndTime:          timeOrNil(e.EndTime),
		SequenceCounter:  e.SequenceCounter,
		StartTime:        e.StartTime,
	}
}

type TaskInstanceRepository interface {
	Insert(*TaskInstanceEntity) error
	Select(id string) (*TaskInstanceEntity, error)
	// SelectOpenByProcessInstance selects all tasks of a process instance, which have been neither completed nor deleted.
	SelectOpenByProcessInstance(processInstanceId string) ([]*TaskInstanceEntity, error)
	Update(*TaskInstanceEntity) error
	Delete(id string) error
	DeleteByOwners(Owners) error

	Query(history.HistoricTaskInstanceCriteria, history.QueryOptions) ([]*TaskInstanceEntity, error)
	Count(history.HistoricTaskInstanceCriteria) (int, error)
}

func CreateTask(ctx Context, cmd history.CreateTaskCmd) error {
	if err := validateCmd("failed to create task", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryTaskInstance) {
		return nil
	}

	if _, err := ctx.TaskInstances().Select(cmd.Id); err == nil {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to create task",
			Detail: fmt.Sprintf("task %s has already been created", cmd.Id),
		}
	} else if err != pgx.ErrNoRows {
		return err
	}

	sequenceCounter, err := nextSequenceCounter(ctx)
	if err != nil {
		return err
	}

	taskInstance := TaskInstanceEntity{
		Id:           cmd.Id,
		ParentTaskId: text(cmd.ParentTaskId),

		Assignee:          text(cmd.Assignee),
		Description:       text(cmd.Description),
		DueDate:           timestampOrNull(cmd.DueDate),
		FollowUpDate:      timestampOrNull(cmd.FollowUpDate),
		Name:              text(cmd.Name),
		Owner:             text(cmd.Owner),
		Priority:          cmd.Priority,
		State:             history.TaskCreated,
		TaskDefinitionKey: text(cmd.TaskDefinitionKey),
		TenantId:          text(cmd.TenantId),

		ActivityInstanceId: text(cmd.ActivityInstanceId),
		ExecutionId:        text(cmd.ExecutionId),
		ProcessInstanceId:  text(cmd.ProcessInstanceId),

		CaseDefinitionId: text(cmd.CaseDefinitionId),
		CaseExecutionId:  text(cmd.CaseExecutionId),
		CaseInstanceId:   text(cmd.CaseInstanceId),

		SequenceCounter: sequenceCounter,
		StartTime:       ctx.Time(),
	}

	if cmd.ProcessInstanceId != "" {
		processInstance, err := ctx.ProcessInstances().Select(cmd.ProcessInstanceId)
		if err == pgx.ErrNoRows {
			return history.Error{
				Type:   history.ErrorNotFound,
				Title:  "failed to create task",
				Detail: fmt.Sprintf("process instance %s could not be found", cmd.ProcessInstanceId),
			}
		}
		if err != nil {
			return err
		}

		taskInstance.ProcessDefinitionId = text(processInstance.ProcessDefinitionId)
		taskInstance.ProcessDefinitionKey = text(processInstance.ProcessDefinitionKey)
		if !taskInstance.TenantId.Valid {
			taskInstance.TenantId = processInstance.TenantId
		}
	}

	if err := ctx.TaskInstances().Insert(&taskInstance); err != nil {
		return err
	}

	return linkActivityInstance(ctx, &taskInstance)
}

// linkActivityInstance mirrors task ID and assignee to the owning activity instance.
func linkActivityInstance(ctx Context, taskInstance *TaskInstanceEntity) error {
	if !taskInstance.ActivityInstanceId.Valid {
		return nil
	}

	activityInstance, err := ctx.ActivityInstances().Select(taskInstance.ActivityInstanceId.String)
	if err == pgx.ErrNoRows {
		return nil // not recorded
	}
	if err != nil {
		return err
	}

	activityInstance.Assignee = taskInstance.Assignee
	activityInstance.TaskId = text(taskInstance.Id)
	return ctx.ActivityInstances().Update(activityInstance)
}

func UpdateTask(ctx Context, cmd history.UpdateTaskCmd) error {
	if err := validateCmd("failed to update task", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryTaskInstance) {
		return nil
	}

	taskInstance, err := selectOpenTaskInstance(ctx, cmd.Id, "failed to update task")
	if err != nil {
		return err
	}

	assignee := taskInstance.Assignee

	if cmd.Assignee != nil {
		taskInstance.Assignee = text(*cmd.Assignee)
	}
	if cmd.Description != nil {
		taskInstance.Description = text(*cmd.Description)
	}
	if cmd.DueDate != nil {
		taskInstance.DueDate = timestampOrNull(cmd.DueDate)
	}
	if cmd.FollowUpDate != nil {
		taskInstance.FollowUpDate = timestampOrNull(cmd.FollowUpDate)
	}
	if cmd.Name != nil {
		taskInstance.Name = text(*cmd.Name)
	}
	if cmd.Owner != nil {
		taskInstance.Owner = text(*cmd.Owner)
	}
	if cmd.ParentTaskId != nil {
		taskInstance.ParentTaskId = text(*cmd.ParentTaskId)
	}
	if cmd.Priority != nil {
		taskInstance.Priority = *cmd.Priority
	}

	taskInstance.State = history.TaskUpdated

	if err := ctx.TaskInstances().Update(taskInstance); err != nil {
		return err
	}

	if taskInstance.Assignee != assignee {
		return linkActivityInstance(ctx, taskInstance)
	}
	return nil
}

func CompleteTask(ctx Context, cmd history.CompleteTaskCmd) error {
	if err := validateCmd("failed to complete task", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryTaskInstance) {
		return nil
	}

	taskInstance, err := selectOpenTaskInstance(ctx, cmd.Id, "failed to complete task")
	if err != nil {
		return err
	}

	if err := discardImplicitUpdates(ctx, func(e VariableInstanceEntity) bool {
		return e.TaskId.String == taskInstance.Id
	}); err != nil {
		return err
	}

	endTaskInstance(ctx, taskInstance, history.TaskCompleted, taskCompletedReason)
	return ctx.TaskInstances().Update(taskInstance)
}

func DeleteTask(ctx Context, cmd history.DeleteTaskCmd) error {
	if err := validateCmd("failed to delete task", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryTaskInstance) {
		return nil
	}

	taskInstance, err := selectOpenTaskInstance(ctx, cmd.Id, "failed to delete task")
	if err != nil {
		return err
	}

	if err := discardImplicitUpdates(ctx, func(e VariableInstanceEntity) bool {
		return e.TaskId.String == taskInstance.Id
	}); err != nil {
		return err
	}

	deleteReason := cmd.DeleteReason
	if deleteReason == "" {
		deleteReason = taskDeletedReason
	}

	endTaskInstance(ctx, taskInstance, history.TaskDeleted, deleteReason)
	return ctx.TaskInstances().Update(taskInstance)
}

func endTaskInstance(ctx Context, taskInstance *TaskInstanceEntity, state history.TaskState, deleteReason string) {
	taskInstance.DeleteReason = text(deleteReason)
	taskInstance.DurationInMillis = durationInMillis(taskInstance.StartTime, ctx.Time())
	taskInstance.EndTime = timestamp(ctx.Time())
	taskInstance.State = state
}

func selectOpenTaskInstance(ctx Context, id string, title string) (*TaskInstanceEntity, error) {
	taskInstance, err := ctx.TaskInstances().Select(id)
	if err == pgx.ErrNoRows {
		return nil, history.Error{
			Type:   history.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("task %s could not be found", id),
		}
	}
	if err != nil {
		return nil, err
	}

	if taskInstance.State.IsTerminal() {
		return nil, history.Error{
			Type:   history.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("task %s is %s", id, taskInstance.State),
		}
	}

	return taskInstance, nil
}

// DeleteHistoricTaskInstance deletes a historic task instance and its variables and details. Unknown IDs are ignored.
func DeleteHistoricTaskInstance(ctx Context, taskId string) error {
	if _, err := ctx.TaskInstances().Select(taskId); err == pgx.ErrNoRows {
		return nil
	} else if err != nil {
		return err
	}

	owners := Owners{TaskIds: []string{taskId}}

	if err := ctx.Details().DeleteByOwners(owners); err != nil {
		return err
	}
	if err := ctx.VariableInstances().DeleteByOwners(owners); err != nil {
		return err
	}

	return ctx.TaskInstances().Delete(taskId)
}
