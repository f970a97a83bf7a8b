package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ActivityInstanceEntity struct {
	Id                       string
	ParentActivityInstanceId pgtype.Text

	ActivityId           string
	ActivityName         pgtype.Text
	ActivityType         string
	ExecutionId          pgtype.Text
	ProcessDefinitionId  string
	ProcessDefinitionKey string
	ProcessInstanceId    string
	TenantId             pgtype.Text

	Assignee                pgtype.Text
	CalledCaseInstanceId    pgtype.Text
	CalledProcessInstanceId pgtype.Text
	TaskId                  pgtype.Text

	DurationInMillis pgtype.Int8
	EndState         history.ActivityEndState // 0 while running
	EndTime          pgtype.Timestamp
	SequenceCounter  int64
	StartTime        time.Time
}

func (e ActivityInstanceEntity) HistoricActivityInstance() history.HistoricActivityInstance {
	return history.HistoricActivityInstance{
		Id:                       e.Id,
		ParentActivityInstanceId: e.ParentActivityInstanceId.String,

		ActivityId:           e.ActivityId,
		ActivityName:         e.ActivityName.String,
		ActivityType:         e.ActivityType,
		ExecutionId:          e.ExecutionId.String,
		ProcessDefinitionId:  e.ProcessDefinitionId,
		ProcessDefinitionKey: e.ProcessDefinitionKey,
		ProcessInstanceId:    e.ProcessInstanceId,
		TenantId:             e.TenantId.String,

		Assignee:                e.Assignee.String,
		CalledCaseInstanceId:    e.CalledCaseInstanceId.String,
		CalledProcessInstanceId: e.CalledProcessInstanceId.String,
		TaskId:                  e.TaskId.String,

		DurationInMillis: int8OrNil(e.DurationInMillis),
		EndTime:          timeOrNil(e.EndTime),
		IsCanceled:       e.EndState == history.ActivityCanceled,
		IsCompleteScope:  e.EndState == history.ActivityCompleteScope,
		SequenceCounter:  e.SequenceCounter,
		StartTime:        e.StartTime,
	}
}

type ActivityInstanceRepository interface {
	Insert(*ActivityInstanceEntity) error
	Select(id string) (*ActivityInstanceEntity, error)
	// SelectOpenByProcessInstance selects all activity instances of a process instance, which have not ended.
	SelectOpenByProcessInstance(processInstanceId string) ([]*ActivityInstanceEntity, error)
	Update(*ActivityInstanceEntity) error
	DeleteByOwners(Owners) error

	Query(history.HistoricActivityInstanceCriteria, history.QueryOptions) ([]*ActivityInstanceEntity, error)
	Count(history.HistoricActivityInstanceCriteria) (int, error)
	QueryStatistics(history.HistoricActivityStatisticsCriteria) ([]history.HistoricActivityStatistics, error)
}

func StartActivityInstance(ctx Context, cmd history.StartActivityInstanceCmd) (string, error) {
	if err := validateCmd("failed to start activity instance", cmd); err != nil {
		return "", err
	}

	id := cmd.Id
	if id == "" {
		id = newId()
	}

	if !model.IsRecorded(cmd.ActivityType) {
		return id, nil
	}
	if !shouldRecord(ctx, CategoryActivityInstance) {
		return id, nil
	}

	processInstance, err := ctx.ProcessInstances().Select(cmd.ProcessInstanceId)
	if err == pgx.ErrNoRows {
		return "", history.Error{
			Type:   history.ErrorNotFound,
			Title:  "failed to start activity instance",
			Detail: fmt.Sprintf("process instance %s could not be found", cmd.ProcessInstanceId),
		}
	}
	if err != nil {
		return "", err
	}

	activityId := cmd.ActivityId
	if cmd.ActivityType == model.ActivityMultiInstanceBody && !model.IsMultiInstanceBodyId(activityId) {
		activityId = model.MultiInstanceBodyId(activityId)
	}

	sequenceCounter, err := nextSequenceCounter(ctx)
	if err != nil {
		return "", err
	}

	activityInstance := ActivityInstanceEntity{
		Id:                       id,
		ParentActivityInstanceId: text(cmd.ParentActivityInstanceId),

		ActivityId:           activityId,
		ActivityName:         text(cmd.ActivityName),
		ActivityType:         cmd.ActivityType,
		ExecutionId:          text(cmd.ExecutionId),
		ProcessDefinitionId:  processInstance.ProcessDefinitionId,
		ProcessDefinitionKey: processInstance.ProcessDefinitionKey,
		ProcessInstanceId:    processInstance.Id,
		TenantId:             processInstance.TenantId,

		SequenceCounter: sequenceCounter,
		StartTime:       ctx.Time(),
	}

	if err := ctx.ActivityInstances().Insert(&activityInstance); err != nil {
		return "", err
	}

	return id, nil
}

// EndActivityInstance ends an activity instance. Unknown IDs are ignored, since the start may not have been recorded.
func EndActivityInstance(ctx Context, cmd history.EndActivityInstanceCmd) error {
	if err := validateCmd("failed to end activity instance", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryActivityInstance) {
		return nil
	}

	activityInstance, err := ctx.ActivityInstances().Select(cmd.Id)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if activityInstance.EndTime.Valid {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to end activity instance",
			Detail: fmt.Sprintf("activity instance %s has already ended", cmd.Id),
		}
	}

	if err := discardImplicitUpdates(ctx, func(e VariableInstanceEntity) bool {
		return e.ActivityInstanceId.String == activityInstance.Id
	}); err != nil {
		return err
	}

	endActivityInstance(ctx, activityInstance, cmd.State)
	return ctx.ActivityInstances().Update(activityInstance)
}

func endActivityInstance(ctx Context, activityInstance *ActivityInstanceEntity, state history.ActivityEndState) {
	activityInstance.DurationInMillis = durationInMillis(activityInstance.StartTime, ctx.Time())
	activityInstance.EndState = state
	activityInstance.EndTime = timestamp(ctx.Time())
}

func ReparentActivityInstance(ctx Context, cmd history.ReparentActivityInstanceCmd) error {
	if err := validateCmd("failed to reparent activity instance", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryActivityInstance) {
		return nil
	}

	activityInstance, err := ctx.ActivityInstances().Select(cmd.Id)
	if err == pgx.ErrNoRows {
		return history.Error{
			Type:   history.ErrorNotFound,
			Title:  "failed to reparent activity instance",
			Detail: fmt.Sprintf("activity instance %s could not be found", cmd.Id),
		}
	}
	if err != nil {
		return err
	}

	activityInstance.ParentActivityInstanceId = text(cmd.ParentActivityInstanceId)
	return ctx.ActivityInstances().Update(activityInstance)
}
