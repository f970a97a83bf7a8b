package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProcessInstanceEntity struct {
	Id string

	BusinessKey          pgtype.Text
	DeleteReason         pgtype.Text
	EndActivityId        pgtype.Text
	ProcessDefinitionId  string
	ProcessDefinitionKey string
	StartActivityId      pgtype.Text
	StartUserId          pgtype.Text
	TenantId             pgtype.Text

	CaseInstanceId         pgtype.Text
	RootProcessInstanceId  string
	SuperCaseInstanceId    pgtype.Text
	SuperProcessInstanceId pgtype.Text

	DurationInMillis pgtype.Int8
	EndTime          pgtype.Timestamp
	SequenceCounter  int64
	StartTime        time.Time
}

func (e ProcessInstanceEntity) HistoricProcessInstance() history.HistoricProcessInstance {
	return history.HistoricProcessInstance{
		Id: e.Id,

		BusinessKey:          e.BusinessKey.String,
		DeleteReason:         e.DeleteReason.String,
		EndActivityId:        e.EndActivityId.String,
		ProcessDefinitionId:  e.ProcessDefinitionId,
		ProcessDefinitionKey: e.ProcessDefinitionKey,
		StartActivityId:      e.StartActivityId.String,
		StartUserId:          e.StartUserId.String,
		TenantId:             e.TenantId.String,

		CaseInstanceId:         e.CaseInstanceId.String,
		RootProcessInstanceId:  e.RootProcessInstanceId,
		SuperCaseInstanceId:    e.SuperCaseInstanceId.String,
		SuperProcessInstanceId: e.SuperProcessInstanceId.String,

		DurationInMillis: int8OrNil(e.DurationInMillis),
		EndTime:          timeOrNil(e.EndTime),
		SequenceCounter:  e.SequenceCounter,
		StartTime:        e.StartTime,
	}
}

type ProcessInstanceRepository interface {
	Insert(*ProcessInstanceEntity) error
	Select(id string) (*ProcessInstanceEntity, error)
	// SelectBySuperProcessInstance selects the direct sub process instances of a process instance.
	SelectBySuperProcessInstance(superProcessInstanceId string) ([]*ProcessInstanceEntity, error)
	// SelectEndedRoots selects process instances without a calling process instance, which ended before a given time, ordered by end time.
	SelectEndedRoots(before time.Time, limit int) ([]*ProcessInstanceEntity, error)
	Update(*ProcessInstanceEntity) error
	Delete(ids []string) error

	Query(history.HistoricProcessInstanceCriteria, history.QueryOptions) ([]*ProcessInstanceEntity, error)
	Count(history.HistoricProcessInstanceCriteria) (int, error)
}

func StartProcessInstance(ctx Context, cmd history.StartProcessInstanceCmd) error {
	if err := validateCmd("failed to start process instance", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryProcessInstance) {
		return nil
	}

	if _, err := ctx.ProcessInstances().Select(cmd.Id); err == nil {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to start process instance",
			Detail: fmt.Sprintf("process instance %s has already been started", cmd.Id),
		}
	} else if err != pgx.ErrNoRows {
		return err
	}

	rootProcessInstanceId, err := selectRootProcessInstanceId(ctx, cmd)
	if err != nil {
		return err
	}

	sequenceCounter, err := nextSequenceCounter(ctx)
	if err != nil {
		return err
	}

	processInstance := ProcessInstanceEntity{
		Id: cmd.Id,

		BusinessKey:          text(cmd.BusinessKey),
		ProcessDefinitionId:  cmd.ProcessDefinitionId,
		ProcessDefinitionKey: cmd.ProcessDefinitionKey,
		StartActivityId:      text(cmd.StartActivityId),
		StartUserId:          text(cmd.StartUserId),
		TenantId:             text(cmd.TenantId),

		CaseInstanceId:         text(cmd.CaseInstanceId),
		RootProcessInstanceId:  rootProcessInstanceId,
		SuperCaseInstanceId:    text(cmd.SuperCaseInstanceId),
		SuperProcessInstanceId: text(cmd.SuperProcessInstanceId),

		SequenceCounter: sequenceCounter,
		StartTime:       ctx.Time(),
	}

	if err := ctx.ProcessInstances().Insert(&processInstance); err != nil {
		return err
	}

	if cmd.SuperActivityInstanceId == "" {
		return nil
	}

	callActivityInstance, err := ctx.ActivityInstances().Select(cmd.SuperActivityInstanceId)
	if err == pgx.ErrNoRows {
		return nil // not recorded
	}
	if err != nil {
		return err
	}

	callActivityInstance.CalledProcessInstanceId = text(processInstance.Id)
	return ctx.ActivityInstances().Update(callActivityInstance)
}

// selectRootProcessInstanceId inherits the root of a calling process instance or the calling case's process instance.
func selectRootProcessInstanceId(ctx Context, cmd history.StartProcessInstanceCmd) (string, error) {
	superProcessInstanceId := cmd.SuperProcessInstanceId

	caseInstanceId := cmd.SuperCaseInstanceId
	if caseInstanceId == "" {
		caseInstanceId = cmd.CaseInstanceId
	}

	if caseInstanceId != "" {
		caseInstance, err := ctx.CaseInstances().Select(caseInstanceId)
		if err == pgx.ErrNoRows {
			return cmd.Id, nil
		}
		if err != nil {
			return "", err
		}
		superProcessInstanceId = caseInstance.SuperProcessInstanceId.String
	}

	if superProcessInstanceId == "" {
		return cmd.Id, nil
	}

	superProcessInstance, err := ctx.ProcessInstances().Select(superProcessInstanceId)
	if err == pgx.ErrNoRows {
		return cmd.Id, nil
	}
	if err != nil {
		return "", err
	}

	return superProcessInstance.RootProcessInstanceId, nil
}

func EndProcessInstance(ctx Context, cmd history.EndProcessInstanceCmd) error {
	if err := validateCmd("failed to end process instance", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryProcessInstance) {
		return nil
	}

	processInstance, err := selectRunningProcessInstance(ctx, cmd.Id, "failed to end process instance")
	if err != nil {
		return err
	}

	if err := discardImplicitUpdates(ctx, func(e VariableInstanceEntity) bool {
		return e.ProcessInstanceId.String == processInstance.Id
	}); err != nil {
		return err
	}

	processInstance.DurationInMillis = durationInMillis(processInstance.StartTime, ctx.Time())
	processInstance.EndActivityId = text(cmd.EndActivityId)
	processInstance.EndTime = timestamp(ctx.Time())

	return ctx.ProcessInstances().Update(processInstance)
}

func DeleteProcessInstance(ctx Context, cmd history.DeleteProcessInstanceCmd) error {
	if err := validateCmd("failed to delete process instance", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryProcessInstance) {
		return nil
	}

	processInstance, err := selectRunningProcessInstance(ctx, cmd.Id, "failed to delete process instance")
	if err != nil {
		return err
	}

	return deleteProcessInstance(ctx, processInstance, cmd)
}

func deleteProcessInstance(ctx Context, processInstance *ProcessInstanceEntity, cmd history.DeleteProcessInstanceCmd) error {
	if err := discardImplicitUpdates(ctx, func(e VariableInstanceEntity) bool {
		return e.ProcessInstanceId.String == processInstance.Id
	}); err != nil {
		return err
	}

	subProcessInstances, err := ctx.ProcessInstances().SelectBySuperProcessInstance(processInstance.Id)
	if err != nil {
		return err
	}

	for _, subProcessInstance := range subProcessInstances {
		if subProcessInstance.EndTime.Valid {
			continue
		}

		if cmd.SkipSubprocesses {
			subProcessInstance.SuperProcessInstanceId = pgtype.Text{}
			if err := ctx.ProcessInstances().Update(subProcessInstance); err != nil {
				return err
			}
		} else {
			if err := deleteProcessInstance(ctx, subProcessInstance, cmd); err != nil {
				return err
			}
		}
	}

	subCaseInstances, err := ctx.CaseInstances().SelectBySuperProcessInstance(processInstance.Id)
	if err != nil {
		return err
	}

	for _, subCaseInstance := range subCaseInstances {
		if subCaseInstance.State == history.CaseInstanceClosed {
			continue
		}

		if cmd.SkipSubprocesses {
			subCaseInstance.SuperProcessInstanceId = pgtype.Text{}
		} else {
			if err := discardImplicitUpdates(ctx, func(e VariableInstanceEntity) bool {
				return e.CaseInstanceId.String == subCaseInstance.Id
			}); err != nil {
				return err
			}

			subCaseInstance.State = history.CaseInstanceClosed
			subCaseInstance.CloseTime = timestamp(ctx.Time())
			subCaseInstance.DurationInMillis = durationInMillis(subCaseInstance.CreateTime, ctx.Time())
		}

		if err := ctx.CaseInstances().Update(subCaseInstance); err != nil {
			return err
		}
	}

	activityInstances, err := ctx.ActivityInstances().SelectOpenByProcessInstance(processInstance.Id)
	if err != nil {
		return err
	}
	for _, activityInstance := range activityInstances {
		endActivityInstance(ctx, activityInstance, history.ActivityCanceled)
		if err := ctx.ActivityInstances().Update(activityInstance); err != nil {
			return err
		}
	}

	taskInstances, err := ctx.TaskInstances().SelectOpenByProcessInstance(processInstance.Id)
	if err != nil {
		return err
	}
	for _, taskInstance := range taskInstances {
		endTaskInstance(ctx, taskInstance, history.TaskDeleted, cmd.DeleteReason)
		if err := ctx.TaskInstances().Update(taskInstance); err != nil {
			return err
		}
	}

	if err := deletePendingJobs(ctx, processInstance.Id); err != nil {
		return err
	}

	incidents, err := ctx.Incidents().SelectOpenByProcessInstance(processInstance.Id)
	if err != nil {
		return err
	}
	for _, incident := range incidents {
		incident.EndTime = timestamp(ctx.Time())
		incident.State = history.IncidentDeleted
		if err := ctx.Incidents().Update(incident); err != nil {
			return err
		}
	}

	processInstance.DeleteReason = text(cmd.DeleteReason)
	processInstance.DurationInMillis = durationInMillis(processInstance.StartTime, ctx.Time())
	processInstance.EndTime = timestamp(ctx.Time())

	return ctx.ProcessInstances().Update(processInstance)
}

func selectRunningProcessInstance(ctx Context, id string, title string) (*ProcessInstanceEntity, error) {
	processInstance, err := ctx.ProcessInstances().Select(id)
	if err == pgx.ErrNoRows {
		return nil, history.Error{
			Type:   history.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("process instance %s could not be found", id),
		}
	}
	if err != nil {
		return nil, err
	}

	if processInstance.EndTime.Valid {
		return nil, history.Error{
			Type:   history.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("process instance %s has already ended", id),
		}
	}

	return processInstance, nil
}

func DeleteHistoricProcessInstance(ctx Context, cmd history.DeleteHistoricProcessInstanceCmd) error {
	if err := validateCmd("failed to delete historic process instance", cmd); err != nil {
		return err
	}

	processInstance, err := ctx.ProcessInstances().Select(cmd.Id)
	if err == pgx.ErrNoRows {
		if cmd.IfExists {
			return nil
		}
		return history.Error{
			Type:   history.ErrorNotFound,
			Title:  "failed to delete historic process instance",
			Detail: fmt.Sprintf("historic process instance %s could not be found", cmd.Id),
		}
	}
	if err != nil {
		return err
	}

	if !processInstance.EndTime.Valid {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to delete historic process instance",
			Detail: fmt.Sprintf("process instance %s is still running", cmd.Id),
		}
	}

	return deleteHistoricProcessInstances(ctx, []string{processInstance.Id})
}

// deleteHistoricProcessInstances deletes process instances, their sub process and sub case instances and all data they own.
func deleteHistoricProcessInstances(ctx Context, processInstanceIds []string) error {
	ids := make([]string, 0, len(processInstanceIds))

	var caseInstanceIds []string

	queue := processInstanceIds
	for len(queue) != 0 {
		id := queue[0]
		queue = queue[1:]

		ids = append(ids, id)

		subProcessInstances, err := ctx.ProcessInstances().SelectBySuperProcessInstance(id)
		if err != nil {
			return err
		}
		for _, subProcessInstance := range subProcessInstances {
			queue = append(queue, subProcessInstance.Id)
		}

		subCaseInstances, err := ctx.CaseInstances().SelectBySuperProcessInstance(id)
		if err != nil {
			return err
		}
		for _, subCaseInstance := range subCaseInstances {
			caseInstanceIds = append(caseInstanceIds, subCaseInstance.Id)
		}
	}

	if len(caseInstanceIds) != 0 {
		if err := deleteHistoricCaseInstances(ctx, caseInstanceIds); err != nil {
			return err
		}
	}

	owners := Owners{ProcessInstanceIds: ids}

	if err := ctx.ActivityInstances().DeleteByOwners(owners); err != nil {
		return err
	}
	if err := ctx.Details().DeleteByOwners(owners); err != nil {
		return err
	}
	if err := ctx.Incidents().DeleteByOwners(owners); err != nil {
		return err
	}
	if err := ctx.JobLogs().DeleteByOwners(owners); err != nil {
		return err
	}
	if err := ctx.TaskInstances().DeleteByOwners(owners); err != nil {
		return err
	}
	if err := ctx.VariableInstances().DeleteByOwners(owners); err != nil {
		return err
	}

	return ctx.ProcessInstances().Delete(ids)
}
