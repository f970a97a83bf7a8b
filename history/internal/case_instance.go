package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CaseInstanceEntity struct {
	Id string

	BusinessKey       pgtype.Text
	CaseDefinitionId  string
	CaseDefinitionKey string
	CreateUserId      pgtype.Text
	State             history.CaseInstanceState
	TenantId          pgtype.Text

	SuperCaseInstanceId    pgtype.Text
	SuperProcessInstanceId pgtype.Text

	CloseTime        pgtype.Timestamp
	CreateTime       time.Time
	DurationInMillis pgtype.Int8
	SequenceCounter  int64
}

func (e CaseInstanceEntity) HistoricCaseInstance() history.HistoricCaseInstance {
	return history.HistoricCaseInstance{
		Id: e.Id,

		BusinessKey:       e.BusinessKey.String,
		CaseDefinitionId:  e.CaseDefinitionId,
		CaseDefinitionKey: e.CaseDefinitionKey,
		CreateUserId:      e.CreateUserId.String,
		State:             e.State,
		TenantId:          e.TenantId.String,

		SuperCaseInstanceId:    e.SuperCaseInstanceId.String,
		SuperProcessInstanceId: e.SuperProcessInstanceId.String,

		CloseTime:        timeOrNil(e.CloseTime),
		CreateTime:       e.CreateTime,
		DurationInMillis: int8OrNil(e.DurationInMillis),
		SequenceCounter:  e.SequenceCounter,
	}
}

type CaseInstanceRepository interface {
	Insert(*CaseInstanceEntity) error
	Select(id string) (*CaseInstanceEntity, error)
	// SelectClosedBefore selects case instances, which have been closed before a given time, ordered by close time.
	SelectClosedBefore(before time.Time, limit int) ([]*CaseInstanceEntity, error)
	SelectBySuperProcessInstance(superProcessInstanceId string) ([]*CaseInstanceEntity, error)
	Update(*CaseInstanceEntity) error
	Delete(ids []string) error

	Query(history.HistoricCaseInstanceCriteria, history.QueryOptions) ([]*CaseInstanceEntity, error)
	Count(history.HistoricCaseInstanceCriteria) (int, error)
}

func CreateCaseInstance(ctx Context, cmd history.CreateCaseInstanceCmd) error {
	if err := validateCmd("failed to create case instance", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryCaseInstance) {
		return nil
	}

	if _, err := ctx.CaseInstances().Select(cmd.Id); err == nil {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to create case instance",
			Detail: fmt.Sprintf("case instance %s has already been created", cmd.Id),
		}
	} else if err != pgx.ErrNoRows {
		return err
	}

	state := cmd.State
	if state == 0 {
		state = history.CaseInstanceActive
	}

	sequenceCounter, err := nextSequenceCounter(ctx)
	if err != nil {
		return err
	}

	caseInstance := CaseInstanceEntity{
		Id: cmd.Id,

		BusinessKey:       text(cmd.BusinessKey),
		CaseDefinitionId:  cmd.CaseDefinitionId,
		CaseDefinitionKey: cmd.CaseDefinitionKey,
		CreateUserId:      text(cmd.CreateUserId),
		State:             state,
		TenantId:          text(cmd.TenantId),

		SuperCaseInstanceId:    text(cmd.SuperCaseInstanceId),
		SuperProcessInstanceId: text(cmd.SuperProcessInstanceId),

		CreateTime:      ctx.Time(),
		SequenceCounter: sequenceCounter,
	}

	if state == history.CaseInstanceClosed {
		caseInstance.CloseTime = timestamp(ctx.Time())
		caseInstance.DurationInMillis = durationInMillis(caseInstance.CreateTime, ctx.Time())
	}

	if err := ctx.CaseInstances().Insert(&caseInstance); err != nil {
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

	callActivityInstance.CalledCaseInstanceId = text(caseInstance.Id)
	return ctx.ActivityInstances().Update(callActivityInstance)
}

func UpdateCaseInstanceState(ctx Context, cmd history.UpdateCaseInstanceStateCmd) error {
	if err := validateCmd("failed to update case instance state", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryCaseInstance) {
		return nil
	}

	caseInstance, err := ctx.CaseInstances().Select(cmd.Id)
	if err == pgx.ErrNoRows {
		return history.Error{
			Type:   history.ErrorNotFound,
			Title:  "failed to update case instance state",
			Detail: fmt.Sprintf("case instance %s could not be found", cmd.Id),
		}
	}
	if err != nil {
		return err
	}

	if caseInstance.State == history.CaseInstanceClosed {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to update case instance state",
			Detail: fmt.Sprintf("case instance %s is closed", cmd.Id),
		}
	}

	caseInstance.State = cmd.State

	if cmd.State == history.CaseInstanceClosed {
		if err := discardImplicitUpdates(ctx, func(e VariableInstanceEntity) bool {
			return e.CaseInstanceId.String == caseInstance.Id
		}); err != nil {
			return err
		}

		caseInstance.CloseTime = timestamp(ctx.Time())
		caseInstance.DurationInMillis = durationInMillis(caseInstance.CreateTime, ctx.Time())
	}

	return ctx.CaseInstances().Update(caseInstance)
}

func DeleteHistoricCaseInstance(ctx Context, caseInstanceId string) error {
	caseInstance, err := ctx.CaseInstances().Select(caseInstanceId)
	if err == pgx.ErrNoRows {
		return history.Error{
			Type:   history.ErrorNotFound,
			Title:  "failed to delete historic case instance",
			Detail: fmt.Sprintf("historic case instance %s could not be found", caseInstanceId),
		}
	}
	if err != nil {
		return err
	}

	if caseInstance.State != history.CaseInstanceClosed {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to delete historic case instance",
			Detail: fmt.Sprintf("case instance %s is not closed", caseInstanceId),
		}
	}

	return deleteHistoricCaseInstances(ctx, []string{caseInstance.Id})
}

// deleteHistoricCaseInstances deletes case instances and their tasks, variables and details.
func deleteHistoricCaseInstances(ctx Context, caseInstanceIds []string) error {
	owners := Owners{CaseInstanceIds: caseInstanceIds}

	if err := ctx.Details().DeleteByOwners(owners); err != nil {
		return err
	}
	if err := ctx.TaskInstances().DeleteByOwners(owners); err != nil {
		return err
	}
	if err := ctx.VariableInstances().DeleteByOwners(owners); err != nil {
		return err
	}

	return ctx.CaseInstances().Delete(caseInstanceIds)
}
