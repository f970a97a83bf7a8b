package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type VariableInstanceEntity struct {
	Id string

	Name     string
	Revision int
	State    history.VariableState
	TenantId pgtype.Text

	ActivityInstanceId   pgtype.Text
	CaseExecutionId      pgtype.Text
	CaseInstanceId       pgtype.Text
	ExecutionId          pgtype.Text
	ProcessDefinitionId  pgtype.Text
	ProcessDefinitionKey pgtype.Text
	ProcessInstanceId    pgtype.Text
	TaskId               pgtype.Text

	Value ValueEntity

	CreateTime      time.Time
	SequenceCounter int64
}

func (e VariableInstanceEntity) HistoricVariableInstance(o ValueOptions) history.HistoricVariableInstance {
	return history.HistoricVariableInstance{
		Id: e.Id,

		Name:     e.Name,
		Revision: e.Revision,
		State:    e.State,
		TenantId: e.TenantId.String,

		ActivityInstanceId:   e.ActivityInstanceId.String,
		CaseExecutionId:      e.CaseExecutionId.String,
		CaseInstanceId:       e.CaseInstanceId.String,
		ExecutionId:          e.ExecutionId.String,
		ProcessDefinitionId:  e.ProcessDefinitionId.String,
		ProcessDefinitionKey: e.ProcessDefinitionKey.String,
		ProcessInstanceId:    e.ProcessInstanceId.String,
		TaskId:               e.TaskId.String,

		Value: e.Value.VariableValue(o),

		CreateTime:      e.CreateTime,
		SequenceCounter: e.SequenceCounter,
	}
}

// Scope returns the scope, which identifies the variable together with its name.
func (e VariableInstanceEntity) Scope() history.VariableScope {
	return history.VariableScope{
		ActivityInstanceId: e.ActivityInstanceId.String,
		CaseExecutionId:    e.CaseExecutionId.String,
		CaseInstanceId:     e.CaseInstanceId.String,
		ExecutionId:        e.ExecutionId.String,
		ProcessInstanceId:  e.ProcessInstanceId.String,
		TaskId:             e.TaskId.String,
	}
}

type VariableInstanceRepository interface {
	Insert(*VariableInstanceEntity) error
	Select(id string) (*VariableInstanceEntity, error)
	// SelectByNameAndScope selects the variable instance, identified by name and scope, which has not been deleted.
	SelectByNameAndScope(name string, scope history.VariableScope) (*VariableInstanceEntity, error)
	Update(*VariableInstanceEntity) error
	Delete(id string) error
	DeleteByOwners(Owners) error

	Query(history.HistoricVariableInstanceCriteria, history.QueryOptions) ([]*VariableInstanceEntity, error)
	Count(history.HistoricVariableInstanceCriteria) (int, error)
}

type DetailEntity struct {
	Id string

	VariableInstanceId string
	VariableName       string
	Revision           int
	IsInitial          bool
	IsRemoval          bool
	TenantId           pgtype.Text

	ActivityInstanceId   pgtype.Text
	CaseExecutionId      pgtype.Text
	CaseInstanceId       pgtype.Text
	ExecutionId          pgtype.Text
	ProcessDefinitionId  pgtype.Text
	ProcessDefinitionKey pgtype.Text
	ProcessInstanceId    pgtype.Text
	TaskId               pgtype.Text

	Value ValueEntity

	SequenceCounter int64
	Time            time.Time
}

func (e DetailEntity) HistoricDetail(o ValueOptions) history.HistoricDetail {
	return history.HistoricDetail{
		Id: e.Id,

		VariableInstanceId: e.VariableInstanceId,
		VariableName:       e.VariableName,
		Revision:           e.Revision,
		IsInitial:          e.IsInitial,
		IsRemoval:          e.IsRemoval,
		TenantId:           e.TenantId.String,

		ActivityInstanceId:   e.ActivityInstanceId.String,
		CaseExecutionId:      e.CaseExecutionId.String,
		CaseInstanceId:       e.CaseInstanceId.String,
		ExecutionId:          e.ExecutionId.String,
		ProcessDefinitionId:  e.ProcessDefinitionId.String,
		ProcessDefinitionKey: e.ProcessDefinitionKey.String,
		ProcessInstanceId:    e.ProcessInstanceId.String,
		TaskId:               e.TaskId.String,

		Value: e.Value.VariableValue(o),

		SequenceCounter: e.SequenceCounter,
		Time:            e.Time,
	}
}

type DetailRepository interface {
	Insert(*DetailEntity) error
	Delete(id string) error
	DeleteByVariableInstance(variableInstanceId string) error
	DeleteByOwners(Owners) error

	Query(history.HistoricDetailCriteria, history.QueryOptions) ([]*DetailEntity, error)
	Count(history.HistoricDetailCriteria) (int, error)
}

func SetVariable(ctx Context, cmd history.SetVariableCmd) error {
	if err := validateCmd("failed to set variable", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryVariableInstance) {
		return nil
	}

	value, err := newValueEntity(cmd.Value)
	if err != nil {
		return err
	}

	variableInstance, err := ctx.VariableInstances().SelectByNameAndScope(cmd.Name, cmd.VariableScope)
	if err == pgx.ErrNoRows {
		return createVariable(ctx, cmd, value)
	}
	if err != nil {
		return err
	}

	ctx.TxState().observe(variableInstance.Id)

	previous := *variableInstance

	variableInstance.Revision++
	variableInstance.Value = value

	if err := ctx.VariableInstances().Update(variableInstance); err != nil {
		return err
	}

	detailId, err := insertDetail(ctx, variableInstance, false)
	if err != nil {
		return err
	}

	if cmd.Implicit {
		ctx.TxState().addImplicitUpdate(detailId, previous)
	}

	return nil
}

func createVariable(ctx Context, cmd history.SetVariableCmd, value ValueEntity) error {
	sequenceCounter, err := nextSequenceCounter(ctx)
	if err != nil {
		return err
	}

	variableInstance := VariableInstanceEntity{
		Id: newId(),

		Name:     cmd.Name,
		State:    history.VariableCreated,
		TenantId: text(cmd.TenantId),

		ActivityInstanceId: text(cmd.ActivityInstanceId),
		CaseExecutionId:    text(cmd.CaseExecutionId),
		CaseInstanceId:     text(cmd.CaseInstanceId),
		ExecutionId:        text(cmd.ExecutionId),
		ProcessInstanceId:  text(cmd.ProcessInstanceId),
		TaskId:             text(cmd.TaskId),

		Value: value,

		CreateTime:      ctx.Time(),
		SequenceCounter: sequenceCounter,
	}

	if cmd.ProcessInstanceId != "" {
		processInstance, err := ctx.ProcessInstances().Select(cmd.ProcessInstanceId)
		if err == pgx.ErrNoRows {
			return history.Error{
				Type:   history.ErrorNotFound,
				Title:  "failed to set variable",
				Detail: fmt.Sprintf("process instance %s could not be found", cmd.ProcessInstanceId),
			}
		}
		if err != nil {
			return err
		}

		variableInstance.ProcessDefinitionId = text(processInstance.ProcessDefinitionId)
		variableInstance.ProcessDefinitionKey = text(processInstance.ProcessDefinitionKey)
		if !variableInstance.TenantId.Valid {
			variableInstance.TenantId = processInstance.TenantId
		}
	}

	if err := ctx.VariableInstances().Insert(&variableInstance); err != nil {
		return err
	}

	_, err = insertDetail(ctx, &variableInstance, false)
	return err
}

// RemoveVariable flips the state of a variable instance to deleted and nulls its value. Unknown variables are ignored.
func RemoveVariable(ctx Context, cmd history.RemoveVariableCmd) error {
	if err := validateCmd("failed to remove variable", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryVariableInstance) {
		return nil
	}

	variableInstance, err := ctx.VariableInstances().SelectByNameAndScope(cmd.Name, cmd.VariableScope)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	ctx.TxState().observe(variableInstance.Id)

	variableInstance.Revision++
	variableInstance.State = history.VariableDeleted
	variableInstance.Value = ValueEntity{Type: variableInstance.Value.Type}

	if err := ctx.VariableInstances().Update(variableInstance); err != nil {
		return err
	}

	_, err = insertDetail(ctx, variableInstance, true)
	return err
}

// insertDetail records the write of a variable instance and returns the ID of the detail.
// If details are not recorded, an empty ID is returned.
func insertDetail(ctx Context, variableInstance *VariableInstanceEntity, removal bool) (string, error) {
	if !shouldRecord(ctx, CategoryDetail) {
		return "", nil
	}

	sequenceCounter, err := nextSequenceCounter(ctx)
	if err != nil {
		return "", err
	}

	value := variableInstance.Value
	if removal {
		value = removedValueEntity()
	}

	detail := DetailEntity{
		Id: newId(),

		VariableInstanceId: variableInstance.Id,
		VariableName:       variableInstance.Name,
		Revision:           variableInstance.Revision,
		IsInitial:          variableInstance.Revision == 0,
		IsRemoval:          removal,
		TenantId:           variableInstance.TenantId,

		ActivityInstanceId:   variableInstance.ActivityInstanceId,
		CaseExecutionId:      variableInstance.CaseExecutionId,
		CaseInstanceId:       variableInstance.CaseInstanceId,
		ExecutionId:          variableInstance.ExecutionId,
		ProcessDefinitionId:  variableInstance.ProcessDefinitionId,
		ProcessDefinitionKey: variableInstance.ProcessDefinitionKey,
		ProcessInstanceId:    variableInstance.ProcessInstanceId,
		TaskId:               variableInstance.TaskId,

		Value: value,

		SequenceCounter: sequenceCounter,
		Time:            ctx.Time(),
	}

	if err := ctx.Details().Insert(&detail); err != nil {
		return "", err
	}

	return detail.Id, nil
}

// discardImplicitUpdates reverts pending implicit updates of variables, whose scope ends.
func discardImplicitUpdates(ctx Context, matches func(VariableInstanceEntity) bool) error {
	implicitUpdates := ctx.TxState().takeImplicitUpdates(matches)
	for i := len(implicitUpdates) - 1; i >= 0; i-- {
		implicitUpdate := implicitUpdates[i]

		previous := implicitUpdate.previous
		if err := ctx.VariableInstances().Update(&previous); err != nil {
			return err
		}

		if implicitUpdate.detailId == "" {
			continue
		}
		if err := ctx.Details().Delete(implicitUpdate.detailId); err != nil {
			return err
		}
	}
	return nil
}

func DeleteHistoricVariableInstance(ctx Context, variableInstanceId string) error {
	if _, err := ctx.VariableInstances().Select(variableInstanceId); err == pgx.ErrNoRows {
		return history.Error{
			Type:   history.ErrorNotFound,
			Title:  "failed to delete historic variable instance",
			Detail: fmt.Sprintf("historic variable instance %s could not be found", variableInstanceId),
		}
	} else if err != nil {
		return err
	}

	if err := ctx.Details().DeleteByVariableInstance(variableInstanceId); err != nil {
		return err
	}

	return ctx.VariableInstances().Delete(variableInstanceId)
}
