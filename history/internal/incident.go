package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type IncidentEntity struct {
	Id string

	IncidentMessage pgtype.Text
	IncidentType    string
	State           history.IncidentState
	TenantId        pgtype.Text

	ActivityId           pgtype.Text
	ActivityInstanceId   pgtype.Text
	CauseIncidentId      string
	Configuration        pgtype.Text
	ExecutionId          pgtype.Text
	FailedActivityId     pgtype.Text
	JobDefinitionId      pgtype.Text
	ProcessDefinitionId  pgtype.Text
	ProcessDefinitionKey pgtype.Text
	ProcessInstanceId    pgtype.Text
	RootCauseIncidentId  string

	CreateTime      time.Time
	EndTime         pgtype.Timestamp
	SequenceCounter int64
}

func (e IncidentEntity) HistoricIncident() history.HistoricIncident {
	return history.HistoricIncident{
		Id: e.Id,

		IncidentMessage: e.IncidentMessage.String,
		IncidentType:    e.IncidentType,
		State:           e.State,
		TenantId:        e.TenantId.String,

		ActivityId:           e.ActivityId.String,
		ActivityInstanceId:   e.ActivityInstanceId.String,
		CauseIncidentId:      e.CauseIncidentId,
		Configuration:        e.Configuration.String,
		ExecutionId:          e.ExecutionId.String,
		FailedActivityId:     e.FailedActivityId.String,
		JobDefinitionId:      e.JobDefinitionId.String,
		ProcessDefinitionId:  e.ProcessDefinitionId.String,
		ProcessDefinitionKey: e.ProcessDefinitionKey.String,
		ProcessInstanceId:    e.ProcessInstanceId.String,
		RootCauseIncidentId:  e.RootCauseIncidentId,

		CreateTime:      e.CreateTime,
		EndTime:         timeOrNil(e.EndTime),
		SequenceCounter: e.SequenceCounter,
	}
}

type IncidentRepository interface {
	Insert(*IncidentEntity) error
	Select(id string) (*IncidentEntity, error)
	// SelectOpenByProcessInstance selects all open incidents of a process instance.
	SelectOpenByProcessInstance(processInstanceId string) ([]*IncidentEntity, error)
	Update(*IncidentEntity) error
	DeleteByOwners(Owners) error

	Query(history.HistoricIncidentCriteria, history.QueryOptions) ([]*IncidentEntity, error)
	Count(history.HistoricIncidentCriteria) (int, error)
}

func CreateIncident(ctx Context, cmd history.CreateIncidentCmd) (string, error) {
	if err := validateCmd("failed to create incident", cmd); err != nil {
		return "", err
	}

	id := cmd.Id
	if id == "" {
		id = newId()
	}

	if !shouldRecord(ctx, CategoryIncident) {
		return id, nil
	}

	if _, err := ctx.Incidents().Select(id); err == nil {
		return "", history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to create incident",
			Detail: fmt.Sprintf("incident %s has already been created", id),
		}
	} else if err != pgx.ErrNoRows {
		return "", err
	}

	sequenceCounter, err := nextSequenceCounter(ctx)
	if err != nil {
		return "", err
	}

	causeIncidentId := cmd.CauseIncidentId
	if causeIncidentId == "" {
		causeIncidentId = id
	}
	rootCauseIncidentId := cmd.RootCauseIncidentId
	if rootCauseIncidentId == "" {
		rootCauseIncidentId = causeIncidentId
	}

	incident := IncidentEntity{
		Id: id,

		IncidentMessage: text(cmd.IncidentMessage),
		IncidentType:    cmd.IncidentType,
		State:           history.IncidentOpen,
		TenantId:        text(cmd.TenantId),

		ActivityId:          text(cmd.ActivityId),
		ActivityInstanceId:  text(cmd.ActivityInstanceId),
		CauseIncidentId:     causeIncidentId,
		Configuration:       text(cmd.Configuration),
		ExecutionId:         text(cmd.ExecutionId),
		FailedActivityId:    text(cmd.FailedActivityId),
		JobDefinitionId:     text(cmd.JobDefinitionId),
		ProcessInstanceId:   text(cmd.ProcessInstanceId),
		RootCauseIncidentId: rootCauseIncidentId,

		CreateTime:      ctx.Time(),
		SequenceCounter: sequenceCounter,
	}

	if cmd.ProcessInstanceId != "" {
		processInstance, err := ctx.ProcessInstances().Select(cmd.ProcessInstanceId)
		if err == pgx.ErrNoRows {
			return "", history.Error{
				Type:   history.ErrorNotFound,
				Title:  "failed to create incident",
				Detail: fmt.Sprintf("process instance %s could not be found", cmd.ProcessInstanceId),
			}
		}
		if err != nil {
			return "", err
		}

		incident.ProcessDefinitionId = text(processInstance.ProcessDefinitionId)
		incident.ProcessDefinitionKey = text(processInstance.ProcessDefinitionKey)
		if !incident.TenantId.Valid {
			incident.TenantId = processInstance.TenantId
		}
	}

	if err := ctx.Incidents().Insert(&incident); err != nil {
		return "", err
	}

	return id, nil
}

func ResolveIncident(ctx Context, cmd history.ResolveIncidentCmd) error {
	if err := validateCmd("failed to resolve incident", cmd); err != nil {
		return err
	}
	return endIncident(ctx, cmd.Id, history.IncidentResolved, "failed to resolve incident")
}

func DeleteIncident(ctx Context, cmd history.DeleteIncidentCmd) error {
	if err := validateCmd("failed to delete incident", cmd); err != nil {
		return err
	}
	return endIncident(ctx, cmd.Id, history.IncidentDeleted, "failed to delete incident")
}

func endIncident(ctx Context, id string, state history.IncidentState, title string) error {
	if !shouldRecord(ctx, CategoryIncident) {
		return nil
	}

	incident, err := ctx.Incidents().Select(id)
	if err == pgx.ErrNoRows {
		return history.Error{
			Type:   history.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("incident %s could not be found", id),
		}
	}
	if err != nil {
		return err
	}

	if incident.State != history.IncidentOpen {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("incident %s is %s", id, incident.State),
		}
	}

	incident.EndTime = timestamp(ctx.Time())
	incident.State = state

	return ctx.Incidents().Update(incident)
}
