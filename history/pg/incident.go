package pg

import (
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

const incidentColumns = `
	id,

	incident_message,
	incident_type,
	state,
	tenant_id,

	activity_id,
	activity_instance_id,
	cause_incident_id,
	configuration,
	execution_id,
	failed_activity_id,
	job_definition_id,
	process_definition_id,
	process_definition_key,
	process_instance_id,
	root_cause_incident_id,

	create_time,
	end_time,
	sequence_counter
`

var incidentSortColumns = map[string]string{
	"activityId":           `activity_id COLLATE "C"`,
	"causeIncidentId":      `cause_incident_id COLLATE "C"`,
	"configuration":        `configuration COLLATE "C"`,
	"createTime":           "create_time",
	"endTime":              "end_time",
	"executionId":          `execution_id COLLATE "C"`,
	"incidentId":           `id COLLATE "C"`,
	"incidentMessage":      `incident_message COLLATE "C"`,
	"incidentState":        `state COLLATE "C"`,
	"incidentType":         `incident_type COLLATE "C"`,
	"processDefinitionId":  `process_definition_id COLLATE "C"`,
	"processDefinitionKey": `process_definition_key COLLATE "C"`,
	"processInstanceId":    `process_instance_id COLLATE "C"`,
	"rootCauseIncidentId":  `root_cause_incident_id COLLATE "C"`,
	"sequenceCounter":      "sequence_counter",
	"tenantId":             `tenant_id COLLATE "C"`,
}

type incidentRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r incidentRepository) Insert(entity *internal.IncidentEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO incident (`+incidentColumns+`) VALUES (
	$1,

	$2,
	$3,
	$4,
	$5,

	$6,
	$7,
	$8,
	$9,
	$10,
	$11,
	$12,
	$13,
	$14,
	$15,
	$16,

	$17,
	$18,
	$19
)
`,
		entity.Id,

		entity.IncidentMessage,
		entity.IncidentType,
		entity.State.String(),
		entity.TenantId,

		entity.ActivityId,
		entity.ActivityInstanceId,
		entity.CauseIncidentId,
		entity.Configuration,
		entity.ExecutionId,
		entity.FailedActivityId,
		entity.JobDefinitionId,
		entity.ProcessDefinitionId,
		entity.ProcessDefinitionKey,
		entity.ProcessInstanceId,
		entity.RootCauseIncidentId,

		entity.CreateTime,
		entity.EndTime,
		entity.SequenceCounter,
	); err != nil {
		return fmt.Errorf("failed to insert incident %+v: %v", entity, err)
	}

	return nil
}

func (r incidentRepository) Select(id string) (*internal.IncidentEntity, error) {
	return selectRow(r.tx, r.txCtx, "incident", `
SELECT `+incidentColumns+` FROM incident WHERE id = $1
`, []any{id}, scanIncident)
}

func (r incidentRepository) SelectOpenByProcessInstance(processInstanceId string) ([]*internal.IncidentEntity, error) {
	return selectRows(r.tx, r.txCtx, `
SELECT `+incidentColumns+`
FROM
	incident
WHERE
	process_instance_id = $1 AND
	state = 'OPEN'
ORDER BY
	sequence_counter
`, []any{processInstanceId}, scanIncident)
}

func (r incidentRepository) Update(entity *internal.IncidentEntity) error {
	tag, err := r.tx.Exec(r.txCtx, `
UPDATE
	incident
SET
	incident_message = $2,
	state = $3,
	end_time = $4
WHERE
	id = $1
`,
		entity.Id,
		entity.IncidentMessage,
		entity.State.String(),
		entity.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident %+v: %v", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r incidentRepository) DeleteByOwners(owners internal.Owners) error {
	return deleteByOwners(r.tx, r.txCtx, "incident", owners, "process_instance_id", "", "")
}

func (r incidentRepository) Query(c history.HistoricIncidentCriteria, o history.QueryOptions) ([]*internal.IncidentEntity, error) {
	return queryRows(r.tx, r.txCtx, sqlIncidentQuery, queryData(c, o, c.Sorting, incidentSortColumns), scanIncident)
}

func (r incidentRepository) Count(c history.HistoricIncidentCriteria) (int, error) {
	return countRows(r.tx, r.txCtx, sqlIncidentQuery, countData(c))
}

func scanIncident(row pgx.Row) (*internal.IncidentEntity, error) {
	var (
		entity internal.IncidentEntity
		state  string
	)

	if err := row.Scan(
		&entity.Id,

		&entity.IncidentMessage,
		&entity.IncidentType,
		&state,
		&entity.TenantId,

		&entity.ActivityId,
		&entity.ActivityInstanceId,
		&entity.CauseIncidentId,
		&entity.Configuration,
		&entity.ExecutionId,
		&entity.FailedActivityId,
		&entity.JobDefinitionId,
		&entity.ProcessDefinitionId,
		&entity.ProcessDefinitionKey,
		&entity.ProcessInstanceId,
		&entity.RootCauseIncidentId,

		&entity.CreateTime,
		&entity.EndTime,
		&entity.SequenceCounter,
	); err != nil {
		return nil, err
	}

	entity.State = history.MapIncidentState(state)
	return &entity, nil
}
