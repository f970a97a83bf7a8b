package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

const processInstanceColumns = `
	id,

	business_key,
	delete_reason,
	end_activity_id,
	process_definition_id,
	process_definition_key,
	start_activity_id,
	start_user_id,
	tenant_id,

	case_instance_id,
	root_process_instance_id,
	super_case_instance_id,
	super_process_instance_id,

	duration_in_millis,
	end_time,
	sequence_counter,
	start_time
`

var processInstanceSortColumns = map[string]string{
	"businessKey":          `business_key COLLATE "C"`,
	"durationInMillis":     "duration_in_millis",
	"endTime":              "end_time",
	"processDefinitionId":  `process_definition_id COLLATE "C"`,
	"processDefinitionKey": `process_definition_key COLLATE "C"`,
	"processInstanceId":    `id COLLATE "C"`,
	"sequenceCounter":      "sequence_counter",
	"startTime":            "start_time",
	"tenantId":             `tenant_id COLLATE "C"`,
}

type processInstanceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r processInstanceRepository) Insert(entity *internal.ProcessInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO process_instance (`+processInstanceColumns+`) VALUES (
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
	$17
)
`,
		entity.Id,

		entity.BusinessKey,
		entity.DeleteReason,
		entity.EndActivityId,
		entity.ProcessDefinitionId,
		entity.ProcessDefinitionKey,
		entity.StartActivityId,
		entity.StartUserId,
		entity.TenantId,

		entity.CaseInstanceId,
		entity.RootProcessInstanceId,
		entity.SuperCaseInstanceId,
		entity.SuperProcessInstanceId,

		entity.DurationInMillis,
		entity.EndTime,
		entity.SequenceCounter,
		entity.StartTime,
	); err != nil {
		return fmt.Errorf("failed to insert process instance %+v: %v", entity, err)
	}

	return nil
}

func (r processInstanceRepository) Select(id string) (*internal.ProcessInstanceEntity, error) {
	return selectRow(r.tx, r.txCtx, "process instance", `
SELECT `+processInstanceColumns+` FROM process_instance WHERE id = $1
`, []any{id}, scanProcessInstance)
}

func (r processInstanceRepository) SelectBySuperProcessInstance(superProcessInstanceId string) ([]*internal.ProcessInstanceEntity, error) {
	return selectRows(r.tx, r.txCtx, `
SELECT `+processInstanceColumns+` FROM process_instance WHERE super_process_instance_id = $1 ORDER BY sequence_counter
`, []any{superProcessInstanceId}, scanProcessInstance)
}

func (r processInstanceRepository) SelectEndedRoots(before time.Time, limit int) ([]*internal.ProcessInstanceEntity, error) {
	return selectRows(r.tx, r.txCtx, `
SELECT `+processInstanceColumns+`
FROM
	process_instance
WHERE
	super_process_instance_id IS NULL AND
	end_time < $1
ORDER BY
	end_time, sequence_counter
LIMIT $2
`, []any{before.UTC(), limit}, scanProcessInstance)
}

func (r processInstanceRepository) Update(entity *internal.ProcessInstanceEntity) error {
	tag, err := r.tx.Exec(r.txCtx, `
UPDATE
	process_instance
SET
	business_key = $2,
	delete_reason = $3,
	end_activity_id = $4,
	start_activity_id = $5,
	start_user_id = $6,
	tenant_id = $7,

	case_instance_id = $8,
	root_process_instance_id = $9,
	super_case_instance_id = $10,
	super_process_instance_id = $11,

	duration_in_millis = $12,
	end_time = $13
WHERE
	id = $1
`,
		entity.Id,

		entity.BusinessKey,
		entity.DeleteReason,
		entity.EndActivityId,
		entity.StartActivityId,
		entity.StartUserId,
		entity.TenantId,

		entity.CaseInstanceId,
		entity.RootProcessInstanceId,
		entity.SuperCaseInstanceId,
		entity.SuperProcessInstanceId,

		entity.DurationInMillis,
		entity.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to update process instance %+v: %v", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r processInstanceRepository) Delete(ids []string) error {
	if _, err := r.tx.Exec(r.txCtx, "DELETE FROM process_instance WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("failed to delete process instances %v: %v", ids, err)
	}
	return nil
}

func (r processInstanceRepository) Query(c history.HistoricProcessInstanceCriteria, o history.QueryOptions) ([]*internal.ProcessInstanceEntity, error) {
	return queryRows(r.tx, r.txCtx, sqlProcessInstanceQuery, queryData(c, o, c.Sorting, processInstanceSortColumns), scanProcessInstance)
}

func (r processInstanceRepository) Count(c history.HistoricProcessInstanceCriteria) (int, error) {
	return countRows(r.tx, r.txCtx, sqlProcessInstanceQuery, countData(c))
}

func scanProcessInstance(row pgx.Row) (*internal.ProcessInstanceEntity, error) {
	var entity internal.ProcessInstanceEntity
	if err := row.Scan(
		&entity.Id,

		&entity.BusinessKey,
		&entity.DeleteReason,
		&entity.EndActivityId,
		&entity.ProcessDefinitionId,
		&entity.ProcessDefinitionKey,
		&entity.StartActivityId,
		&entity.StartUserId,
		&entity.TenantId,

		&entity.CaseInstanceId,
		&entity.RootProcessInstanceId,
		&entity.SuperCaseInstanceId,
		&entity.SuperProcessInstanceId,

		&entity.DurationInMillis,
		&entity.EndTime,
		&entity.SequenceCounter,
		&entity.StartTime,
	); err != nil {
		return nil, err
	}
	return &entity, nil
}
