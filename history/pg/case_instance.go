package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

const caseInstanceColumns = `
	id,

	business_key,
	case_definition_id,
	case_definition_key,
	create_user_id,
	state,
	tenant_id,

	super_case_instance_id,
	super_process_instance_id,

	close_time,
	create_time,
	duration_in_millis,
	sequence_counter
`

var caseInstanceSortColumns = map[string]string{
	"businessKey":      `business_key COLLATE "C"`,
	"caseDefinitionId": `case_definition_id COLLATE "C"`,
	"caseInstanceId":   `id COLLATE "C"`,
	"closeTime":        "close_time",
	"createTime":       "create_time",
	"durationInMillis": "duration_in_millis",
	"sequenceCounter":  "sequence_counter",
	"tenantId":         `tenant_id COLLATE "C"`,
}

type caseInstanceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r caseInstanceRepository) Insert(entity *internal.CaseInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO case_instance (`+caseInstanceColumns+`) VALUES (
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
	$13
)
`,
		entity.Id,

		entity.BusinessKey,
		entity.CaseDefinitionId,
		entity.CaseDefinitionKey,
		entity.CreateUserId,
		entity.State.String(),
		entity.TenantId,

		entity.SuperCaseInstanceId,
		entity.SuperProcessInstanceId,

		entity.CloseTime,
		entity.CreateTime,
		entity.DurationInMillis,
		entity.SequenceCounter,
	); err != nil {
		return fmt.Errorf("failed to insert case instance %+v: %v", entity, err)
	}

	return nil
}

func (r caseInstanceRepository) Select(id string) (*internal.CaseInstanceEntity, error) {
	return selectRow(r.tx, r.txCtx, "case instance", `
SELECT `+caseInstanceColumns+` FROM case_instance WHERE id = $1
`, []any{id}, scanCaseInstance)
}

func (r caseInstanceRepository) SelectBySuperProcessInstance(superProcessInstanceId string) ([]*internal.CaseInstanceEntity, error) {
	return selectRows(r.tx, r.txCtx, `
SELECT `+caseInstanceColumns+` FROM case_instance WHERE super_process_instance_id = $1 ORDER BY sequence_counter
`, []any{superProcessInstanceId}, scanCaseInstance)
}

func (r caseInstanceRepository) SelectClosedBefore(before time.Time, limit int) ([]*internal.CaseInstanceEntity, error) {
	return selectRows(r.tx, r.txCtx, `
SELECT `+caseInstanceColumns+`
FROM
	case_instance
WHERE
	state = 'CLOSED' AND
	close_time < $1
ORDER BY
	close_time, sequence_counter
LIMIT $2
`, []any{before.UTC(), limit}, scanCaseInstance)
}

func (r caseInstanceRepository) Update(entity *internal.CaseInstanceEntity) error {
	tag, err := r.tx.Exec(r.txCtx, `
UPDATE
	case_instance
SET
	business_key = $2,
	create_user_id = $3,
	state = $4,
	tenant_id = $5,

	super_case_instance_id = $6,
	super_process_instance_id = $7,

	close_time = $8,
	duration_in_millis = $9
WHERE
	id = $1
`,
		entity.Id,

		entity.BusinessKey,
		entity.CreateUserId,
		entity.State.String(),
		entity.TenantId,

		entity.SuperCaseInstanceId,
		entity.SuperProcessInstanceId,

		entity.CloseTime,
		entity.DurationInMillis,
	)
	if err != nil {
		return fmt.Errorf("failed to update case instance %+v: %v", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r caseInstanceRepository) Delete(ids []string) error {
	if _, err := r.tx.Exec(r.txCtx, "DELETE FROM case_instance WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("failed to delete case instances %v: %v", ids, err)
	}
	return nil
}

func (r caseInstanceRepository) Query(c history.HistoricCaseInstanceCriteria, o history.QueryOptions) ([]*internal.CaseInstanceEntity, error) {
	return queryRows(r.tx, r.txCtx, sqlCaseInstanceQuery, queryData(c, o, c.Sorting, caseInstanceSortColumns), scanCaseInstance)
}

func (r caseInstanceRepository) Count(c history.HistoricCaseInstanceCriteria) (int, error) {
	return countRows(r.tx, r.txCtx, sqlCaseInstanceQuery, countData(c))
}

func scanCaseInstance(row pgx.Row) (*internal.CaseInstanceEntity, error) {
	var (
		entity internal.CaseInstanceEntity
		state  string
	)

	if err := row.Scan(
		&entity.Id,

		&entity.BusinessKey,
		&entity.CaseDefinitionId,
		&entity.CaseDefinitionKey,
		&entity.CreateUserId,
		&state,
		&entity.TenantId,

		&entity.SuperCaseInstanceId,
		&entity.SuperProcessInstanceId,

		&entity.CloseTime,
		&entity.CreateTime,
		&entity.DurationInMillis,
		&entity.SequenceCounter,
	); err != nil {
		return nil, err
	}

	entity.State = history.MapCaseInstanceState(state)
	return &entity, nil
}
