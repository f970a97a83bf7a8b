package pg

import (
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

const variableInstanceColumns = `
	id,

	name,
	revision,
	state,
	tenant_id,

	activity_instance_id,
	case_execution_id,
	case_instance_id,
	execution_id,
	process_definition_id,
	process_definition_key,
	process_instance_id,
	task_id,

	value_type,
	text_value,
	bytes_value,
	object_type_name,
	serialization_data_format,

	create_time,
	sequence_counter
`

var variableInstanceSortColumns = map[string]string{
	"createTime":         "create_time",
	"processInstanceId":  `process_instance_id COLLATE "C"`,
	"revision":           "revision",
	"sequenceCounter":    "sequence_counter",
	"tenantId":           `tenant_id COLLATE "C"`,
	"variableInstanceId": `id COLLATE "C"`,
	"variableName":       `name COLLATE "C"`,
}

type variableInstanceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r variableInstanceRepository) Insert(entity *internal.VariableInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO variable_instance (`+variableInstanceColumns+`) VALUES (
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

	$19,
	$20
)
`,
		entity.Id,

		entity.Name,
		entity.Revision,
		entity.State.String(),
		entity.TenantId,

		entity.ActivityInstanceId,
		entity.CaseExecutionId,
		entity.CaseInstanceId,
		entity.ExecutionId,
		entity.ProcessDefinitionId,
		entity.ProcessDefinitionKey,
		entity.ProcessInstanceId,
		entity.TaskId,

		string(entity.Value.Type),
		entity.Value.Text,
		entity.Value.Bytes,
		entity.Value.ObjectTypeName,
		entity.Value.SerializationDataFormat,

		entity.CreateTime,
		entity.SequenceCounter,
	); err != nil {
		return fmt.Errorf("failed to insert variable instance %s: %v", entity.Id, err)
	}

	return nil
}

func (r variableInstanceRepository) Select(id string) (*internal.VariableInstanceEntity, error) {
	return selectRow(r.tx, r.txCtx, "variable instance", `
SELECT `+variableInstanceColumns+` FROM variable_instance WHERE id = $1
`, []any{id}, scanVariableInstance)
}

func (r variableInstanceRepository) SelectByNameAndScope(name string, scope history.VariableScope) (*internal.VariableInstanceEntity, error) {
	return selectRow(r.tx, r.txCtx, "variable instance", `
SELECT `+variableInstanceColumns+`
FROM
	variable_instance
WHERE
	name = $1 AND
	state <> 'DELETED' AND
	coalesce(activity_instance_id, '') = $2 AND
	coalesce(case_execution_id, '') = $3 AND
	coalesce(case_instance_id, '') = $4 AND
	coalesce(execution_id, '') = $5 AND
	coalesce(process_instance_id, '') = $6 AND
	coalesce(task_id, '') = $7
ORDER BY
	sequence_counter
LIMIT 1
`, []any{
		name,
		scope.ActivityInstanceId,
		scope.CaseExecutionId,
		scope.CaseInstanceId,
		scope.ExecutionId,
		scope.ProcessInstanceId,
		scope.TaskId,
	}, scanVariableInstance)
}

func (r variableInstanceRepository) Update(entity *internal.VariableInstanceEntity) error {
	tag, err := r.tx.Exec(r.txCtx, `
UPDATE
	variable_instance
SET
	revision = $2,
	state = $3,

	value_type = $4,
	text_value = $5,
	bytes_value = $6,
	object_type_name = $7,
	serialization_data_format = $8
WHERE
	id = $1
`,
		entity.Id,

		entity.Revision,
		entity.State.String(),

		string(entity.Value.Type),
		entity.Value.Text,
		entity.Value.Bytes,
		entity.Value.ObjectTypeName,
		entity.Value.SerializationDataFormat,
	)
	if err != nil {
		return fmt.Errorf("failed to update variable instance %s: %v", entity.Id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r variableInstanceRepository) Delete(id string) error {
	if _, err := r.tx.Exec(r.txCtx, "DELETE FROM variable_instance WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete variable instance %s: %v", id, err)
	}
	return nil
}

func (r variableInstanceRepository) DeleteByOwners(owners internal.Owners) error {
	return deleteByOwners(r.tx, r.txCtx, "variable_instance", owners, "process_instance_id", "case_instance_id", "task_id")
}

func (r variableInstanceRepository) Query(c history.HistoricVariableInstanceCriteria, o history.QueryOptions) ([]*internal.VariableInstanceEntity, error) {
	return queryRows(r.tx, r.txCtx, sqlVariableInstanceQuery, queryData(c, o, c.Sorting, variableInstanceSortColumns), scanVariableInstance)
}

func (r variableInstanceRepository) Count(c history.HistoricVariableInstanceCriteria) (int, error) {
	return countRows(r.tx, r.txCtx, sqlVariableInstanceQuery, countData(c))
}

func scanVariableInstance(row pgx.Row) (*internal.VariableInstanceEntity, error) {
	var (
		entity    internal.VariableInstanceEntity
		state     string
		valueType string
	)

	if err := row.Scan(
		&entity.Id,

		&entity.Name,
		&entity.Revision,
		&state,
		&entity.TenantId,

		&entity.ActivityInstanceId,
		&entity.CaseExecutionId,
		&entity.CaseInstanceId,
		&entity.ExecutionId,
		&entity.ProcessDefinitionId,
		&entity.ProcessDefinitionKey,
		&entity.ProcessInstanceId,
		&entity.TaskId,

		&valueType,
		&entity.Value.Text,
		&entity.Value.Bytes,
		&entity.Value.ObjectTypeName,
		&entity.Value.SerializationDataFormat,

		&entity.CreateTime,
		&entity.SequenceCounter,
	); err != nil {
		return nil, err
	}

	entity.State = history.MapVariableState(state)
	entity.Value.Type = history.ValueType(valueType)
	return &entity, nil
}

const detailColumns = `
	id,

	variable_instance_id,
	variable_name,
	revision,
	is_initial,
	is_removal,
	tenant_id,

	activity_instance_id,
	case_execution_id,
	case_instance_id,
	execution_id,
	process_definition_id,
	process_definition_key,
	process_instance_id,
	task_id,

	value_type,
	text_value,
	bytes_value,
	object_type_name,
	serialization_data_format,

	sequence_counter,
	occurrence_time
`

var detailSortColumns = map[string]string{
	"processInstanceId": `process_instance_id COLLATE "C"`,
	"revision":          "revision",
	"sequenceCounter":   "sequence_counter",
	"tenantId":          `tenant_id COLLATE "C"`,
	"time":              "occurrence_time",
	"variableName":      `variable_name COLLATE "C"`,
	"variableType":      `value_type COLLATE "C"`,
}

type detailRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r detailRepository) Insert(entity *internal.DetailEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO detail (`+detailColumns+`) VALUES (
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
	$19,
	$20,

	$21,
	$22
)
`,
		entity.Id,

		entity.VariableInstanceId,
		entity.VariableName,
		entity.Revision,
		entity.IsInitial,
		entity.IsRemoval,
		entity.TenantId,

		entity.ActivityInstanceId,
		entity.CaseExecutionId,
		entity.CaseInstanceId,
		entity.ExecutionId,
		entity.ProcessDefinitionId,
		entity.ProcessDefinitionKey,
		entity.ProcessInstanceId,
		entity.TaskId,

		string(entity.Value.Type),
		entity.Value.Text,
		entity.Value.Bytes,
		entity.Value.ObjectTypeName,
		entity.Value.SerializationDataFormat,

		entity.SequenceCounter,
		entity.Time,
	); err != nil {
		return fmt.Errorf("failed to insert detail %s: %v", entity.Id, err)
	}

	return nil
}

func (r detailRepository) Delete(id string) error {
	if _, err := r.tx.Exec(r.txCtx, "DELETE FROM detail WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete detail %s: %v", id, err)
	}
	return nil
}

func (r detailRepository) DeleteByVariableInstance(variableInstanceId string) error {
	if _, err := r.tx.Exec(r.txCtx, "DELETE FROM detail WHERE variable_instance_id = $1", variableInstanceId); err != nil {
		return fmt.Errorf("failed to delete details of variable instance %s: %v", variableInstanceId, err)
	}
	return nil
}

func (r detailRepository) DeleteByOwners(owners internal.Owners) error {
	return deleteByOwners(r.tx, r.txCtx, "detail", owners, "process_instance_id", "case_instance_id", "task_id")
}

func (r detailRepository) Query(c history.HistoricDetailCriteria, o history.QueryOptions) ([]*internal.DetailEntity, error) {
	return queryRows(r.tx, r.txCtx, sqlDetailQuery, queryData(c, o, c.Sorting, detailSortColumns), scanDetail)
}

func (r detailRepository) Count(c history.HistoricDetailCriteria) (int, error) {
	return countRows(r.tx, r.txCtx, sqlDetailQuery, countData(c))
}

func scanDetail(row pgx.Row) (*internal.DetailEntity, error) {
	var (
		entity    internal.DetailEntity
		valueType string
	)

	if err := row.Scan(
		&entity.Id,

		&entity.VariableInstanceId,
		&entity.VariableName,
		&entity.Revision,
		&entity.IsInitial,
		&entity.IsRemoval,
		&entity.TenantId,

		&entity.ActivityInstanceId,
		&entity.CaseExecutionId,
		&entity.CaseInstanceId,
		&entity.ExecutionId,
		&entity.ProcessDefinitionId,
		&entity.ProcessDefinitionKey,
		&entity.ProcessInstanceId,
		&entity.TaskId,

		&valueType,
		&entity.Value.Text,
		&entity.Value.Bytes,
		&entity.Value.ObjectTypeName,
		&entity.Value.SerializationDataFormat,

		&entity.SequenceCounter,
		&entity.Time,
	); err != nil {
		return nil, err
	}

	entity.Value.Type = history.ValueType(valueType)
	return &entity, nil
}
