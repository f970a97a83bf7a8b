package pg

import (
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

const taskInstanceColumns = `
	id,
	parent_task_id,

	assignee,
	delete_reason,
	description,
	due_date,
	follow_up_date,
	name,
	owner,
	priority,
	state,
	task_definition_key,
	tenant_id,

	activity_instance_id,
	execution_id,
	process_definition_id,
	process_definition_key,
	process_instance_id,

	case_definition_id,
	case_execution_id,
	case_instance_id,

	duration_in_millis,
	end_time,
	sequence_counter,
	start_time
`

var taskInstanceSortColumns = map[string]string{
	"caseDefinitionId":    `case_definition_id COLLATE "C"`,
	"caseExecutionId":     `case_execution_id COLLATE "C"`,
	"caseInstanceId":      `case_instance_id COLLATE "C"`,
	"deleteReason":        `delete_reason COLLATE "C"`,
	"durationInMillis":    "duration_in_millis",
	"endTime":             "end_time",
	"executionId":         `execution_id COLLATE "C"`,
	"processDefinitionId": `process_definition_id COLLATE "C"`,
	"processInstanceId":   `process_instance_id COLLATE "C"`,
	"sequenceCounter":     "sequence_counter",
	"startTime":           "start_time",
	"taskAssignee":        `assignee COLLATE "C"`,
	"taskDefinitionKey":   `task_definition_key COLLATE "C"`,
	"taskDescription":     `description COLLATE "C"`,
	"taskDueDate":         "due_date",
	"taskFollowUpDate":    "follow_up_date",
	"taskId":              `id COLLATE "C"`,
	"taskName":            `name COLLATE "C"`,
	"taskOwner":           `owner COLLATE "C"`,
	"taskPriority":        "priority",
	"tenantId":            `tenant_id COLLATE "C"`,
}

type taskInstanceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r taskInstanceRepository) Insert(entity *internal.TaskInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO task_instance (`+taskInstanceColumns+`) VALUES (
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

	$22,
	$23,
	$24,
	$25
)
`,
		entity.Id,
		entity.ParentTaskId,

		entity.Assignee,
		entity.DeleteReason,
		entity.Description,
		entity.DueDate,
		entity.FollowUpDate,
		entity.Name,
		entity.Owner,
		entity.Priority,
		entity.State.String(),
		entity.TaskDefinitionKey,
		entity.TenantId,

		entity.ActivityInstanceId,
		entity.ExecutionId,
		entity.ProcessDefinitionId,
		entity.ProcessDefinitionKey,
		entity.ProcessInstanceId,

		entity.CaseDefinitionId,
		entity.CaseExecutionId,
		entity.CaseInstanceId,

		entity.DurationInMillis,
		entity.EndTime,
		entity.SequenceCounter,
		entity.StartTime,
	); err != nil {
		return fmt.Errorf("failed to insert task instance %+v: %v", entity, err)
	}

	return nil
}

func (r taskInstanceRepository) Select(id string) (*internal.TaskInstanceEntity, error) {
	return selectRow(r.tx, r.txCtx, "task instance", `
SELECT `+taskInstanceColumns+` FROM task_instance WHERE id = $1
`, []any{id}, scanTaskInstance)
}

func (r taskInstanceRepository) SelectOpenByProcessInstance(processInstanceId string) ([]*internal.TaskInstanceEntity, error) {
	return selectRows(r.tx, r.txCtx, `
SELECT `+taskInstanceColumns+`
FROM
	task_instance
WHERE
	process_instance_id = $1 AND
	state NOT IN ('Completed', 'Deleted')
ORDER BY
	sequence_counter
`, []any{processInstanceId}, scanTaskInstance)
}

func (r taskInstanceRepository) Update(entity *internal.TaskInstanceEntity) error {
	tag, err := r.tx.Exec(r.txCtx, `
UPDATE
	task_instance
SET
	parent_task_id = $2,

	assignee = $3,
	delete_reason = $4,
	description = $5,
	due_date = $6,
	follow_up_date = $7,
	name = $8,
	owner = $9,
	priority = $10,
	state = $11,
	task_definition_key = $12,
	tenant_id = $13,

	activity_instance_id = $14,
	execution_id = $15,

	duration_in_millis = $16,
	end_time = $17
WHERE
	id = $1
`,
		entity.Id,
		entity.ParentTaskId,

		entity.Assignee,
		entity.DeleteReason,
		entity.Description,
		entity.DueDate,
		entity.FollowUpDate,
		entity.Name,
		entity.Owner,
		entity.Priority,
		entity.State.String(),
		entity.TaskDefinitionKey,
		entity.TenantId,

		entity.ActivityInstanceId,
		entity.ExecutionId,

		entity.DurationInMillis,
		entity.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to update task instance %+v: %v", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r taskInstanceRepository) Delete(id string) error {
	if _, err := r.tx.Exec(r.txCtx, "DELETE FROM task_instance WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete task instance %s: %v", id, err)
	}
	return nil
}

func (r taskInstanceRepository) DeleteByOwners(owners internal.Owners) error {
	return deleteByOwners(r.tx, r.txCtx, "task_instance", owners, "process_instance_id", "case_instance_id", "id")
}

func (r taskInstanceRepository) Query(c history.HistoricTaskInstanceCriteria, o history.QueryOptions) ([]*internal.TaskInstanceEntity, error) {
	return queryRows(r.tx, r.txCtx, sqlTaskInstanceQuery, queryData(c, o, c.Sorting, taskInstanceSortColumns), scanTaskInstance)
}

func (r taskInstanceRepository) Count(c history.HistoricTaskInstanceCriteria) (int, error) {
	return countRows(r.tx, r.txCtx, sqlTaskInstanceQuery, countData(c))
}

func scanTaskInstance(row pgx.Row) (*internal.TaskInstanceEntity, error) {
	var (
		entity internal.TaskInstanceEntity
		state  string
	)

	if err := row.Scan(
		&entity.Id,
		&entity.ParentTaskId,

		&entity.Assignee,
		&entity.DeleteReason,
		&entity.Description,
		&entity.DueDate,
		&entity.FollowUpDate,
		&entity.Name,
		&entity.Owner,
		&entity.Priority,
		&state,
		&entity.TaskDefinitionKey,
		&entity.TenantId,

		&entity.ActivityInstanceId,
		&entity.ExecutionId,
		&entity.ProcessDefinitionId,
		&entity.ProcessDefinitionKey,
		&entity.ProcessInstanceId,

		&entity.CaseDefinitionId,
		&entity.CaseExecutionId,
		&entity.CaseInstanceId,

		&entity.DurationInMillis,
		&entity.EndTime,
		&entity.SequenceCounter,
		&entity.StartTime,
	); err != nil {
		return nil, err
	}

	entity.State = history.MapTaskState(state)
	return &entity, nil
}
