package pg

import (
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const activityInstanceColumns = `
	id,
	parent_activity_instance_id,

	activity_id,
	activity_name,
	activity_type,
	execution_id,
	process_definition_id,
	process_definition_key,
	process_instance_id,
	tenant_id,

	assignee,
	called_case_instance_id,
	called_process_instance_id,
	task_id,

	duration_in_millis,
	end_state,
	end_time,
	sequence_counter,
	start_time
`

var activityInstanceSortColumns = map[string]string{
	"activityId":          `activity_id COLLATE "C"`,
	"activityInstanceId":  `id COLLATE "C"`,
	"activityName":        `activity_name COLLATE "C"`,
	"activityType":        `activity_type COLLATE "C"`,
	"durationInMillis":    "duration_in_millis",
	"endTime":             "end_time",
	"executionId":         `execution_id COLLATE "C"`,
	"processDefinitionId": `process_definition_id COLLATE "C"`,
	"processInstanceId":   `process_instance_id COLLATE "C"`,
	"sequenceCounter":     "sequence_counter",
	"startTime":           "start_time",
	"tenantId":            `tenant_id COLLATE "C"`,
}

type activityInstanceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r activityInstanceRepository) Insert(entity *internal.ActivityInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO activity_instance (`+activityInstanceColumns+`) VALUES (
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
		entity.ParentActivityInstanceId,

		entity.ActivityId,
		entity.ActivityName,
		entity.ActivityType,
		entity.ExecutionId,
		entity.ProcessDefinitionId,
		entity.ProcessDefinitionKey,
		entity.ProcessInstanceId,
		entity.TenantId,

		entity.Assignee,
		entity.CalledCaseInstanceId,
		entity.CalledProcessInstanceId,
		entity.TaskId,

		entity.DurationInMillis,
		activityEndState(entity.EndState),
		entity.EndTime,
		entity.SequenceCounter,
		entity.StartTime,
	); err != nil {
		return fmt.Errorf("failed to insert activity instance %+v: %v", entity, err)
	}

	return nil
}

func (r activityInstanceRepository) Select(id string) (*internal.ActivityInstanceEntity, error) {
	return selectRow(r.tx, r.txCtx, "activity instance", `
SELECT `+activityInstanceColumns+` FROM activity_instance WHERE id = $1
`, []any{id}, scanActivityInstance)
}

func (r activityInstanceRepository) SelectOpenByProcessInstance(processInstanceId string) ([]*internal.ActivityInstanceEntity, error) {
	return selectRows(r.tx, r.txCtx, `
SELECT `+activityInstanceColumns+`
FROM
	activity_instance
WHERE
	process_instance_id = $1 AND
	end_time IS NULL
ORDER BY
	sequence_counter
`, []any{processInstanceId}, scanActivityInstance)
}

func (r activityInstanceRepository) Update(entity *internal.ActivityInstanceEntity) error {
	tag, err := r.tx.Exec(r.txCtx, `
UPDATE
	activity_instance
SET
	parent_activity_instance_id = $2,

	activity_name = $3,
	execution_id = $4,
	tenant_id = $5,

	assignee = $6,
	called_case_instance_id = $7,
	called_process_instance_id = $8,
	task_id = $9,

	duration_in_millis = $10,
	end_state = $11,
	end_time = $12
WHERE
	id = $1
`,
		entity.Id,
		entity.ParentActivityInstanceId,

		entity.ActivityName,
		entity.ExecutionId,
		entity.TenantId,

		entity.Assignee,
		entity.CalledCaseInstanceId,
		entity.CalledProcessInstanceId,
		entity.TaskId,

		entity.DurationInMillis,
		activityEndState(entity.EndState),
		entity.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity instance %+v: %v", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r activityInstanceRepository) DeleteByOwners(owners internal.Owners) error {
	return deleteByOwners(r.tx, r.txCtx, "activity_instance", owners, "process_instance_id", "", "")
}

func (r activityInstanceRepository) Query(c history.HistoricActivityInstanceCriteria, o history.QueryOptions) ([]*internal.ActivityInstanceEntity, error) {
	return queryRows(r.tx, r.txCtx, sqlActivityInstanceQuery, queryData(c, o, c.Sorting, activityInstanceSortColumns), scanActivityInstance)
}

func (r activityInstanceRepository) Count(c history.HistoricActivityInstanceCriteria) (int, error) {
	return countRows(r.tx, r.txCtx, sqlActivityInstanceQuery, countData(c))
}

// QueryStatistics aggregates activity instances and incidents per activity within the database.
func (r activityInstanceRepository) QueryStatistics(c history.HistoricActivityStatisticsCriteria) ([]history.HistoricActivityStatistics, error) {
	sql, err := executeTemplate(sqlActivityStatisticsQuery, statisticsData(c))
	if err != nil {
		return nil, err
	}

	rows, err := selectRows(r.tx, r.txCtx, sql, nil, scanActivityStatistics)
	if err != nil {
		return nil, err
	}

	statistics := make([]history.HistoricActivityStatistics, len(rows))
	for i, row := range rows {
		statistics[i] = *row
	}
	return statistics, nil
}

func scanActivityInstance(row pgx.Row) (*internal.ActivityInstanceEntity, error) {
	var (
		entity   internal.ActivityInstanceEntity
		endState pgtype.Text
	)

	if err := row.Scan(
		&entity.Id,
		&entity.ParentActivityInstanceId,

		&entity.ActivityId,
		&entity.ActivityName,
		&entity.ActivityType,
		&entity.ExecutionId,
		&entity.ProcessDefinitionId,
		&entity.ProcessDefinitionKey,
		&entity.ProcessInstanceId,
		&entity.TenantId,

		&entity.Assignee,
		&entity.CalledCaseInstanceId,
		&entity.CalledProcessInstanceId,
		&entity.TaskId,

		&entity.DurationInMillis,
		&endState,
		&entity.EndTime,
		&entity.SequenceCounter,
		&entity.StartTime,
	); err != nil {
		return nil, err
	}

	entity.EndState = history.MapActivityEndState(endState.String)
	return &entity, nil
}

// activityEndState returns the column value of an end state, which is NULL while running.
func activityEndState(v history.ActivityEndState) pgtype.Text {
	return pgtype.Text{String: v.String(), Valid: v != 0}
}

func scanActivityStatistics(row pgx.Row) (*history.HistoricActivityStatistics, error) {
	var statistics history.HistoricActivityStatistics
	if err := row.Scan(
		&statistics.Id,

		&statistics.Instances,
		&statistics.Finished,
		&statistics.Canceled,
		&statistics.CompleteScope,

		&statistics.OpenIncidents,
		&statistics.ResolvedIncidents,
		&statistics.DeletedIncidents,
	); err != nil {
		return nil, err
	}
	return &statistics, nil
}
