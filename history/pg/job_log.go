package pg

import (
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

const jobLogColumns = `
	id,
	state,

	job_id,
	job_definition_id,
	job_definition_type,
	job_definition_configuration,
	job_due_date,
	job_exception_message,
	job_priority,
	job_retries,

	activity_id,
	deployment_id,
	execution_id,
	failed_activity_id,
	hostname,
	process_definition_id,
	process_definition_key,
	process_instance_id,
	tenant_id,

	has_exception_stacktrace,

	sequence_counter,
	log_time
`

var jobLogSortColumns = map[string]string{
	"activityId":           `activity_id COLLATE "C"`,
	"deploymentId":         `deployment_id COLLATE "C"`,
	"executionId":          `execution_id COLLATE "C"`,
	"hostname":             `hostname COLLATE "C"`,
	"jobDefinitionId":      `job_definition_id COLLATE "C"`,
	"jobDueDate":           "job_due_date",
	"jobId":                `job_id COLLATE "C"`,
	"jobPriority":          "job_priority",
	"jobRetries":           "job_retries",
	"processDefinitionId":  `process_definition_id COLLATE "C"`,
	"processDefinitionKey": `process_definition_key COLLATE "C"`,
	"processInstanceId":    `process_instance_id COLLATE "C"`,
	"sequenceCounter":      "sequence_counter",
	"tenantId":             `tenant_id COLLATE "C"`,
	"timestamp":            "log_time",
}

type jobLogRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r jobLogRepository) Insert(entity *internal.JobLogEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO job_log (`+jobLogColumns+`) VALUES (
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
		entity.State.String(),

		entity.JobId,
		entity.JobDefinitionId,
		entity.JobDefinitionType,
		entity.JobDefinitionConfiguration,
		entity.JobDueDate,
		entity.JobExceptionMessage,
		entity.JobPriority,
		entity.JobRetries,

		entity.ActivityId,
		entity.DeploymentId,
		entity.ExecutionId,
		entity.FailedActivityId,
		entity.Hostname,
		entity.ProcessDefinitionId,
		entity.ProcessDefinitionKey,
		entity.ProcessInstanceId,
		entity.TenantId,

		entity.HasExceptionStacktrace,

		entity.SequenceCounter,
		entity.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to insert job log %+v: %v", entity, err)
	}

	return nil
}

func (r jobLogRepository) SelectLatest(jobId string) (*internal.JobLogEntity, error) {
	return selectRow(r.tx, r.txCtx, "latest job log", `
SELECT `+jobLogColumns+` FROM job_log WHERE job_id = $1 ORDER BY sequence_counter DESC LIMIT 1
`, []any{jobId}, scanJobLog)
}

func (r jobLogRepository) SelectPendingByProcessInstance(processInstanceId string) ([]*internal.JobLogEntity, error) {
	return selectRows(r.tx, r.txCtx, `
SELECT `+jobLogColumns+`
FROM (
	SELECT DISTINCT ON (job_id)
		*
	FROM
		job_log
	WHERE
		process_instance_id = $1
	ORDER BY
		job_id, sequence_counter DESC
) latest
WHERE
	state NOT IN ('SUCCESS', 'DELETION')
ORDER BY
	sequence_counter
`, []any{processInstanceId}, scanJobLog)
}

func (r jobLogRepository) DeleteByOwners(owners internal.Owners) error {
	if len(owners.ProcessInstanceIds) == 0 {
		return nil
	}

	if _, err := r.tx.Exec(r.txCtx, `
DELETE FROM
	job_log_exception_stacktrace
WHERE
	job_log_id IN (SELECT id FROM job_log WHERE process_instance_id = ANY($1))
`, owners.ProcessInstanceIds); err != nil {
		return fmt.Errorf("failed to delete exception stacktraces of %+v: %v", owners, err)
	}

	return deleteByOwners(r.tx, r.txCtx, "job_log", owners, "process_instance_id", "", "")
}

func (r jobLogRepository) InsertExceptionStacktrace(jobLogId string, exceptionStacktrace string) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO job_log_exception_stacktrace (job_log_id, exception_stacktrace) VALUES ($1, $2)
`, jobLogId, exceptionStacktrace); err != nil {
		return fmt.Errorf("failed to insert exception stacktrace of job log %s: %v", jobLogId, err)
	}
	return nil
}

func (r jobLogRepository) SelectExceptionStacktrace(jobLogId string) (string, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT exception_stacktrace FROM job_log_exception_stacktrace WHERE job_log_id = $1
`, jobLogId)

	var exceptionStacktrace string
	if err := row.Scan(&exceptionStacktrace); err != nil {
		if err == pgx.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("failed to select exception stacktrace of job log %s: %v", jobLogId, err)
	}

	return exceptionStacktrace, nil
}

func (r jobLogRepository) Query(c history.HistoricJobLogCriteria, o history.QueryOptions) ([]*internal.JobLogEntity, error) {
	return queryRows(r.tx, r.txCtx, sqlJobLogQuery, queryData(c, o, c.Sorting, jobLogSortColumns), scanJobLog)
}

func (r jobLogRepository) Count(c history.HistoricJobLogCriteria) (int, error) {
	return countRows(r.tx, r.txCtx, sqlJobLogQuery, countData(c))
}

func scanJobLog(row pgx.Row) (*internal.JobLogEntity, error) {
	var (
		entity internal.JobLogEntity
		state  string
	)

	if err := row.Scan(
		&entity.Id,
		&state,

		&entity.JobId,
		&entity.JobDefinitionId,
		&entity.JobDefinitionType,
		&entity.JobDefinitionConfiguration,
		&entity.JobDueDate,
		&entity.JobExceptionMessage,
		&entity.JobPriority,
		&entity.JobRetries,

		&entity.ActivityId,
		&entity.DeploymentId,
		&entity.ExecutionId,
		&entity.FailedActivityId,
		&entity.Hostname,
		&entity.ProcessDefinitionId,
		&entity.ProcessDefinitionKey,
		&entity.ProcessInstanceId,
		&entity.TenantId,

		&entity.HasExceptionStacktrace,

		&entity.SequenceCounter,
		&entity.Timestamp,
	); err != nil {
		return nil, err
	}

	entity.State = history.MapJobLogState(state)
	return &entity, nil
}
