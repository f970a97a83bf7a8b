package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type JobLogEntity struct {
	Id    string
	State history.JobLogState

	JobId                      string
	JobDefinitionId            pgtype.Text
	JobDefinitionType          pgtype.Text
	JobDefinitionConfiguration pgtype.Text
	JobDueDate                 pgtype.Timestamp
	JobExceptionMessage        pgtype.Text
	JobPriority                int64
	JobRetries                 int

	ActivityId           pgtype.Text
	DeploymentId         pgtype.Text
	ExecutionId          pgtype.Text
	FailedActivityId     pgtype.Text
	Hostname             string
	ProcessDefinitionId  pgtype.Text
	ProcessDefinitionKey pgtype.Text
	ProcessInstanceId    pgtype.Text
	TenantId             pgtype.Text

	HasExceptionStacktrace bool

	SequenceCounter int64
	Timestamp       time.Time
}

func (e JobLogEntity) HistoricJobLog() history.HistoricJobLog {
	return history.HistoricJobLog{
		Id:    e.Id,
		State: e.State,

		JobId:                      e.JobId,
		JobDefinitionId:            e.JobDefinitionId.String,
		JobDefinitionType:          e.JobDefinitionType.String,
		JobDefinitionConfiguration: e.JobDefinitionConfiguration.String,
		JobDueDate:                 timeOrNil(e.JobDueDate),
		JobExceptionMessage:        e.JobExceptionMessage.String,
		JobPriority:                e.JobPriority,
		JobRetries:                 e.JobRetries,

		ActivityId:           e.ActivityId.String,
		DeploymentId:         e.DeploymentId.String,
		ExecutionId:          e.ExecutionId.String,
		FailedActivityId:     e.FailedActivityId.String,
		Hostname:             e.Hostname,
		ProcessDefinitionId:  e.ProcessDefinitionId.String,
		ProcessDefinitionKey: e.ProcessDefinitionKey.String,
		ProcessInstanceId:    e.ProcessInstanceId.String,
		TenantId:             e.TenantId.String,

		HasExceptionStacktrace: e.HasExceptionStacktrace,

		SequenceCounter: e.SequenceCounter,
		Timestamp:       e.Timestamp,
	}
}

func (e JobLogEntity) isTerminal() bool {
	return e.State == history.JobLogSuccess || e.State == history.JobLogDeletion
}

type JobLogRepository interface {
	Insert(*JobLogEntity) error
	// SelectLatest selects the most recent log of a job.
	SelectLatest(jobId string) (*JobLogEntity, error)
	// SelectPendingByProcessInstance selects the most recent log of all jobs of a process instance, which have neither succeeded nor been deleted.
	SelectPendingByProcessInstance(processInstanceId string) ([]*JobLogEntity, error)
	DeleteByOwners(Owners) error

	InsertExceptionStacktrace(jobLogId string, exceptionStacktrace string) error
	SelectExceptionStacktrace(jobLogId string) (string, error)

	Query(history.HistoricJobLogCriteria, history.QueryOptions) ([]*JobLogEntity, error)
	Count(history.HistoricJobLogCriteria) (int, error)
}

func CreateJob(ctx Context, cmd history.CreateJobCmd) error {
	if err := validateCmd("failed to create job", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryJobLog) {
		return nil
	}

	if _, err := ctx.JobLogs().SelectLatest(cmd.JobId); err == nil {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to create job",
			Detail: fmt.Sprintf("job %s has already been created", cmd.JobId),
		}
	} else if err != pgx.ErrNoRows {
		return err
	}

	jobLog := JobLogEntity{
		State: history.JobLogCreation,

		JobId:                      cmd.JobId,
		JobDefinitionId:            text(cmd.JobDefinitionId),
		JobDefinitionType:          text(cmd.JobDefinitionType),
		JobDefinitionConfiguration: text(cmd.JobDefinitionConfiguration),
		JobDueDate:                 timestampOrNull(cmd.DueDate),
		JobPriority:                cmd.Priority,
		JobRetries:                 cmd.Retries,

		ActivityId:        text(cmd.ActivityId),
		DeploymentId:      text(cmd.DeploymentId),
		ExecutionId:       text(cmd.ExecutionId),
		ProcessInstanceId: text(cmd.ProcessInstanceId),
		TenantId:          text(cmd.TenantId),
	}

	if cmd.ProcessInstanceId != "" {
		processInstance, err := ctx.ProcessInstances().Select(cmd.ProcessInstanceId)
		if err == pgx.ErrNoRows {
			return history.Error{
				Type:   history.ErrorNotFound,
				Title:  "failed to create job",
				Detail: fmt.Sprintf("process instance %s could not be found", cmd.ProcessInstanceId),
			}
		}
		if err != nil {
			return err
		}

		jobLog.ProcessDefinitionId = text(processInstance.ProcessDefinitionId)
		jobLog.ProcessDefinitionKey = text(processInstance.ProcessDefinitionKey)
		if !jobLog.TenantId.Valid {
			jobLog.TenantId = processInstance.TenantId
		}
	}

	return insertJobLog(ctx, &jobLog)
}

func FailJob(ctx Context, cmd history.FailJobCmd) error {
	if err := validateCmd("failed to fail job", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryJobLog) {
		return nil
	}

	latest, err := selectPendingJobLog(ctx, cmd.JobId, "failed to fail job")
	if err != nil {
		return err
	}

	if latest.State == history.JobLogFailure && cmd.Retries >= latest.JobRetries {
		return history.Error{
			Type:   history.ErrorConflict,
			Title:  "failed to fail job",
			Detail: fmt.Sprintf("retries %d must be less than the retries %d of the previous failure", cmd.Retries, latest.JobRetries),
		}
	}

	jobLog := *latest
	jobLog.State = history.JobLogFailure
	jobLog.JobExceptionMessage = text(truncate(cmd.ExceptionMessage, ctx.Options().JobExceptionMessageMaxLength))
	jobLog.JobRetries = cmd.Retries
	jobLog.FailedActivityId = text(cmd.FailedActivityId)
	jobLog.HasExceptionStacktrace = cmd.ExceptionStacktrace != ""

	if err := insertJobLog(ctx, &jobLog); err != nil {
		return err
	}

	if !jobLog.HasExceptionStacktrace {
		return nil
	}
	return ctx.JobLogs().InsertExceptionStacktrace(jobLog.Id, cmd.ExceptionStacktrace)
}

func SucceedJob(ctx Context, cmd history.SucceedJobCmd) error {
	if err := validateCmd("failed to succeed job", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryJobLog) {
		return nil
	}

	latest, err := selectPendingJobLog(ctx, cmd.JobId, "failed to succeed job")
	if err != nil {
		return err
	}

	return insertTerminalJobLog(ctx, latest, history.JobLogSuccess)
}

func DeleteJob(ctx Context, cmd history.DeleteJobCmd) error {
	if err := validateCmd("failed to delete job", cmd); err != nil {
		return err
	}
	if !shouldRecord(ctx, CategoryJobLog) {
		return nil
	}

	latest, err := selectPendingJobLog(ctx, cmd.JobId, "failed to delete job")
	if err != nil {
		return err
	}

	return insertTerminalJobLog(ctx, latest, history.JobLogDeletion)
}

// deletePendingJobs writes a deletion log for all pending jobs of a process instance.
func deletePendingJobs(ctx Context, processInstanceId string) error {
	if !shouldRecord(ctx, CategoryJobLog) {
		return nil
	}

	pending, err := ctx.JobLogs().SelectPendingByProcessInstance(processInstanceId)
	if err != nil {
		return err
	}

	for _, latest := range pending {
		if err := insertTerminalJobLog(ctx, latest, history.JobLogDeletion); err != nil {
			return err
		}
	}
	return nil
}

func insertTerminalJobLog(ctx Context, latest *JobLogEntity, state history.JobLogState) error {
	jobLog := *latest
	jobLog.State = state
	jobLog.JobExceptionMessage = pgtype.Text{}
	jobLog.FailedActivityId = pgtype.Text{}
	jobLog.HasExceptionStacktrace = false

	return insertJobLog(ctx, &jobLog)
}

func insertJobLog(ctx Context, jobLog *JobLogEntity) error {
	sequenceCounter, err := nextSequenceCounter(ctx)
	if err != nil {
		return err
	}

	jobLog.Id = newId()
	jobLog.Hostname = ctx.Options().EngineId
	jobLog.SequenceCounter = sequenceCounter
	jobLog.Timestamp = ctx.Time()

	return ctx.JobLogs().Insert(jobLog)
}

func selectPendingJobLog(ctx Context, jobId string, title string) (*JobLogEntity, error) {
	latest, err := ctx.JobLogs().SelectLatest(jobId)
	if err == pgx.ErrNoRows {
		return nil, history.Error{
			Type:   history.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("job %s could not be found", jobId),
		}
	}
	if err != nil {
		return nil, err
	}

	if latest.isTerminal() {
		return nil, history.Error{
			Type:   history.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("job %s has already a %s log", jobId, latest.State),
		}
	}

	return latest, nil
}

func GetHistoricJobLogExceptionStacktrace(ctx Context, jobLogId string) (string, error) {
	notFound := history.Error{
		Type:   history.ErrorNotFound,
		Title:  "failed to get exception stacktrace",
		Detail: fmt.Sprintf("exception stacktrace of historic job log %s could not be found", jobLogId),
	}

	if jobLogId == "" {
		notFound.Detail = "historic job log ID is empty"
		return "", notFound
	}

	exceptionStacktrace, err := ctx.JobLogs().SelectExceptionStacktrace(jobLogId)
	if err == pgx.ErrNoRows {
		return "", notFound
	}
	if err != nil {
		return "", err
	}

	return exceptionStacktrace, nil
}

// truncate truncates a string to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
