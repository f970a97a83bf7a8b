package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

const (
	DefaultEngineId                     = "default-engine" // Default ID of an engine, used when no specific ID is provided via [Options].
	DefaultJobExceptionMessageMaxLength = 666              // Maximum length of a stored job exception message.
)

// A Store durably records what happened during process, case, task, job and variable execution and
// exposes a filterable, sortable query and aggregation API over that record.
type Store interface {
	Recorder
	Service

	// Transaction executes a function, recording all events within one transaction.
	// If the function returns an error, none of the events are recorded.
	Transaction(context.Context, func(Recorder) error) error

	// Shutdown shuts the store down.
	Shutdown()
}

// A Recorder receives the events, emitted by an execution engine at defined lifecycle points.
//
// Each event is checked against the configured [HistoryLevel], before it is recorded.
// When called directly on a [Store], each event is recorded within its own transaction.
type Recorder interface {
	// StartProcessInstance records the start of a process instance.
	StartProcessInstance(context.Context, StartProcessInstanceCmd) error
	// EndProcessInstance records the regular end of a process instance.
	EndProcessInstance(context.Context, EndProcessInstanceCmd) error
	// DeleteProcessInstance records the deletion of a running process instance.
	//
	// Open activity instances are canceled, open tasks are deleted, pending jobs receive a deletion log and open
	// incidents are deleted. Sub process instances are deleted as well, unless SkipSubprocesses is set.
	DeleteProcessInstance(context.Context, DeleteProcessInstanceCmd) error

	// StartActivityInstance records the start of an activity instance and returns its ID.
	StartActivityInstance(context.Context, StartActivityInstanceCmd) (string, error)
	// EndActivityInstance records the end of an activity instance.
	EndActivityInstance(context.Context, EndActivityInstanceCmd) error
	// ReparentActivityInstance moves an activity instance into another scope, e.g. a multi instance body.
	ReparentActivityInstance(context.Context, ReparentActivityInstanceCmd) error

	// CreateCaseInstance records the creation of a case instance.
	CreateCaseInstance(context.Context, CreateCaseInstanceCmd) error
	// UpdateCaseInstanceState records a state change of a case instance.
	UpdateCaseInstanceState(context.Context, UpdateCaseInstanceStateCmd) error

	// CreateTask records the creation of a user task.
	CreateTask(context.Context, CreateTaskCmd) error
	// UpdateTask records a mutation of a user task.
	UpdateTask(context.Context, UpdateTaskCmd) error
	// CompleteTask records the completion of a user task.
	CompleteTask(context.Context, CompleteTaskCmd) error
	// DeleteTask records the deletion of a user task.
	DeleteTask(context.Context, DeleteTaskCmd) error

	// SetVariable records the creation or update of a variable.
	SetVariable(context.Context, SetVariableCmd) error
	// RemoveVariable records the removal of a variable.
	RemoveVariable(context.Context, RemoveVariableCmd) error

	// CreateJob records the creation of a job.
	CreateJob(context.Context, CreateJobCmd) error
	// FailJob records a failed job execution.
	FailJob(context.Context, FailJobCmd) error
	// SucceedJob records a successful job execution.
	SucceedJob(context.Context, SucceedJobCmd) error
	// DeleteJob records the deletion of a job.
	DeleteJob(context.Context, DeleteJobCmd) error

	// CreateIncident records the creation of an incident and returns its ID.
	CreateIncident(context.Context, CreateIncidentCmd) (string, error)
	// ResolveIncident records the resolution of an incident.
	ResolveIncident(context.Context, ResolveIncidentCmd) error
	// DeleteIncident records the deletion of an incident.
	DeleteIncident(context.Context, DeleteIncidentCmd) error
}

// A Service provides read access to the recorded history and allows to remove historic data.
type Service interface {
	QueryExecutor

	CreateHistoricActivityInstanceQuery() HistoricActivityInstanceQuery
	CreateHistoricActivityStatisticsQuery(processDefinitionId string) HistoricActivityStatisticsQuery
	CreateHistoricCaseInstanceQuery() HistoricCaseInstanceQuery
	CreateHistoricDetailQuery() HistoricDetailQuery
	CreateHistoricIncidentQuery() HistoricIncidentQuery
	CreateHistoricJobLogQuery() HistoricJobLogQuery
	CreateHistoricProcessInstanceQuery() HistoricProcessInstanceQuery
	CreateHistoricTaskInstanceQuery() HistoricTaskInstanceQuery
	CreateHistoricVariableInstanceQuery() HistoricVariableInstanceQuery

	// GetHistoricJobLogExceptionStacktrace gets the full exception stacktrace of a failure log.
	//
	// An error of type [ErrorNotFound] is returned, if the ID is empty or unknown.
	GetHistoricJobLogExceptionStacktrace(ctx context.Context, historicJobLogId string) (string, error)

	// DeleteHistoricProcessInstance deletes an ended historic process instance and all data it owns.
	DeleteHistoricProcessInstance(context.Context, DeleteHistoricProcessInstanceCmd) error
	// DeleteHistoricTaskInstance deletes a historic task instance. Unknown IDs are ignored.
	DeleteHistoricTaskInstance(ctx context.Context, taskId string) error
	// DeleteHistoricCaseInstance deletes a closed historic case instance and all data it owns.
	DeleteHistoricCaseInstance(ctx context.Context, caseInstanceId string) error
	// DeleteHistoricVariableInstance deletes a historic variable instance and its details.
	DeleteHistoricVariableInstance(ctx context.Context, variableInstanceId string) error

	// CleanupHistory deletes ended root process instances and closed case instances, which ended before a given time.
	// It returns the number of deleted root instances.
	CleanupHistory(context.Context, CleanupHistoryCmd) (int, error)
}

// A QueryExecutor executes criteria of any historic query type.
type QueryExecutor interface {
	// Query returns the entities matching the criteria.
	Query(ctx context.Context, criteria any, options QueryOptions) ([]any, error)
	// Count returns the number of entities matching the criteria.
	Count(ctx context.Context, criteria any) (int, error)
}

// Queries implements the query factory methods of a [Service], using a [QueryExecutor].
type Queries struct {
	Executor QueryExecutor
}

func (q Queries) CreateHistoricActivityInstanceQuery() HistoricActivityInstanceQuery {
	return HistoricActivityInstanceQuery{e: q.Executor}
}

func (q Queries) CreateHistoricActivityStatisticsQuery(processDefinitionId string) HistoricActivityStatisticsQuery {
	query := HistoricActivityStatisticsQuery{e: q.Executor}
	query.c.ProcessDefinitionId = processDefinitionId
	if processDefinitionId == "" {
		query.err = usageError("process definition ID is empty")
	}
	return query
}

func (q Queries) CreateHistoricCaseInstanceQuery() HistoricCaseInstanceQuery {
	return HistoricCaseInstanceQuery{e: q.Executor}
}

func (q Queries) CreateHistoricDetailQuery() HistoricDetailQuery {
	return HistoricDetailQuery{e: q.Executor}
}

func (q Queries) CreateHistoricIncidentQuery() HistoricIncidentQuery {
	return HistoricIncidentQuery{e: q.Executor}
}

func (q Queries) CreateHistoricJobLogQuery() HistoricJobLogQuery {
	return HistoricJobLogQuery{e: q.Executor}
}

func (q Queries) CreateHistoricProcessInstanceQuery() HistoricProcessInstanceQuery {
	return HistoricProcessInstanceQuery{e: q.Executor}
}

func (q Queries) CreateHistoricTaskInstanceQuery() HistoricTaskInstanceQuery {
	return HistoricTaskInstanceQuery{e: q.Executor}
}

func (q Queries) CreateHistoricVariableInstanceQuery() HistoricVariableInstanceQuery {
	return HistoricVariableInstanceQuery{e: q.Executor}
}

// Options are common configuration options that are shared between store implementations.
type Options struct {
	Clock                        Clock        // Source of the current time. If nil, the system clock is used.
	DefaultQueryLimit            int          // Default limit for queries, executed via HTTP without an explicit limit.
	EngineId                     string       // ID of the engine, recorded as hostname of job logs.
	HistoryLevel                 HistoryLevel // Granularity of recording.
	JobExceptionMessageMaxLength int          // Maximum length of a job exception message - longer messages are truncated.

	CleanupEnabled    bool          // Enables or disables the history cleanup executor.
	CleanupCycle      string        // Cron expression, specifying when the history cleanup runs.
	CleanupTimeToLive time.Duration // Minimum age of ended instances, before they are removed.
	CleanupBatchSize  int           // Maximum number of root instances to remove per cleanup run.

	ObjectDeserializers map[string]ObjectDeserializer // Deserializers of object variable values, by object type name.

	OnCleanupFailure func(error) // Called when the history cleanup executor failed.
}

// NewOptions returns options with default values.
func NewOptions() Options {
	return Options{
		DefaultQueryLimit:            1000,
		EngineId:                     DefaultEngineId,
		HistoryLevel:                 HistoryFull,
		JobExceptionMessageMaxLength: DefaultJobExceptionMessageMaxLength,

		CleanupEnabled:    false,
		CleanupCycle:      "0 2 * * *",
		CleanupTimeToLive: 30 * 24 * time.Hour,
		CleanupBatchSize:  500,
	}
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.EngineId) == "" {
		return errors.New("engine ID must not be empty or blank")
	}
	if o.HistoryLevel < HistoryNone || o.HistoryLevel > HistoryFull {
		return errors.New("history level must be one of NONE, ACTIVITY, AUDIT or FULL")
	}
	if o.DefaultQueryLimit < 1 {
		return errors.New("default query limit must be greater than or equal to 1")
	}
	if o.JobExceptionMessageMaxLength < 1 {
		return errors.New("job exception message max length must be greater than or equal to 1")
	}
	if o.CleanupEnabled {
		if !gronx.IsValid(o.CleanupCycle) {
			return errors.New("cleanup cycle must be a valid cron expression")
		}
		if o.CleanupTimeToLive < time.Hour {
			return errors.New("cleanup time to live must be greater than or equal to 1h")
		}
	}
	if o.CleanupBatchSize < 1 {
		return errors.New("cleanup batch size must be greater than or equal to 1")
	}

	return nil
}

// QueryOptions are used to limit or offset query results.
// The zero value does not affect a query.
type QueryOptions struct {
	// Limit specifies the maximum number of results to return.
	// If Limit <= 0, all results are returned.
	Limit int
	// Offset specifies the number of results to skip, before returning any result.
	// If Offset <= 0, no results are skipped.
	Offset int
}
