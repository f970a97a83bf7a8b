package history

import (
	"context"
	"time"
)

// HistoricDetail is the record of a single variable write. Details of a variable, ordered by sequence counter,
// reproduce the exact write sequence.
type HistoricDetail struct {
	Id string `json:"id"` // Detail ID.

	VariableInstanceId string `json:"variableInstanceId"` // ID of the written variable instance.
	VariableName       string `json:"variableName"`       // Name of the variable.
	Revision           int    `json:"revision"`           // Revision of the variable instance, created by the write.
	IsInitial          bool   `json:"initial"`            // Determines if the write created the variable.
	IsRemoval          bool   `json:"removal"`            // Determines if the write removed the variable.
	TenantId           string `json:"tenantId,omitempty"` // Tenant ID.

	ActivityInstanceId   string `json:"activityInstanceId,omitempty"`
	CaseExecutionId      string `json:"caseExecutionId,omitempty"`
	CaseInstanceId       string `json:"caseInstanceId,omitempty"`
	ExecutionId          string `json:"executionId,omitempty"`
	ProcessDefinitionId  string `json:"processDefinitionId,omitempty"`
	ProcessDefinitionKey string `json:"processDefinitionKey,omitempty"`
	ProcessInstanceId    string `json:"processInstanceId,omitempty"`
	TaskId               string `json:"taskId,omitempty"`

	Value VariableValue `json:"value"` // Value at the time of the write - nil, if the variable has been removed.

	SequenceCounter int64     `json:"sequenceCounter"` // Position within the record, used as tie-breaker.
	Time            time.Time `json:"time"`            // Time of the write.
}

var HistoricDetailSortProperties = []string{
	"processInstanceId",
	"revision",
	"sequenceCounter",
	"tenantId",
	"time",
	"variableName",
	"variableType",
}

type HistoricDetailCriteria struct {
	DetailId           string      `json:"detailId,omitempty"`
	VariableInstanceId string      `json:"variableInstanceId,omitempty"`
	VariableNameLike   string      `json:"variableNameLike,omitempty"`
	VariableTypeIn     []ValueType `json:"variableTypeIn,omitempty"`
	TenantIdIn         []string    `json:"tenantIdIn,omitempty"`

	ActivityInstanceId  string   `json:"activityInstanceId,omitempty"`
	CaseExecutionId     string   `json:"caseExecutionId,omitempty"`
	CaseInstanceId      string   `json:"caseInstanceId,omitempty"`
	ExecutionId         string   `json:"executionId,omitempty"`
	ProcessInstanceId   string   `json:"processInstanceId,omitempty"`
	ProcessInstanceIdIn []string `json:"processInstanceIdIn,omitempty"`
	TaskId              string   `json:"taskId,omitempty"`

	OccurredAfter  *time.Time `json:"occurredAfter,omitempty"`
	OccurredBefore *time.Time `json:"occurredBefore,omitempty"`

	DisableBinaryFetching              bool `json:"disableBinaryFetching,omitempty"`
	DisableCustomObjectDeserialization bool `json:"disableCustomObjectDeserialization,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricDetailCriteria) Validate() error {
	return validateSorting(c.Sorting, HistoricDetailSortProperties)
}

// HistoricDetailQuery is an immutable query for historic details.
type HistoricDetailQuery struct {
	e   QueryExecutor
	c   HistoricDetailCriteria
	err error
}

func (q HistoricDetailQuery) ActivityInstanceId(v string) HistoricDetailQuery {
	q.c.ActivityInstanceId = v
	q.err = firstError(q.err, requireValue("activity instance ID", v))
	return q
}

func (q HistoricDetailQuery) CaseExecutionId(v string) HistoricDetailQuery {
	q.c.CaseExecutionId = v
	q.err = firstError(q.err, requireValue("case execution ID", v))
	return q
}

func (q HistoricDetailQuery) CaseInstanceId(v string) HistoricDetailQuery {
	q.c.CaseInstanceId = v
	q.err = firstError(q.err, requireValue("case instance ID", v))
	return q
}

func (q HistoricDetailQuery) DetailId(v string) HistoricDetailQuery {
	q.c.DetailId = v
	q.err = firstError(q.err, requireValue("detail ID", v))
	return q
}

func (q HistoricDetailQuery) DisableBinaryFetching() HistoricDetailQuery {
	q.c.DisableBinaryFetching = true
	return q
}

func (q HistoricDetailQuery) DisableCustomObjectDeserialization() HistoricDetailQuery {
	q.c.DisableCustomObjectDeserialization = true
	return q
}

func (q HistoricDetailQuery) ExecutionId(v string) HistoricDetailQuery {
	q.c.ExecutionId = v
	q.err = firstError(q.err, requireValue("execution ID", v))
	return q
}

func (q HistoricDetailQuery) OccurredAfter(v time.Time) HistoricDetailQuery {
	q.c.OccurredAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("occurred after", v))
	return q
}

func (q HistoricDetailQuery) OccurredBefore(v time.Time) HistoricDetailQuery {
	q.c.OccurredBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("occurred before", v))
	return q
}

func (q HistoricDetailQuery) ProcessInstanceId(v string) HistoricDetailQuery {
	q.c.ProcessInstanceId = v
	q.err = firstError(q.err, requireValue("process instance ID", v))
	return q
}

func (q HistoricDetailQuery) ProcessInstanceIdIn(v ...string) HistoricDetailQuery {
	q.c.ProcessInstanceIdIn = v
	q.err = firstError(q.err, requireValues("process instance IDs", v))
	return q
}

func (q HistoricDetailQuery) TaskId(v string) HistoricDetailQuery {
	q.c.TaskId = v
	q.err = firstError(q.err, requireValue("task ID", v))
	return q
}

func (q HistoricDetailQuery) TenantIdIn(v ...string) HistoricDetailQuery {
	q.c.TenantIdIn = v
	q.err = firstError(q.err, requireValues("tenant IDs", v))
	return q
}

func (q HistoricDetailQuery) VariableInstanceId(v string) HistoricDetailQuery {
	q.c.VariableInstanceId = v
	q.err = firstError(q.err, requireValue("variable instance ID", v))
	return q
}

func (q HistoricDetailQuery) VariableNameLike(v string) HistoricDetailQuery {
	q.c.VariableNameLike = v
	q.err = firstError(q.err, requireValue("variable name like", v))
	return q
}

func (q HistoricDetailQuery) VariableTypeIn(v ...ValueType) HistoricDetailQuery {
	q.c.VariableTypeIn = v
	q.err = firstError(q.err, requireValueTypes(v))
	return q
}

func (q HistoricDetailQuery) OrderByProcessInstanceId() Ordering[HistoricDetailQuery] {
	return q.orderBy("processInstanceId")
}

func (q HistoricDetailQuery) OrderByTenantId() Ordering[HistoricDetailQuery] {
	return q.orderBy("tenantId")
}

func (q HistoricDetailQuery) OrderByTime() Ordering[HistoricDetailQuery] {
	return q.orderBy("time")
}

func (q HistoricDetailQuery) OrderByVariableName() Ordering[HistoricDetailQuery] {
	return q.orderBy("variableName")
}

func (q HistoricDetailQuery) OrderByVariableRevision() Ordering[HistoricDetailQuery] {
	return q.orderBy("revision")
}

func (q HistoricDetailQuery) OrderByVariableType() Ordering[HistoricDetailQuery] {
	return q.orderBy("variableType")
}

// OrderPartiallyByOccurrence sorts by the sequence counter, which reflects the order of the writes.
func (q HistoricDetailQuery) OrderPartiallyByOccurrence() Ordering[HistoricDetailQuery] {
	return q.orderBy("sequenceCounter")
}

func (q HistoricDetailQuery) orderBy(property string) Ordering[HistoricDetailQuery] {
	return newOrdering(func(d SortDirection) HistoricDetailQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, property, d)
		return q
	})
}

func (q HistoricDetailQuery) Criteria() HistoricDetailCriteria {
	return q.c
}

func (q HistoricDetailQuery) Err() error {
	return q.err
}

func (q HistoricDetailQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricDetailQuery) List(ctx context.Context) ([]HistoricDetail, error) {
	return executeList[HistoricDetail](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricDetailQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricDetail, error) {
	return executeListPage[HistoricDetail](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricDetailQuery) SingleResult(ctx context.Context) (*HistoricDetail, error) {
	return executeSingleResult[HistoricDetail](ctx, q.e, q.c, q.err)
}
