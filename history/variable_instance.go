package history

import (
	"context"
	"time"
)

// HistoricVariableInstance is the record of a variable's current value.
//
// A removal does not delete the record, but sets the state to [VariableDeleted] and the value to nil.
type HistoricVariableInstance struct {
	Id string `json:"id"` // Variable instance ID.

	Name     string        `json:"name"`     // Variable name.
	Revision int           `json:"revision"` // Starts at 0, incremented with every write.
	State    VariableState `json:"state"`    // Current state.
	TenantId string        `json:"tenantId,omitempty"`

	ActivityInstanceId   string `json:"activityInstanceId,omitempty"`   // ID of the activity instance scope.
	CaseExecutionId      string `json:"caseExecutionId,omitempty"`      // ID of the case execution scope.
	CaseInstanceId       string `json:"caseInstanceId,omitempty"`       // ID of the case instance.
	ExecutionId          string `json:"executionId,omitempty"`          // ID of the execution scope.
	ProcessDefinitionId  string `json:"processDefinitionId,omitempty"`  // ID of the process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey,omitempty"` // Key of the process definition.
	ProcessInstanceId    string `json:"processInstanceId,omitempty"`    // ID of the process instance.
	TaskId               string `json:"taskId,omitempty"`               // ID of the task scope.

	Value VariableValue `json:"value"`

	CreateTime      time.Time `json:"createTime"`      // Creation time.
	SequenceCounter int64     `json:"sequenceCounter"` // Position within the record, used as tie-breaker.
}

// VariableValue is a variable value, as returned by historic variable instance and detail queries.
type VariableValue struct {
	Type ValueType `json:"type"` // Value type.

	// Deserialized value: bool, int64, float64, string, time.Time, []byte or any for JSON and object values.
	// Nil, if the value is null, deleted, not fetched or could not be deserialized.
	Value any `json:"value,omitempty"`

	ObjectTypeName          string `json:"objectTypeName,omitempty"`          // Name of the object type - only set for object values.
	SerializationDataFormat string `json:"serializationDataFormat,omitempty"` // Serialization data format - only set for object values.
	SerializedValue         string `json:"serializedValue,omitempty"`         // Serialized form of a JSON or object value.

	// Set, when the value could not be deserialized.
	ErrorMessage string `json:"errorMessage,omitempty"`
}

var HistoricVariableInstanceSortProperties = []string{
	"createTime",
	"processInstanceId",
	"revision",
	"sequenceCounter",
	"tenantId",
	"variableInstanceId",
	"variableName",
}

type HistoricVariableInstanceCriteria struct {
	VariableInstanceId string      `json:"variableInstanceId,omitempty"`
	VariableName       string      `json:"variableName,omitempty"`
	VariableNameIn     []string    `json:"variableNameIn,omitempty"`
	VariableNameLike   string      `json:"variableNameLike,omitempty"`
	VariableTypeIn     []ValueType `json:"variableTypeIn,omitempty"`
	VariableValue      string      `json:"variableValue,omitempty"` // serialized value, requires a variable name
	TenantIdIn         []string    `json:"tenantIdIn,omitempty"`

	ActivityInstanceIdIn []string `json:"activityInstanceIdIn,omitempty"`
	CaseExecutionIdIn    []string `json:"caseExecutionIdIn,omitempty"`
	CaseInstanceId       string   `json:"caseInstanceId,omitempty"`
	ExecutionIdIn        []string `json:"executionIdIn,omitempty"`
	ProcessInstanceId    string   `json:"processInstanceId,omitempty"`
	ProcessInstanceIdIn  []string `json:"processInstanceIdIn,omitempty"`
	TaskIdIn             []string `json:"taskIdIn,omitempty"`

	IncludeDeleted bool `json:"includeDeleted,omitempty"` // If false, deleted variables are excluded.

	DisableBinaryFetching              bool `json:"disableBinaryFetching,omitempty"`
	DisableCustomObjectDeserialization bool `json:"disableCustomObjectDeserialization,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricVariableInstanceCriteria) Validate() error {
	if c.VariableValue != "" && c.VariableName == "" {
		return validationError("variableValue filter requires a variableName")
	}
	return validateSorting(c.Sorting, HistoricVariableInstanceSortProperties)
}

// HistoricVariableInstanceQuery is an immutable query for historic variable instances.
type HistoricVariableInstanceQuery struct {
	e   QueryExecutor
	c   HistoricVariableInstanceCriteria
	err error
}

func (q HistoricVariableInstanceQuery) ActivityInstanceIdIn(v ...string) HistoricVariableInstanceQuery {
	q.c.ActivityInstanceIdIn = v
	q.err = firstError(q.err, requireValues("activity instance IDs", v))
	return q
}

func (q HistoricVariableInstanceQuery) CaseExecutionIdIn(v ...string) HistoricVariableInstanceQuery {
	q.c.CaseExecutionIdIn = v
	q.err = firstError(q.err, requireValues("case execution IDs", v))
	return q
}

func (q HistoricVariableInstanceQuery) CaseInstanceId(v string) HistoricVariableInstanceQuery {
	q.c.CaseInstanceId = v
	q.err = firstError(q.err, requireValue("case instance ID", v))
	return q
}

// DisableBinaryFetching omits the payload of binary and object values. Only type metadata is returned.
func (q HistoricVariableInstanceQuery) DisableBinaryFetching() HistoricVariableInstanceQuery {
	q.c.DisableBinaryFetching = true
	return q
}

// DisableCustomObjectDeserialization returns object values only in their serialized form.
func (q HistoricVariableInstanceQuery) DisableCustomObjectDeserialization() HistoricVariableInstanceQuery {
	q.c.DisableCustomObjectDeserialization = true
	return q
}

func (q HistoricVariableInstanceQuery) ExecutionIdIn(v ...string) HistoricVariableInstanceQuery {
	q.c.ExecutionIdIn = v
	q.err = firstError(q.err, requireValues("execution IDs", v))
	return q
}

func (q HistoricVariableInstanceQuery) IncludeDeleted() HistoricVariableInstanceQuery {
	q.c.IncludeDeleted = true
	return q
}

func (q HistoricVariableInstanceQuery) ProcessInstanceId(v string) HistoricVariableInstanceQuery {
	q.c.ProcessInstanceId = v
	q.err = firstError(q.err, requireValue("process instance ID", v))
	return q
}

func (q HistoricVariableInstanceQuery) ProcessInstanceIdIn(v ...string) HistoricVariableInstanceQuery {
	q.c.ProcessInstanceIdIn = v
	q.err = firstError(q.err, requireValues("process instance IDs", v))
	return q
}

func (q HistoricVariableInstanceQuery) TaskIdIn(v ...string) HistoricVariableInstanceQuery {
	q.c.TaskIdIn = v
	q.err = firstError(q.err, requireValues("task IDs", v))
	return q
}

func (q HistoricVariableInstanceQuery) TenantIdIn(v ...string) HistoricVariableInstanceQuery {
	q.c.TenantIdIn = v
	q.err = firstError(q.err, requireValues("tenant IDs", v))
	return q
}

func (q HistoricVariableInstanceQuery) VariableInstanceId(v string) HistoricVariableInstanceQuery {
	q.c.VariableInstanceId = v
	q.err = firstError(q.err, requireValue("variable instance ID", v))
	return q
}

func (q HistoricVariableInstanceQuery) VariableName(v string) HistoricVariableInstanceQuery {
	q.c.VariableName = v
	q.err = firstError(q.err, requireValue("variable name", v))
	return q
}

func (q HistoricVariableInstanceQuery) VariableNameIn(v ...string) HistoricVariableInstanceQuery {
	q.c.VariableNameIn = v
	q.err = firstError(q.err, requireValues("variable names", v))
	return q
}

func (q HistoricVariableInstanceQuery) VariableNameLike(v string) HistoricVariableInstanceQuery {
	q.c.VariableNameLike = v
	q.err = firstError(q.err, requireValue("variable name like", v))
	return q
}

func (q HistoricVariableInstanceQuery) VariableTypeIn(v ...ValueType) HistoricVariableInstanceQuery {
	q.c.VariableTypeIn = v
	q.err = firstError(q.err, requireValueTypes(v))
	return q
}

// VariableValueEquals filters variables with the given name, whose serialized value equals the given value.
func (q HistoricVariableInstanceQuery) VariableValueEquals(name string, value string) HistoricVariableInstanceQuery {
	q.c.VariableName = name
	q.c.VariableValue = value
	q.err = firstError(q.err, requireValue("variable name", name))
	return q
}

func (q HistoricVariableInstanceQuery) OrderByCreateTime() Ordering[HistoricVariableInstanceQuery] {
	return q.orderBy("createTime")
}

func (q HistoricVariableInstanceQuery) OrderByProcessInstanceId() Ordering[HistoricVariableInstanceQuery] {
	return q.orderBy("processInstanceId")
}

func (q HistoricVariableInstanceQuery) OrderByRevision() Ordering[HistoricVariableInstanceQuery] {
	return q.orderBy("revision")
}

func (q HistoricVariableInstanceQuery) OrderByTenantId() Ordering[HistoricVariableInstanceQuery] {
	return q.orderBy("tenantId")
}

func (q HistoricVariableInstanceQuery) OrderByVariableInstanceId() Ordering[HistoricVariableInstanceQuery] {
	return q.orderBy("variableInstanceId")
}

func (q HistoricVariableInstanceQuery) OrderByVariableName() Ordering[HistoricVariableInstanceQuery] {
	return q.orderBy("variableName")
}

func (q HistoricVariableInstanceQuery) orderBy(property string) Ordering[HistoricVariableInstanceQuery] {
	return newOrdering(func(d SortDirection) HistoricVariableInstanceQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, property, d)
		return q
	})
}

func (q HistoricVariableInstanceQuery) Criteria() HistoricVariableInstanceCriteria {
	return q.c
}

func (q HistoricVariableInstanceQuery) Err() error {
	return q.err
}

func (q HistoricVariableInstanceQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricVariableInstanceQuery) List(ctx context.Context) ([]HistoricVariableInstance, error) {
	return executeList[HistoricVariableInstance](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricVariableInstanceQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricVariableInstance, error) {
	return executeListPage[HistoricVariableInstance](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricVariableInstanceQuery) SingleResult(ctx context.Context) (*HistoricVariableInstance, error) {
	return executeSingleResult[HistoricVariableInstance](ctx, q.e, q.c, q.err)
}
