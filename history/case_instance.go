package history

import (
	"context"
	"fmt"
	"time"
)

// HistoricCaseInstance is the record of a case instance.
type HistoricCaseInstance struct {
	Id string `json:"id"` // Case instance ID.

	BusinessKey       string            `json:"businessKey,omitempty"`  // Key, used to correlate a case instance with a business entity.
	CaseDefinitionId  string            `json:"caseDefinitionId"`       // ID of the case definition.
	CaseDefinitionKey string            `json:"caseDefinitionKey"`      // Key of the case definition.
	CreateUserId      string            `json:"createUserId,omitempty"` // ID of the user, who created the instance.
	State             CaseInstanceState `json:"state"`                  // Current state.
	TenantId          string            `json:"tenantId,omitempty"`     // Tenant ID.

	SuperCaseInstanceId    string `json:"superCaseInstanceId,omitempty"`    // ID of the calling case instance.
	SuperProcessInstanceId string `json:"superProcessInstanceId,omitempty"` // ID of the calling process instance.

	CloseTime        *time.Time `json:"closeTime,omitempty"`        // Close time, nil until closed.
	CreateTime       time.Time  `json:"createTime"`                 // Creation time.
	DurationInMillis *int64     `json:"durationInMillis,omitempty"` // Derived from create and close time.
	SequenceCounter  int64      `json:"sequenceCounter"`            // Position within the record, used as tie-breaker.
}

// Duration returns the raw duration between create and close time, or 0 until closed.
func (v HistoricCaseInstance) Duration() time.Duration {
	if v.CloseTime == nil {
		return 0
	}
	return v.CloseTime.Sub(v.CreateTime)
}

var HistoricCaseInstanceSortProperties = []string{
	"businessKey",
	"caseDefinitionId",
	"caseInstanceId",
	"closeTime",
	"createTime",
	"durationInMillis",
	"sequenceCounter",
	"tenantId",
}

type HistoricCaseInstanceCriteria struct {
	CaseInstanceId         string   `json:"caseInstanceId,omitempty"`
	CaseInstanceIds        []string `json:"caseInstanceIds,omitempty"`
	CaseDefinitionId       string   `json:"caseDefinitionId,omitempty"`
	CaseDefinitionKey      string   `json:"caseDefinitionKey,omitempty"`
	CaseDefinitionKeyNotIn []string `json:"caseDefinitionKeyNotIn,omitempty"`
	BusinessKey            string   `json:"businessKey,omitempty"`
	BusinessKeyLike        string   `json:"businessKeyLike,omitempty"`
	TenantIdIn             []string `json:"tenantIdIn,omitempty"`

	SubCaseInstanceId      string `json:"subCaseInstanceId,omitempty"`
	SubProcessInstanceId   string `json:"subProcessInstanceId,omitempty"`
	SuperCaseInstanceId    string `json:"superCaseInstanceId,omitempty"`
	SuperProcessInstanceId string `json:"superProcessInstanceId,omitempty"`

	NotClosed bool              `json:"notClosed,omitempty"`
	State     CaseInstanceState `json:"state,omitempty"`

	ClosedAfter   *time.Time `json:"closedAfter,omitempty"`
	ClosedBefore  *time.Time `json:"closedBefore,omitempty"`
	CreatedAfter  *time.Time `json:"createdAfter,omitempty"`
	CreatedBefore *time.Time `json:"createdBefore,omitempty"`

	Sorting []Sorting `json:"sorting,omitempty"`
}

func (c HistoricCaseInstanceCriteria) Validate() error {
	if c.NotClosed && c.State == CaseInstanceClosed {
		return validationError("notClosed and closed filters cannot be combined")
	}
	return validateSorting(c.Sorting, HistoricCaseInstanceSortProperties)
}

// HistoricCaseInstanceQuery is an immutable query for historic case instances.
type HistoricCaseInstanceQuery struct {
	e   QueryExecutor
	c   HistoricCaseInstanceCriteria
	err error
}

func (q HistoricCaseInstanceQuery) Active() HistoricCaseInstanceQuery {
	return q.state(CaseInstanceActive)
}

func (q HistoricCaseInstanceQuery) BusinessKey(v string) HistoricCaseInstanceQuery {
	q.c.BusinessKey = v
	q.err = firstError(q.err, requireValue("business key", v))
	return q
}

func (q HistoricCaseInstanceQuery) BusinessKeyLike(v string) HistoricCaseInstanceQuery {
	q.c.BusinessKeyLike = v
	q.err = firstError(q.err, requireValue("business key like", v))
	return q
}

func (q HistoricCaseInstanceQuery) CaseDefinitionId(v string) HistoricCaseInstanceQuery {
	q.c.CaseDefinitionId = v
	q.err = firstError(q.err, requireValue("case definition ID", v))
	return q
}

func (q HistoricCaseInstanceQuery) CaseDefinitionKey(v string) HistoricCaseInstanceQuery {
	q.c.CaseDefinitionKey = v
	q.err = firstError(q.err, requireValue("case definition key", v))
	return q
}

func (q HistoricCaseInstanceQuery) CaseDefinitionKeyNotIn(v ...string) HistoricCaseInstanceQuery {
	q.c.CaseDefinitionKeyNotIn = v
	q.err = firstError(q.err, requireValues("case definition keys", v))
	return q
}

func (q HistoricCaseInstanceQuery) CaseInstanceId(v string) HistoricCaseInstanceQuery {
	q.c.CaseInstanceId = v
	q.err = firstError(q.err, requireValue("case instance ID", v))
	return q
}

func (q HistoricCaseInstanceQuery) CaseInstanceIds(v ...string) HistoricCaseInstanceQuery {
	q.c.CaseInstanceIds = v
	q.err = firstError(q.err, requireValues("case instance IDs", v))
	return q
}

func (q HistoricCaseInstanceQuery) Closed() HistoricCaseInstanceQuery {
	return q.state(CaseInstanceClosed)
}

func (q HistoricCaseInstanceQuery) ClosedAfter(v time.Time) HistoricCaseInstanceQuery {
	q.c.ClosedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("closed after", v))
	return q
}

func (q HistoricCaseInstanceQuery) ClosedBefore(v time.Time) HistoricCaseInstanceQuery {
	q.c.ClosedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("closed before", v))
	return q
}

func (q HistoricCaseInstanceQuery) Completed() HistoricCaseInstanceQuery {
	return q.state(CaseInstanceCompleted)
}

func (q HistoricCaseInstanceQuery) CreatedAfter(v time.Time) HistoricCaseInstanceQuery {
	q.c.CreatedAfter = timePtr(v)
	q.err = firstError(q.err, requireTime("created after", v))
	return q
}

func (q HistoricCaseInstanceQuery) CreatedBefore(v time.Time) HistoricCaseInstanceQuery {
	q.c.CreatedBefore = timePtr(v)
	q.err = firstError(q.err, requireTime("created before", v))
	return q
}

func (q HistoricCaseInstanceQuery) NotClosed() HistoricCaseInstanceQuery {
	q.c.NotClosed = true
	return q
}

func (q HistoricCaseInstanceQuery) SubCaseInstanceId(v string) HistoricCaseInstanceQuery {
	q.c.SubCaseInstanceId = v
	q.err = firstError(q.err, requireValue("sub case instance ID", v))
	return q
}

func (q HistoricCaseInstanceQuery) SubProcessInstanceId(v string) HistoricCaseInstanceQuery {
	q.c.SubProcessInstanceId = v
	q.err = firstError(q.err, requireValue("sub process instance ID", v))
	return q
}

func (q HistoricCaseInstanceQuery) SuperCaseInstanceId(v string) HistoricCaseInstanceQuery {
	q.c.SuperCaseInstanceId = v
	q.err = firstError(q.err, requireValue("super case instance ID", v))
	return q
}

func (q HistoricCaseInstanceQuery) SuperProcessInstanceId(v string) HistoricCaseInstanceQuery {
	q.c.SuperProcessInstanceId = v
	q.err = firstError(q.err, requireValue("super process instance ID", v))
	return q
}

func (q HistoricCaseInstanceQuery) Suspended() HistoricCaseInstanceQuery {
	return q.state(CaseInstanceSuspended)
}

func (q HistoricCaseInstanceQuery) TenantIdIn(v ...string) HistoricCaseInstanceQuery {
	q.c.TenantIdIn = v
	q.err = firstError(q.err, requireValues("tenant IDs", v))
	return q
}

func (q HistoricCaseInstanceQuery) Terminated() HistoricCaseInstanceQuery {
	return q.state(CaseInstanceTerminated)
}

func (q HistoricCaseInstanceQuery) state(v CaseInstanceState) HistoricCaseInstanceQuery {
	if q.c.State != 0 && q.c.State != v {
		q.err = firstError(q.err, validationError(fmt.Sprintf("already querying for case instance state %s", q.c.State)))
	}
	q.c.State = v
	return q
}

func (q HistoricCaseInstanceQuery) OrderByBusinessKey() Ordering[HistoricCaseInstanceQuery] {
	return q.orderBy("businessKey")
}

func (q HistoricCaseInstanceQuery) OrderByCaseDefinitionId() Ordering[HistoricCaseInstanceQuery] {
	return q.orderBy("caseDefinitionId")
}

func (q HistoricCaseInstanceQuery) OrderByCaseInstanceId() Ordering[HistoricCaseInstanceQuery] {
	return q.orderBy("caseInstanceId")
}

func (q HistoricCaseInstanceQuery) OrderByCloseTime() Ordering[HistoricCaseInstanceQuery] {
	return q.orderBy("closeTime")
}

func (q HistoricCaseInstanceQuery) OrderByCreateTime() Ordering[HistoricCaseInstanceQuery] {
	return q.orderBy("createTime")
}

func (q HistoricCaseInstanceQuery) OrderByDuration() Ordering[HistoricCaseInstanceQuery] {
	return q.orderBy("durationInMillis")
}

func (q HistoricCaseInstanceQuery) OrderByTenantId() Ordering[HistoricCaseInstanceQuery] {
	return q.orderBy("tenantId")
}

func (q HistoricCaseInstanceQuery) orderBy(property string) Ordering[HistoricCaseInstanceQuery] {
	return newOrdering(func(d SortDirection) HistoricCaseInstanceQuery {
		q.c.Sorting = appendSorting(q.c.Sorting, property, d)
		return q
	})
}

func (q HistoricCaseInstanceQuery) Criteria() HistoricCaseInstanceCriteria {
	return q.c
}

func (q HistoricCaseInstanceQuery) Err() error {
	return q.err
}

func (q HistoricCaseInstanceQuery) Count(ctx context.Context) (int, error) {
	return executeCount(ctx, q.e, q.c, q.err)
}

func (q HistoricCaseInstanceQuery) List(ctx context.Context) ([]HistoricCaseInstance, error) {
	return executeList[HistoricCaseInstance](ctx, q.e, q.c, QueryOptions{}, q.err)
}

func (q HistoricCaseInstanceQuery) ListPage(ctx context.Context, offset int, size int) ([]HistoricCaseInstance, error) {
	return executeListPage[HistoricCaseInstance](ctx, q.e, q.c, offset, size, q.err)
}

func (q HistoricCaseInstanceQuery) SingleResult(ctx context.Context) (*HistoricCaseInstance, error) {
	return executeSingleResult[HistoricCaseInstance](ctx, q.e, q.c, q.err)
}
