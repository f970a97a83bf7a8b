package mem

import (
	"slices"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5/pgtype"
)

type memContext struct {
	data    *memData
	options history.Options
	time    time.Time
	txState *internal.TxState
}

func (c *memContext) Options() history.Options {
	return c.options
}

func (c *memContext) Time() time.Time {
	return c.time
}

func (c *memContext) ActivityInstances() internal.ActivityInstanceRepository {
	return activityInstanceRepository{data: c.data}
}

func (c *memContext) CaseInstances() internal.CaseInstanceRepository {
	return caseInstanceRepository{data: c.data}
}

func (c *memContext) Details() internal.DetailRepository {
	return detailRepository{data: c.data}
}

func (c *memContext) Incidents() internal.IncidentRepository {
	return incidentRepository{data: c.data}
}

func (c *memContext) JobLogs() internal.JobLogRepository {
	return jobLogRepository{data: c.data}
}

func (c *memContext) ProcessInstances() internal.ProcessInstanceRepository {
	return processInstanceRepository{data: c.data}
}

func (c *memContext) Sequence() internal.SequenceRepository {
	return sequenceRepository{data: c.data}
}

func (c *memContext) TaskInstances() internal.TaskInstanceRepository {
	return taskInstanceRepository{data: c.data}
}

func (c *memContext) VariableInstances() internal.VariableInstanceRepository {
	return variableInstanceRepository{data: c.data}
}

func (c *memContext) TxState() *internal.TxState {
	return c.txState
}

type sequenceRepository struct {
	data *memData
}

func (r sequenceRepository) NextValue() (int64, error) {
	r.data.sequence++
	return r.data.sequence, nil
}

// owns determines if a row belongs to one of the owners.
func owns(o internal.Owners, processInstanceId pgtype.Text, caseInstanceId pgtype.Text, taskId pgtype.Text) bool {
	if processInstanceId.Valid && slices.Contains(o.ProcessInstanceIds, processInstanceId.String) {
		return true
	}
	if caseInstanceId.Valid && slices.Contains(o.CaseInstanceIds, caseInstanceId.String) {
		return true
	}
	if taskId.Valid && slices.Contains(o.TaskIds, taskId.String) {
		return true
	}
	return false
}

func pointers[E any](entities []E) []*E {
	results := make([]*E, len(entities))
	for i := range entities {
		e := entities[i]
		results[i] = &e
	}
	return results
}
