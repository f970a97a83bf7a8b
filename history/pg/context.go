package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5"
)

type pgContext struct {
	options history.Options
	time    time.Time

	tx      pgx.Tx
	txCtx   context.Context
	txState *internal.TxState
}

func (c *pgContext) Options() history.Options {
	return c.options
}

func (c *pgContext) Time() time.Time {
	return c.time
}

func (c *pgContext) ActivityInstances() internal.ActivityInstanceRepository {
	return activityInstanceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) CaseInstances() internal.CaseInstanceRepository {
	return caseInstanceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) Details() internal.DetailRepository {
	return detailRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) Incidents() internal.IncidentRepository {
	return incidentRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) JobLogs() internal.JobLogRepository {
	return jobLogRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) ProcessInstances() internal.ProcessInstanceRepository {
	return processInstanceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) Sequence() internal.SequenceRepository {
	return sequenceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) TaskInstances() internal.TaskInstanceRepository {
	return taskInstanceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) VariableInstances() internal.VariableInstanceRepository {
	return variableInstanceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) TxState() *internal.TxState {
	return c.txState
}

type sequenceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r sequenceRepository) NextValue() (int64, error) {
	row := r.tx.QueryRow(r.txCtx, "SELECT nextval('history_sequence')")

	var value int64
	if err := row.Scan(&value); err != nil {
		return -1, fmt.Errorf("failed to select next sequence value: %v", err)
	}

	return value, nil
}
