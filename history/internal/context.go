package internal

import (
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
)

// Context provides access to the repositories and state of a single store transaction.
type Context interface {
	Options() history.Options

	// Time returns the time of the transaction, which is UTC and truncated to millis.
	Time() time.Time

	ActivityInstances() ActivityInstanceRepository
	CaseInstances() CaseInstanceRepository
	Details() DetailRepository
	Incidents() IncidentRepository
	JobLogs() JobLogRepository
	ProcessInstances() ProcessInstanceRepository
	Sequence() SequenceRepository
	TaskInstances() TaskInstanceRepository
	VariableInstances() VariableInstanceRepository

	// TxState returns the state, which lives as long as the transaction.
	TxState() *TxState
}

// NewTxState creates the state of a new transaction.
func NewTxState() *TxState {
	return &TxState{}
}

// TxState tracks implicit variable updates, which have not been observed yet, and the gate results of the transaction.
//
// An implicit update is observed, when the variable is written again within the same transaction.
// If the variable's scope ends before, the update is discarded.
type TxState struct {
	events          map[gateEvent]int
	implicitUpdates []implicitUpdate
}

type implicitUpdate struct {
	detailId string
	previous VariableInstanceEntity
}

func (s *TxState) addImplicitUpdate(detailId string, previous VariableInstanceEntity) {
	s.implicitUpdates = append(s.implicitUpdates, implicitUpdate{detailId: detailId, previous: previous})
}

// observe removes pending implicit updates of a variable instance.
func (s *TxState) observe(variableInstanceId string) {
	updates := s.implicitUpdates[:0]
	for _, update := range s.implicitUpdates {
		if update.previous.Id != variableInstanceId {
			updates = append(updates, update)
		}
	}
	s.implicitUpdates = updates
}

// takeImplicitUpdates removes and returns the pending implicit updates, matching the given function.
func (s *TxState) takeImplicitUpdates(matches func(VariableInstanceEntity) bool) []implicitUpdate {
	var (
		taken     []implicitUpdate
		remaining []implicitUpdate
	)
	for _, update := range s.implicitUpdates {
		if matches(update.previous) {
			taken = append(taken, update)
		} else {
			remaining = append(remaining, update)
		}
	}
	s.implicitUpdates = remaining
	return taken
}

// Owners identifies rows by the process instances, case instances or tasks, they belong to.
type Owners struct {
	ProcessInstanceIds []string
	CaseInstanceIds    []string
	TaskIds            []string
}

func (o Owners) IsEmpty() bool {
	return len(o.ProcessInstanceIds) == 0 && len(o.CaseInstanceIds) == 0 && len(o.TaskIds) == 0
}

type SequenceRepository interface {
	// NextValue increments the sequence and returns the new value.
	NextValue() (int64, error)
}

// nextSequenceCounter returns the sequence counter of a new row, which orders rows with equal timestamps.
func nextSequenceCounter(ctx Context) (int64, error) {
	return ctx.Sequence().NextValue()
}
