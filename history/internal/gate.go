package internal

import (
	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recordedEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "go_bpmn_history",
		Name:      "events_total",
		Help:      "Total number of history events of committed transactions, by category and result",
	},
	[]string{"category", "result"},
)

// EventCategory groups history events by the minimum history level, required to record them.
type EventCategory int

const (
	CategoryActivityInstance EventCategory = iota + 1
	CategoryCaseInstance
	CategoryDetail
	CategoryIncident
	CategoryJobLog
	CategoryProcessInstance
	CategoryTaskInstance
	CategoryVariableInstance
)

// MinLevel returns the minimum history level, required to record events of the category.
func (v EventCategory) MinLevel() history.HistoryLevel {
	switch v {
	case CategoryActivityInstance, CategoryCaseInstance, CategoryProcessInstance:
		return history.HistoryActivity
	case CategoryTaskInstance, CategoryVariableInstance:
		return history.HistoryAudit
	default:
		return history.HistoryFull
	}
}

func (v EventCategory) String() string {
	switch v {
	case CategoryActivityInstance:
		return "activity_instance"
	case CategoryCaseInstance:
		return "case_instance"
	case CategoryDetail:
		return "detail"
	case CategoryIncident:
		return "incident"
	case CategoryJobLog:
		return "job_log"
	case CategoryProcessInstance:
		return "process_instance"
	case CategoryTaskInstance:
		return "task_instance"
	case CategoryVariableInstance:
		return "variable_instance"
	default:
		return "unknown"
	}
}

// ShouldRecord determines if an event of the given category is recorded at the configured history level.
func ShouldRecord(level history.HistoryLevel, category EventCategory) bool {
	if level <= history.HistoryNone {
		return false
	}
	return level >= category.MinLevel()
}

// shouldRecord consults the gate for a single event. The level is read per event, since it is not cached.
// The event is counted, when the transaction commits.
func shouldRecord(ctx Context, category EventCategory) bool {
	recorded := ShouldRecord(ctx.Options().HistoryLevel, category)
	ctx.TxState().addEvent(category, recorded)
	return recorded
}

type gateEvent struct {
	category EventCategory
	recorded bool
}

func (s *TxState) addEvent(category EventCategory, recorded bool) {
	if s.events == nil {
		s.events = make(map[gateEvent]int)
	}
	s.events[gateEvent{category: category, recorded: recorded}]++
}

// CountEvents adds the gate results of a committed transaction to the events metric.
func (s *TxState) CountEvents() {
	for event, n := range s.events {
		result := "skipped"
		if event.recorded {
			result = "recorded"
		}
		recordedEventsTotal.WithLabelValues(event.category.String(), result).Add(float64(n))
	}
	s.events = nil
}
