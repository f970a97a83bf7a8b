package history

import (
	"fmt"
)

// HistoryLevel is the granularity of recording. Higher levels are supersets of lower ones.
type HistoryLevel int

const (
	HistoryNone HistoryLevel = iota + 1
	HistoryActivity
	HistoryAudit
	HistoryFull
)

func MapHistoryLevel(s string) HistoryLevel {
	switch s {
	case "NONE":
		return HistoryNone
	case "ACTIVITY":
		return HistoryActivity
	case "AUDIT":
		return HistoryAudit
	case "FULL":
		return HistoryFull
	default:
		return 0
	}
}

func (v HistoryLevel) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v HistoryLevel) String() string {
	switch v {
	case HistoryNone:
		return "NONE"
	case HistoryActivity:
		return "ACTIVITY"
	case HistoryAudit:
		return "AUDIT"
	case HistoryFull:
		return "FULL"
	default:
		return ""
	}
}

func (v *HistoryLevel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "history level", func(s string) bool {
		*v = MapHistoryLevel(s)
		return *v != 0
	})
}

// ActivityEndState classifies how an activity instance ended.
//
//   - [ActivityCompleteScope]: regular completion of the enclosing scope
//   - [ActivityCanceled]: forced termination, like a deletion, an interrupting boundary event or a terminate end event
//   - [ActivityImplicit]: ended, but neither canceled nor completing its scope
type ActivityEndState int

const (
	ActivityCanceled ActivityEndState = iota + 1
	ActivityCompleteScope
	ActivityImplicit
)

func MapActivityEndState(s string) ActivityEndState {
	switch s {
	case "CANCELED":
		return ActivityCanceled
	case "COMPLETE_SCOPE":
		return ActivityCompleteScope
	case "IMPLICIT":
		return ActivityImplicit
	default:
		return 0
	}
}

func (v ActivityEndState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v ActivityEndState) String() string {
	switch v {
	case ActivityCanceled:
		return "CANCELED"
	case ActivityCompleteScope:
		return "COMPLETE_SCOPE"
	case ActivityImplicit:
		return "IMPLICIT"
	default:
		return ""
	}
}

func (v *ActivityEndState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "activity end state", func(s string) bool {
		*v = MapActivityEndState(s)
		return *v != 0
	})
}

// CaseInstanceState describes the states of a case instance. Only [CaseInstanceClosed] is terminal.
type CaseInstanceState int

const (
	CaseInstanceActive CaseInstanceState = iota + 1
	CaseInstanceClosed
	CaseInstanceCompleted
	CaseInstanceSuspended
	CaseInstanceTerminated
)

func MapCaseInstanceState(s string) CaseInstanceState {
	switch s {
	case "ACTIVE":
		return CaseInstanceActive
	case "CLOSED":
		return CaseInstanceClosed
	case "COMPLETED":
		return CaseInstanceCompleted
	case "SUSPENDED":
		return CaseInstanceSuspended
	case "TERMINATED":
		return CaseInstanceTerminated
	default:
		return 0
	}
}

func (v CaseInstanceState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v CaseInstanceState) String() string {
	switch v {
	case CaseInstanceActive:
		return "ACTIVE"
	case CaseInstanceClosed:
		return "CLOSED"
	case CaseInstanceCompleted:
		return "COMPLETED"
	case CaseInstanceSuspended:
		return "SUSPENDED"
	case CaseInstanceTerminated:
		return "TERMINATED"
	default:
		return ""
	}
}

func (v *CaseInstanceState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "case instance state", func(s string) bool {
		*v = MapCaseInstanceState(s)
		return *v != 0
	})
}

// IncidentState describes the states of a historic incident.
type IncidentState int

const (
	IncidentDeleted IncidentState = iota + 1
	IncidentOpen
	IncidentResolved
)

func MapIncidentState(s string) IncidentState {
	switch s {
	case "DELETED":
		return IncidentDeleted
	case "OPEN":
		return IncidentOpen
	case "RESOLVED":
		return IncidentResolved
	default:
		return 0
	}
}

func (v IncidentState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v IncidentState) String() string {
	switch v {
	case IncidentDeleted:
		return "DELETED"
	case IncidentOpen:
		return "OPEN"
	case IncidentResolved:
		return "RESOLVED"
	default:
		return ""
	}
}

func (v *IncidentState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "incident state", func(s string) bool {
		*v = MapIncidentState(s)
		return *v != 0
	})
}

// JobLogState describes the event a historic job log row was written for.
type JobLogState int

const (
	JobLogCreation JobLogState = iota + 1
	JobLogDeletion
	JobLogFailure
	JobLogSuccess
)

func MapJobLogState(s string) JobLogState {
	switch s {
	case "CREATION":
		return JobLogCreation
	case "DELETION":
		return JobLogDeletion
	case "FAILURE":
		return JobLogFailure
	case "SUCCESS":
		return JobLogSuccess
	default:
		return 0
	}
}

func (v JobLogState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v JobLogState) String() string {
	switch v {
	case JobLogCreation:
		return "CREATION"
	case JobLogDeletion:
		return "DELETION"
	case JobLogFailure:
		return "FAILURE"
	case JobLogSuccess:
		return "SUCCESS"
	default:
		return ""
	}
}

func (v *JobLogState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "job log state", func(s string) bool {
		*v = MapJobLogState(s)
		return *v != 0
	})
}

// TaskState describes the states of a historic task instance.
//
// Any mutation between creation and a terminal transition moves the state to [TaskUpdated].
type TaskState int

const (
	TaskCompleted TaskState = iota + 1
	TaskCreated
	TaskDeleted
	TaskUpdated
)

func MapTaskState(s string) TaskState {
	switch s {
	case "Completed":
		return TaskCompleted
	case "Created":
		return TaskCreated
	case "Deleted":
		return TaskDeleted
	case "Updated":
		return TaskUpdated
	default:
		return 0
	}
}

func (v TaskState) IsTerminal() bool {
	return v == TaskCompleted || v == TaskDeleted
}

func (v TaskState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v TaskState) String() string {
	switch v {
	case TaskCompleted:
		return "Completed"
	case TaskCreated:
		return "Created"
	case TaskDeleted:
		return "Deleted"
	case TaskUpdated:
		return "Updated"
	default:
		return ""
	}
}

func (v *TaskState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "task state", func(s string) bool {
		*v = MapTaskState(s)
		return *v != 0
	})
}

// VariableState describes the states of a historic variable instance.
type VariableState int

const (
	VariableCreated VariableState = iota + 1
	VariableDeleted
)

func MapVariableState(s string) VariableState {
	switch s {
	case "CREATED":
		return VariableCreated
	case "DELETED":
		return VariableDeleted
	default:
		return 0
	}
}

func (v VariableState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v VariableState) String() string {
	switch v {
	case VariableCreated:
		return "CREATED"
	case VariableDeleted:
		return "DELETED"
	default:
		return ""
	}
}

func (v *VariableState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "variable state", func(s string) bool {
		*v = MapVariableState(s)
		return *v != 0
	})
}

func marshalEnum(s string) ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func unmarshalEnum(data []byte, name string, mapValue func(string) bool) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		if mapValue(s) {
			return nil
		}
	}
	return fmt.Errorf("invalid %s data %s", name, s)
}
