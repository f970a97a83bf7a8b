package model

import "strings"

// Type tags of activities, recorded as activity type of historic activity instances.
const (
	ActivityBoundaryCancel       = "cancelBoundaryCatch"
	ActivityBoundaryCompensation = "compensationBoundaryCatch"
	ActivityBoundaryConditional  = "boundaryConditional"
	ActivityBoundaryError        = "boundaryError"
	ActivityBoundaryEscalation   = "boundaryEscalation"
	ActivityBoundaryMessage      = "boundaryMessage"
	ActivityBoundarySignal       = "boundarySignal"
	ActivityBoundaryTimer        = "boundaryTimer"
	ActivityBusinessRuleTask     = "businessRuleTask"
	ActivityCallActivity         = "callActivity"
	ActivityComplexGateway       = "complexGateway"
	ActivityEndEventCancel       = "cancelEndEvent"
	ActivityEndEventCompensation = "compensationEndEvent"
	ActivityEndEventError        = "errorEndEvent"
	ActivityEndEventEscalation   = "escalationEndEvent"
	ActivityEndEventMessage      = "messageEndEvent"
	ActivityEndEventNone         = "noneEndEvent"
	ActivityEndEventSignal       = "signalEndEvent"
	ActivityEndEventTerminate    = "terminateEndEvent"
	ActivityEventBasedGateway    = "eventBasedGateway"
	ActivityExclusiveGateway     = "exclusiveGateway"
	ActivityInclusiveGateway     = "inclusiveGateway"
	ActivityIntermediateCatch    = "intermediateCatchEvent"
	ActivityIntermediateMessage  = "intermediateMessageCatch"
	ActivityIntermediateNone     = "intermediateNoneThrowEvent"
	ActivityIntermediateSignal   = "intermediateSignalCatch"
	ActivityIntermediateTimer    = "intermediateTimer"
	ActivityManualTask           = "manualTask"
	ActivityMultiInstanceBody    = "multiInstanceBody"
	ActivityParallelGateway      = "parallelGateway"
	ActivityReceiveTask          = "receiveTask"
	ActivityScriptTask           = "scriptTask"
	ActivitySendTask             = "sendTask"
	ActivityServiceTask          = "serviceTask"
	ActivityStartEvent           = "startEvent"
	ActivityStartEventMessage    = "messageStartEvent"
	ActivityStartEventSignal     = "signalStartEvent"
	ActivityStartEventTimer      = "startTimerEvent"
	ActivitySubProcess           = "subProcess"
	ActivityTask                 = "task"
	ActivityTransaction          = "transaction"
	ActivityUserTask             = "userTask"
)

const multiInstanceBodySuffix = "#multiInstanceBody"

// MultiInstanceBodyId returns the ID of the multi instance body activity, that wraps all iterations of an activity.
func MultiInstanceBodyId(activityId string) string {
	return activityId + multiInstanceBodySuffix
}

// IsMultiInstanceBodyId determines if an activity ID identifies a multi instance body.
func IsMultiInstanceBodyId(activityId string) bool {
	return strings.HasSuffix(activityId, multiInstanceBodySuffix)
}

// InnerActivityId returns the ID of the iterated activity, if the given ID identifies a multi instance body.
// Otherwise the ID is returned as it is.
func InnerActivityId(activityId string) string {
	return strings.TrimSuffix(activityId, multiInstanceBodySuffix)
}

// IsRecorded determines if instances of an activity type are recorded.
// Compensation boundary events are never recorded.
func IsRecorded(activityType string) bool {
	return activityType != ActivityBoundaryCompensation
}
