package common

const (
	ContentTypeJson        = "application/json"
	ContentTypeProblemJson = "application/problem+json"
	ContentTypeText        = "text/plain"

	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	PathHistoricActivityInstancesCount = "/historic-activity-instances/count"
	PathHistoricActivityInstancesQuery = "/historic-activity-instances/query"

	PathHistoricActivityStatisticsCount = "/historic-activity-statistics/count"
	PathHistoricActivityStatisticsQuery = "/historic-activity-statistics/query"

	PathHistoricCaseInstances      = "/historic-case-instances/{id}"
	PathHistoricCaseInstancesCount = "/historic-case-instances/count"
	PathHistoricCaseInstancesQuery = "/historic-case-instances/query"

	PathHistoricDetailsCount = "/historic-details/count"
	PathHistoricDetailsQuery = "/historic-details/query"

	PathHistoricIncidentsCount = "/historic-incidents/count"
	PathHistoricIncidentsQuery = "/historic-incidents/query"

	PathHistoricJobLogsCount      = "/historic-job-logs/count"
	PathHistoricJobLogsQuery      = "/historic-job-logs/query"
	PathHistoricJobLogsStacktrace = "/historic-job-logs/{id}/stacktrace"

	PathHistoricProcessInstances      = "/historic-process-instances/{id}"
	PathHistoricProcessInstancesCount = "/historic-process-instances/count"
	PathHistoricProcessInstancesQuery = "/historic-process-instances/query"

	PathHistoricTaskInstances      = "/historic-task-instances/{id}"
	PathHistoricTaskInstancesCount = "/historic-task-instances/count"
	PathHistoricTaskInstancesQuery = "/historic-task-instances/query"

	PathHistoricVariableInstances      = "/historic-variable-instances/{id}"
	PathHistoricVariableInstancesCount = "/historic-variable-instances/count"
	PathHistoricVariableInstancesQuery = "/historic-variable-instances/query"

	PathHistoryCleanup = "/history/cleanup"

	PathMetrics   = "/metrics"
	PathReadiness = "/readiness"

	QueryIfExists = "ifExists"
	QueryLimit    = "limit"
	QueryOffset   = "offset"
)
