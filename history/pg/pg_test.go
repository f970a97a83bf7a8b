package pg

import (
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/model"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	t.Run("returns error when database URL is empty", func(t *testing.T) {
		_, err := New("")
		assert.NotNil(err)
	})

	t.Run("returns error when options are invalid", func(t *testing.T) {
		_, err := New("postgres://localhost:5432/test", func(o *Options) {
			o.Timeout = 0
		})
		assert.NotNil(err)

		_, err = New("postgres://localhost:5432/test", func(o *Options) {
			o.Common.EngineId = " "
		})
		assert.NotNil(err)
	})
}

func TestProcessInstance(t *testing.T) {
	assert := assert.New(t)

	s, clock := mustCreateStore(t)
	defer s.Shutdown()

	t.Run("start and end", func(t *testing.T) {
		// given
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{
			Id:              "a",
			BusinessKey:     "order-1",
			StartActivityId: "start",
			TenantId:        "tenant",
		})

		// when
		clock.Add(365 * 24 * time.Hour)
		err := s.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "a", EndActivityId: "end"})

		// then
		assert.Nil(err)

		processInstance, err := s.CreateHistoricProcessInstanceQuery().ProcessInstanceId("a").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(processInstance)

		assert.Equal("order-1", processInstance.BusinessKey)
		assert.Equal("start", processInstance.StartActivityId)
		assert.Equal("end", processInstance.EndActivityId)
		assert.Equal("tenant", processInstance.TenantId)
		assert.Equal("a", processInstance.RootProcessInstanceId)

		assert.True(startTime.Equal(processInstance.StartTime))
		assert.NotNil(processInstance.EndTime)
		assert.True(startTime.Add(365 * 24 * time.Hour).Equal(*processInstance.EndTime))
		assert.Equal(int64(31_536_000_000), *processInstance.DurationInMillis)
	})

	t.Run("sub process instance", func(t *testing.T) {
		// given
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "b", BusinessKey: "order-2"})

		// when
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "b1", SuperProcessInstanceId: "b"})

		// then
		processInstance, err := s.CreateHistoricProcessInstanceQuery().SuperProcessInstanceId("b").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(processInstance)
		assert.Equal("b1", processInstance.Id)
		assert.Equal("b", processInstance.RootProcessInstanceId)

		processInstance, err = s.CreateHistoricProcessInstanceQuery().SubProcessInstanceId("b1").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(processInstance)
		assert.Equal("b", processInstance.Id)
	})

	t.Run("query", func(t *testing.T) {
		count, err := s.CreateHistoricProcessInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(3, count)

		processInstances, err := s.CreateHistoricProcessInstanceQuery().BusinessKeyLike("order-%").OrderByBusinessKey().Desc().List(bg)
		assert.Nil(err)
		assert.Len(processInstances, 2)
		assert.Equal("b", processInstances[0].Id)
		assert.Equal("a", processInstances[1].Id)

		processInstances, err = s.CreateHistoricProcessInstanceQuery().Unfinished().List(bg)
		assert.Nil(err)
		assert.Len(processInstances, 2)

		processInstances, err = s.CreateHistoricProcessInstanceQuery().Finished().List(bg)
		assert.Nil(err)
		assert.Len(processInstances, 1)
		assert.Equal("a", processInstances[0].Id)

		processInstances, err = s.CreateHistoricProcessInstanceQuery().ListPage(bg, 1, 1)
		assert.Nil(err)
		assert.Len(processInstances, 1)
		assert.Equal("b", processInstances[0].Id)
	})

	t.Run("returns error when process instance exists", func(t *testing.T) {
		err := s.StartProcessInstance(bg, history.StartProcessInstanceCmd{
			Id:                   "a",
			ProcessDefinitionId:  "order:1",
			ProcessDefinitionKey: "order",
		})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("returns error when process instance not exists", func(t *testing.T) {
		err := s.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "not-existing"})
		assertErrorType(t, history.ErrorNotFound, err)
	})
}

func TestActivityInstance(t *testing.T) {
	assert := assert.New(t)

	s, clock := mustCreateStore(t)
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})

	t.Run("start and end", func(t *testing.T) {
		// given
		id := mustStartActivityInstance(t, s, history.StartActivityInstanceCmd{
			ActivityId:        "serviceTask",
			ActivityName:      "Service Task",
			ActivityType:      model.ActivityServiceTask,
			ProcessInstanceId: "a",
		})

		// when
		clock.Add(time.Second)
		err := s.EndActivityInstance(bg, history.EndActivityInstanceCmd{Id: id, State: history.ActivityCompleteScope})

		// then
		assert.Nil(err)

		activityInstance, err := s.CreateHistoricActivityInstanceQuery().ActivityInstanceId(id).SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(activityInstance)
		assert.Equal("Service Task", activityInstance.ActivityName)
		assert.True(activityInstance.IsCompleteScope)
		assert.False(activityInstance.IsCanceled)
		assert.Equal(int64(1000), *activityInstance.DurationInMillis)
	})

	t.Run("statistics", func(t *testing.T) {
		// given
		mustStartActivityInstance(t, s, history.StartActivityInstanceCmd{
			ActivityId:        "userTask",
			ActivityType:      model.ActivityUserTask,
			ProcessInstanceId: "a",
		})

		_, err := s.CreateIncident(bg, history.CreateIncidentCmd{
			IncidentType:      "failedJob",
			ActivityId:        "userTask",
			ProcessInstanceId: "a",
		})
		mustSucceed(t, err)

		// when
		statistics, err := s.CreateHistoricActivityStatisticsQuery("order:1").IncludeFinished().IncludeIncidents().OrderByActivityId().Asc().List(bg)

		// then
		assert.Nil(err)
		assert.Len(statistics, 2)

		assert.Equal("serviceTask", statistics[0].Id)
		assert.Equal(int64(0), statistics[0].Instances)
		assert.Equal(int64(1), statistics[0].Finished)

		assert.Equal("userTask", statistics[1].Id)
		assert.Equal(int64(1), statistics[1].Instances)
		assert.Equal(int64(0), statistics[1].Finished)
		assert.Equal(int64(1), statistics[1].OpenIncidents)
	})

	t.Run("statistics of canceled and complete scope", func(t *testing.T) {
		// given
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "b"})

		canceledId := mustStartActivityInstance(t, s, history.StartActivityInstanceCmd{
			ActivityId:        "userTask",
			ActivityType:      model.ActivityUserTask,
			ProcessInstanceId: "b",
		})
		mustSucceed(t, s.EndActivityInstance(bg, history.EndActivityInstanceCmd{Id: canceledId, State: history.ActivityCanceled}))

		endId := mustStartActivityInstance(t, s, history.StartActivityInstanceCmd{
			ActivityId:        "endEvent",
			ActivityType:      model.ActivityEndEventNone,
			ProcessInstanceId: "b",
		})
		mustSucceed(t, s.EndActivityInstance(bg, history.EndActivityInstanceCmd{Id: endId, State: history.ActivityCompleteScope}))

		// when
		statistics, err := s.CreateHistoricActivityStatisticsQuery("order:1").
			ProcessInstanceIdIn("b").
			IncludeCanceled().
			IncludeCompleteScope().
			OrderByActivityId().Desc().
			List(bg)

		// then
		assert.Nil(err)
		assert.Len(statistics, 2)

		assert.Equal("userTask", statistics[0].Id)
		assert.Equal(int64(0), statistics[0].Instances)
		assert.Equal(int64(0), statistics[0].Finished)
		assert.Equal(int64(1), statistics[0].Canceled)
		assert.Equal(int64(0), statistics[0].CompleteScope)
		assert.Equal(int64(0), statistics[0].OpenIncidents)

		assert.Equal("endEvent", statistics[1].Id)
		assert.Equal(int64(0), statistics[1].Canceled)
		assert.Equal(int64(1), statistics[1].CompleteScope)
	})

	t.Run("statistics without matching process instances", func(t *testing.T) {
		startedAfter := clock.Now().Add(time.Hour)

		statistics, err := s.CreateHistoricActivityStatisticsQuery("order:1").StartedAfter(startedAfter).IncludeIncidents().List(bg)
		assert.Nil(err)
		assert.Len(statistics, 0)
	})
}

func TestCaseInstance(t *testing.T) {
	assert := assert.New(t)

	s, clock := mustCreateStore(t)
	defer s.Shutdown()

	t.Run("create and close", func(t *testing.T) {
		// given
		mustSucceed(t, s.CreateCaseInstance(bg, history.CreateCaseInstanceCmd{
			Id:                "c",
			BusinessKey:       "claim-1",
			CaseDefinitionId:  "claim:1",
			CaseDefinitionKey: "claim",
		}))

		// when
		clock.Add(time.Minute)
		mustSucceed(t, s.UpdateCaseInstanceState(bg, history.UpdateCaseInstanceStateCmd{Id: "c", State: history.CaseInstanceCompleted}))
		err := s.UpdateCaseInstanceState(bg, history.UpdateCaseInstanceStateCmd{Id: "c", State: history.CaseInstanceClosed})

		// then
		assert.Nil(err)

		caseInstance, err := s.CreateHistoricCaseInstanceQuery().CaseInstanceId("c").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(caseInstance)
		assert.Equal(history.CaseInstanceClosed, caseInstance.State)
		assert.Equal(int64(60_000), *caseInstance.DurationInMillis)

		count, err := s.CreateHistoricCaseInstanceQuery().Closed().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("delete historic case instance", func(t *testing.T) {
		err := s.DeleteHistoricCaseInstance(bg, "c")
		assert.Nil(err)

		count, err := s.CreateHistoricCaseInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		err = s.DeleteHistoricCaseInstance(bg, "c")
		assertErrorType(t, history.ErrorNotFound, err)
	})
}

func TestTaskInstance(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t)
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})
	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "b"})

	dueDate := startTime.Add(24 * time.Hour)

	mustSucceed(t, s.CreateTask(bg, history.CreateTaskCmd{
		Id:                "task-a",
		Assignee:          "alice",
		DueDate:           &dueDate,
		Name:              "Approve order",
		Priority:          50,
		TaskDefinitionKey: "approve",
		ProcessInstanceId: "a",
	}))
	mustSucceed(t, s.CreateTask(bg, history.CreateTaskCmd{
		Id:                "task-b",
		Name:              "Approve invoice",
		TaskDefinitionKey: "approve",
		ProcessInstanceId: "b",
	}))

	t.Run("update and complete", func(t *testing.T) {
		// given
		assignee := "bob"

		// when
		mustSucceed(t, s.UpdateTask(bg, history.UpdateTaskCmd{Id: "task-a", Assignee: &assignee}))

		task, err := s.CreateHistoricTaskInstanceQuery().TaskId("task-a").SingleResult(bg)
		assert.Nil(err)
		assert.Equal(history.TaskUpdated, task.State)
		assert.Equal("bob", task.Assignee)

		err = s.CompleteTask(bg, history.CompleteTaskCmd{Id: "task-a"})

		// then
		assert.Nil(err)

		task, err = s.CreateHistoricTaskInstanceQuery().TaskId("task-a").SingleResult(bg)
		assert.Nil(err)
		assert.Equal(history.TaskCompleted, task.State)
		assert.NotNil(task.EndTime)
	})

	t.Run("query", func(t *testing.T) {
		mustSucceed(t, s.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "a"}))

		tasks, err := s.CreateHistoricTaskInstanceQuery().ProcessFinished().List(bg)
		assert.Nil(err)
		assert.Len(tasks, 1)
		assert.Equal("task-a", tasks[0].Id)

		tasks, err = s.CreateHistoricTaskInstanceQuery().ProcessUnfinished().List(bg)
		assert.Nil(err)
		assert.Len(tasks, 1)
		assert.Equal("task-b", tasks[0].Id)

		tasks, err = s.CreateHistoricTaskInstanceQuery().TaskNameLike("Approve%").OrderByTaskName().Asc().List(bg)
		assert.Nil(err)
		assert.Len(tasks, 2)
		assert.Equal("task-b", tasks[0].Id)
		assert.Equal("task-a", tasks[1].Id)

		count, err := s.CreateHistoricTaskInstanceQuery().TaskDueDate(dueDate).Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricTaskInstanceQuery().TaskPriority(50).Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("delete historic task instance", func(t *testing.T) {
		mustSucceed(t, s.DeleteHistoricTaskInstance(bg, "task-b"))
		mustSucceed(t, s.DeleteHistoricTaskInstance(bg, "not-existing"))

		count, err := s.CreateHistoricTaskInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})
}

func TestVariable(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t)
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})

	scope := history.VariableScope{ProcessInstanceId: "a"}

	t.Run("set", func(t *testing.T) {
		// when
		for _, v := range []string{"1", "2", "3"} {
			mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{
				VariableScope: scope,
				Name:          "foo",
				Value:         history.TypedValue{Type: history.ValueInteger, Value: v},
			}))
		}

		// then
		variableInstance, err := s.CreateHistoricVariableInstanceQuery().VariableName("foo").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)
		assert.Equal(2, variableInstance.Revision)
		assert.Equal(history.ValueInteger, variableInstance.Value.Type)
		assert.Equal(int64(3), variableInstance.Value.Value)

		count, err := s.CreateHistoricVariableInstanceQuery().VariableName("foo").VariableValueEquals("foo", "3").Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		details, err := s.CreateHistoricDetailQuery().VariableInstanceId(variableInstance.Id).OrderPartiallyByOccurrence().Asc().List(bg)
		assert.Nil(err)
		assert.Len(details, 3)

		for i, detail := range details {
			assert.Equal(i, detail.Revision)
			assert.Equal(int64(i+1), detail.Value.Value)
		}

		assert.True(details[0].IsInitial)
	})

	t.Run("set bytes", func(t *testing.T) {
		// when
		mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{
			VariableScope: scope,
			Name:          "bar",
			Value:         history.TypedValue{Type: history.ValueBytes, Bytes: []byte("bytes")},
		}))

		// then
		variableInstance, err := s.CreateHistoricVariableInstanceQuery().VariableName("bar").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)
		assert.Equal([]byte("bytes"), variableInstance.Value.Value)

		variableInstance, err = s.CreateHistoricVariableInstanceQuery().VariableName("bar").DisableBinaryFetching().SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)
		assert.Nil(variableInstance.Value.Value)
	})

	t.Run("remove", func(t *testing.T) {
		// when
		err := s.RemoveVariable(bg, history.RemoveVariableCmd{VariableScope: scope, Name: "foo"})

		// then
		assert.Nil(err)

		count, err := s.CreateHistoricVariableInstanceQuery().VariableName("foo").Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		variableInstance, err := s.CreateHistoricVariableInstanceQuery().VariableName("foo").IncludeDeleted().SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(variableInstance)
		assert.Equal(history.VariableDeleted, variableInstance.State)
	})

	t.Run("delete historic variable instance", func(t *testing.T) {
		// given
		variableInstance, err := s.CreateHistoricVariableInstanceQuery().VariableName("bar").SingleResult(bg)
		mustSucceed(t, err)

		// when
		err = s.DeleteHistoricVariableInstance(bg, variableInstance.Id)

		// then
		assert.Nil(err)

		count, err := s.CreateHistoricDetailQuery().VariableInstanceId(variableInstance.Id).Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})
}

func TestJobLog(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t, func(o *Options) {
		o.Common.EngineId = "test-engine"
	})
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})

	t.Run("create, fail and succeed", func(t *testing.T) {
		// given
		mustSucceed(t, s.CreateJob(bg, history.CreateJobCmd{
			JobId:             "job",
			Priority:          10,
			Retries:           1,
			ProcessInstanceId: "a",
		}))

		// when
		mustSucceed(t, s.FailJob(bg, history.FailJobCmd{
			JobId:               "job",
			ExceptionMessage:    "connection refused",
			ExceptionStacktrace: "stacktrace",
			Retries:             0,
		}))

		err := s.SucceedJob(bg, history.SucceedJobCmd{JobId: "job"})

		// then
		assert.Nil(err)

		jobLogs, err := s.CreateHistoricJobLogQuery().JobId("job").OrderPartiallyByOccurrence().Asc().List(bg)
		assert.Nil(err)
		assert.Len(jobLogs, 3)

		assert.Equal(history.JobLogCreation, jobLogs[0].State)
		assert.Equal(history.JobLogFailure, jobLogs[1].State)
		assert.Equal(history.JobLogSuccess, jobLogs[2].State)
		assert.Equal("test-engine", jobLogs[0].Hostname)
		assert.True(jobLogs[1].HasExceptionStacktrace)

		exceptionStacktrace, err := s.GetHistoricJobLogExceptionStacktrace(bg, jobLogs[1].Id)
		assert.Nil(err)
		assert.Equal("stacktrace", exceptionStacktrace)

		_, err = s.GetHistoricJobLogExceptionStacktrace(bg, jobLogs[0].Id)
		assertErrorType(t, history.ErrorNotFound, err)

		count, err := s.CreateHistoricJobLogQuery().FailureLog().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricJobLogQuery().JobPriorityHigherThanOrEquals(11).Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})

	t.Run("returns error when job has already succeeded", func(t *testing.T) {
		err := s.FailJob(bg, history.FailJobCmd{JobId: "job"})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("pending jobs receive a deletion log", func(t *testing.T) {
		// given
		mustSucceed(t, s.CreateJob(bg, history.CreateJobCmd{JobId: "pending", Retries: 3, ProcessInstanceId: "a"}))

		// when
		err := s.DeleteProcessInstance(bg, history.DeleteProcessInstanceCmd{Id: "a", DeleteReason: "test"})

		// then
		assert.Nil(err)

		count, err := s.CreateHistoricJobLogQuery().JobId("pending").DeletionLog().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricJobLogQuery().JobId("job").DeletionLog().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})
}

func TestIncident(t *testing.T) {
	assert := assert.New(t)

	s, clock := mustCreateStore(t)
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})

	t.Run("create and resolve", func(t *testing.T) {
		// given
		id, err := s.CreateIncident(bg, history.CreateIncidentCmd{
			IncidentType:      "failedJob",
			IncidentMessage:   "connection refused",
			ProcessInstanceId: "a",
		})
		mustSucceed(t, err)

		// when
		clock.Add(time.Minute)
		err = s.ResolveIncident(bg, history.ResolveIncidentCmd{Id: id})

		// then
		assert.Nil(err)

		incident, err := s.CreateHistoricIncidentQuery().IncidentId(id).SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(incident)
		assert.Equal(history.IncidentResolved, incident.State)
		assert.Equal(id, incident.CauseIncidentId)
		assert.Equal(id, incident.RootCauseIncidentId)
		assert.NotNil(incident.EndTime)

		count, err := s.CreateHistoricIncidentQuery().Open().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricIncidentQuery().IncidentMessageLike("connection%").Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("returns error when incident has ended", func(t *testing.T) {
		incident, err := s.CreateHistoricIncidentQuery().ProcessInstanceId("a").SingleResult(bg)
		mustSucceed(t, err)

		err = s.ResolveIncident(bg, history.ResolveIncidentCmd{Id: incident.Id})
		assertErrorType(t, history.ErrorConflict, err)
	})
}

func TestDeleteHistoricProcessInstance(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t)
	defer s.Shutdown()

	t.Run("returns error when process instance is running", func(t *testing.T) {
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})

		err := s.DeleteHistoricProcessInstance(bg, history.DeleteHistoricProcessInstanceCmd{Id: "a"})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("delete", func(t *testing.T) {
		// given
		mustStartActivityInstance(t, s, history.StartActivityInstanceCmd{
			ActivityId:        "serviceTask",
			ActivityType:      model.ActivityServiceTask,
			ProcessInstanceId: "a",
		})
		mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{
			VariableScope: history.VariableScope{ProcessInstanceId: "a"},
			Name:          "foo",
			Value:         history.TypedValue{Type: history.ValueString, Value: "bar"},
		}))
		mustSucceed(t, s.CreateJob(bg, history.CreateJobCmd{JobId: "job", Retries: 1, ProcessInstanceId: "a"}))
		mustSucceed(t, s.FailJob(bg, history.FailJobCmd{JobId: "job", ExceptionStacktrace: "stacktrace"}))
		mustSucceed(t, s.CreateCaseInstance(bg, history.CreateCaseInstanceCmd{
			Id:                     "a-case",
			CaseDefinitionId:       "claim:1",
			CaseDefinitionKey:      "claim",
			SuperProcessInstanceId: "a",
		}))
		mustSucceed(t, s.DeleteProcessInstance(bg, history.DeleteProcessInstanceCmd{Id: "a", DeleteReason: "test"}))

		caseInstance, err := s.CreateHistoricCaseInstanceQuery().CaseInstanceId("a-case").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(caseInstance)
		assert.Equal(history.CaseInstanceClosed, caseInstance.State)
		assert.NotNil(caseInstance.CloseTime)

		// when
		err = s.DeleteHistoricProcessInstance(bg, history.DeleteHistoricProcessInstanceCmd{Id: "a"})

		// then
		assert.Nil(err)

		count, err := s.CreateHistoricCaseInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricProcessInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricActivityInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricVariableInstanceQuery().IncludeDeleted().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricDetailQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricJobLogQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})

	t.Run("returns error when process instance not exists", func(t *testing.T) {
		err := s.DeleteHistoricProcessInstance(bg, history.DeleteHistoricProcessInstanceCmd{Id: "a"})
		assertErrorType(t, history.ErrorNotFound, err)

		err = s.DeleteHistoricProcessInstance(bg, history.DeleteHistoricProcessInstanceCmd{Id: "a", IfExists: true})
		assert.Nil(err)
	})

	t.Run("skip sub case instances", func(t *testing.T) {
		// given
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "b"})
		mustSucceed(t, s.CreateCaseInstance(bg, history.CreateCaseInstanceCmd{
			Id:                     "b-case",
			CaseDefinitionId:       "claim:1",
			CaseDefinitionKey:      "claim",
			SuperProcessInstanceId: "b",
		}))

		// when
		mustSucceed(t, s.DeleteProcessInstance(bg, history.DeleteProcessInstanceCmd{Id: "b", DeleteReason: "test", SkipSubprocesses: true}))
		err := s.DeleteHistoricProcessInstance(bg, history.DeleteHistoricProcessInstanceCmd{Id: "b"})

		// then
		assert.Nil(err)

		caseInstance, err := s.CreateHistoricCaseInstanceQuery().CaseInstanceId("b-case").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(caseInstance)
		assert.Equal(history.CaseInstanceActive, caseInstance.State)
		assert.Empty(caseInstance.SuperProcessInstanceId)
		assert.Nil(caseInstance.CloseTime)
	})
}

func TestCleanupHistory(t *testing.T) {
	assert := assert.New(t)

	s, clock := mustCreateStore(t)
	defer s.Shutdown()

	for _, id := range []string{"a", "b", "c"} {
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: id})
		mustSucceed(t, s.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: id}))
		clock.Add(time.Hour)
	}

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "running"})

	t.Run("first batch", func(t *testing.T) {
		// when
		deleted, err := s.CleanupHistory(bg, history.CleanupHistoryCmd{Before: clock.Now(), BatchSize: 2})

		// then
		assert.Nil(err)
		assert.Equal(2, deleted)

		processInstances, err := s.CreateHistoricProcessInstanceQuery().List(bg)
		assert.Nil(err)
		assert.Len(processInstances, 2)
		assert.Equal("c", processInstances[0].Id)
		assert.Equal("running", processInstances[1].Id)
	})

	t.Run("second batch", func(t *testing.T) {
		deleted, err := s.CleanupHistory(bg, history.CleanupHistoryCmd{Before: clock.Now(), BatchSize: 2})
		assert.Nil(err)
		assert.Equal(1, deleted)
	})

	t.Run("nothing left", func(t *testing.T) {
		deleted, err := s.CleanupHistory(bg, history.CleanupHistoryCmd{Before: clock.Now(), BatchSize: 2})
		assert.Nil(err)
		assert.Equal(0, deleted)
	})
}

func TestTransaction(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t)
	defer s.Shutdown()

	t.Run("commit", func(t *testing.T) {
		err := s.Transaction(bg, func(r history.Recorder) error {
			if err := r.StartProcessInstance(bg, history.StartProcessInstanceCmd{Id: "a", ProcessDefinitionId: "order:1", ProcessDefinitionKey: "order"}); err != nil {
				return err
			}
			return r.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "a"})
		})
		assert.Nil(err)

		count, err := s.CreateHistoricProcessInstanceQuery().Finished().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("rollback on conflict", func(t *testing.T) {
		err := s.Transaction(bg, func(r history.Recorder) error {
			if err := r.StartProcessInstance(bg, history.StartProcessInstanceCmd{Id: "b", ProcessDefinitionId: "order:1", ProcessDefinitionKey: "order"}); err != nil {
				return err
			}
			return r.StartProcessInstance(bg, history.StartProcessInstanceCmd{Id: "a", ProcessDefinitionId: "order:1", ProcessDefinitionKey: "order"})
		})
		assertErrorType(t, history.ErrorConflict, err)

		count, err := s.CreateHistoricProcessInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})
}
