package mem

import (
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/model"
	"github.com/stretchr/testify/assert"
)

func TestTaskInstance(t *testing.T) {
	assert := assert.New(t)

	s, clock := mustCreateStore(t)
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a", TenantId: "tenant"})

	activityInstanceId := mustStartActivityInstance(t, s, history.StartActivityInstanceCmd{
		ActivityId:        "approve",
		ActivityType:      model.ActivityUserTask,
		ProcessInstanceId: "a",
	})

	dueDate := startTime.Add(24 * time.Hour)

	t.Run("create", func(t *testing.T) {
		// when
		err := s.CreateTask(bg, history.CreateTaskCmd{
			Id:                 "task",
			Assignee:           "alice",
			DueDate:            &dueDate,
			Name:               "Approve order",
			Priority:           50,
			TaskDefinitionKey:  "approve",
			ActivityInstanceId: activityInstanceId,
			ProcessInstanceId:  "a",
		})

		// then
		assert.Nil(err)

		taskInstance, err := s.CreateHistoricTaskInstanceQuery().TaskId("task").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(taskInstance)

		assert.Equal("alice", taskInstance.Assignee)
		assert.Equal(&dueDate, taskInstance.DueDate)
		assert.Equal("Approve order", taskInstance.Name)
		assert.Equal(50, taskInstance.Priority)
		assert.Equal(history.TaskCreated, taskInstance.State)
		assert.Equal("tenant", taskInstance.TenantId)
		assert.Equal("order:1", taskInstance.ProcessDefinitionId)
		assert.Equal("order", taskInstance.ProcessDefinitionKey)
		assert.Equal(startTime, taskInstance.StartTime)
		assert.Nil(taskInstance.EndTime)

		activityInstance, err := s.CreateHistoricActivityInstanceQuery().ActivityInstanceId(activityInstanceId).SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(activityInstance)
		assert.Equal("task", activityInstance.TaskId)
		assert.Equal("alice", activityInstance.Assignee)
	})

	t.Run("update", func(t *testing.T) {
		// given
		assignee := "bob"
		priority := 80

		// when
		err := s.UpdateTask(bg, history.UpdateTaskCmd{Id: "task", Assignee: &assignee, Priority: &priority})

		// then
		assert.Nil(err)

		taskInstance, err := s.CreateHistoricTaskInstanceQuery().TaskId("task").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(taskInstance)
		assert.Equal("bob", taskInstance.Assignee)
		assert.Equal(80, taskInstance.Priority)
		assert.Equal("Approve order", taskInstance.Name)
		assert.Equal(history.TaskUpdated, taskInstance.State)

		activityInstance, err := s.CreateHistoricActivityInstanceQuery().ActivityInstanceId(activityInstanceId).SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(activityInstance)
		assert.Equal("bob", activityInstance.Assignee)
	})

	t.Run("complete", func(t *testing.T) {
		// given
		clock.Add(time.Minute)

		// when
		err := s.CompleteTask(bg, history.CompleteTaskCmd{Id: "task"})

		// then
		assert.Nil(err)

		taskInstance, err := s.CreateHistoricTaskInstanceQuery().TaskId("task").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(taskInstance)
		assert.Equal(history.TaskCompleted, taskInstance.State)
		assert.Equal("completed", taskInstance.DeleteReason)
		assert.NotNil(taskInstance.EndTime)
		assert.Equal(startTime.Add(time.Minute), *taskInstance.EndTime)
		assert.NotNil(taskInstance.DurationInMillis)
		assert.Equal(int64(60_000), *taskInstance.DurationInMillis)
	})

	t.Run("returns error when task has ended", func(t *testing.T) {
		err := s.CompleteTask(bg, history.CompleteTaskCmd{Id: "task"})
		assertErrorType(t, history.ErrorConflict, err)

		err = s.DeleteTask(bg, history.DeleteTaskCmd{Id: "task"})
		assertErrorType(t, history.ErrorConflict, err)

		name := "x"
		err = s.UpdateTask(bg, history.UpdateTaskCmd{Id: "task", Name: &name})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("returns error when task exists", func(t *testing.T) {
		err := s.CreateTask(bg, history.CreateTaskCmd{Id: "task"})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("returns error when task not exists", func(t *testing.T) {
		err := s.CompleteTask(bg, history.CompleteTaskCmd{Id: "not-existing"})
		assertErrorType(t, history.ErrorNotFound, err)
	})

	t.Run("returns error when process and case instance are set", func(t *testing.T) {
		err := s.CreateTask(bg, history.CreateTaskCmd{Id: "x", ProcessInstanceId: "a", CaseInstanceId: "c"})
		assertErrorType(t, history.ErrorValidation, err)
	})

	t.Run("delete", func(t *testing.T) {
		// given
		mustSucceed(t, s.CreateTask(bg, history.CreateTaskCmd{Id: "standalone", Owner: "carol"}))

		// when
		err := s.DeleteTask(bg, history.DeleteTaskCmd{Id: "standalone"})

		// then
		assert.Nil(err)

		taskInstance, err := s.CreateHistoricTaskInstanceQuery().TaskId("standalone").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(taskInstance)
		assert.Equal(history.TaskDeleted, taskInstance.State)
		assert.Equal("deleted", taskInstance.DeleteReason)
	})

	t.Run("query", func(t *testing.T) {
		count, err := s.CreateHistoricTaskInstanceQuery().Finished().Count(bg)
		assert.Nil(err)
		assert.Equal(2, count)

		count, err = s.CreateHistoricTaskInstanceQuery().TaskAssignee("bob").Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricTaskInstanceQuery().TaskNameLike("Approve%").Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricTaskInstanceQuery().TaskDueDate(dueDate).Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricTaskInstanceQuery().TaskState(history.TaskDeleted).Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricTaskInstanceQuery().ProcessUnfinished().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricTaskInstanceQuery().ProcessFinished().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		results, err := s.CreateHistoricTaskInstanceQuery().OrderByTaskPriority().Desc().List(bg)
		assert.Nil(err)
		assert.Len(results, 2)
		assert.Equal("task", results[0].Id)
		assert.Equal("standalone", results[1].Id)
	})

	t.Run("delete historic task instance", func(t *testing.T) {
		// given
		mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{
			VariableScope: history.VariableScope{TaskId: "standalone"},
			Name:          "comment",
			Value:         history.TypedValue{Type: history.ValueString, Value: "ok"},
		}))

		// when
		err := s.DeleteHistoricTaskInstance(bg, "standalone")

		// then
		assert.Nil(err)

		count, err := s.CreateHistoricTaskInstanceQuery().TaskId("standalone").Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricVariableInstanceQuery().TaskIdIn("standalone").Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricDetailQuery().TaskId("standalone").Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		// unknown task
		assert.Nil(s.DeleteHistoricTaskInstance(bg, "standalone"))
	})
}
