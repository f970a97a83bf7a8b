package mem

import (
	"testing"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/stretchr/testify/assert"
)

func TestJobLog(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t, func(o *Options) {
		o.Common.EngineId = "test-engine"
		o.Common.JobExceptionMessageMaxLength = 5
	})
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a", TenantId: "tenant"})

	t.Run("create, fail and succeed", func(t *testing.T) {
		// given
		mustSucceed(t, s.CreateJob(bg, history.CreateJobCmd{
			JobId:             "job",
			JobDefinitionType: "async-continuation",
			Priority:          10,
			Retries:           3,
			ActivityId:        "serviceTask",
			ProcessInstanceId: "a",
		}))

		// when
		for retries := 2; retries >= 0; retries-- {
			mustSucceed(t, s.FailJob(bg, history.FailJobCmd{
				JobId:               "job",
				ExceptionMessage:    "connection refused",
				ExceptionStacktrace: "stacktrace",
				FailedActivityId:    "serviceTask",
				Retries:             retries,
			}))
		}

		err := s.SucceedJob(bg, history.SucceedJobCmd{JobId: "job"})

		// then
		assert.Nil(err)

		jobLogs, err := s.CreateHistoricJobLogQuery().JobId("job").OrderPartiallyByOccurrence().Asc().List(bg)
		assert.Nil(err)
		assert.Len(jobLogs, 5)

		assert.Equal(history.JobLogCreation, jobLogs[0].State)
		assert.Equal(history.JobLogFailure, jobLogs[1].State)
		assert.Equal(history.JobLogFailure, jobLogs[2].State)
		assert.Equal(history.JobLogFailure, jobLogs[3].State)
		assert.Equal(history.JobLogSuccess, jobLogs[4].State)

		assert.Equal(3, jobLogs[0].JobRetries)
		assert.Equal(2, jobLogs[1].JobRetries)
		assert.Equal(1, jobLogs[2].JobRetries)
		assert.Equal(0, jobLogs[3].JobRetries)
		assert.Equal(0, jobLogs[4].JobRetries)

		for _, jobLog := range jobLogs {
			assert.Equal("test-engine", jobLog.Hostname)
			assert.Equal("order:1", jobLog.ProcessDefinitionId)
			assert.Equal("order", jobLog.ProcessDefinitionKey)
			assert.Equal("tenant", jobLog.TenantId)
			assert.Equal(int64(10), jobLog.JobPriority)
		}

		assert.Empty(jobLogs[0].JobExceptionMessage)
		assert.Equal("conne", jobLogs[1].JobExceptionMessage)
		assert.Equal("serviceTask", jobLogs[1].FailedActivityId)
		assert.True(jobLogs[1].HasExceptionStacktrace)
		assert.Empty(jobLogs[4].JobExceptionMessage)
		assert.False(jobLogs[4].HasExceptionStacktrace)

		exceptionStacktrace, err := s.GetHistoricJobLogExceptionStacktrace(bg, jobLogs[1].Id)
		assert.Nil(err)
		assert.Equal("stacktrace", exceptionStacktrace)

		_, err = s.GetHistoricJobLogExceptionStacktrace(bg, jobLogs[0].Id)
		assertErrorType(t, history.ErrorNotFound, err)

		_, err = s.GetHistoricJobLogExceptionStacktrace(bg, "")
		assertErrorType(t, history.ErrorNotFound, err)
	})

	t.Run("returns error when job has already succeeded", func(t *testing.T) {
		err := s.FailJob(bg, history.FailJobCmd{JobId: "job"})
		assertErrorType(t, history.ErrorConflict, err)

		err = s.DeleteJob(bg, history.DeleteJobCmd{JobId: "job"})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("returns error when job exists", func(t *testing.T) {
		err := s.CreateJob(bg, history.CreateJobCmd{JobId: "job"})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("returns error when job not exists", func(t *testing.T) {
		err := s.SucceedJob(bg, history.SucceedJobCmd{JobId: "not-existing"})
		assertErrorType(t, history.ErrorNotFound, err)
	})

	t.Run("returns error when retries are not decreasing", func(t *testing.T) {
		// given
		mustSucceed(t, s.CreateJob(bg, history.CreateJobCmd{JobId: "job2", Retries: 3}))
		mustSucceed(t, s.FailJob(bg, history.FailJobCmd{JobId: "job2", Retries: 2}))

		// when
		err := s.FailJob(bg, history.FailJobCmd{JobId: "job2", Retries: 2})

		// then
		assertErrorType(t, history.ErrorConflict, err)

		count, err := s.CreateHistoricJobLogQuery().JobId("job2").Count(bg)
		assert.Nil(err)
		assert.Equal(2, count)
	})

	t.Run("delete", func(t *testing.T) {
		// when
		err := s.DeleteJob(bg, history.DeleteJobCmd{JobId: "job2"})

		// then
		assert.Nil(err)

		jobLog, err := s.CreateHistoricJobLogQuery().JobId("job2").DeletionLog().SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(jobLog)
		assert.Equal(2, jobLog.JobRetries)
	})

	t.Run("query", func(t *testing.T) {
		count, err := s.CreateHistoricJobLogQuery().FailureLog().Count(bg)
		assert.Nil(err)
		assert.Equal(4, count)

		count, err = s.CreateHistoricJobLogQuery().ProcessInstanceId("a").Count(bg)
		assert.Nil(err)
		assert.Equal(5, count)

		count, err = s.CreateHistoricJobLogQuery().JobPriorityHigherThanOrEquals(10).Count(bg)
		assert.Nil(err)
		assert.Equal(5, count)

		results, err := s.CreateHistoricJobLogQuery().OrderByJobRetries().Desc().List(bg)
		assert.Nil(err)
		assert.Len(results, 8)
		assert.Equal(3, results[0].JobRetries)
		assert.Equal(0, results[7].JobRetries)
	})
}
