package mem

import (
	"errors"
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	t.Run("returns error when options are invalid", func(t *testing.T) {
		_, err := New(func(o *Options) {
			o.Common.EngineId = " "
		})
		assert.NotNil(err)

		_, err = New(func(o *Options) {
			o.Common.CleanupEnabled = true
			o.Common.CleanupCycle = "invalid"
		})
		assert.NotNil(err)
	})
}

func TestHistoryLevel(t *testing.T) {
	assert := assert.New(t)

	t.Run("NONE", func(t *testing.T) {
		// given
		s, _ := mustCreateStore(t, func(o *Options) {
			o.Common.HistoryLevel = history.HistoryNone
		})
		defer s.Shutdown()

		// when
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})
		mustSucceed(t, s.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "a"}))

		// then
		count, err := s.CreateHistoricProcessInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})

	t.Run("ACTIVITY", func(t *testing.T) {
		// given
		s, _ := mustCreateStore(t, func(o *Options) {
			o.Common.HistoryLevel = history.HistoryActivity
		})
		defer s.Shutdown()

		// when
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})
		mustStartActivityInstance(t, s, history.StartActivityInstanceCmd{ActivityId: "task", ActivityType: model.ActivityUserTask, ProcessInstanceId: "a"})

		mustSucceed(t, s.CreateTask(bg, history.CreateTaskCmd{Id: "task", ProcessInstanceId: "a"}))
		mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{
			VariableScope: history.VariableScope{ProcessInstanceId: "a"},
			Name:          "x",
			Value:         history.TypedValue{Type: history.ValueString, Value: "y"},
		}))
		mustSucceed(t, s.CreateJob(bg, history.CreateJobCmd{JobId: "job", ProcessInstanceId: "a"}))

		id, err := s.CreateIncident(bg, history.CreateIncidentCmd{IncidentType: "failedJob", ProcessInstanceId: "a"})
		assert.Nil(err)
		assert.NotEmpty(id)

		// then
		count, err := s.CreateHistoricProcessInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricActivityInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricTaskInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricVariableInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricJobLogQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricIncidentQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})

	t.Run("AUDIT", func(t *testing.T) {
		// given
		s, _ := mustCreateStore(t, func(o *Options) {
			o.Common.HistoryLevel = history.HistoryAudit
		})
		defer s.Shutdown()

		// when
		mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})

		mustSucceed(t, s.CreateTask(bg, history.CreateTaskCmd{Id: "task", ProcessInstanceId: "a"}))
		mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{
			VariableScope: history.VariableScope{ProcessInstanceId: "a"},
			Name:          "x",
			Value:         history.TypedValue{Type: history.ValueString, Value: "y"},
		}))
		mustSucceed(t, s.CreateJob(bg, history.CreateJobCmd{JobId: "job", ProcessInstanceId: "a"}))

		// then
		count, err := s.CreateHistoricTaskInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricVariableInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricDetailQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricJobLogQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})
}

func TestTransaction(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t)
	defer s.Shutdown()

	t.Run("commit", func(t *testing.T) {
		// when
		err := s.Transaction(bg, func(r history.Recorder) error {
			if err := r.StartProcessInstance(bg, history.StartProcessInstanceCmd{Id: "a", ProcessDefinitionId: "order:1", ProcessDefinitionKey: "order"}); err != nil {
				return err
			}
			_, err := r.StartActivityInstance(bg, history.StartActivityInstanceCmd{ActivityId: "start", ActivityType: model.ActivityStartEvent, ProcessInstanceId: "a"})
			return err
		})

		// then
		assert.Nil(err)

		count, err := s.CreateHistoricActivityInstanceQuery().ProcessInstanceId("a").Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("rollback on conflict", func(t *testing.T) {
		// when
		err := s.Transaction(bg, func(r history.Recorder) error {
			if err := r.StartProcessInstance(bg, history.StartProcessInstanceCmd{Id: "b", ProcessDefinitionId: "order:1", ProcessDefinitionKey: "order"}); err != nil {
				return err
			}
			return r.StartProcessInstance(bg, history.StartProcessInstanceCmd{Id: "b", ProcessDefinitionId: "order:1", ProcessDefinitionKey: "order"})
		})

		// then
		assertErrorType(t, history.ErrorConflict, err)

		count, err := s.CreateHistoricProcessInstanceQuery().ProcessInstanceId("b").Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})

	t.Run("rollback on error", func(t *testing.T) {
		// given
		fnErr := errors.New("test")

		// when
		err := s.Transaction(bg, func(r history.Recorder) error {
			if err := r.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "a"}); err != nil {
				return err
			}
			return fnErr
		})

		// then
		assert.Equal(fnErr, err)

		count, err := s.CreateHistoricProcessInstanceQuery().Unfinished().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("events of rolled back transaction are not counted", func(t *testing.T) {
		// given
		recordedBefore := eventsTotal(t, "process_instance", "recorded")

		// when
		err := s.Transaction(bg, func(r history.Recorder) error {
			if err := r.StartProcessInstance(bg, history.StartProcessInstanceCmd{Id: "c", ProcessDefinitionId: "order:1", ProcessDefinitionKey: "order"}); err != nil {
				return err
			}
			return errors.New("test")
		})

		// then
		assert.NotNil(err)
		assert.Equal(recordedBefore, eventsTotal(t, "process_instance", "recorded"))
	})

	t.Run("events of committed transaction are counted", func(t *testing.T) {
		// given
		recordedBefore := eventsTotal(t, "process_instance", "recorded")

		// when
		err := s.Transaction(bg, func(r history.Recorder) error {
			return r.StartProcessInstance(bg, history.StartProcessInstanceCmd{Id: "d", ProcessDefinitionId: "order:1", ProcessDefinitionKey: "order"})
		})

		// then
		assert.Nil(err)
		assert.Equal(recordedBefore+1, eventsTotal(t, "process_instance", "recorded"))
	})
}

// eventsTotal returns the current value of the events metric for a category and result.
func eventsTotal(t *testing.T, category string, result string) float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, family := range families {
		if family.GetName() != "go_bpmn_history_events_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["category"] == category && labels["result"] == result {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCleanupHistory(t *testing.T) {
	assert := assert.New(t)

	s, clock := mustCreateStore(t)
	defer s.Shutdown()

	// given
	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})
	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a1", SuperProcessInstanceId: "a"})
	mustSucceed(t, s.SetVariable(bg, history.SetVariableCmd{
		VariableScope: history.VariableScope{ProcessInstanceId: "a1"},
		Name:          "x",
		Value:         history.TypedValue{Type: history.ValueString, Value: "y"},
	}))
	mustSucceed(t, s.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "a1"}))
	mustSucceed(t, s.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "a"}))

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "b"})

	mustSucceed(t, s.CreateCaseInstance(bg, history.CreateCaseInstanceCmd{
		Id:                "k",
		CaseDefinitionId:  "claim:1",
		CaseDefinitionKey: "claim",
		State:             history.CaseInstanceClosed,
	}))

	clock.Add(2 * time.Hour)

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "c"})
	mustSucceed(t, s.EndProcessInstance(bg, history.EndProcessInstanceCmd{Id: "c"}))

	cmd := history.CleanupHistoryCmd{
		Before:    startTime.Add(time.Hour),
		BatchSize: 1,
	}

	t.Run("first batch", func(t *testing.T) {
		// when
		n, err := s.CleanupHistory(bg, cmd)

		// then
		assert.Nil(err)
		assert.Equal(1, n)

		results, err := s.CreateHistoricProcessInstanceQuery().List(bg)
		assert.Nil(err)
		assert.Len(results, 2)
		assert.Equal("b", results[0].Id)
		assert.Equal("c", results[1].Id)

		count, err := s.CreateHistoricVariableInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)

		count, err = s.CreateHistoricCaseInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)
	})

	t.Run("second batch", func(t *testing.T) {
		// when
		n, err := s.CleanupHistory(bg, cmd)

		// then
		assert.Nil(err)
		assert.Equal(1, n)

		count, err := s.CreateHistoricCaseInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(0, count)
	})

	t.Run("nothing left", func(t *testing.T) {
		// when
		n, err := s.CleanupHistory(bg, cmd)

		// then
		assert.Nil(err)
		assert.Equal(0, n)

		count, err := s.CreateHistoricProcessInstanceQuery().Count(bg)
		assert.Nil(err)
		assert.Equal(2, count)
	})

	t.Run("returns error when command is invalid", func(t *testing.T) {
		_, err := s.CleanupHistory(bg, history.CleanupHistoryCmd{Before: startTime})
		assertErrorType(t, history.ErrorValidation, err)
	})
}

func TestQuery(t *testing.T) {
	assert := assert.New(t)

	s, _ := mustCreateStore(t)
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a"})
	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "b"})

	t.Run("criteria", func(t *testing.T) {
		// when
		results, err := s.Query(bg, history.HistoricProcessInstanceCriteria{ProcessInstanceId: "b"}, history.QueryOptions{})

		// then
		assert.Nil(err)
		assert.Len(results, 1)
		assert.IsType(history.HistoricProcessInstance{}, results[0])

		count, err := s.Count(bg, history.HistoricProcessInstanceCriteria{})
		assert.Nil(err)
		assert.Equal(2, count)
	})

	t.Run("options", func(t *testing.T) {
		results, err := s.Query(bg, history.HistoricProcessInstanceCriteria{}, history.QueryOptions{Offset: 1, Limit: 1})
		assert.Nil(err)
		assert.Len(results, 1)
		assert.Equal("b", results[0].(history.HistoricProcessInstance).Id)
	})

	t.Run("returns error when criteria is not supported", func(t *testing.T) {
		_, err := s.Query(bg, struct{}{}, history.QueryOptions{})
		assertErrorType(t, history.ErrorQuery, err)

		_, err = s.Count(bg, "")
		assertErrorType(t, history.ErrorQuery, err)
	})

	t.Run("returns error when sort property is unknown", func(t *testing.T) {
		_, err := s.Query(bg, history.HistoricProcessInstanceCriteria{
			Sorting: []history.Sorting{{Property: "unknown", Direction: history.SortAsc}},
		}, history.QueryOptions{})
		assert.NotNil(err)
	})
}
