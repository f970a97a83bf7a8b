package mem

import (
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/stretchr/testify/assert"
)

func TestIncident(t *testing.T) {
	assert := assert.New(t)

	s, clock := mustCreateStore(t)
	defer s.Shutdown()

	mustStartProcessInstance(t, s, history.StartProcessInstanceCmd{Id: "a", TenantId: "tenant"})

	t.Run("create", func(t *testing.T) {
		// when
		id, err := s.CreateIncident(bg, history.CreateIncidentCmd{
			IncidentType:      "failedJob",
			IncidentMessage:   "connection refused",
			ActivityId:        "serviceTask",
			Configuration:     "job",
			ProcessInstanceId: "a",
		})

		// then
		assert.Nil(err)
		assert.NotEmpty(id)

		incident, err := s.CreateHistoricIncidentQuery().IncidentId(id).SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(incident)

		assert.Equal("failedJob", incident.IncidentType)
		assert.Equal("connection refused", incident.IncidentMessage)
		assert.Equal(history.IncidentOpen, incident.State)
		assert.Equal("tenant", incident.TenantId)
		assert.Equal("order:1", incident.ProcessDefinitionId)
		assert.Equal("order", incident.ProcessDefinitionKey)
		assert.Equal(id, incident.CauseIncidentId)
		assert.Equal(id, incident.RootCauseIncidentId)
		assert.Equal(startTime, incident.CreateTime)
		assert.Nil(incident.EndTime)
	})

	t.Run("create with cause", func(t *testing.T) {
		// when
		_, err := s.CreateIncident(bg, history.CreateIncidentCmd{Id: "cause", IncidentType: "failedJob"})
		assert.Nil(err)

		id, err := s.CreateIncident(bg, history.CreateIncidentCmd{Id: "effect", IncidentType: "failedExternalTask", CauseIncidentId: "cause"})

		// then
		assert.Nil(err)
		assert.Equal("effect", id)

		incident, err := s.CreateHistoricIncidentQuery().IncidentId("effect").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(incident)
		assert.Equal("cause", incident.CauseIncidentId)
		assert.Equal("cause", incident.RootCauseIncidentId)
	})

	t.Run("resolve", func(t *testing.T) {
		// given
		clock.Add(time.Hour)

		// when
		err := s.ResolveIncident(bg, history.ResolveIncidentCmd{Id: "cause"})

		// then
		assert.Nil(err)

		incident, err := s.CreateHistoricIncidentQuery().IncidentId("cause").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(incident)
		assert.Equal(history.IncidentResolved, incident.State)
		assert.NotNil(incident.EndTime)
		assert.Equal(startTime.Add(time.Hour), *incident.EndTime)
	})

	t.Run("delete", func(t *testing.T) {
		// when
		err := s.DeleteIncident(bg, history.DeleteIncidentCmd{Id: "effect"})

		// then
		assert.Nil(err)

		incident, err := s.CreateHistoricIncidentQuery().IncidentId("effect").SingleResult(bg)
		assert.Nil(err)
		assert.NotNil(incident)
		assert.True(incident.IsDeleted())
	})

	t.Run("returns error when incident has ended", func(t *testing.T) {
		err := s.ResolveIncident(bg, history.ResolveIncidentCmd{Id: "cause"})
		assertErrorType(t, history.ErrorConflict, err)

		err = s.DeleteIncident(bg, history.DeleteIncidentCmd{Id: "cause"})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("returns error when incident exists", func(t *testing.T) {
		_, err := s.CreateIncident(bg, history.CreateIncidentCmd{Id: "cause", IncidentType: "failedJob"})
		assertErrorType(t, history.ErrorConflict, err)
	})

	t.Run("returns error when incident not exists", func(t *testing.T) {
		err := s.ResolveIncident(bg, history.ResolveIncidentCmd{Id: "not-existing"})
		assertErrorType(t, history.ErrorNotFound, err)
	})

	t.Run("returns error when process instance not exists", func(t *testing.T) {
		_, err := s.CreateIncident(bg, history.CreateIncidentCmd{IncidentType: "failedJob", ProcessInstanceId: "not-existing"})
		assertErrorType(t, history.ErrorNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		count, err := s.CreateHistoricIncidentQuery().Open().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricIncidentQuery().Resolved().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricIncidentQuery().Deleted().Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricIncidentQuery().IncidentType("failedJob").Count(bg)
		assert.Nil(err)
		assert.Equal(2, count)

		count, err = s.CreateHistoricIncidentQuery().IncidentMessageLike("%refused").Count(bg)
		assert.Nil(err)
		assert.Equal(1, count)

		count, err = s.CreateHistoricIncidentQuery().RootCauseIncidentId("cause").Count(bg)
		assert.Nil(err)
		assert.Equal(2, count)

		count, err = s.CreateHistoricIncidentQuery().EndTimeAfter(startTime.Add(time.Hour)).Count(bg)
		assert.Nil(err)
		assert.Equal(2, count)

		results, err := s.CreateHistoricIncidentQuery().RootCauseIncidentId("cause").OrderByIncidentId().Desc().List(bg)
		assert.Nil(err)
		assert.Len(results, 2)
		assert.Equal("effect", results[0].Id)
		assert.Equal("cause", results[1].Id)
	})
}
