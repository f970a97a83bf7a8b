package internal

import (
	"testing"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestShouldRecord(t *testing.T) {
	assert := assert.New(t)

	categories := []EventCategory{
		CategoryActivityInstance,
		CategoryCaseInstance,
		CategoryDetail,
		CategoryIncident,
		CategoryJobLog,
		CategoryProcessInstance,
		CategoryTaskInstance,
		CategoryVariableInstance,
	}

	t.Run("none", func(t *testing.T) {
		for _, category := range categories {
			assert.Falsef(ShouldRecord(history.HistoryNone, category), "expected %s not to be recorded", category)
		}
	})

	t.Run("full", func(t *testing.T) {
		for _, category := range categories {
			assert.Truef(ShouldRecord(history.HistoryFull, category), "expected %s to be recorded", category)
		}
	})

	t.Run("activity", func(t *testing.T) {
		assert.True(ShouldRecord(history.HistoryActivity, CategoryActivityInstance))
		assert.True(ShouldRecord(history.HistoryActivity, CategoryCaseInstance))
		assert.True(ShouldRecord(history.HistoryActivity, CategoryProcessInstance))

		assert.False(ShouldRecord(history.HistoryActivity, CategoryTaskInstance))
		assert.False(ShouldRecord(history.HistoryActivity, CategoryVariableInstance))
		assert.False(ShouldRecord(history.HistoryActivity, CategoryJobLog))
	})

	t.Run("audit", func(t *testing.T) {
		assert.True(ShouldRecord(history.HistoryAudit, CategoryTaskInstance))
		assert.True(ShouldRecord(history.HistoryAudit, CategoryVariableInstance))

		assert.False(ShouldRecord(history.HistoryAudit, CategoryDetail))
		assert.False(ShouldRecord(history.HistoryAudit, CategoryIncident))
		assert.False(ShouldRecord(history.HistoryAudit, CategoryJobLog))
	})

	t.Run("unset level", func(t *testing.T) {
		assert.False(ShouldRecord(0, CategoryProcessInstance))
	})
}

func TestCountEvents(t *testing.T) {
	assert := assert.New(t)

	recorded := recordedEventsTotal.WithLabelValues("incident", "recorded")
	skipped := recordedEventsTotal.WithLabelValues("incident", "skipped")

	t.Run("counted when committed", func(t *testing.T) {
		// given
		recordedBefore := testutil.ToFloat64(recorded)
		skippedBefore := testutil.ToFloat64(skipped)

		txState := NewTxState()
		txState.addEvent(CategoryIncident, true)
		txState.addEvent(CategoryIncident, true)
		txState.addEvent(CategoryIncident, false)

		// when
		txState.CountEvents()

		// then
		assert.Equal(recordedBefore+2, testutil.ToFloat64(recorded))
		assert.Equal(skippedBefore+1, testutil.ToFloat64(skipped))
	})

	t.Run("counted once", func(t *testing.T) {
		// given
		txState := NewTxState()
		txState.addEvent(CategoryIncident, true)
		txState.CountEvents()

		recordedBefore := testutil.ToFloat64(recorded)

		// when
		txState.CountEvents()

		// then
		assert.Equal(recordedBefore, testutil.ToFloat64(recorded))
	})

	t.Run("not counted without commit", func(t *testing.T) {
		// given
		recordedBefore := testutil.ToFloat64(recorded)

		// when
		txState := NewTxState()
		txState.addEvent(CategoryIncident, true)

		// then
		assert.Equal(recordedBefore, testutil.ToFloat64(recorded))
	})
}
