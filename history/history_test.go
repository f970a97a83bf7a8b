package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptionsValidate(t *testing.T) {
	assert := assert.New(t)

	t.Run("defaults", func(t *testing.T) {
		assert.NoError(NewOptions().Validate())
	})

	tests := map[string]func(*Options){
		"blank engine ID":      func(o *Options) { o.EngineId = " " },
		"invalid level":        func(o *Options) { o.HistoryLevel = 0 },
		"query limit":          func(o *Options) { o.DefaultQueryLimit = 0 },
		"message length":       func(o *Options) { o.JobExceptionMessageMaxLength = 0 },
		"cleanup batch size":   func(o *Options) { o.CleanupBatchSize = 0 },
		"invalid cleanup cron": func(o *Options) { o.CleanupEnabled = true; o.CleanupCycle = "* *" },
		"cleanup time to live": func(o *Options) { o.CleanupEnabled = true; o.CleanupTimeToLive = time.Minute },
	}

	for name, customize := range tests {
		t.Run(name, func(t *testing.T) {
			// given
			o := NewOptions()
			customize(&o)

			// when
			err := o.Validate()

			// then
			assert.Error(err)
		})
	}

	t.Run("cleanup disabled ignores cycle", func(t *testing.T) {
		// given
		o := NewOptions()
		o.CleanupCycle = "invalid"

		// then
		assert.NoError(o.Validate())
	})
}

func TestHistoryLevel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(HistoryAudit, MapHistoryLevel("AUDIT"))
	assert.Equal(HistoryLevel(0), MapHistoryLevel("audit"))

	var level HistoryLevel
	assert.NoError(json.Unmarshal([]byte(`"ACTIVITY"`), &level))
	assert.Equal(HistoryActivity, level)

	assert.Error(json.Unmarshal([]byte(`"SOME"`), &level))
}

func TestTaskStateIsTerminal(t *testing.T) {
	assert := assert.New(t)

	assert.True(TaskCompleted.IsTerminal())
	assert.True(TaskDeleted.IsTerminal())
	assert.False(TaskCreated.IsTerminal())
	assert.False(TaskUpdated.IsTerminal())
}

func TestDuration(t *testing.T) {
	assert := assert.New(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(time.Millisecond)

	ai := HistoricActivityInstance{StartTime: start}
	assert.Equal(time.Duration(0), ai.Duration())

	ai.EndTime = &end
	assert.Equal(366*24*time.Hour+time.Millisecond, ai.Duration())

	pi := HistoricProcessInstance{StartTime: start, EndTime: &end}
	assert.Greater(pi.Duration(), 365*24*time.Hour)
}

func TestErrorType(t *testing.T) {
	assert := assert.New(t)

	err := Error{Type: ErrorNotFound, Title: "t", Detail: "d"}
	assert.Equal("NOT_FOUND: t: d", err.Error())
	assert.True(IsErrorType(err, ErrorNotFound))
	assert.False(IsErrorType(err, ErrorQuery))
	assert.Equal(ErrorValidation, MapErrorType("VALIDATION"))
}
