package daemon

import (
	"bytes"
	"testing"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConf(t *testing.T) {
	assert := assert.New(t)

	t.Run("get options", func(t *testing.T) {
		conf := newConf()
		conf.opts[optEngineId].defaultValue = "engine-id"
		conf.opts[optHistoryLevel].defaultValue = "audit"
		conf.opts[optJobExceptionMessageMaxLength].defaultValue = "100"
		conf.opts[optDefaultQueryLimit].defaultValue = "50"
		conf.opts[optCleanupEnabled].defaultValue = "true"
		conf.opts[optCleanupCycle].defaultValue = "0 3 * * *"
		conf.opts[optCleanupTimeToLive].defaultValue = "24h"
		conf.opts[optCleanupBatchSize].defaultValue = "10"
		conf.opts[optHttpBindAddress].defaultValue = "192.168.0.10:8080"
		conf.opts[optHttpReadTimeout].defaultValue = "5s"
		conf.opts[optHttpWriteTimeout].defaultValue = "35s"
		conf.opts[optHttpShutdownDelay].defaultValue = "0s"
		conf.opts[optHttpBasicAuthUsername].defaultValue = "username"
		conf.opts[optHttpBasicAuthPassword].defaultValue = "password"
		conf.opts[optHttpCorsAllowedOrigins].defaultValue = "http://a.test, http://b.test,"
		conf.opts[optLogFormat].defaultValue = "console"
		conf.opts[optLogLevel].defaultValue = "debug"
		conf.opts[optPgDatabaseUrl].defaultValue = "postgres://localhost/test"
		conf.opts[optPgTimeout].defaultValue = "10s"

		var o options

		var buffer bytes.Buffer
		assert.Nil(conf.getOptions(&buffer, &o))
		assert.Empty(buffer.String())

		assert.Equal("engine-id", o.common.EngineId)
		assert.Equal(history.HistoryAudit, o.common.HistoryLevel)
		assert.Equal(100, o.common.JobExceptionMessageMaxLength)
		assert.Equal(50, o.common.DefaultQueryLimit)
		assert.True(o.common.CleanupEnabled)
		assert.Equal("0 3 * * *", o.common.CleanupCycle)
		assert.Equal("24h0m0s", o.common.CleanupTimeToLive.String())
		assert.Equal(10, o.common.CleanupBatchSize)

		assert.Equal("192.168.0.10:8080", o.server.BindAddress)
		assert.Equal("5s", o.server.ReadTimeout.String())
		assert.Equal("35s", o.server.WriteTimeout.String())
		assert.Equal("0s", o.server.ShutdownDelay.String())
		assert.Equal("username", o.server.BasicAuthUsername)
		assert.Equal("password", o.server.BasicAuthPassword)
		assert.Equal([]string{"http://a.test", "http://b.test"}, o.server.CorsAllowedOrigins)
		assert.Equal(50, o.server.DefaultQueryLimit)

		assert.Equal(logFormatConsole, o.logFormat)
		assert.Equal(zerolog.DebugLevel, o.logLevel)

		assert.Equal("postgres://localhost/test", o.pgDatabaseUrl)
		assert.Equal("10s", o.pgTimeout.String())
	})

	t.Run("get options when values are invalid", func(t *testing.T) {
		conf := newConf()
		conf.opts[optEngineId].defaultValue = ""
		conf.opts[optHistoryLevel].defaultValue = "invalid-history-level"
		conf.opts[optDefaultQueryLimit].defaultValue = "invalid-default-query-limit"
		conf.opts[optCleanupEnabled].defaultValue = "invalid-cleanup-enabled"
		conf.opts[optCleanupTimeToLive].defaultValue = "invalid-cleanup-time-to-live"
		conf.opts[optHttpBindAddress].defaultValue = ""
		conf.opts[optHttpBasicAuthPassword].defaultValue = ""
		conf.opts[optLogFormat].defaultValue = "xml"
		conf.opts[optLogLevel].defaultValue = "invalid-log-level"

		var buffer bytes.Buffer
		err := conf.getOptions(&buffer, &options{})
		assert.NotNil(err)

		assert.NotNil(conf.opts[optEngineId].err)
		assert.NotNil(conf.opts[optHistoryLevel].err)
		assert.NotNil(conf.opts[optDefaultQueryLimit].err)
		assert.NotNil(conf.opts[optCleanupEnabled].err)
		assert.NotNil(conf.opts[optCleanupTimeToLive].err)
		assert.NotNil(conf.opts[optHttpBindAddress].err)
		assert.NotNil(conf.opts[optHttpBasicAuthPassword].err)
		assert.NotNil(conf.opts[optLogFormat].err)
		assert.NotNil(conf.opts[optLogLevel].err)

		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_ENGINE_ID: is empty\n")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_HISTORY_LEVEL=invalid-history-level: is invalid\n")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_DEFAULT_QUERY_LIMIT=invalid-default-query-limit: ")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_CLEANUP_ENABLED=invalid-cleanup-enabled: ")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_CLEANUP_TIME_TO_LIVE=invalid-cleanup-time-to-live: ")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_HTTP_BIND_ADDRESS: is empty\n")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_HTTP_BASIC_AUTH_PASSWORD: is empty\n")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_LOG_FORMAT=xml: is invalid\n")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_LOG_LEVEL=invalid-log-level: ")
	})

	t.Run("value is set via env", func(t *testing.T) {
		conf := newConf()

		e := env{conf.v}
		assert.Nil(e.Set("GO_BPMN_HISTORY_ENGINE_ID=test-engine"))
		assert.Nil(e.Set("GO_BPMN_HISTORY_HTTP_BASIC_AUTH_USERNAME=a=b"))

		assert.Equal("test-engine", conf.opts[optEngineId].value())
		assert.Equal("a=b", conf.opts[optHttpBasicAuthUsername].value())
	})

	t.Run("env is invalid", func(t *testing.T) {
		conf := newConf()

		e := env{conf.v}
		assert.ErrorContains(e.Set("X"), "required format <key>=<value>")
		assert.ErrorContains(e.Set("ENGINE_ID=test-engine"), "must start with GO_BPMN_HISTORY_")
		assert.ErrorContains(e.Set("GO_BPMN_HISTORY_=x"), "must start with GO_BPMN_HISTORY_")
	})

	t.Run("env overrides environment variable", func(t *testing.T) {
		t.Setenv("GO_BPMN_HISTORY_ENGINE_ID", "env-engine")
		t.Setenv("GO_BPMN_HISTORY_CLEANUP_BATCH_SIZE", "7")

		conf := newConf()
		assert.Nil(env{conf.v}.Set("GO_BPMN_HISTORY_ENGINE_ID=flag-engine"))

		assert.Equal("flag-engine", conf.opts[optEngineId].value())
		assert.Equal("7", conf.opts[optCleanupBatchSize].value())
	})
}

func TestListConf(t *testing.T) {
	assert := assert.New(t)

	t.Run("secret values are masked", func(t *testing.T) {
		conf := newConf()
		conf.opts[optHttpBasicAuthPassword].defaultValue = "password"
		conf.opts[optPgDatabaseUrl].defaultValue = ""

		var buffer bytes.Buffer
		listConf(&buffer, conf)

		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_HTTP_BASIC_AUTH_PASSWORD=***\n")
		assert.Contains(buffer.String(), "GO_BPMN_HISTORY_PG_DATABASE_URL=\n")
		assert.NotContains(buffer.String(), "password")
	})

	t.Run("options are sorted", func(t *testing.T) {
		conf := newConf()

		var buffer bytes.Buffer
		listConfOpts(&buffer, conf)

		lines := bytes.Split(bytes.TrimSpace(buffer.Bytes()), []byte("\n"))
		assert.Len(lines, len(conf.opts))
		assert.True(bytes.HasPrefix(lines[0], []byte("GO_BPMN_HISTORY_CLEANUP_BATCH_SIZE ")))
		assert.True(bytes.HasPrefix(lines[len(lines)-1], []byte("GO_BPMN_HISTORY_PG_TIMEOUT ")))
	})
}

func TestNewLogger(t *testing.T) {
	assert := assert.New(t)

	t.Run("json", func(t *testing.T) {
		o := newOptions()

		var buffer bytes.Buffer
		logger := newLogger(&buffer, o)
		logger.Debug().Msg("debug")
		logger.Info().Str("a", "b").Msg("info")

		assert.NotContains(buffer.String(), `"message":"debug"`)
		assert.Contains(buffer.String(), `"level":"info"`)
		assert.Contains(buffer.String(), `"a":"b"`)
		assert.Contains(buffer.String(), `"message":"info"`)
	})

	t.Run("console", func(t *testing.T) {
		o := newOptions()
		o.logFormat = logFormatConsole
		o.logLevel = zerolog.DebugLevel

		var buffer bytes.Buffer
		logger := newLogger(&buffer, o)
		logger.Debug().Msg("debug")

		assert.Contains(buffer.String(), "debug")
		assert.NotContains(buffer.String(), `"message"`)
	})
}
