package daemon

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/pg"
	"github.com/gclaussn/go-bpmn-history/http/server"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "GO_BPMN_HISTORY_"

	optEngineId                     = "ENGINE_ID"
	optHistoryLevel                 = "HISTORY_LEVEL"
	optJobExceptionMessageMaxLength = "JOB_EXCEPTION_MESSAGE_MAX_LENGTH"
	optDefaultQueryLimit            = "DEFAULT_QUERY_LIMIT"

	optCleanupEnabled    = "CLEANUP_ENABLED"
	optCleanupCycle      = "CLEANUP_CYCLE"
	optCleanupTimeToLive = "CLEANUP_TIME_TO_LIVE"
	optCleanupBatchSize  = "CLEANUP_BATCH_SIZE"

	optHttpBindAddress        = "HTTP_BIND_ADDRESS"
	optHttpReadTimeout        = "HTTP_READ_TIMEOUT"
	optHttpWriteTimeout       = "HTTP_WRITE_TIMEOUT"
	optHttpShutdownDelay      = "HTTP_SHUTDOWN_DELAY"
	optHttpBasicAuthUsername  = "HTTP_BASIC_AUTH_USERNAME"
	optHttpBasicAuthPassword  = "HTTP_BASIC_AUTH_PASSWORD"
	optHttpCorsAllowedOrigins = "HTTP_CORS_ALLOWED_ORIGINS"

	optLogFormat = "LOG_FORMAT"
	optLogLevel  = "LOG_LEVEL"

	optPgDatabaseUrl = "PG_DATABASE_URL"
	optPgTimeout     = "PG_TIMEOUT"

	logFormatConsole = "console"
	logFormatJson    = "json"
)

var (
	version = "unknown-version"
)

// options aggregates the options of all components, a daemon is composed of.
type options struct {
	common history.Options
	server server.Options

	logFormat string
	logLevel  zerolog.Level

	pgDatabaseUrl string
	pgTimeout     time.Duration
}

func newOptions() options {
	return options{
		common: history.NewOptions(),
		server: server.NewOptions(),

		logFormat: logFormatJson,
		logLevel:  zerolog.InfoLevel,

		pgTimeout: pg.NewOptions().Timeout,
	}
}

func newConf() *conf {
	v := viper.New()
	v.SetEnvPrefix(strings.TrimSuffix(envPrefix, "_"))
	v.AutomaticEnv()

	conf := conf{
		v:    v,
		opts: make(map[string]*confOpt),
	}

	conf.addOption(
		optEngineId,
		"ID of the engine, recorded as hostname of job logs",
		func(o options) string {
			return o.common.EngineId
		},
		func(o *options, co *confOpt) error {
			engineId := co.value()
			if engineId == "" {
				return errors.New("is empty")
			}

			o.common.EngineId = engineId
			return nil
		},
	)
	conf.addOption(
		optHistoryLevel,
		"granularity of recording: NONE, ACTIVITY, AUDIT or FULL",
		func(o options) string {
			return o.common.HistoryLevel.String()
		},
		func(o *options, co *confOpt) error {
			historyLevel := history.MapHistoryLevel(strings.ToUpper(co.value()))
			if historyLevel == 0 {
				return errors.New("is invalid")
			}

			o.common.HistoryLevel = historyLevel
			return nil
		},
	)
	conf.addOption(
		optJobExceptionMessageMaxLength,
		"maximum length of a job exception message, longer messages are truncated",
		func(o options) string {
			return strconv.Itoa(o.common.JobExceptionMessageMaxLength)
		},
		func(o *options, co *confOpt) error {
			maxLength, err := strconv.ParseInt(co.value(), 10, 32)
			o.common.JobExceptionMessageMaxLength = int(maxLength)
			return err
		},
	)
	conf.addOption(
		optDefaultQueryLimit,
		"limit of a query, when the request specifies none",
		func(o options) string {
			return strconv.Itoa(o.common.DefaultQueryLimit)
		},
		func(o *options, co *confOpt) error {
			defaultQueryLimit, err := strconv.ParseInt(co.value(), 10, 32)
			o.common.DefaultQueryLimit = int(defaultQueryLimit)
			o.server.DefaultQueryLimit = int(defaultQueryLimit)
			return err
		},
	)

	conf.addOption(
		optCleanupEnabled,
		"enable or disable the history cleanup",
		func(o options) string {
			return strconv.FormatBool(o.common.CleanupEnabled)
		},
		func(o *options, co *confOpt) error {
			cleanupEnabled, err := strconv.ParseBool(co.value())
			o.common.CleanupEnabled = cleanupEnabled
			return err
		},
	)
	conf.addOption(
		optCleanupCycle,
		"cron expression, specifying when the history cleanup runs",
		func(o options) string {
			return o.common.CleanupCycle
		},
		func(o *options, co *confOpt) error {
			o.common.CleanupCycle = co.value()
			return nil
		},
	)
	conf.addOption(
		optCleanupTimeToLive,
		"minimum age of ended instances, before they are removed",
		func(o options) string {
			return o.common.CleanupTimeToLive.String()
		},
		func(o *options, co *confOpt) error {
			timeToLive, err := time.ParseDuration(co.value())
			o.common.CleanupTimeToLive = timeToLive
			return err
		},
	)
	conf.addOption(
		optCleanupBatchSize,
		"maximum number of root instances to remove per cleanup run",
		func(o options) string {
			return strconv.Itoa(o.common.CleanupBatchSize)
		},
		func(o *options, co *confOpt) error {
			batchSize, err := strconv.ParseInt(co.value(), 10, 32)
			o.common.CleanupBatchSize = int(batchSize)
			return err
		},
	)

	conf.addOption(
		optHttpBindAddress,
		"TCP address of the HTTP API to listen on",
		func(o options) string {
			return o.server.BindAddress
		},
		func(o *options, co *confOpt) error {
			bindAddress := co.value()
			if bindAddress == "" {
				return errors.New("is empty")
			}

			o.server.BindAddress = bindAddress
			return nil
		},
	)
	conf.addOption(
		optHttpReadTimeout,
		"maximum duration for reading the entire request - see http.Server#ReadTimeout",
		func(o options) string {
			return o.server.ReadTimeout.String()
		},
		func(o *options, co *confOpt) error {
			readTimeout, err := time.ParseDuration(co.value())
			o.server.ReadTimeout = readTimeout
			return err
		},
	)
	conf.addOption(
		optHttpWriteTimeout,
		"maximum duration before timing out writing the response - see http.Server#WriteTimeout",
		func(o options) string {
			return o.server.WriteTimeout.String()
		},
		func(o *options, co *confOpt) error {
			writeTimeout, err := time.ParseDuration(co.value())
			o.server.WriteTimeout = writeTimeout
			return err
		},
	)
	conf.addOption(
		optHttpShutdownDelay,
		"delay between the shutdown signal and the actual shutdown",
		func(o options) string {
			return o.server.ShutdownDelay.String()
		},
		func(o *options, co *confOpt) error {
			shutdownDelay, err := time.ParseDuration(co.value())
			o.server.ShutdownDelay = shutdownDelay
			return err
		},
	)
	basicAuthUsername := conf.addOption(
		optHttpBasicAuthUsername,
		"username, required to access the HTTP API",
		func(o options) string {
			return o.server.BasicAuthUsername
		},
		func(o *options, co *confOpt) error {
			username := co.value()
			if username == "" {
				return errors.New("is empty")
			}

			o.server.BasicAuthUsername = username
			return nil
		},
	)
	basicAuthUsername.required = true
	basicAuthPassword := conf.addOption(
		optHttpBasicAuthPassword,
		"password, required to access the HTTP API",
		func(o options) string {
			return o.server.BasicAuthPassword
		},
		func(o *options, co *confOpt) error {
			password := co.value()
			if password == "" {
				return errors.New("is empty")
			}

			o.server.BasicAuthPassword = password
			return nil
		},
	)
	basicAuthPassword.required = true
	basicAuthPassword.secret = true
	conf.addOption(
		optHttpCorsAllowedOrigins,
		"comma-separated list of origins, allowed to make cross-origin requests",
		func(o options) string {
			return strings.Join(o.server.CorsAllowedOrigins, ",")
		},
		func(o *options, co *confOpt) error {
			var origins []string
			for _, origin := range strings.Split(co.value(), ",") {
				if origin = strings.TrimSpace(origin); origin != "" {
					origins = append(origins, origin)
				}
			}

			o.server.CorsAllowedOrigins = origins
			return nil
		},
	)

	conf.addOption(
		optLogFormat,
		"format of log messages: json or console",
		func(o options) string {
			return o.logFormat
		},
		func(o *options, co *confOpt) error {
			logFormat := co.value()
			if logFormat != logFormatJson && logFormat != logFormatConsole {
				return errors.New("is invalid")
			}

			o.logFormat = logFormat
			return nil
		},
	)
	conf.addOption(
		optLogLevel,
		"minimum level of log messages: debug, info, warn or error",
		func(o options) string {
			return o.logLevel.String()
		},
		func(o *options, co *confOpt) error {
			logLevel, err := zerolog.ParseLevel(co.value())
			o.logLevel = logLevel
			return err
		},
	)

	pgDatabaseUrl := conf.addOption(
		optPgDatabaseUrl,
		"pg only, format: postgres://<username>:<password>@<host>:<port>/<database>?search_path=<schema>",
		func(o options) string {
			return o.pgDatabaseUrl
		},
		func(o *options, co *confOpt) error {
			o.pgDatabaseUrl = co.value()
			return nil
		},
	)
	pgDatabaseUrl.secret = true
	conf.addOption(
		optPgTimeout,
		"pg only, time limit for database transactions",
		func(o options) string {
			return o.pgTimeout.String()
		},
		func(o *options, co *confOpt) error {
			pgTimeout, err := time.ParseDuration(co.value())
			o.pgTimeout = pgTimeout
			return err
		},
	)

	conf.setOptions(newOptions())
	return &conf
}

// newLogger creates the logger of a daemon, which writes JSON or, if configured, human-readable console output.
func newLogger(w io.Writer, o options) zerolog.Logger {
	if o.logFormat == logFormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(o.logLevel).With().Timestamp().Logger()
}

func listConf(w io.Writer, conf *conf) {
	for _, opt := range conf.sortedOpts() {
		value := opt.value()
		if opt.secret && value != "" {
			value = "***"
		}
		fmt.Fprintf(w, "%s=%s\n", opt.key, value)
	}
}

func listConfErrors(w io.Writer, conf *conf) error {
	var n int
	for _, opt := range conf.sortedOpts() {
		if opt.err == nil {
			continue
		}

		n++

		value := opt.value()
		if value == "" || opt.secret {
			fmt.Fprintf(w, "%s: %v\n", opt.key, opt.err)
		} else {
			fmt.Fprintf(w, "%s=%s: %v\n", opt.key, value, opt.err)
		}
	}

	if n != 0 {
		return fmt.Errorf("invalid configuration: %d option(s) with errors", n)
	}
	return nil
}

func listConfOpts(w io.Writer, conf *conf) {
	opts := conf.sortedOpts()

	maxKeyLength := 0
	for _, opt := range opts {
		keyLength := len(opt.key)
		if opt.required {
			keyLength++
		}

		if keyLength > maxKeyLength {
			maxKeyLength = keyLength
		}
	}

	var sb strings.Builder
	for _, opt := range opts {
		sb.WriteString(opt.key)

		l := len(opt.key)
		if opt.required {
			sb.WriteRune('*')
			l++
		}

		sb.WriteString(strings.Repeat(" ", maxKeyLength-l))
		sb.WriteString("   ")
		sb.WriteString(opt.description)

		if opt.defaultValue != "" {
			sb.WriteString(fmt.Sprintf(" - default: %s", opt.defaultValue))
		}

		sb.WriteRune('\n')
	}

	io.WriteString(w, sb.String())
}

// conf is the configuration of a daemon. Option values are resolved via viper, which considers values set via flag,
// environment variables and an optional configuration file - in this order.
type conf struct {
	v    *viper.Viper
	opts map[string]*confOpt
}

func (c *conf) addOption(
	key string,
	description string,
	getOption func(options) string,
	setOption func(*options, *confOpt) error,
) *confOpt {
	co := confOpt{
		v:           c.v,
		key:         envPrefix + key,
		name:        strings.ToLower(key),
		description: description,

		getOption: getOption,
		setOption: setOption,
	}

	c.opts[key] = &co
	return &co
}

// getOptions sets the configured values. Options with invalid values are listed to w.
func (c *conf) getOptions(w io.Writer, o *options) error {
	for _, opt := range c.opts {
		if err := opt.setOption(o, opt); err != nil {
			opt.err = err
		}
	}
	return listConfErrors(w, c)
}

func (c *conf) readInConfig(configFile string) error {
	if configFile == "" {
		return nil
	}

	c.v.SetConfigFile(configFile)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %v", configFile, err)
	}
	return nil
}

// setOptions sets the default values.
func (c *conf) setOptions(o options) {
	for _, opt := range c.opts {
		opt.defaultValue = opt.getOption(o)
	}
}

func (c *conf) sortedOpts() []*confOpt {
	opts := make([]*confOpt, 0, len(c.opts))
	for _, opt := range c.opts {
		opts = append(opts, opt)
	}

	slices.SortFunc(opts, func(a *confOpt, b *confOpt) int {
		return strings.Compare(a.key, b.key)
	})

	return opts
}

type confOpt struct {
	v *viper.Viper

	key          string // environment variable
	name         string // key within viper and a configuration file
	description  string
	required     bool
	secret       bool // value must not be listed
	defaultValue string

	getOption func(options) string
	setOption func(*options, *confOpt) error

	err error
}

func (o *confOpt) value() string {
	value := o.v.GetString(o.name)
	if value != "" {
		return value
	} else {
		return o.defaultValue
	}
}

var _ pflag.Value = env{}

// env is a flag value, which sets configuration options in environment variable notation.
type env struct {
	v *viper.Viper
}

func (e env) Set(value string) error {
	key, v, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("required format %s", e.Type())
	}

	name, ok := strings.CutPrefix(key, envPrefix)
	if !ok || name == "" {
		return fmt.Errorf("key %q must start with %s", key, envPrefix)
	}

	e.v.Set(strings.ToLower(name), v)
	return nil
}

func (e env) String() string {
	return ""
}

func (e env) Type() string {
	return "<key>=<value>"
}
