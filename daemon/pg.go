package daemon

import (
	"errors"
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history/pg"
	"github.com/spf13/cobra"
)

func newPgCommand(conf *conf) *cobra.Command {
	return &cobra.Command{
		Use:   "pg",
		Short: "Run a PostgreSQL history store",
		Long:  "Run a PostgreSQL history store, accessible via HTTP. The database schema is migrated on startup.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPg(cmd, conf)
		},
	}
}

func runPg(cmd *cobra.Command, conf *conf) error {
	pgDatabaseUrl := conf.opts[optPgDatabaseUrl]
	if pgDatabaseUrl.value() == "" {
		pgDatabaseUrl.err = errors.New("is empty")
	}

	o := newOptions()
	if err := conf.getOptions(cmd.ErrOrStderr(), &o); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), o)

	storeStartTime := time.Now()

	store, err := pg.New(o.pgDatabaseUrl, func(po *pg.Options) {
		po.Common = o.common
		po.Common.OnCleanupFailure = onCleanupFailure(logger)
		po.Timeout = o.pgTimeout
	})
	if err != nil {
		return fmt.Errorf("failed to create pg store: %v", err)
	}

	logger.Info().
		Int64("startupMillis", time.Since(storeStartTime).Milliseconds()).
		Str("historyLevel", o.common.HistoryLevel.String()).
		Msg("pg store started")

	return serve(cmd.Context(), store, o, logger)
}
