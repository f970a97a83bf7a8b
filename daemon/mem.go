package daemon

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-history/history/mem"
	"github.com/spf13/cobra"
)

func newMemCommand(conf *conf) *cobra.Command {
	return &cobra.Command{
		Use:   "mem",
		Short: "Run an in-memory history store",
		Long:  "Run an in-memory history store, accessible via HTTP. Recorded history is lost on shutdown.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMem(cmd, conf)
		},
	}
}

func runMem(cmd *cobra.Command, conf *conf) error {
	o := newOptions()
	if err := conf.getOptions(cmd.ErrOrStderr(), &o); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), o)

	storeStartTime := time.Now()

	store, err := mem.New(func(mo *mem.Options) {
		mo.Common = o.common
		mo.Common.OnCleanupFailure = onCleanupFailure(logger)
	})
	if err != nil {
		return fmt.Errorf("failed to create mem store: %v", err)
	}

	logger.Info().
		Int64("startupMillis", time.Since(storeStartTime).Milliseconds()).
		Str("historyLevel", o.common.HistoryLevel.String()).
		Msg("mem store started")

	return serve(cmd.Context(), store, o, logger)
}
