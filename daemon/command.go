package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewCommand creates the root command of the history daemon, which runs a history store with an in-memory or a
// PostgreSQL backend, accessible via HTTP.
func NewCommand() *cobra.Command {
	conf := newConf()

	var configFile string

	cmd := &cobra.Command{
		Use:   "go-bpmn-historyd",
		Short: "Historic execution audit store, accessible via HTTP",

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return conf.readInConfig(configFile)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "read in a configuration file (JSON, TOML or YAML), using lower case option names as keys")
	flags.VarP(env{conf.v}, "env", "e", "set a configuration option")

	cmd.AddCommand(
		newListConfCommand(conf),
		newMemCommand(conf),
		newPgCommand(conf),
		newVersionCommand(),
	)

	return cmd
}

func newListConfCommand(conf *conf) *cobra.Command {
	var opts bool

	cmd := &cobra.Command{
		Use:   "list-conf",
		Short: "List configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if opts {
				listConfOpts(cmd.OutOrStdout(), conf)
			} else {
				listConf(cmd.OutOrStdout(), conf)
			}
		},
	}

	cmd.Flags().BoolVar(&opts, "opts", false, "list configuration options, required options are marked with *")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// onCleanupFailure returns a function, which logs failed history cleanups.
func onCleanupFailure(logger zerolog.Logger) func(error) {
	return func(err error) {
		logger.Error().Err(err).Msg("failed to cleanup history")
	}
}

// serve runs the HTTP server until ctx is done or an interrupt or termination signal is received.
func serve(ctx context.Context, store history.Store, o options, logger zerolog.Logger) error {
	s, err := server.New(store, func(so *server.Options) {
		*so = o.server
		so.Logger = logger
	})
	if err != nil {
		store.Shutdown()
		return fmt.Errorf("failed to create HTTP server: %v", err)
	}

	s.ListenAndServe()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	s.Shutdown()
	return nil
}
