/*
go-bpmn-historyd is a daemon, running a historic execution audit store that is accessible via HTTP.

Usage:

	go-bpmn-historyd [command]

Available Commands:

	list-conf   List configuration
	mem         Run an in-memory history store
	pg          Run a PostgreSQL history store
	version     Show version

Flags:

	-c, --config string           read in a configuration file (JSON, TOML or YAML), using lower case option names as keys
	-e, --env <key>=<value>       set a configuration option

Configuration options are read from environment variables, prefixed with GO_BPMN_HISTORY_.
Run "go-bpmn-historyd list-conf --opts" to list all options.
*/
package main

import (
	"os"

	"github.com/gclaussn/go-bpmn-history/daemon"
)

func main() {
	if err := daemon.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
