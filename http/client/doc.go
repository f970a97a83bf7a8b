// Package client is used to read the history of a remote store via HTTP.
/*
client provides a full implementation of the [history.Service] interface. Recording is not supported remotely.

Create a Client

A client requires the base URL of a HTTP server and an authorization string, using basic authentication.

	client, err := client.New("http://localhost:8080", "Basic aGlzdG9yeTpzZWNyZXQ=")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP client")
	}

	defer client.Shutdown()

	processInstances, err := client.CreateHistoricProcessInstanceQuery().Finished().List(ctx)

Queries without a limit are executed with the default query limit of the server.
Since values are transferred as JSON, the number value of a JSON or object variable is returned as float64.
*/
package client
