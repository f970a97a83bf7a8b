// Package server implements the HTTP API of a history store.
/*
server implements handlers for each historic query, count and delete operation as well as the history cleanup, using the [net/http] package.

Run a Server

A server requires a [history.Store] and a basic auth username and password.

A server is listening on "127.0.0.1:8080".
The TCP bind address, various timeouts and the allowed CORS origins can be configured by customizing the configuration.

	server, err := server.New(store, func(o *server.Options) {
		o.BasicAuthUsername = "history"
		o.BasicAuthPassword = "secret"
		o.Logger = logger
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server")
	}

	server.ListenAndServe()

	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGTERM)

	<-signalC

	server.Shutdown()

Queries

A query endpoint accepts the criteria of a historic query as JSON request body, and the query parameters limit and offset.
If no limit is given, the configured default query limit is applied.
Each count endpoint accepts the same criteria and responds with the number of matching entities.

Metrics

Request durations are exposed via the "/metrics" endpoint, labeled by method, route pattern and status code.
*/
package server
