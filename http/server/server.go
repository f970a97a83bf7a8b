package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/common"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(store history.Store, customizers ...func(*Options)) (*Server, error) {
	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	var handler http.Handler = &basicAuthHandler{
		username: options.BasicAuthUsername,
		password: options.BasicAuthPassword,
		handler:  mux,
	}

	if len(options.CorsAllowedOrigins) != 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   options.CorsAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders:   []string{common.HeaderAuthorization, common.HeaderContentType},
			AllowCredentials: true,
		}).Handler(handler)
	}

	handler = &loggingHandler{
		logger:  options.Logger,
		handler: handler,
	}

	// server-wide context for incoming requests
	httpServerCtx, httpServerCancel := context.WithCancel(context.Background())

	httpServer := http.Server{
		Addr: options.BindAddress,
		BaseContext: func(_ net.Listener) context.Context {
			return httpServerCtx
		},
		Handler:      http.TimeoutHandler(handler, options.HandlerTimeout, "handler timed out"),
		IdleTimeout:  options.IdleTimeout,
		ReadTimeout:  options.ReadTimeout,
		WriteTimeout: options.WriteTimeout,
	}

	if options.Configure != nil {
		options.Configure(&httpServer)
	}

	server := Server{
		store:            store,
		httpServer:       &httpServer,
		httpServerCtx:    httpServerCtx,
		httpServerCancel: httpServerCancel,
		options:          options,
	}

	// operations:start
	mux.HandleFunc("POST "+common.PathHistoricActivityInstancesCount, handleCount[history.HistoricActivityInstanceCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricActivityInstancesQuery, handleQuery[history.HistoricActivityInstanceCriteria](&server))

	mux.HandleFunc("POST "+common.PathHistoricActivityStatisticsCount, handleCount[history.HistoricActivityStatisticsCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricActivityStatisticsQuery, handleQuery[history.HistoricActivityStatisticsCriteria](&server))

	mux.HandleFunc("DELETE "+common.PathHistoricCaseInstances, server.deleteHistoricCaseInstance)
	mux.HandleFunc("POST "+common.PathHistoricCaseInstancesCount, handleCount[history.HistoricCaseInstanceCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricCaseInstancesQuery, handleQuery[history.HistoricCaseInstanceCriteria](&server))

	mux.HandleFunc("POST "+common.PathHistoricDetailsCount, handleCount[history.HistoricDetailCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricDetailsQuery, handleQuery[history.HistoricDetailCriteria](&server))

	mux.HandleFunc("POST "+common.PathHistoricIncidentsCount, handleCount[history.HistoricIncidentCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricIncidentsQuery, handleQuery[history.HistoricIncidentCriteria](&server))

	mux.HandleFunc("POST "+common.PathHistoricJobLogsCount, handleCount[history.HistoricJobLogCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricJobLogsQuery, handleQuery[history.HistoricJobLogCriteria](&server))
	mux.HandleFunc("GET "+common.PathHistoricJobLogsStacktrace, server.getHistoricJobLogExceptionStacktrace)

	mux.HandleFunc("DELETE "+common.PathHistoricProcessInstances, server.deleteHistoricProcessInstance)
	mux.HandleFunc("POST "+common.PathHistoricProcessInstancesCount, handleCount[history.HistoricProcessInstanceCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricProcessInstancesQuery, handleQuery[history.HistoricProcessInstanceCriteria](&server))

	mux.HandleFunc("DELETE "+common.PathHistoricTaskInstances, server.deleteHistoricTaskInstance)
	mux.HandleFunc("POST "+common.PathHistoricTaskInstancesCount, handleCount[history.HistoricTaskInstanceCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricTaskInstancesQuery, handleQuery[history.HistoricTaskInstanceCriteria](&server))

	mux.HandleFunc("DELETE "+common.PathHistoricVariableInstances, server.deleteHistoricVariableInstance)
	mux.HandleFunc("POST "+common.PathHistoricVariableInstancesCount, handleCount[history.HistoricVariableInstanceCriteria](&server))
	mux.HandleFunc("POST "+common.PathHistoricVariableInstancesQuery, handleQuery[history.HistoricVariableInstanceCriteria](&server))

	mux.HandleFunc("POST "+common.PathHistoryCleanup, server.cleanupHistory)

	mux.Handle("GET "+common.PathMetrics, promhttp.Handler())
	mux.HandleFunc("GET "+common.PathReadiness, server.checkReadiness)
	// operations:end

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return &server, nil
}

func NewOptions() Options {
	return Options{
		BindAddress: "127.0.0.1:8080",

		HandlerTimeout: 30 * time.Second,
		IdleTimeout:    60 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   35 * time.Second,

		ShutdownDelay:       5 * time.Second,
		ShutdownPeriod:      30 * time.Second,
		ShutdownForcePeriod: 5 * time.Second,

		DefaultQueryLimit: history.NewOptions().DefaultQueryLimit,
		Logger:            zerolog.Nop(),
	}
}

type Options struct {
	BindAddress string // TCP address for the server to listen on.

	HandlerTimeout time.Duration // Time limit for HTTP handler - when reached, the handler responds with HTTP 503.
	IdleTimeout    time.Duration // Maximum amount of time to wait for the next request, when keep-alives are enabled - see http.Server#IdleTimeout
	ReadTimeout    time.Duration // Maximum duration for reading the entire request - see http.Server#ReadTimeout
	WriteTimeout   time.Duration // Maximum duration before timing out writing the response - see http.Server#WriteTimeout

	ShutdownDelay       time.Duration // Delay between the shutdown signal and the actual shutdown, used to propagate readiness.
	ShutdownPeriod      time.Duration // Period for a graceful shutdown without interrupting ongoing requests.
	ShutdownForcePeriod time.Duration // Period for a forced shutdown, where ongoing requests are canceled.

	BasicAuthUsername string
	BasicAuthPassword string

	CorsAllowedOrigins []string // Origins, allowed to make cross-origin requests. If empty, CORS is disabled.

	DefaultQueryLimit int // Limit of a query, when the request specifies none.

	Logger zerolog.Logger // Logger, used for request logging.

	Configure func(*http.Server) // Optional function, used to configure the underlying HTTP server if needed.
}

func (o Options) Validate() error {
	if o.BasicAuthUsername == "" || o.BasicAuthPassword == "" {
		return errors.New("basic auth username and password must be provided")
	}
	if o.DefaultQueryLimit < 1 {
		return errors.New("default query limit must be greater than or equal to 1")
	}

	return nil
}

type Server struct {
	store            history.Store
	httpServer       *http.Server
	httpServerCtx    context.Context    // server-wide base context for incoming requests
	httpServerCancel context.CancelFunc // invoked after server shutdown to cancel to ongoing requests
	isShuttingDown   atomic.Bool
	options          Options
}

// Handler returns the server's root handler, including authentication, logging and the handler timeout.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() {
	logger := s.options.Logger

	go func() {
		logger.Info().Str("address", s.httpServer.Addr).Msg("server listening")
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to listen and serve HTTP")
		}
	}()
}

// Shutdown shuts the HTTP server down gracefully and finally the underlying store.
func (s *Server) Shutdown() {
	logger := s.options.Logger

	s.isShuttingDown.Store(true)
	logger.Info().Msg("server is shutting down")

	time.Sleep(s.options.ShutdownDelay)
	logger.Info().Msg("server is shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.options.ShutdownPeriod)
	defer shutdownCancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.httpServerCancel()
	if err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
		time.Sleep(s.options.ShutdownForcePeriod)
	}

	s.store.Shutdown()
	logger.Info().Msg("server shut down")
}

// command handler

func (s *Server) cleanupHistory(w http.ResponseWriter, r *http.Request) {
	var cmd history.CleanupHistoryCmd
	if err := decodeJSONRequestBody(w, r, &cmd); err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	count, err := s.store.CleanupHistory(r.Context(), cmd)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	encodeJSONResponseBody(w, r, common.CountRes{Count: count}, http.StatusOK)
}

func (s *Server) deleteHistoricCaseInstance(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	if err := s.store.DeleteHistoricCaseInstance(r.Context(), id); err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteHistoricProcessInstance(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	ifExists, err := parseIfExists(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	if err := s.store.DeleteHistoricProcessInstance(r.Context(), history.DeleteHistoricProcessInstanceCmd{
		Id:       id,
		IfExists: ifExists,
	}); err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteHistoricTaskInstance(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	if err := s.store.DeleteHistoricTaskInstance(r.Context(), id); err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteHistoricVariableInstance(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	if err := s.store.DeleteHistoricVariableInstance(r.Context(), id); err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getHistoricJobLogExceptionStacktrace(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	stacktrace, err := s.store.GetHistoricJobLogExceptionStacktrace(r.Context(), id)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, err)
		return
	}

	encodeTextResponseBody(w, r, stacktrace)
}

// query handler

// handleCount returns a handler, which decodes criteria of type C and counts the matching entities.
func handleCount[C any](s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var criteria C
		if err := decodeJSONRequestBody(w, r, &criteria); err != nil {
			encodeJSONProblemResponseBody(w, r, err)
			return
		}

		count, err := s.store.Count(r.Context(), criteria)
		if err != nil {
			encodeJSONProblemResponseBody(w, r, err)
			return
		}

		encodeJSONResponseBody(w, r, common.CountRes{Count: count}, http.StatusOK)
	}
}

// handleQuery returns a handler, which decodes criteria of type C and queries the matching entities.
func handleQuery[C any](s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := parseQueryOptions(r, s.options.DefaultQueryLimit)
		if err != nil {
			encodeJSONProblemResponseBody(w, r, err)
			return
		}

		var criteria C
		if err := decodeJSONRequestBody(w, r, &criteria); err != nil {
			encodeJSONProblemResponseBody(w, r, err)
			return
		}

		results, err := s.store.Query(r.Context(), criteria, options)
		if err != nil {
			encodeJSONProblemResponseBody(w, r, err)
			return
		}

		if results == nil {
			results = []any{}
		}

		resBody := common.QueryRes[any]{
			Count:   len(results),
			Results: results,
		}

		encodeJSONResponseBody(w, r, resBody, http.StatusOK)
	}
}

// management

func (s *Server) checkReadiness(w http.ResponseWriter, r *http.Request) {
	if s.isShuttingDown.Load() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ready"))
}
