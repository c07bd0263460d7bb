package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/serverops/srvcfg/internal/serverconfig"
)

const (
	healthRoutePathConstant = "/health"
	echoRoutePathConstant   = "/echo"

	healthStatusFieldConstant = "status"
	healthStatusValueConstant = "healthy"
	echoFieldNameConstant     = "echo"
	echoDataFieldConstant     = "data"

	addressTemplateConstant = "%s:%d"

	incompleteConfigurationMessageConstant = "resolved configuration is missing required fields"
	invalidRequestBodyMessageConstant      = "request body is not a JSON object"
	serverFailureTemplateConstant          = "server error: %w"

	shutdownGracePeriodConstant = 10 * time.Second

	serverStartingMessageConstant     = "starting server"
	serverShuttingDownMessageConstant = "shutting down server"
	serverStoppedMessageConstant      = "server stopped"
	middlewareSkippedMessageConstant  = "skipping unknown middleware"
	middlewareAddedMessageConstant    = "registered middleware"
	logFieldAddressConstant           = "address"
	logFieldMiddlewareNameConstant    = "middleware_name"
	logFieldTLSEnabledConstant        = "tls_enabled"
)

// ErrIncompleteConfiguration indicates the resolved configuration lacks one of
// the options the runtime needs to listen.
var ErrIncompleteConfiguration = errors.New(incompleteConfigurationMessageConstant)

// Runtime serves HTTP traffic according to one resolved server configuration.
type Runtime struct {
	configuration serverconfig.ResolvedConfig
	logger        *zap.Logger
	router        chi.Router
	address       string
}

// NewRuntime builds a runtime from the resolved configuration: listen address
// from host and port, request throttling from workers, read/write timeouts
// from timeout, and router middleware from the configured middleware entries.
func NewRuntime(resolved serverconfig.ResolvedConfig, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if resolved.Host == nil || resolved.Port == nil || resolved.Workers == nil || resolved.Timeout == nil {
		return nil, ErrIncompleteConfiguration
	}

	runtime := &Runtime{
		configuration: resolved,
		logger:        logger,
		address:       fmt.Sprintf(addressTemplateConstant, *resolved.Host, *resolved.Port),
	}

	router, routerError := runtime.buildRouter()
	if routerError != nil {
		return nil, routerError
	}
	runtime.router = router

	return runtime, nil
}

// Address reports the host:port the runtime listens on.
func (runtime *Runtime) Address() string {
	return runtime.address
}

// Handler exposes the configured router.
func (runtime *Runtime) Handler() http.Handler {
	return runtime.router
}

func (runtime *Runtime) buildRouter() (chi.Router, error) {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Throttle(*runtime.configuration.Workers))

	var configuredMetrics *metricsMiddleware

	for _, middlewareEntry := range runtime.configuration.Middleware {
		switch middlewareEntry.Name {
		case securityMiddlewareNameConstant:
			security, securityError := newSecurityMiddleware(middlewareEntry.Options)
			if securityError != nil {
				return nil, securityError
			}
			router.Use(security.handler)
		case metricsMiddlewareNameConstant:
			metrics, metricsError := newMetricsMiddleware(middlewareEntry.Options)
			if metricsError != nil {
				return nil, metricsError
			}
			router.Use(metrics.handler)
			configuredMetrics = metrics
		default:
			runtime.logger.Warn(middlewareSkippedMessageConstant, zap.String(logFieldMiddlewareNameConstant, middlewareEntry.Name))
			continue
		}

		runtime.logger.Info(middlewareAddedMessageConstant, zap.String(logFieldMiddlewareNameConstant, middlewareEntry.Name))
	}

	router.Get(healthRoutePathConstant, handleHealth)
	router.Post(echoRoutePathConstant, handleEcho)

	if configuredMetrics != nil {
		router.Get(configuredMetrics.options.MetricsPath, configuredMetrics.serveSnapshot)
	}

	return router, nil
}

// Run serves until the context is canceled, then shuts down gracefully. TLS is
// used when the configuration enables SSL and provides certificate paths.
func (runtime *Runtime) Run(executionContext context.Context) error {
	timeout := time.Duration(*runtime.configuration.Timeout) * time.Second
	server := &http.Server{
		Addr:         runtime.address,
		Handler:      runtime.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	tlsEnabled := runtime.tlsEnabled()
	runtime.logger.Info(
		serverStartingMessageConstant,
		zap.String(logFieldAddressConstant, runtime.address),
		zap.Bool(logFieldTLSEnabledConstant, tlsEnabled),
	)

	serverFailures := make(chan error, 1)
	go func() {
		var listenError error
		if tlsEnabled {
			listenError = server.ListenAndServeTLS(*runtime.configuration.SSLCert, *runtime.configuration.SSLKey)
		} else {
			listenError = server.ListenAndServe()
		}
		if listenError != nil && !errors.Is(listenError, http.ErrServerClosed) {
			serverFailures <- listenError
		}
	}()

	select {
	case <-executionContext.Done():
		runtime.logger.Info(serverShuttingDownMessageConstant, zap.String(logFieldAddressConstant, runtime.address))

		shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), shutdownGracePeriodConstant)
		defer cancelShutdown()

		if shutdownError := server.Shutdown(shutdownContext); shutdownError != nil {
			return shutdownError
		}

		runtime.logger.Info(serverStoppedMessageConstant, zap.String(logFieldAddressConstant, runtime.address))
		return nil
	case listenError := <-serverFailures:
		return fmt.Errorf(serverFailureTemplateConstant, listenError)
	}
}

func (runtime *Runtime) tlsEnabled() bool {
	return runtime.configuration.SSLEnabled != nil && *runtime.configuration.SSLEnabled &&
		runtime.configuration.SSLCert != nil && runtime.configuration.SSLKey != nil
}

func handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	respondJSON(responseWriter, http.StatusOK, map[string]any{healthStatusFieldConstant: healthStatusValueConstant})
}

// handleEcho returns the "data" member of the request's JSON object, or an
// empty object when the member is absent.
func handleEcho(responseWriter http.ResponseWriter, request *http.Request) {
	requestPayload := map[string]any{}
	decoder := json.NewDecoder(request.Body)
	if decodeError := decoder.Decode(&requestPayload); decodeError != nil {
		respondJSON(responseWriter, http.StatusBadRequest, map[string]any{errorFieldNameConstant: invalidRequestBodyMessageConstant})
		return
	}

	echoedData, dataPresent := requestPayload[echoDataFieldConstant]
	if !dataPresent {
		echoedData = map[string]any{}
	}

	respondJSON(responseWriter, http.StatusOK, map[string]any{echoFieldNameConstant: echoedData})
}
