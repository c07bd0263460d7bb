package serverconfig

import (
	"sort"

	"go.uber.org/zap"
)

const (
	documentReloadedMessageConstant = "reloaded server configuration"
	configResolvedMessageConstant   = "resolved server configuration"
	logFieldEnvironmentConstant     = "environment"
	logFieldServerConstant          = "server"
)

// Manager resolves and validates server configurations against a document
// loaded once at construction. Callers needing fresh data invoke Reload or
// construct a new manager.
type Manager struct {
	store    *Store
	document Document
	logger   *zap.Logger
}

// NewManager loads the document through the provided store and returns a
// manager bound to the parsed result.
func NewManager(store *Store, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	document, loadError := store.Load()
	if loadError != nil {
		return nil, loadError
	}

	return &Manager{store: store, document: document, logger: logger}, nil
}

// DocumentPath reports the path of the backing document.
func (manager *Manager) DocumentPath() string {
	return manager.store.Path()
}

// Document returns the parsed document the manager resolves against.
func (manager *Manager) Document() Document {
	return manager.document
}

// Reload re-reads the backing document, replacing the in-memory copy.
func (manager *Manager) Reload() error {
	document, loadError := manager.store.Load()
	if loadError != nil {
		return loadError
	}

	manager.document = document
	manager.logger.Info(documentReloadedMessageConstant, zap.String(logFieldDocumentPathConstant, manager.store.Path()))

	return nil
}

// Environments lists the declared environment names in sorted order.
func (manager *Manager) Environments() []string {
	environmentNames := make([]string, 0, len(manager.document.Environments))
	for environmentName := range manager.document.Environments {
		environmentNames = append(environmentNames, environmentName)
	}
	sort.Strings(environmentNames)
	return environmentNames
}

// Servers returns the raw server override sections declared for the
// environment, keyed by server name.
func (manager *Manager) Servers(environmentName string) (map[string]OptionSet, error) {
	environment, environmentExists := manager.document.Environments[environmentName]
	if !environmentExists {
		return nil, UnknownEnvironmentError{Environment: environmentName}
	}
	return environment.Servers, nil
}

// ServerNames lists the declared server names for the environment in sorted order.
func (manager *Manager) ServerNames(environmentName string) ([]string, error) {
	servers, serversError := manager.Servers(environmentName)
	if serversError != nil {
		return nil, serversError
	}

	serverNames := make([]string, 0, len(servers))
	for serverName := range servers {
		serverNames = append(serverNames, serverName)
	}
	sort.Strings(serverNames)
	return serverNames, nil
}

// ResolveServerConfig merges the document defaults with the named server's
// override section. Override values win; nested lists and mappings replace the
// default value wholesale.
func (manager *Manager) ResolveServerConfig(environmentName string, serverName string) (ResolvedConfig, error) {
	servers, serversError := manager.Servers(environmentName)
	if serversError != nil {
		return ResolvedConfig{}, serversError
	}

	serverOverrides, serverExists := servers[serverName]
	if !serverExists {
		return ResolvedConfig{}, UnknownServerError{Environment: environmentName, Server: serverName}
	}

	resolved := applyOverrides(manager.document.Default, serverOverrides)

	manager.logger.Debug(
		configResolvedMessageConstant,
		zap.String(logFieldEnvironmentConstant, environmentName),
		zap.String(logFieldServerConstant, serverName),
	)

	return resolved, nil
}

// ValidateServerConfig resolves the named configuration and reports its
// validation errors. Lookup failures are reported as a single-element list
// instead of an error so validation never raises.
func (manager *Manager) ValidateServerConfig(environmentName string, serverName string) []string {
	resolved, resolutionError := manager.ResolveServerConfig(environmentName, serverName)
	if resolutionError != nil {
		return []string{resolutionError.Error()}
	}

	return ValidateResolvedConfig(resolved)
}

// Save persists the provided document through the backing store. The
// in-memory document is left untouched; call Reload to pick up the saved
// content.
func (manager *Manager) Save(document Document, backup bool) error {
	return manager.store.Save(document, backup)
}
