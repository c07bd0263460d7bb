package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	serversDocumentPathContextKeyConstant   = commandContextKey("serversDocumentPath")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the application configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the application configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.stringValue(executionContext, configurationFilePathContextKeyConstant)
}

// WithServersDocumentPath attaches the server-configuration document path to the provided context.
func (accessor CommandContextAccessor) WithServersDocumentPath(parentContext context.Context, documentPath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, serversDocumentPathContextKeyConstant, documentPath)
}

// ServersDocumentPath extracts the server-configuration document path from the provided context.
func (accessor CommandContextAccessor) ServersDocumentPath(executionContext context.Context) (string, bool) {
	return accessor.stringValue(executionContext, serversDocumentPathContextKeyConstant)
}

func (accessor CommandContextAccessor) stringValue(executionContext context.Context, contextKey commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedValue, valueAvailable := executionContext.Value(contextKey).(string)
	if !valueAvailable {
		return "", false
	}
	return storedValue, true
}
