package httpserver

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/serverops/srvcfg/internal/serverconfig"
	pathutils "github.com/serverops/srvcfg/internal/utils/path"
)

const (
	serveCommandUseConstant   = "serve <environment> [server]"
	serveCommandShortConstant = "Resolve a server configuration and serve HTTP traffic with it"
	serveCommandLongConstant  = "serve resolves the configuration for the named environment and server, refuses to start when validation errors exist, and runs an HTTP server until interrupted."

	validationFailureHeaderTemplateConstant = "Validation errors for server '%s' in environment '%s':"
	validationFailureItemTemplateConstant   = "  - %s\n"

	minimumServeArgumentCountConstant = 1
	maximumServeArgumentCountConstant = 2
)

// CommandBuilder assembles the serve command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        serverconfig.LoggerProvider
	ConfigurationProvider serverconfig.ConfigurationProvider
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the serve cobra command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   serveCommandUseConstant,
		Short: serveCommandShortConstant,
		Long:  serveCommandLongConstant,
		Args:  cobra.RangeArgs(minimumServeArgumentCountConstant, maximumServeArgumentCountConstant),
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	environmentName := arguments[0]
	serverName := configuration.DefaultServer
	if len(arguments) > minimumServeArgumentCountConstant {
		serverName = arguments[1]
	}

	documentPath := configuration.Path
	if builder.HomeExpander != nil {
		documentPath = builder.HomeExpander.Expand(documentPath)
	}

	manager, managerError := serverconfig.NewManager(serverconfig.NewStore(documentPath, logger), logger)
	if managerError != nil {
		return managerError
	}

	validationErrors := manager.ValidateServerConfig(environmentName, serverName)
	if len(validationErrors) > 0 {
		fmt.Fprintf(command.OutOrStdout(), validationFailureHeaderTemplateConstant+"\n", serverName, environmentName)
		for _, validationError := range validationErrors {
			fmt.Fprintf(command.OutOrStdout(), validationFailureItemTemplateConstant, validationError)
		}
		return serverconfig.ErrValidationFailed
	}

	resolved, resolutionError := manager.ResolveServerConfig(environmentName, serverName)
	if resolutionError != nil {
		return resolutionError
	}

	runtime, runtimeError := NewRuntime(resolved, logger)
	if runtimeError != nil {
		return runtimeError
	}

	return runtime.Run(command.Context())
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() serverconfig.CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return serverconfig.DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitized()
}
