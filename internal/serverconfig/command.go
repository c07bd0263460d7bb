package serverconfig

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	pathutils "github.com/serverops/srvcfg/internal/utils/path"
)

const (
	listEnvironmentsCommandUseConstant   = "list-environments"
	listEnvironmentsCommandShortConstant = "List the environments declared in the server configuration document"
	listServersCommandUseConstant        = "list-servers <environment>"
	listServersCommandShortConstant      = "List the servers declared for an environment"
	getConfigCommandUseConstant          = "get-config <environment> [server]"
	getConfigCommandShortConstant        = "Print the resolved configuration for a server"
	validateCommandUseConstant           = "validate <environment> [server]"
	validateCommandShortConstant         = "Validate the resolved configuration for a server"

	environmentsHeaderConstant        = "Available environments:"
	serversHeaderTemplateConstant     = "Servers in environment '%s':"
	listItemTemplateConstant          = "  - %s\n"
	resolvedHeaderTemplateConstant    = "Configuration for server '%s' in environment '%s':"
	validationHeaderTemplateConstant  = "Validation errors for server '%s' in environment '%s':"
	validationSuccessTemplateConstant = "Server '%s' in environment '%s' has a valid configuration.\n"

	validationFailedMessageConstant = "server configuration validation failed"

	minimumLookupArgumentCountConstant = 1
	maximumLookupArgumentCountConstant = 2
)

// ErrValidationFailed signals that the validate command found a non-empty
// error list; the CLI maps it to a non-zero exit code.
var ErrValidationFailed = errors.New(validationFailedMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the persisted command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the server configuration query commands with
// configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	HomeExpander          *pathutils.HomeExpander
}

// BuildListEnvironmentsCommand constructs the list-environments command.
func (builder *CommandBuilder) BuildListEnvironmentsCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listEnvironmentsCommandUseConstant,
		Short: listEnvironmentsCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			manager, managerError := builder.resolveManager()
			if managerError != nil {
				return managerError
			}

			fmt.Fprintln(command.OutOrStdout(), environmentsHeaderConstant)
			for _, environmentName := range manager.Environments() {
				fmt.Fprintf(command.OutOrStdout(), listItemTemplateConstant, environmentName)
			}
			return nil
		},
	}
	return command, nil
}

// BuildListServersCommand constructs the list-servers command.
func (builder *CommandBuilder) BuildListServersCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listServersCommandUseConstant,
		Short: listServersCommandShortConstant,
		Args:  cobra.ExactArgs(minimumLookupArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			environmentName := arguments[0]

			manager, managerError := builder.resolveManager()
			if managerError != nil {
				return managerError
			}

			serverNames, lookupError := manager.ServerNames(environmentName)
			if lookupError != nil {
				return lookupError
			}

			fmt.Fprintf(command.OutOrStdout(), serversHeaderTemplateConstant+"\n", environmentName)
			for _, serverName := range serverNames {
				fmt.Fprintf(command.OutOrStdout(), listItemTemplateConstant, serverName)
			}
			return nil
		},
	}
	return command, nil
}

// BuildGetConfigCommand constructs the get-config command.
func (builder *CommandBuilder) BuildGetConfigCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   getConfigCommandUseConstant,
		Short: getConfigCommandShortConstant,
		Args:  cobra.RangeArgs(minimumLookupArgumentCountConstant, maximumLookupArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			environmentName, serverName := builder.lookupArguments(arguments)

			manager, managerError := builder.resolveManager()
			if managerError != nil {
				return managerError
			}

			resolved, resolutionError := manager.ResolveServerConfig(environmentName, serverName)
			if resolutionError != nil {
				return resolutionError
			}

			renderedConfiguration, renderError := yaml.Marshal(resolved)
			if renderError != nil {
				return renderError
			}

			fmt.Fprintf(command.OutOrStdout(), resolvedHeaderTemplateConstant+"\n", serverName, environmentName)
			fmt.Fprint(command.OutOrStdout(), string(renderedConfiguration))
			return nil
		},
	}
	return command, nil
}

// BuildValidateCommand constructs the validate command.
func (builder *CommandBuilder) BuildValidateCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   validateCommandUseConstant,
		Short: validateCommandShortConstant,
		Args:  cobra.RangeArgs(minimumLookupArgumentCountConstant, maximumLookupArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			environmentName, serverName := builder.lookupArguments(arguments)

			manager, managerError := builder.resolveManager()
			if managerError != nil {
				return managerError
			}

			validationErrors := manager.ValidateServerConfig(environmentName, serverName)
			if len(validationErrors) > 0 {
				fmt.Fprintf(command.OutOrStdout(), validationHeaderTemplateConstant+"\n", serverName, environmentName)
				for _, validationError := range validationErrors {
					fmt.Fprintf(command.OutOrStdout(), listItemTemplateConstant, validationError)
				}
				return ErrValidationFailed
			}

			fmt.Fprintf(command.OutOrStdout(), validationSuccessTemplateConstant, serverName, environmentName)
			return nil
		},
	}
	return command, nil
}

func (builder *CommandBuilder) lookupArguments(arguments []string) (string, string) {
	environmentName := arguments[0]
	serverName := builder.resolveConfiguration().DefaultServer
	if len(arguments) > minimumLookupArgumentCountConstant {
		serverName = arguments[1]
	}
	return environmentName, serverName
}

func (builder *CommandBuilder) resolveManager() (*Manager, error) {
	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	documentPath := configuration.Path
	if builder.HomeExpander != nil {
		documentPath = builder.HomeExpander.Expand(documentPath)
	}

	return NewManager(NewStore(documentPath, logger), logger)
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

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitized()
}
