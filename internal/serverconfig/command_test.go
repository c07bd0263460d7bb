package serverconfig_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/serverops/srvcfg/internal/serverconfig"
)

const (
	commandDocumentFixtureConstant = `default:
  host: 0.0.0.0
  port: 8080
  workers: 2
  timeout: 10
environments:
  development:
    servers:
      main:
        port: 9090
  production:
    servers:
      main:
        host: production.internal
      analytics:
        workers: 0
`
)

type commandTestHarness struct {
	builder serverconfig.CommandBuilder
}

func newCommandTestHarness(testInstance *testing.T, documentContent string) commandTestHarness {
	testInstance.Helper()

	documentPath := filepath.Join(testInstance.TempDir(), storeDocumentFileNameConstant)
	require.NoError(testInstance, os.WriteFile(documentPath, []byte(documentContent), 0o600))

	return commandTestHarness{
		builder: serverconfig.CommandBuilder{
			ConfigurationProvider: func() serverconfig.CommandConfiguration {
				return serverconfig.CommandConfiguration{Path: documentPath, DefaultServer: "main"}
			},
		},
	}
}

func executeCommand(testInstance *testing.T, command *cobra.Command, arguments []string) (string, error) {
	testInstance.Helper()

	if arguments == nil {
		arguments = []string{}
	}

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestListEnvironmentsCommandOutput(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildListEnvironmentsCommand()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, nil)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "Available environments:\n  - development\n  - production\n", output)
}

func TestListServersCommandOutput(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildListServersCommand()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, []string{"production"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "Servers in environment 'production':\n  - analytics\n  - main\n", output)
}

func TestListServersCommandUnknownEnvironment(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildListServersCommand()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, []string{unknownEnvironmentNameConstant})
	var unknownEnvironmentError serverconfig.UnknownEnvironmentError
	require.ErrorAs(testInstance, executionError, &unknownEnvironmentError)
	require.Equal(testInstance, unknownEnvironmentNameConstant, unknownEnvironmentError.Environment)
}

func TestGetConfigCommandRendersResolvedConfiguration(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildGetConfigCommand()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, []string{"development"})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Configuration for server 'main' in environment 'development':")
	require.Contains(testInstance, output, "port: 9090")
	require.Contains(testInstance, output, "host: 0.0.0.0")
}

func TestGetConfigCommandExplicitServerArgument(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildGetConfigCommand()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, []string{"production", "analytics"})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Configuration for server 'analytics' in environment 'production':")
	require.Contains(testInstance, output, "workers: 0")
}

func TestGetConfigCommandUnknownServer(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildGetConfigCommand()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, []string{"development", unknownServerNameConstant})
	var unknownServerError serverconfig.UnknownServerError
	require.ErrorAs(testInstance, executionError, &unknownServerError)
	require.Equal(testInstance, unknownServerNameConstant, unknownServerError.Server)
}

func TestValidateCommandReportsSuccess(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildValidateCommand()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, []string{"development"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "Server 'main' in environment 'development' has a valid configuration.\n", output)
}

func TestValidateCommandReportsViolations(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildValidateCommand()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, []string{"production", "analytics"})
	require.ErrorIs(testInstance, executionError, serverconfig.ErrValidationFailed)
	require.Contains(testInstance, output, "Validation errors for server 'analytics' in environment 'production':")
	require.Contains(testInstance, output, "  - Invalid number of workers: 0\n")
}

func TestValidateCommandReportsLookupFailure(testInstance *testing.T) {
	harness := newCommandTestHarness(testInstance, commandDocumentFixtureConstant)

	command, buildError := harness.builder.BuildValidateCommand()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, []string{unknownEnvironmentNameConstant})
	require.ErrorIs(testInstance, executionError, serverconfig.ErrValidationFailed)
	require.Contains(testInstance, output, serverconfig.UnknownEnvironmentError{Environment: unknownEnvironmentNameConstant}.Error())
}

func TestCommandsSurfaceMissingDocument(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), storeDocumentFileNameConstant)
	builder := serverconfig.CommandBuilder{
		ConfigurationProvider: func() serverconfig.CommandConfiguration {
			return serverconfig.CommandConfiguration{Path: missingPath, DefaultServer: "main"}
		},
	}

	command, buildError := builder.BuildListEnvironmentsCommand()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, nil)
	var notFoundError serverconfig.DocumentNotFoundError
	require.ErrorAs(testInstance, executionError, &notFoundError)
	require.Equal(testInstance, missingPath, notFoundError.Path)
}
