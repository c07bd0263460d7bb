package httpserver_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/serverops/srvcfg/internal/httpserver"
	"github.com/serverops/srvcfg/internal/serverconfig"
)

const (
	serveDocumentFixtureConstant = `default:
  host: 127.0.0.1
  port: 8080
  timeout: 30
environments:
  development:
    servers:
      main:
        workers: 4
      broken:
        workers: 0
`
	serveDocumentFileNameConstant = "servers.yaml"
)

func newServeCommand(testInstance *testing.T, documentContent string) *cobra.Command {
	testInstance.Helper()

	documentPath := filepath.Join(testInstance.TempDir(), serveDocumentFileNameConstant)
	require.NoError(testInstance, os.WriteFile(documentPath, []byte(documentContent), 0o600))

	builder := httpserver.CommandBuilder{
		ConfigurationProvider: func() serverconfig.CommandConfiguration {
			return serverconfig.CommandConfiguration{Path: documentPath, DefaultServer: "main"}
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	return command
}

func executeServeCommand(testInstance *testing.T, command *cobra.Command, arguments []string) (string, error) {
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

func TestServeCommandRefusesInvalidConfiguration(testInstance *testing.T) {
	command := newServeCommand(testInstance, serveDocumentFixtureConstant)

	output, executionError := executeServeCommand(testInstance, command, []string{"development", "broken"})
	require.ErrorIs(testInstance, executionError, serverconfig.ErrValidationFailed)
	require.Contains(testInstance, output, "Validation errors for server 'broken' in environment 'development':")
	require.Contains(testInstance, output, "  - Invalid number of workers: 0\n")
}

func TestServeCommandRefusesUnknownEnvironment(testInstance *testing.T) {
	command := newServeCommand(testInstance, serveDocumentFixtureConstant)

	output, executionError := executeServeCommand(testInstance, command, []string{"staging"})
	require.ErrorIs(testInstance, executionError, serverconfig.ErrValidationFailed)
	require.Contains(testInstance, output, serverconfig.UnknownEnvironmentError{Environment: "staging"}.Error())
}

func TestServeCommandSurfacesMissingDocument(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), serveDocumentFileNameConstant)
	builder := httpserver.CommandBuilder{
		ConfigurationProvider: func() serverconfig.CommandConfiguration {
			return serverconfig.CommandConfiguration{Path: missingPath, DefaultServer: "main"}
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeServeCommand(testInstance, command, []string{"development"})
	var notFoundError serverconfig.DocumentNotFoundError
	require.ErrorAs(testInstance, executionError, &notFoundError)
	require.Equal(testInstance, missingPath, notFoundError.Path)
}
