package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/serverops/srvcfg/internal/utils"
)

func TestCommandContextAccessorConfigurationFilePathRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	updatedContext := accessor.WithConfigurationFilePath(context.Background(), "/tmp/config.yaml")
	storedPath, pathAvailable := accessor.ConfigurationFilePath(updatedContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, "/tmp/config.yaml", storedPath)
}

func TestCommandContextAccessorServersDocumentPathRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	updatedContext := accessor.WithServersDocumentPath(context.Background(), "/tmp/servers.yaml")
	storedPath, pathAvailable := accessor.ServersDocumentPath(updatedContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, "/tmp/servers.yaml", storedPath)
}

func TestCommandContextAccessorMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, configurationAvailable := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, configurationAvailable)

	_, documentAvailable := accessor.ServersDocumentPath(context.Background())
	require.False(testInstance, documentAvailable)
}

func TestCommandContextAccessorNilContexts(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, valueAvailable := accessor.ConfigurationFilePath(nil)
	require.False(testInstance, valueAvailable)

	updatedContext := accessor.WithServersDocumentPath(nil, "/tmp/servers.yaml")
	storedPath, pathAvailable := accessor.ServersDocumentPath(updatedContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, "/tmp/servers.yaml", storedPath)
}
