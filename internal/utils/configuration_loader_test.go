package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/serverops/srvcfg/internal/utils"
)

const (
	loaderConfigurationNameConstant   = "config"
	loaderConfigurationTypeConstant   = "yaml"
	loaderEnvironmentPrefixConstant   = "SRVCFGTEST"
	loaderConfigurationFileConstant   = "config.yaml"
	loaderLogLevelEnvironmentConstant = "SRVCFGTEST_COMMON_LOG_LEVEL"
)

type loaderTestConfiguration struct {
	Common loaderCommonConfiguration `mapstructure:"common"`
	Tools  loaderToolsConfiguration  `mapstructure:"tools"`
}

type loaderCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type loaderToolsConfiguration struct {
	Servers loaderServersConfiguration `mapstructure:"servers"`
}

type loaderServersConfiguration struct {
	Path          string `mapstructure:"path"`
	DefaultServer string `mapstructure:"default_server"`
}

func newIsolatedConfigurationLoader(testInstance *testing.T) (*utils.ConfigurationLoader, string) {
	testInstance.Helper()

	searchDirectory := testInstance.TempDir()
	loader := utils.NewConfigurationLoader(
		loaderConfigurationNameConstant,
		loaderConfigurationTypeConstant,
		loaderEnvironmentPrefixConstant,
		[]string{searchDirectory},
	)
	return loader, searchDirectory
}

func TestLoadConfigurationAppliesDefaults(testInstance *testing.T) {
	loader, _ := newIsolatedConfigurationLoader(testInstance)

	defaults := map[string]any{
		"common.log_level":  "info",
		"common.log_format": "structured",
	}

	var configuration loaderTestConfiguration
	metadata, loadError := loader.LoadConfiguration("", defaults, &configuration)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, metadata.ConfigFileUsed)
	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
}

func TestLoadConfigurationDiscoversFileInSearchPath(testInstance *testing.T) {
	loader, searchDirectory := newIsolatedConfigurationLoader(testInstance)

	configurationFilePath := filepath.Join(searchDirectory, loaderConfigurationFileConstant)
	configurationContent := "common:\n  log_level: debug\n"
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))

	defaults := map[string]any{
		"common.log_level":  "info",
		"common.log_format": "structured",
	}

	var configuration loaderTestConfiguration
	metadata, loadError := loader.LoadConfiguration("", defaults, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
}

func TestLoadConfigurationHonorsExplicitFilePath(testInstance *testing.T) {
	loader, _ := newIsolatedConfigurationLoader(testInstance)

	explicitFilePath := filepath.Join(testInstance.TempDir(), "explicit.yaml")
	explicitContent := "tools:\n  servers:\n    path: /etc/srvcfg/servers.yaml\n"
	require.NoError(testInstance, os.WriteFile(explicitFilePath, []byte(explicitContent), 0o600))

	var configuration loaderTestConfiguration
	metadata, loadError := loader.LoadConfiguration(explicitFilePath, nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, explicitFilePath, metadata.ConfigFileUsed)
	require.Equal(testInstance, "/etc/srvcfg/servers.yaml", configuration.Tools.Servers.Path)
}

func TestLoadConfigurationMergesEmbeddedDefaults(testInstance *testing.T) {
	loader, _ := newIsolatedConfigurationLoader(testInstance)
	loader.SetEmbeddedConfiguration([]byte("common:\n  log_level: warn\n  log_format: console\n"), loaderConfigurationTypeConstant)

	var configuration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "warn", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
}

func TestLoadConfigurationFileOverridesEmbeddedDefaults(testInstance *testing.T) {
	loader, searchDirectory := newIsolatedConfigurationLoader(testInstance)
	loader.SetEmbeddedConfiguration([]byte("common:\n  log_level: warn\n  log_format: console\n"), loaderConfigurationTypeConstant)

	configurationFilePath := filepath.Join(searchDirectory, loaderConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("common:\n  log_level: error\n"), 0o600))

	var configuration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
}

func TestLoadConfigurationHonorsEnvironmentOverrides(testInstance *testing.T) {
	loader, _ := newIsolatedConfigurationLoader(testInstance)
	testInstance.Setenv(loaderLogLevelEnvironmentConstant, "error")

	defaults := map[string]any{
		"common.log_level": "info",
	}

	var configuration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration("", defaults, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
}

func TestLoadConfigurationReportsMalformedFile(testInstance *testing.T) {
	loader, _ := newIsolatedConfigurationLoader(testInstance)

	malformedFilePath := filepath.Join(testInstance.TempDir(), "malformed.yaml")
	require.NoError(testInstance, os.WriteFile(malformedFilePath, []byte("common: [unbalanced"), 0o600))

	var configuration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration(malformedFilePath, nil, &configuration)
	require.Error(testInstance, loadError)
}
