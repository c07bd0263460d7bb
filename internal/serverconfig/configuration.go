package serverconfig

import "strings"

const (
	defaultDocumentPathConstant = "config/servers.yaml"
	defaultServerNameConstant   = "main"

	pathConfigurationKeySuffixConstant          = ".path"
	defaultServerConfigurationKeySuffixConstant = ".default_server"
)

// CommandConfiguration captures persistent settings shared by the server
// configuration commands.
type CommandConfiguration struct {
	Path          string `mapstructure:"path"`
	DefaultServer string `mapstructure:"default_server"`
}

// DefaultCommandConfiguration returns baseline configuration values for the
// server configuration commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Path:          defaultDocumentPathConstant,
		DefaultServer: defaultServerNameConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + pathConfigurationKeySuffixConstant:          defaults.Path,
		configurationKeyPrefix + defaultServerConfigurationKeySuffixConstant: defaults.DefaultServer,
	}
}

// Sanitized trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitized() CommandConfiguration {
	sanitized := configuration

	sanitized.Path = strings.TrimSpace(configuration.Path)
	if len(sanitized.Path) == 0 {
		sanitized.Path = defaultDocumentPathConstant
	}

	sanitized.DefaultServer = strings.TrimSpace(configuration.DefaultServer)
	if len(sanitized.DefaultServer) == 0 {
		sanitized.DefaultServer = defaultServerNameConstant
	}

	return sanitized
}
