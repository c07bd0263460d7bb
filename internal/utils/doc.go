// Package utils exposes reusable helpers consumed by the srvcfg commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging for the CLI, plus
// the context accessor that threads resolved paths to subcommands.
package utils
