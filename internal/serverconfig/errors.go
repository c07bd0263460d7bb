package serverconfig

import "fmt"

const (
	documentNotFoundErrorTemplateConstant   = "server configuration file not found: %s"
	documentParseErrorTemplateConstant      = "invalid YAML in server configuration %s: %s"
	documentSaveErrorTemplateConstant       = "unable to save server configuration %s: %s"
	unknownEnvironmentErrorTemplateConstant = "environment %q not found in configuration"
	unknownServerErrorTemplateConstant      = "server %q not found in environment %q"
)

// DocumentNotFoundError indicates the configuration document is absent at the expected path.
type DocumentNotFoundError struct {
	Path string
}

// Error describes the missing document.
func (notFoundError DocumentNotFoundError) Error() string {
	return fmt.Sprintf(documentNotFoundErrorTemplateConstant, notFoundError.Path)
}

// DocumentParseError indicates the configuration document holds malformed content.
type DocumentParseError struct {
	Path  string
	Cause error
}

// Error describes the parse failure.
func (parseError DocumentParseError) Error() string {
	return fmt.Sprintf(documentParseErrorTemplateConstant, parseError.Path, parseError.Cause)
}

// Unwrap exposes the underlying decoding error.
func (parseError DocumentParseError) Unwrap() error {
	return parseError.Cause
}

// DocumentSaveError indicates a backup or write failure while persisting the document.
type DocumentSaveError struct {
	Path  string
	Cause error
}

// Error describes the persistence failure.
func (saveError DocumentSaveError) Error() string {
	return fmt.Sprintf(documentSaveErrorTemplateConstant, saveError.Path, saveError.Cause)
}

// Unwrap exposes the underlying filesystem error.
func (saveError DocumentSaveError) Unwrap() error {
	return saveError.Cause
}

// UnknownEnvironmentError indicates a lookup against an undeclared environment name.
type UnknownEnvironmentError struct {
	Environment string
}

// Error describes the failed environment lookup.
func (unknownEnvironment UnknownEnvironmentError) Error() string {
	return fmt.Sprintf(unknownEnvironmentErrorTemplateConstant, unknownEnvironment.Environment)
}

// UnknownServerError indicates a lookup against an undeclared server name inside a known environment.
type UnknownServerError struct {
	Environment string
	Server      string
}

// Error describes the failed server lookup.
func (unknownServer UnknownServerError) Error() string {
	return fmt.Sprintf(unknownServerErrorTemplateConstant, unknownServer.Server, unknownServer.Environment)
}
