package serverconfig

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	optionKeyHostConstant       = "host"
	optionKeyPortConstant       = "port"
	optionKeyWorkersConstant    = "workers"
	optionKeyTimeoutConstant    = "timeout"
	optionKeySSLEnabledConstant = "ssl_enabled"
	optionKeySSLCertConstant    = "ssl_cert"
	optionKeySSLKeyConstant     = "ssl_key"
	optionKeyMiddlewareConstant = "middleware"

	nullYAMLTagConstant                       = "!!null"
	optionMappingExpectedTemplateConstant     = "expected option mapping, found %s on line %d"
	middlewareSequenceExpectedMessageConstant = "middleware must be a sequence of name-to-options mappings"
	middlewareEntryExpectedMessageConstant    = "middleware entries must be mappings from middleware name to options"
	optionDecodeErrorTemplateConstant         = "option %q: %w"
)

// Document is the parsed layered server-configuration document: shared
// defaults plus per-environment server override sections.
type Document struct {
	Default      OptionSet              `yaml:"default"`
	Environments map[string]Environment `yaml:"environments"`
}

// Environment groups the named server option sets declared for one deployment context.
type Environment struct {
	Servers map[string]OptionSet `yaml:"servers"`
}

// MiddlewareEntry names one middleware with its raw option mapping.
type MiddlewareEntry struct {
	Name    string
	Options map[string]any
}

// OptionSet carries the server options recognized by the resolution contract
// plus every additional option key found in the document. Contract fields use
// pointers so resolution and validation can distinguish absent options from
// zero values.
type OptionSet struct {
	Host       *string
	Port       *int
	Workers    *int
	Timeout    *int
	SSLEnabled *bool
	SSLCert    *string
	SSLKey     *string
	Middleware []MiddlewareEntry
	Extras     map[string]any
}

// ResolvedConfig is an OptionSet produced by merging defaults with one
// server-specific override section.
type ResolvedConfig = OptionSet

// UnmarshalYAML decodes a flat option mapping, routing contract options into
// typed fields and every other key into Extras.
func (options *OptionSet) UnmarshalYAML(documentNode *yaml.Node) error {
	if documentNode.Kind == yaml.ScalarNode && documentNode.Tag == nullYAMLTagConstant {
		return nil
	}
	if documentNode.Kind != yaml.MappingNode {
		return fmt.Errorf(optionMappingExpectedTemplateConstant, nodeKindName(documentNode.Kind), documentNode.Line)
	}

	for contentIndex := 0; contentIndex+1 < len(documentNode.Content); contentIndex += 2 {
		keyNode := documentNode.Content[contentIndex]
		valueNode := documentNode.Content[contentIndex+1]

		decodeError := options.decodeOption(keyNode.Value, valueNode)
		if decodeError != nil {
			return fmt.Errorf(optionDecodeErrorTemplateConstant, keyNode.Value, decodeError)
		}
	}

	return nil
}

func (options *OptionSet) decodeOption(optionKey string, valueNode *yaml.Node) error {
	switch optionKey {
	case optionKeyHostConstant:
		return decodeScalarOption(valueNode, &options.Host)
	case optionKeyPortConstant:
		return decodeScalarOption(valueNode, &options.Port)
	case optionKeyWorkersConstant:
		return decodeScalarOption(valueNode, &options.Workers)
	case optionKeyTimeoutConstant:
		return decodeScalarOption(valueNode, &options.Timeout)
	case optionKeySSLEnabledConstant:
		return decodeScalarOption(valueNode, &options.SSLEnabled)
	case optionKeySSLCertConstant:
		return decodeScalarOption(valueNode, &options.SSLCert)
	case optionKeySSLKeyConstant:
		return decodeScalarOption(valueNode, &options.SSLKey)
	case optionKeyMiddlewareConstant:
		middlewareEntries, middlewareError := decodeMiddlewareList(valueNode)
		if middlewareError != nil {
			return middlewareError
		}
		options.Middleware = middlewareEntries
		return nil
	default:
		var rawValue any
		if decodeError := valueNode.Decode(&rawValue); decodeError != nil {
			return decodeError
		}
		if options.Extras == nil {
			options.Extras = map[string]any{}
		}
		options.Extras[optionKey] = rawValue
		return nil
	}
}

func decodeScalarOption[OptionType any](valueNode *yaml.Node, target **OptionType) error {
	var decodedValue OptionType
	if decodeError := valueNode.Decode(&decodedValue); decodeError != nil {
		return decodeError
	}
	*target = &decodedValue
	return nil
}

// decodeMiddlewareList parses the document's list-of-single-key-mapping form.
// A mapping element holding several names contributes one entry per name.
func decodeMiddlewareList(listNode *yaml.Node) ([]MiddlewareEntry, error) {
	if listNode.Kind != yaml.SequenceNode {
		return nil, errors.New(middlewareSequenceExpectedMessageConstant)
	}

	middlewareEntries := []MiddlewareEntry{}
	for _, elementNode := range listNode.Content {
		if elementNode.Kind != yaml.MappingNode {
			return nil, errors.New(middlewareEntryExpectedMessageConstant)
		}

		for contentIndex := 0; contentIndex+1 < len(elementNode.Content); contentIndex += 2 {
			nameNode := elementNode.Content[contentIndex]
			optionsNode := elementNode.Content[contentIndex+1]

			middlewareOptions := map[string]any{}
			if optionsNode.Kind != 0 && optionsNode.Tag != nullYAMLTagConstant {
				if decodeError := optionsNode.Decode(&middlewareOptions); decodeError != nil {
					return nil, decodeError
				}
			}

			middlewareEntries = append(middlewareEntries, MiddlewareEntry{
				Name:    nameNode.Value,
				Options: middlewareOptions,
			})
		}
	}

	return middlewareEntries, nil
}

// MarshalYAML renders the option set back to the flat mapping shape used on disk.
func (options OptionSet) MarshalYAML() (any, error) {
	return options.ToMap(), nil
}

// ToMap flattens the option set into a plain option-to-value mapping.
func (options OptionSet) ToMap() map[string]any {
	flattened := map[string]any{}
	for extraKey, extraValue := range options.Extras {
		flattened[extraKey] = extraValue
	}
	if options.Host != nil {
		flattened[optionKeyHostConstant] = *options.Host
	}
	if options.Port != nil {
		flattened[optionKeyPortConstant] = *options.Port
	}
	if options.Workers != nil {
		flattened[optionKeyWorkersConstant] = *options.Workers
	}
	if options.Timeout != nil {
		flattened[optionKeyTimeoutConstant] = *options.Timeout
	}
	if options.SSLEnabled != nil {
		flattened[optionKeySSLEnabledConstant] = *options.SSLEnabled
	}
	if options.SSLCert != nil {
		flattened[optionKeySSLCertConstant] = *options.SSLCert
	}
	if options.SSLKey != nil {
		flattened[optionKeySSLKeyConstant] = *options.SSLKey
	}
	if options.Middleware != nil {
		middlewareList := make([]map[string]any, 0, len(options.Middleware))
		for _, middlewareEntry := range options.Middleware {
			middlewareList = append(middlewareList, map[string]any{middlewareEntry.Name: middlewareEntry.Options})
		}
		flattened[optionKeyMiddlewareConstant] = middlewareList
	}
	return flattened
}

// clone copies the option set so override application never mutates the
// document's defaults. Pointer fields are re-allocated; extra values and
// middleware option maps stay shared because overrides replace them wholesale.
func (options OptionSet) clone() OptionSet {
	duplicated := OptionSet{
		Host:       clonePointer(options.Host),
		Port:       clonePointer(options.Port),
		Workers:    clonePointer(options.Workers),
		Timeout:    clonePointer(options.Timeout),
		SSLEnabled: clonePointer(options.SSLEnabled),
		SSLCert:    clonePointer(options.SSLCert),
		SSLKey:     clonePointer(options.SSLKey),
	}
	if options.Middleware != nil {
		duplicated.Middleware = append([]MiddlewareEntry{}, options.Middleware...)
	}
	if options.Extras != nil {
		duplicated.Extras = make(map[string]any, len(options.Extras))
		for extraKey, extraValue := range options.Extras {
			duplicated.Extras[extraKey] = extraValue
		}
	}
	return duplicated
}

func clonePointer[OptionType any](source *OptionType) *OptionType {
	if source == nil {
		return nil
	}
	duplicated := *source
	return &duplicated
}

// applyOverrides copies the defaults and overwrites each option the override
// section declares. Nested values replace wholesale: an override middleware
// list supersedes the default list entirely, and override extras (including
// mapping or list values) replace the default value under the same key.
func applyOverrides(defaults OptionSet, overrides OptionSet) ResolvedConfig {
	resolved := defaults.clone()

	if overrides.Host != nil {
		resolved.Host = clonePointer(overrides.Host)
	}
	if overrides.Port != nil {
		resolved.Port = clonePointer(overrides.Port)
	}
	if overrides.Workers != nil {
		resolved.Workers = clonePointer(overrides.Workers)
	}
	if overrides.Timeout != nil {
		resolved.Timeout = clonePointer(overrides.Timeout)
	}
	if overrides.SSLEnabled != nil {
		resolved.SSLEnabled = clonePointer(overrides.SSLEnabled)
	}
	if overrides.SSLCert != nil {
		resolved.SSLCert = clonePointer(overrides.SSLCert)
	}
	if overrides.SSLKey != nil {
		resolved.SSLKey = clonePointer(overrides.SSLKey)
	}
	if overrides.Middleware != nil {
		resolved.Middleware = append([]MiddlewareEntry{}, overrides.Middleware...)
	}
	for extraKey, extraValue := range overrides.Extras {
		if resolved.Extras == nil {
			resolved.Extras = map[string]any{}
		}
		resolved.Extras[extraKey] = extraValue
	}

	return resolved
}

func nodeKindName(nodeKind yaml.Kind) string {
	switch nodeKind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
