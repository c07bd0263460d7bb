package serverconfig

import "fmt"

const (
	missingRequiredFieldTemplateConstant = "Missing required field: %s"
	sslCertificateMissingMessageConstant = "SSL enabled but ssl_cert not specified"
	sslKeyMissingMessageConstant         = "SSL enabled but ssl_key not specified"
	invalidPortTemplateConstant          = "Invalid port number: %d"
	invalidWorkersTemplateConstant       = "Invalid number of workers: %d"
	invalidTimeoutTemplateConstant       = "Invalid timeout: %d"

	minimumPortNumberConstant = 1
	maximumPortNumberConstant = 65535
	minimumWorkersConstant    = 1
	minimumTimeoutConstant    = 1
)

// ValidateResolvedConfig checks a resolved configuration against the
// structural and semantic rules and returns the ordered list of human-readable
// violations. An empty list means the configuration is valid; invalid input
// never produces an error value.
func ValidateResolvedConfig(resolved ResolvedConfig) []string {
	validationErrors := []string{}

	requiredFieldChecks := []struct {
		fieldName string
		present   bool
	}{
		{fieldName: optionKeyHostConstant, present: resolved.Host != nil},
		{fieldName: optionKeyPortConstant, present: resolved.Port != nil},
		{fieldName: optionKeyWorkersConstant, present: resolved.Workers != nil},
		{fieldName: optionKeyTimeoutConstant, present: resolved.Timeout != nil},
	}
	for _, requiredFieldCheck := range requiredFieldChecks {
		if !requiredFieldCheck.present {
			validationErrors = append(validationErrors, fmt.Sprintf(missingRequiredFieldTemplateConstant, requiredFieldCheck.fieldName))
		}
	}

	if resolved.SSLEnabled != nil && *resolved.SSLEnabled {
		if resolved.SSLCert == nil {
			validationErrors = append(validationErrors, sslCertificateMissingMessageConstant)
		}
		if resolved.SSLKey == nil {
			validationErrors = append(validationErrors, sslKeyMissingMessageConstant)
		}
	}

	if resolved.Port != nil && (*resolved.Port < minimumPortNumberConstant || *resolved.Port > maximumPortNumberConstant) {
		validationErrors = append(validationErrors, fmt.Sprintf(invalidPortTemplateConstant, *resolved.Port))
	}

	if resolved.Workers != nil && *resolved.Workers < minimumWorkersConstant {
		validationErrors = append(validationErrors, fmt.Sprintf(invalidWorkersTemplateConstant, *resolved.Workers))
	}

	if resolved.Timeout != nil && *resolved.Timeout < minimumTimeoutConstant {
		validationErrors = append(validationErrors, fmt.Sprintf(invalidTimeoutTemplateConstant, *resolved.Timeout))
	}

	return validationErrors
}
