package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigurationError describes a config file that could not be read or
// parsed.
type ConfigurationError struct {
	FilePath   string `json:"filePath"`
	ErrorType  string `json:"errorType"` // io or parse
	Message    string `json:"message"`
	LineNumber int    `json:"lineNumber,omitempty"`
	Err        error  `json:"-"`
}

func (ce *ConfigurationError) Error() string {
	if ce.LineNumber > 0 {
		return fmt.Sprintf("%s:%d: %s", filepath.Base(ce.FilePath), ce.LineNumber, ce.Message)
	}
	return fmt.Sprintf("%s: %s", filepath.Base(ce.FilePath), ce.Message)
}

func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}

func newParseError(path string, err error) *ConfigurationError {
	ce := &ConfigurationError{FilePath: path, ErrorType: "parse", Message: err.Error(), Err: err}
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		ce.Message = te.Errors[0]
		var line int
		if _, scanErr := fmt.Sscanf(te.Errors[0], "line %d:", &line); scanErr == nil {
			ce.LineNumber = line
		}
	}
	return ce
}
