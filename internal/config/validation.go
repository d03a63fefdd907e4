package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"latte/internal/report"
	"latte/internal/runner"
	"latte/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

var progressModes = []string{
	string(runner.ProgressDefault),
	string(runner.ProgressBar),
	string(runner.ProgressDots),
	string(runner.ProgressNone),
}

// domEnvs are the supported DOM environments. Only parsed HTML is
// available, for both dom and react.
var domEnvs = []string{DefaultDOMEnv}

// Validate reports every invalid option at once. Call Normalize first.
func (o Options) Validate() error {
	var errs ValidationErrors

	if err := ValidateOneOf("progress", o.Progress, progressModes); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if err := ValidateOneOf("domEnv", o.DOMEnv, domEnvs); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if o.MaxWorkers < 1 {
		errs.Add("maxWorkers", "must be at least 1", o.MaxWorkers)
	}
	if o.TestTimeout < 0 {
		errs.Add("testTimeout", "must not be negative", o.TestTimeout)
	}
	if o.DebugPort < 0 || o.DebugPort > 65535 {
		errs.Add("debugPort", "must be a valid port", o.DebugPort)
	}
	for i, p := range o.Include {
		if !doublestar.ValidatePattern(p) {
			errs.Add(fmt.Sprintf("include[%d]", i), "is not a valid glob pattern", p)
		}
	}
	for i, p := range o.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs.Add(fmt.Sprintf("exclude[%d]", i), "is not a valid glob pattern", p)
		}
	}
	if o.ChangedBase != "" && !o.Changed {
		errs.Add("changedBase", "requires changed", o.ChangedBase)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Normalize resolves options that imply or replace others.
func (o *Options) Normalize() {
	if o.React {
		o.DOM = true
	}
	if o.Progress == "" {
		o.Progress = DefaultProgress
	}
	if o.ReportType == "" {
		o.ReportType = DefaultReportType
	}
	if _, ok := report.ParseType(o.ReportType); !ok {
		logging.Warn("Config", "Unknown report type %q, falling back to %s", o.ReportType, DefaultReportType)
		o.ReportType = DefaultReportType
	}
	if o.ReportDir == "" {
		o.ReportDir = DefaultReportDir
	}
	if o.DOMEnv == "" {
		o.DOMEnv = DefaultDOMEnv
	}
	if len(o.Include) == 0 && len(o.Files) == 0 {
		o.Include = append([]string(nil), DefaultInclude...)
	}
	if o.ChangedBase != "" {
		o.Changed = true
	}
}
