// Package config loads latte run options.
//
// Options come from three layers, each overriding the previous one:
//
//  1. the built-in defaults (see Default)
//  2. latte.yaml in the project root, unless skipConfigFile is set
//  3. command-line flags
//
// A minimal latte.yaml:
//
//	include:
//	  - "tests/**/*.test.yaml"
//	parallel: true
//	maxWorkers: 8
//	reportType: junit
//	testTimeout: 5s
//	vars:
//	  baseURL: http://localhost:8080
//
// Unknown keys are rejected. Init writes the defaults to a new latte.yaml.
package config
