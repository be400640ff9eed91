// Package cmd implements the faultline CLI commands using Cobra.
//
// Available commands:
//   - run: Execute API test cases from YAML files
//   - generate: Generate negative test cases from a schema
//   - validate: Check case file syntax without executing
//   - list: Display all cases defined in files
//   - init: Create a new faultline project with example files
//   - version: Show faultline version information
//
// The CLI supports various flags for filtering, output formatting,
// parallel execution, and watch mode for development workflows.
package cmd
