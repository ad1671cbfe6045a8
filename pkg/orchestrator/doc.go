// Package orchestrator wires form definitions, payload contracts and submit
// settings into sessions, and gives the CLI and HTTP server a single entry
// point for payload previews and definition linting.
package orchestrator
