// Package template defines the seam between the HTML front end and the
// engine that executes its page templates. The pongo subpackage provides the
// default implementation.
package template
