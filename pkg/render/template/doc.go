// Package template defines the template engine seam the HTML order form
// renderer depends on. The pongo subpackage provides the pongo2-backed
// implementation.
package template
