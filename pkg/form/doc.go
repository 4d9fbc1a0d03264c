// Package form holds the mutable state of the order form: the dynamic field
// values keyed by field name plus the tier and payment selections. Setters
// coerce raw input according to the field kind and emit the full next value
// map to an OnChange observer so renderers never mutate shared state.
package form
