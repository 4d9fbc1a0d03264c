// Package deadline composes the order deadline from a date, a wall-clock time,
// and an IANA timezone. It enforces the minimum lead time, produces the
// "in your local time" advisory, and resolves selections to the literal
// "YYYY-MM-DDTHH:mm" string plus its UTC instant for the order API.
package deadline
