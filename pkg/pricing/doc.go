// Package pricing turns server-computed quotes into an itemised display. The
// server owns the arithmetic; this package only splits the total multiplier
// into its deadline and option parts, labels selected options, formats money,
// and discards quote responses that arrive after a newer request was issued.
package pricing
