// Package timezones backs the deadline picker's timezone choice: the
// embedded IANA list, local zone detection, offset labels, a search tuned
// for what customers type, and a JSON lookup endpoint.
//
// time/tzdata is linked so offsets resolve on hosts without a zoneinfo
// database.
package timezones
