// Package schema models the order form configuration served by the order API:
// the ordered field list (with per-kind config and priced options), pricing
// tiers, deadline pricing rows, and payment methods. The field kind set is
// closed; decoding rejects kinds the client does not know so schema drift
// between the API and this client fails loudly instead of degrading to a
// plain text input.
package schema
