// Package submission orchestrates order creation: client-side validation,
// the create-order call with a per-attempt idempotency key, the attachment
// upload, and the customer notices for full, partial, and failed outcomes.
// An order whose files fail to upload still counts as created.
package submission
