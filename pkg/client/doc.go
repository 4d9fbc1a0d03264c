// Package client talks to the order API: it fetches the form configuration,
// requests price quotes, creates orders with an idempotency key, and uploads
// attachments as multipart form data. Error bodies are decoded into *APIError
// so callers can surface the server's own message and field errors.
package client
