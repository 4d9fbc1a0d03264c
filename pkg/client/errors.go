package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrBaseURLRequired reports a client built without an API address.
	ErrBaseURLRequired = errors.New("client: base URL is required")
	// ErrOrderIDRequired reports an upload without an order id.
	ErrOrderIDRequired = errors.New("client: order id is required")
)

// APIError is a non-2xx response from the order API. Message holds the
// server's own "error", "detail", or "message" text verbatim when present.
type APIError struct {
	Op      string
	Status  int
	Message string
	Fields  map[string][]string
	Body    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("client: %s: status %d: %s", e.Op, e.Status, msg)
}

// UploadError wraps a failed attachment upload for an order that exists.
type UploadError struct {
	OrderID string
	Err     error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("client: upload files for order %s: %v", e.OrderID, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

var messageKeys = []string{"error", "detail", "message"}

func decodeAPIError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{Op: op, Status: status, Body: strings.TrimSpace(string(body))}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	for _, key := range messageKeys {
		if msg := firstString(payload[key]); msg != "" {
			apiErr.Message = msg
			break
		}
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if isMessageKey(key) {
			continue
		}
		collectFieldErrors(apiErr, key, payload[key])
	}
	return apiErr
}

func collectFieldErrors(apiErr *APIError, key string, value any) {
	switch typed := value.(type) {
	case map[string]any:
		for child, nested := range typed {
			collectFieldErrors(apiErr, key+"."+child, nested)
		}
	default:
		messages := messageList(typed)
		if len(messages) == 0 {
			return
		}
		if apiErr.Fields == nil {
			apiErr.Fields = make(map[string][]string)
		}
		apiErr.Fields[key] = append(apiErr.Fields[key], messages...)
	}
}

func isMessageKey(key string) bool {
	for _, candidate := range messageKeys {
		if key == candidate {
			return true
		}
	}
	return false
}

func firstString(value any) string {
	messages := messageList(value)
	if len(messages) == 0 {
		return ""
	}
	return messages[0]
}

func messageList(value any) []string {
	switch typed := value.(type) {
	case string:
		if trimmed := strings.TrimSpace(typed); trimmed != "" {
			return []string{trimmed}
		}
	case []any:
		var out []string
		for _, item := range typed {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}
