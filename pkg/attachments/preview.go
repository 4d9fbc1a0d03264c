package attachments

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// PreviewStore issues handles for image previews.
type PreviewStore interface {
	Create(f File) (string, error)
	Release(handle string)
}

// Preview is a stored preview payload.
type Preview struct {
	ContentType string
	Data        []byte
}

// MemoryPreviews keeps preview bytes in memory until released.
type MemoryPreviews struct {
	mu       sync.RWMutex
	previews map[string]Preview
	maxBytes int64
}

// NewMemoryPreviews builds an in-memory store. Images larger than maxBytes
// get no preview; zero uses the default per-file cap.
func NewMemoryPreviews(maxBytes int64) *MemoryPreviews {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}
	return &MemoryPreviews{previews: make(map[string]Preview), maxBytes: maxBytes}
}

// Create reads the file and returns a handle.
func (m *MemoryPreviews) Create(f File) (string, error) {
	if f.Size > m.maxBytes {
		return "", fmt.Errorf("attachments: %s too large for preview", f.Name)
	}
	r, err := f.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(io.LimitReader(r, m.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("attachments: read preview %s: %w", f.Name, err)
	}
	handle := uuid.NewString()
	m.mu.Lock()
	m.previews[handle] = Preview{ContentType: f.ContentType, Data: data}
	m.mu.Unlock()
	return handle, nil
}

// Release drops the preview. Unknown handles are ignored.
func (m *MemoryPreviews) Release(handle string) {
	m.mu.Lock()
	delete(m.previews, handle)
	m.mu.Unlock()
}

// Get returns a stored preview.
func (m *MemoryPreviews) Get(handle string) (Preview, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	preview, ok := m.previews[handle]
	return preview, ok
}

// Len returns the number of live previews.
func (m *MemoryPreviews) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.previews)
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
