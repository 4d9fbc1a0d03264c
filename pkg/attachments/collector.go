package attachments

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// File is a staged attachment.
type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Preview     string `json:"preview,omitempty"`

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the file content.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("attachments: %s has no content", f.Name)
	}
	return f.open()
}

// IsImage reports whether the file is an image.
func (f File) IsImage() bool { return isImage(f.ContentType) }

// Option customises a Collector.
type Option func(*Collector)

// WithLimits overrides the default limits.
func WithLimits(limits Limits) Option {
	return func(c *Collector) {
		c.limits = limits.normalized()
	}
}

// WithPreviews enables image previews.
func WithPreviews(store PreviewStore) Option {
	return func(c *Collector) {
		c.previews = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator overrides file id generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Collector) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Collector holds the staged files for one order. It is safe for concurrent
// use.
type Collector struct {
	mu       sync.Mutex
	limits   Limits
	previews PreviewStore
	logger   *zap.Logger
	newID    func() string
	files    []File
	closed   bool
}

// NewCollector builds an empty collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		limits: DefaultLimits(),
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Limits returns the active limits.
func (c *Collector) Limits() Limits { return c.limits }

// Add validates each candidate in order against the staged set (including
// files accepted earlier in the same batch) and stages the ones that pass.
func (c *Collector) Add(candidates ...Candidate) (BatchReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return BatchReport{}, ErrClosed
	}

	var report BatchReport
	for _, candidate := range candidates {
		if err := Validate(candidate, c.files, c.limits); err != nil {
			var rejection *RejectionError
			if !errors.As(err, &rejection) {
				return report, err
			}
			report.Rejected = append(report.Rejected, rejection)
			c.logger.Debug("attachment rejected",
				zap.String("name", rejection.Name),
				zap.String("reason", rejection.Reason),
			)
			continue
		}

		file := File{
			ID:          c.newID(),
			Name:        normalizeName(candidate.Name),
			Size:        candidate.Size,
			ContentType: resolveType(candidate),
			open:        candidate.Open,
		}
		if c.previews != nil && file.IsImage() {
			handle, err := c.previews.Create(file)
			if err != nil {
				c.logger.Warn("attachment preview failed", zap.String("name", file.Name), zap.Error(err))
			} else {
				file.Preview = handle
			}
		}
		c.files = append(c.files, file)
		report.Accepted = append(report.Accepted, file)
	}
	return report, nil
}

// Remove unstages the file with id and releases its preview.
func (c *Collector) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for idx, file := range c.files {
		if file.ID != id {
			continue
		}
		c.release(file)
		c.files = append(c.files[:idx], c.files[idx+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Files returns the staged files in insertion order.
func (c *Collector) Files() []File {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]File(nil), c.files...)
}

// Len returns the staged file count.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

// TotalSize returns the staged byte count.
func (c *Collector) TotalSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, file := range c.files {
		total += file.Size
	}
	return total
}

// Close releases every preview and rejects further additions.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, file := range c.files {
		c.release(file)
	}
	c.files = nil
	c.closed = true
	return nil
}

func (c *Collector) release(file File) {
	if c.previews != nil && file.Preview != "" {
		c.previews.Release(file.Preview)
	}
}
