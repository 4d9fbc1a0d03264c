package attachments

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultMaxFiles     = 5
	DefaultMaxFileSize  = 10 << 20
	DefaultMaxTotalSize = 50 << 20
)

// DefaultAcceptedTypes lists the document, image, and archive types the
// order API accepts.
var DefaultAcceptedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/zip",
	"application/x-zip-compressed",
	"application/x-rar-compressed",
	"application/vnd.rar",
}

// Limits bounds what a collector accepts.
type Limits struct {
	MaxFiles      int
	MaxFileSize   int64
	MaxTotalSize  int64
	AcceptedTypes []string
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFiles:      DefaultMaxFiles,
		MaxFileSize:   DefaultMaxFileSize,
		MaxTotalSize:  DefaultMaxTotalSize,
		AcceptedTypes: append([]string(nil), DefaultAcceptedTypes...),
	}
}

func (l Limits) normalized() Limits {
	defaults := DefaultLimits()
	if l.MaxFiles <= 0 {
		l.MaxFiles = defaults.MaxFiles
	}
	if l.MaxFileSize <= 0 {
		l.MaxFileSize = defaults.MaxFileSize
	}
	if l.MaxTotalSize <= 0 {
		l.MaxTotalSize = defaults.MaxTotalSize
	}
	if len(l.AcceptedTypes) == 0 {
		l.AcceptedTypes = defaults.AcceptedTypes
	}
	return l
}

// Accepts reports whether contentType is on the allow list. Sniffed types
// also match through their registered aliases.
func (l Limits) Accepts(contentType string) bool {
	normalized := NormalizeType(contentType)
	if normalized == "" {
		return false
	}
	for _, accepted := range l.AcceptedTypes {
		if strings.EqualFold(accepted, normalized) {
			return true
		}
	}
	if sniffed := mimetype.Lookup(normalized); sniffed != nil {
		for _, accepted := range l.AcceptedTypes {
			if sniffed.Is(accepted) {
				return true
			}
		}
	}
	return false
}

// Accept renders the list for an HTML accept attribute.
func (l Limits) Accept() string {
	return strings.Join(l.normalized().AcceptedTypes, ",")
}

// NormalizeType lower-cases a media type and strips its parameters.
func NormalizeType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		return parsed
	}
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// HumanSize renders whole megabytes ("10MB") or bytes for small caps.
func HumanSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<20 {
		return fmt.Sprintf("%.1fMB", float64(n)/float64(1<<20))
	}
	if n >= 1<<10 {
		return fmt.Sprintf("%.1fKB", float64(n)/float64(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}
